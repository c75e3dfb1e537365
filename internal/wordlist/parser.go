// Package wordlist parses the local word lists fed to a sync.
package wordlist

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlDoc is the mapping form of a YAML word list.
type yamlDoc struct {
	Words []string `yaml:"words"`
}

// Parse parses a word list.
//
// Two formats are accepted:
//   - plain text: words separated by newlines and/or commas, lines starting with "#" are comments;
//   - YAML: a sequence of strings, or a mapping with a "words" sequence.
//
// Words are trimmed and empty ones dropped. Order is kept and duplicates are not
// removed; merging is the syncer's job.
func Parse(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty input")
	}

	var words []string
	if isYAML(input) {
		var err error
		if words, err = parseYAML(input); err != nil {
			return nil, err
		}
	} else {
		words = parseText(input)
	}

	if len(words) == 0 {
		return nil, errors.New("no words found")
	}
	return words, nil
}

// isYAML guesses the format from the first meaningful line: a YAML list item
// ("- word") or the "words:" key.
func isYAML(input string) bool {
	for line := range strings.SplitSeq(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || line == "---" {
			continue
		}
		return strings.HasPrefix(line, "- ") || line == "-" || strings.HasPrefix(line, "words:")
	}
	return false
}

func parseYAML(input string) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(input), &node); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var raw []string
	switch root := node.Content[0]; root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding word sequence: %w", err)
		}
	case yaml.MappingNode:
		var doc yamlDoc
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding words mapping: %w", err)
		}
		raw = doc.Words
	default:
		return nil, fmt.Errorf("unexpected YAML document at line %d: want a list or a words mapping", root.Line)
	}

	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

func parseText(input string) []string {
	var words []string
	for line := range strings.SplitSeq(input, "\n") {
		line = strings.TrimSpace(line) // basic sanitation
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for part := range strings.SplitSeq(line, ",") {
			if w := strings.TrimSpace(part); w != "" {
				words = append(words, w)
			}
		}
	}
	return words
}
