package maimemo

import (
	"fmt"
	"strings"
)

// Values this client always sends. Brief and tags are not managed here, so a
// single blank stands in for both.
const (
	StatusPublished    = "PUBLISHED"
	placeholderContent = "test"
	placeholderBrief   = " "
	placeholderTag     = " "
	itemTypeWord       = "WORD"
)

// Notepad is the subset of a notepad resource this package uses.
type Notepad struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Status  string        `json:"status,omitempty"`
	Content string        `json:"content,omitempty"`
	Brief   string        `json:"brief,omitempty"`
	Tags    []string      `json:"tags,omitempty"`
	List    []NotepadItem `json:"list,omitempty"`
}

// NotepadItem is one parsed line of a notepad. Only items of type WORD carry
// vocabulary; other types (e.g. chapter headers) are ignored.
type NotepadItem struct {
	Type string `json:"type"`
	Word string `json:"word,omitempty"`
}

// IsWord reports whether the item is a vocabulary entry.
func (i NotepadItem) IsWord() bool {
	return strings.EqualFold(i.Type, itemTypeWord)
}

// NotepadBody is the writable part of a notepad, sent on create and update.
type NotepadBody struct {
	Status  string   `json:"status"`
	Content string   `json:"content"`
	Title   string   `json:"title"`
	Brief   string   `json:"brief"`
	Tags    []string `json:"tags"`
}

// NotepadRequest represents the request body to create or update a notepad.
type NotepadRequest struct {
	Notepad NotepadBody `json:"notepad"`
}

// NewNotepadRequest builds a published notepad body with the given title and content.
func NewNotepadRequest(title, content string) *NotepadRequest {
	return &NotepadRequest{
		Notepad: NotepadBody{
			Status:  StatusPublished,
			Content: content,
			Title:   title,
			Brief:   placeholderBrief,
			Tags:    []string{placeholderTag},
		},
	}
}

// ListNotepadsResponse is the response body of GET /notepads.
// Notepads is nil when the field is missing or null.
type ListNotepadsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Notepads []Notepad `json:"notepads"`
	} `json:"data"`
}

// NotepadResponse is the response body of GET /notepads/{id} and POST /notepads.
// Notepad is nil when the field is missing.
type NotepadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Notepad *Notepad `json:"notepad"`
	} `json:"data"`
}

// UpdateNotepadResponse is the response body of POST /notepads/{id}.
type UpdateNotepadResponse struct {
	Success bool `json:"success"`
}

// ReadFailurePolicy decides what ListWords does when the read fails.
type ReadFailurePolicy int

const (
	// TreatAsEmpty reports a failed read as a notepad with no words.
	// Words already on the server may then be written again by a sync.
	TreatAsEmpty ReadFailurePolicy = iota
	// Propagate returns the failure to the caller as a *TransportError.
	Propagate
)

// String returns the config name of the policy.
func (p ReadFailurePolicy) String() string {
	switch p {
	case TreatAsEmpty:
		return "empty"
	case Propagate:
		return "propagate"
	default:
		return fmt.Sprintf("ReadFailurePolicy(%d)", int(p))
	}
}

// ParseReadFailurePolicy parses a config value ("empty" or "propagate").
func ParseReadFailurePolicy(s string) (ReadFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "empty":
		return TreatAsEmpty, nil
	case "propagate":
		return Propagate, nil
	default:
		return TreatAsEmpty, fmt.Errorf("unknown read failure policy %q (want empty or propagate)", s)
	}
}
