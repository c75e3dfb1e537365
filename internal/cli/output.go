package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/akhdanfadh/momosync/internal/syncer"
)

// maxListed caps how many added words the summaries print.
const maxListed = 20

// syncStats is what the sync summary reports.
type syncStats struct {
	notepad  string
	input    int
	result   syncer.Result
	duration time.Duration
}

func printSyncSummary(w io.Writer, stats syncStats) {
	res := stats.result

	fmt.Fprintf(w, "=== Summary ===\n")
	fmt.Fprintf(w, "Notepad         : %s (%s)\n", stats.notepad, res.NotepadID)
	if res.Created {
		fmt.Fprintf(w, "  Created       : yes\n")
	}
	fmt.Fprintf(w, "Words given     : %d\n", stats.input)
	fmt.Fprintf(w, "Already present : %d\n", res.Existing)
	fmt.Fprintf(w, "Added           : %d\n", len(res.Added))
	printWords(w, res.Added)

	switch {
	case len(res.Added) == 0:
		fmt.Fprintf(w, "\nNothing to update.\n")
	case res.Changed:
		fmt.Fprintf(w, "\nNotepad updated.\n")
	default:
		fmt.Fprintf(w, "\nUpdate sent but not accepted by the server.\n")
	}
	fmt.Fprintf(w, "Total time      : %.2fs\n", stats.duration.Seconds())
}

// printPlan prints a Plan without making any write calls.
func printPlan(w io.Writer, notepad string, input int, plan syncer.Plan) {
	fmt.Fprintf(w, "=== Dry Run ===\n")
	if plan.Exists {
		fmt.Fprintf(w, "Notepad         : %s (%s)\n", notepad, plan.NotepadID)
	} else {
		fmt.Fprintf(w, "Notepad         : %s (would be created)\n", notepad)
	}
	fmt.Fprintf(w, "Words given     : %d\n", input)
	fmt.Fprintf(w, "Already present : %d\n", plan.Existing)
	fmt.Fprintf(w, "Would add       : %d\n", len(plan.Added))
	printWords(w, plan.Added)
	fmt.Fprintf(w, "\nNo changes made.\n")
}

func printWords(w io.Writer, words []string) {
	if len(words) == 0 {
		return
	}
	shown := words[:min(len(words), maxListed)]
	line := strings.Join(shown, ", ")
	if rest := len(words) - len(shown); rest > 0 {
		line += fmt.Sprintf(" ... (+%d more)", rest)
	}
	fmt.Fprintf(w, "  %s\n", line)
}
