// Package report renders the end-of-run summary.
package report

import (
	"fmt"
	"io"

	"github.com/me/trialq/pkg/model"
)

const indent = "   "

// Summary writes the human-readable summary of a run's statistics to w.
// The layout depends on the mode: check mode reports what remains
// unfinished, every other mode reports what was submitted.
func Summary(w io.Writer, st model.Stats, mode model.Mode) {
	if mode == model.ModeCheck {
		checkSummary(w, st)
		return
	}
	generalSummary(w, st, mode)
}

func header(w io.Writer, st model.Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "----SUMMARY----")
	fmt.Fprintf(w, "%d jobs were requested total.\n", st["valid"])
}

func finishedBlock(w io.Writer, st model.Stats) {
	fmt.Fprintf(w, "%s%d jobs are marked finished.\n", indent, st["finished"])
	fmt.Fprintf(w, "%s%d are newly marked.\n", indent+indent, st["finished.new"])
	if st["finished.wrong"] > 0 {
		fmt.Fprintf(w, "%s%d look unfinished! (!!!)\n", indent+indent, st["finished.wrong"])
	}
}

func generalSummary(w io.Writer, st model.Stats, mode model.Mode) {
	header(w, st)
	finishedBlock(w, st)

	if mode == model.ModeSkip {
		fmt.Fprintf(w, "%s%d unfinished jobs were skipped. (-s)\n", indent, st["skipped"])
	}

	fmt.Fprintf(w, "%s%d jobs were submitted.\n", indent, st["submitted"])
	if mode == model.ModeResume {
		fmt.Fprintf(w, "%s%d of these were resubmissions. (-r)\n", indent+indent, st["submitted.resumed"])
	}

	if st["unprocessed"] > 0 {
		fmt.Fprintf(w, "%s%d remain unprocessed after a failed submission. (!!!)\n", indent, st["unprocessed"])
	}
}

func checkSummary(w io.Writer, st model.Stats) {
	header(w, st)
	finishedBlock(w, st)

	unfinished := st["valid"] - st["finished"]
	if unfinished < 0 {
		unfinished = 0
	}

	warning := ""
	if unfinished > 0 {
		warning = " (!!!)"
	}
	fmt.Fprintf(w, "%s%d jobs remain unfinished.%s\n", indent, unfinished, warning)
}
