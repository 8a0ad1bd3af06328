package loganalyze

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

const bannerWidth = 60

func banner(w io.Writer, ch string) {
	fmt.Fprintln(w, strings.Repeat(ch, bannerWidth))
}

// WriteTextSummary renders the human-readable report: counts and
// percentages up top, then every captured line grouped by level,
// most severe group first.
func WriteTextSummary(w io.Writer, a Analysis, now time.Time) error {
	banner(w, "=")
	fmt.Fprintln(w, "LOG ANALYSIS SUMMARY")
	fmt.Fprintf(w, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	banner(w, "=")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total log entries processed: %d\n", a.TotalLines)
	banner(w, "-")
	fmt.Fprintln(w)

	for _, level := range a.Levels {
		fmt.Fprintf(w, "%-10s : %4d (%5.1f%%)\n", level, a.Counts[level], a.Percent(level))
	}

	fmt.Fprintln(w)
	banner(w, "=")
	fmt.Fprintln(w)

	for i := len(a.Levels) - 1; i >= 0; i-- {
		level := a.Levels[i]
		if a.Counts[level] == 0 {
			continue
		}
		fmt.Fprintf(w, "%s MESSAGES (%d):\n", level, a.Counts[level])
		banner(w, "-")
		for _, line := range a.Details[level] {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}
	return nil
}

type jsonSummary struct {
	Timestamp  string              `json:"timestamp"`
	TotalLines int                 `json:"total_lines"`
	Summary    map[string]int      `json:"summary"`
	Details    map[string][]string `json:"details"`
}

// WriteJSONSummary renders the machine-readable report.
func WriteJSONSummary(w io.Writer, a Analysis, now time.Time) error {
	out := jsonSummary{
		Timestamp:  now.Format("2006-01-02 15:04:05"),
		TotalLines: a.TotalLines,
		Summary:    a.Counts,
		Details:    a.Details,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
