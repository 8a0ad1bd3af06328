// Package loganalyze classifies log lines by severity and renders
// summary reports. Classification is deliberately simple policy:
// case-sensitive substring match, first matching level in the
// configured order wins.
package loganalyze

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// DefaultLevels is the classification order used when none is
// configured.
var DefaultLevels = []string{"INFO", "WARNING", "ERROR"}

var ErrEmptyLog = errors.New("log file is empty")

// maxLineLen caps how long a single log line may be.
const maxLineLen = 16 * 1024 * 1024

type Analysis struct {
	// Levels preserves the classification order for rendering.
	Levels  []string
	Counts  map[string]int
	Details map[string][]string
	// TotalLines counts every non-blank line, matched or not.
	TotalLines int
}

// Analyze reads log lines from r and classifies each non-blank line
// against the ordered level list.
func Analyze(r io.Reader, levels []string) (Analysis, error) {
	if len(levels) == 0 {
		levels = DefaultLevels
	}

	a := Analysis{
		Levels:  levels,
		Counts:  make(map[string]int, len(levels)),
		Details: make(map[string][]string, len(levels)),
	}
	for _, level := range levels {
		a.Counts[level] = 0
	}

	sawLine := false
	scanner := bufio.NewScanner(r)
	// log lines can be far longer than the default 64KB token limit
	// (stack traces, dumped payloads)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	for scanner.Scan() {
		sawLine = true
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		a.TotalLines++

		for _, level := range levels {
			if strings.Contains(line, level) {
				a.Counts[level]++
				a.Details[level] = append(a.Details[level], line)
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Analysis{}, err
	}
	if !sawLine {
		return Analysis{}, ErrEmptyLog
	}
	return a, nil
}

// Matched is the number of lines that classified into some level.
func (a Analysis) Matched() int {
	total := 0
	for _, count := range a.Counts {
		total += count
	}
	return total
}

// Percent is the share of matched lines that classified as level.
func (a Analysis) Percent(level string) float64 {
	matched := a.Matched()
	if matched == 0 {
		return 0
	}
	return float64(a.Counts[level]) / float64(matched) * 100
}
