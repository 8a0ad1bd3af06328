package cmd

import (
	"fmt"
	"log/slog"
	"opspulse/lib/loganalyze"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var logsTextOut string
var logsJsonOut string

func init() {
	logsCmd.Flags().StringVar(&logsTextOut, "text-out", "", "text summary output file")
	logsCmd.Flags().StringVar(&logsJsonOut, "json-out", "", "json summary output file")
	rootCmd.AddCommand(logsCmd)
}

var logsCmd = &cobra.Command{
	Use:   "logs <file>",
	Short: "Classify log lines by severity and write summary reports.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logPath := args[0]

		file, err := os.Open(logPath)
		if err != nil {
			fatal("failed to open log file", err)
		}
		defer file.Close()

		slog.Info("analyzing log file", "path", logPath)

		analysis, err := loganalyze.Analyze(file, config.Logs.Levels)
		if err != nil {
			fatal("log analysis failed", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Level", "Count", "Percent"})
		for _, level := range analysis.Levels {
			t.AppendRow(table.Row{
				level,
				analysis.Counts[level],
				fmt.Sprintf("%.1f%%", analysis.Percent(level)),
			})
		}
		t.AppendFooter(table.Row{"total lines", analysis.TotalLines, ""})
		t.SetStyle(table.StyleRounded)
		t.Render()

		if count := analysis.Counts["ERROR"]; count > 0 {
			slog.Warn("found ERROR messages", "count", count)
		}
		if count := analysis.Counts["WARNING"]; count > 0 {
			slog.Warn("found WARNING messages", "count", count)
		}

		now := time.Now()
		textOut := config.Logs.TextOutput
		if cmd.Flags().Changed("text-out") {
			textOut = logsTextOut
		}
		jsonOut := config.Logs.JsonOutput
		if cmd.Flags().Changed("json-out") {
			jsonOut = logsJsonOut
		}

		err = writeReport(textOut, func(f *os.File) error {
			return loganalyze.WriteTextSummary(f, analysis, now)
		})
		if err != nil {
			fatal("failed to write text summary", err)
		}
		err = writeReport(jsonOut, func(f *os.File) error {
			return loganalyze.WriteJSONSummary(f, analysis, now)
		})
		if err != nil {
			fatal("failed to write json summary", err)
		}

		fmt.Printf("Summaries written to %q and %q\n", textOut, jsonOut)
	},
}

func writeReport(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = render(f)
	closeErr := f.Close()
	if err != nil {
		return err
	}
	return closeErr
}
