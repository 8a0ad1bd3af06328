package cmd

import (
	"errors"
	"opspulse/lib/runlog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit int

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent pipeline runs from the runlog journal.",
	Run: func(cmd *cobra.Command, args []string) {
		if !config.Runlog.Enabled() {
			fatal("runlog is not configured", errors.New("set runlog.file or runlog.url in opspulse.json5"))
		}

		db, err := config.Runlog.OpenDB()
		if err != nil {
			fatal("failed to open runlog database", err)
		}
		defer db.Close()

		store, err := runlog.NewStore(db)
		if err != nil {
			fatal("failed to init runlog store", err)
		}
		runs, err := store.Recent(cmd.Context(), runsLimit)
		if err != nil {
			fatal("failed to query runs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Started", "Source", "Sink", "Stage", "Error", "Bytes", "Duration"})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Source,
				run.Sink,
				run.Stage,
				run.ErrorKind,
				run.Bytes,
				run.Duration.String(),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
