package cmd

import (
	"fmt"
	"log/slog"
	"opspulse/lib/sysmon"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var healthCpu float64
var healthMemory float64
var healthDisk float64
var healthFailOnBreach bool

func init() {
	healthCmd.Flags().Float64Var(&healthCpu, "cpu", 0, "cpu usage threshold in percent")
	healthCmd.Flags().Float64Var(&healthMemory, "memory", 0, "memory usage threshold in percent")
	healthCmd.Flags().Float64Var(&healthDisk, "disk", 0, "disk usage threshold in percent")
	healthCmd.Flags().BoolVar(&healthFailOnBreach, "fail-on-breach", false, "exit non-zero when any threshold is breached")
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check system resource usage against thresholds.",
	Run: func(cmd *cobra.Command, args []string) {
		thresholds := config.Health.Thresholds
		if cmd.Flags().Changed("cpu") {
			thresholds.CPU = healthCpu
		}
		if cmd.Flags().Changed("memory") {
			thresholds.Memory = healthMemory
		}
		if cmd.Flags().Changed("disk") {
			thresholds.Disk = healthDisk
		}

		snapshot, err := sysmon.Take(cmd.Context(), config.Health.DiskPath)
		if err != nil {
			fatal("failed to read system metrics", err)
		}
		checks := sysmon.Evaluate(snapshot, thresholds)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Resource", "Usage", "Threshold", "Status"})
		for _, check := range checks {
			status := "within limit"
			if check.Breached {
				status = "ABOVE THRESHOLD"
			}
			t.AppendRow(table.Row{
				check.Resource,
				fmt.Sprintf("%.1f%%", check.Usage),
				fmt.Sprintf("%.1f%%", check.Threshold),
				status,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		if sysmon.AnyBreached(checks) {
			slog.Warn("one or more resources above threshold")
			if healthFailOnBreach {
				os.Exit(1)
			}
		}
	},
}
