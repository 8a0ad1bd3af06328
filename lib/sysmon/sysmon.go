// Package sysmon samples system-wide resource usage and evaluates it
// against operator-supplied thresholds.
package sysmon

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("opspulse.lib.sysmon")

// Snapshot is a single reading of system-wide usage percentages.
type Snapshot struct {
	CPUPercent  float64   `json:"cpu_percent"`
	MemPercent  float64   `json:"memory_percent"`
	DiskPercent float64   `json:"disk_percent"`
	DiskPath    string    `json:"disk_path"`
	TakenAt     time.Time `json:"taken_at"`
}

// Take samples cpu (over a one second interval), virtual memory and
// disk usage for the given mount path.
func Take(ctx context.Context, diskPath string) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Take")
	defer span.End()

	fail := func(err error) (Snapshot, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, err
	}

	cpuPcts, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return fail(err)
	}
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return fail(err)
	}
	usage, err := disk.UsageWithContext(ctx, diskPath)
	if err != nil {
		return fail(err)
	}

	s := Snapshot{
		MemPercent:  vmem.UsedPercent,
		DiskPercent: usage.UsedPercent,
		DiskPath:    diskPath,
		TakenAt:     time.Now(),
	}
	if len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	return s, nil
}

// Thresholds are maximum acceptable usage percentages.
type Thresholds struct {
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
	Disk   float64 `json:"disk"`
}

// Check is the verdict for one resource. Breached means usage is
// strictly above the threshold.
type Check struct {
	Resource  string
	Usage     float64
	Threshold float64
	Breached  bool
}

func Evaluate(s Snapshot, t Thresholds) []Check {
	return []Check{
		{Resource: "cpu", Usage: s.CPUPercent, Threshold: t.CPU, Breached: s.CPUPercent > t.CPU},
		{Resource: "memory", Usage: s.MemPercent, Threshold: t.Memory, Breached: s.MemPercent > t.Memory},
		{Resource: "disk", Usage: s.DiskPercent, Threshold: t.Disk, Breached: s.DiskPercent > t.Disk},
	}
}

func AnyBreached(checks []Check) bool {
	for _, c := range checks {
		if c.Breached {
			return true
		}
	}
	return false
}
