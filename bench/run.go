package bench

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/devalvesg/hpc/collcomm"
	"github.com/devalvesg/hpc/collcomm/reduce"
	"github.com/devalvesg/hpc/partition"
	"github.com/devalvesg/hpc/resultlog"
	"github.com/google/uuid"
	"github.com/unixpickle/essentials"
)

// DefaultN is the default workload size.
const DefaultN = 100000

// Options configures a run.
type Options struct {
	// Log receives the coordinator's row.
	// If nil, nothing is recorded.
	Log *resultlog.Log

	// Item is the per-index computation.
	// If nil, partition.Sqrt is used.
	Item partition.ItemFn

	// Console receives the coordinator's summary line.
	// If nil, os.Stdout is used.
	Console io.Writer
}

// A Measurement is the outcome of one rank's run.
type Measurement struct {
	RunID string
	Rank  int
	Procs int

	// Coordinator is true for the rank that received the
	// reduced result. Result is only set on that rank.
	Coordinator bool

	Range       partition.Range
	Partial     float64
	Result      float64
	ComputeTime time.Duration
	CommTime    time.Duration
	TotalTime   time.Duration
}

// Row converts the measurement to a log row.
func (m *Measurement) Row() *resultlog.Row {
	return &resultlog.Row{
		Procs:       m.Procs,
		ComputeTime: m.ComputeTime,
		CommTime:    m.CommTime,
		TotalTime:   m.TotalTime,
		Result:      m.Result,
	}
}

// Summary formats the human-readable console line.
func (m *Measurement) Summary() string {
	return fmt.Sprintf("result=%.4f total_time=%.3fs compute=%.3fs comm=%.3fs procs=%d",
		m.Result, m.TotalTime.Seconds(), m.ComputeTime.Seconds(), m.CommTime.Seconds(),
		m.Procs)
}

// Run computes this rank's share of the workload [0, n),
// reduces it across the group, and, on the coordinator,
// records the measurement.
//
// Every rank in the group must call Run once.
func Run(ctx context.Context, n int, g Group, opts Options) (*Measurement, error) {
	if err := partition.Validate(n, g.Rank(), g.Size()); err != nil {
		return nil, err
	}

	start := time.Now()
	r, _ := partition.Partition(n, g.Rank(), g.Size())
	partial, computeTime, err := partition.ComputeLocal(n, g.Rank(), g.Size(), opts.Item)
	if err != nil {
		return nil, err
	}

	commStart := time.Now()
	total, isCoordinator, err := g.ReduceSum(ctx, partial)
	if err != nil {
		return nil, essentials.AddCtx("reduce", err)
	}
	commTime := time.Since(commStart)
	totalTime := time.Since(start)

	m := &Measurement{
		RunID:       g.RunID(),
		Rank:        g.Rank(),
		Procs:       g.Size(),
		Coordinator: isCoordinator,
		Range:       r,
		Partial:     partial,
		Result:      total,
		ComputeTime: computeTime,
		CommTime:    commTime,
		TotalTime:   totalTime,
	}
	if !isCoordinator {
		return m, nil
	}

	if opts.Log != nil {
		if err := opts.Log.Append(m.Row()); err != nil {
			return nil, err
		}
	}
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	fmt.Fprintln(console, m.Summary())
	return m, nil
}

// RunLocal runs every rank of a group of the given size in
// its own Goroutine and returns the coordinator's
// measurement.
//
// A group of size 1 runs without any reduction.
func RunLocal(ctx context.Context, n, size int, reducer reduce.Reducer,
	opts Options) (*Measurement, error) {
	if err := partition.Validate(n, 0, size); err != nil {
		return nil, err
	}
	if size == 1 {
		return Run(ctx, n, NewSolo(), opts)
	}

	runID := uuid.NewString()
	measurements := make([]*Measurement, size)
	errs := make([]error, size)
	collcomm.SpawnComms(size, func(c *collcomm.Comms) {
		g := &CommsGroup{Comms: c, Reducer: reducer, ID: runID}
		measurements[c.Rank()], errs[c.Rank()] = Run(ctx, n, g, opts)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return measurements[reduce.Coordinator], nil
}
