// Package speedup summarizes a results log as a speedup
// curve relative to the single-worker runs.
package speedup

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/devalvesg/hpc/resultlog"
	"github.com/unixpickle/essentials"
)

// ErrMissingBaseline is returned when the log has no run
// with a single worker.
var ErrMissingBaseline = errors.New("no run with 1 worker to use as a baseline")

// A Point is the speedup for one worker count.
type Point struct {
	Procs int

	// Runs is the number of rows averaged into the point.
	Runs int

	// MeanTotal is the average total time over Runs.
	MeanTotal time.Duration

	// Speedup is the mean total time of single-worker runs
	// divided by MeanTotal.
	Speedup float64
}

// Efficiency is the speedup per worker.
func (p *Point) Efficiency() float64 {
	return p.Speedup / float64(p.Procs)
}

// Compute groups rows by worker count, averages their total
// times, and computes the speedup of every group.
//
// The resulting points are sorted by worker count.
func Compute(rows []*resultlog.Row) ([]*Point, error) {
	sums := map[int]float64{}
	counts := map[int]int{}
	for _, row := range rows {
		sums[row.Procs] += row.TotalTime.Seconds()
		counts[row.Procs]++
	}
	if counts[1] == 0 {
		return nil, ErrMissingBaseline
	}
	baseline := sums[1] / float64(counts[1])

	points := make([]*Point, 0, len(counts))
	for procs, count := range counts {
		mean := sums[procs] / float64(count)
		points = append(points, &Point{
			Procs:     procs,
			Runs:      count,
			MeanTotal: time.Duration(mean * float64(time.Second)),
			Speedup:   baseline / mean,
		})
	}
	essentials.VoodooSort(points, func(i, j int) bool {
		return points[i].Procs < points[j].Procs
	})
	return points, nil
}

// WriteTable prints the points as an aligned text table.
func WriteTable(w io.Writer, points []*Point) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "procs\truns\tmean_total\tspeedup\tefficiency")
	for _, p := range points {
		fmt.Fprintf(tw, "%d\t%d\t%.6fs\t%.3f\t%.3f\n", p.Procs, p.Runs,
			p.MeanTotal.Seconds(), p.Speedup, p.Efficiency())
	}
	return tw.Flush()
}

// Report reads a results log, renders its speedup chart to
// chartPath and writes a table of the points to w.
//
// No chart is produced if the log is missing or has no
// baseline.
func Report(log *resultlog.Log, chartPath string, w io.Writer) ([]*Point, error) {
	rows, err := log.ReadAll()
	if err != nil {
		return nil, err
	}
	points, err := Compute(rows)
	if err != nil {
		return nil, err
	}
	if err := Render(points, chartPath); err != nil {
		return nil, essentials.AddCtx("render "+chartPath, err)
	}
	if err := WriteTable(w, points); err != nil {
		return nil, err
	}
	return points, nil
}
