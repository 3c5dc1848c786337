package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/devalvesg/hpc/collcomm/reduce"
	"github.com/devalvesg/hpc/partition"
	"github.com/devalvesg/hpc/resultlog"
)

const sqrtSum10 = 19.306000526035718

func TestRunSolo(t *testing.T) {
	log := resultlog.NewLog(t.TempDir())
	var console bytes.Buffer
	m, err := Run(context.Background(), 10, NewSolo(), Options{Log: log, Console: &console})
	if err != nil {
		t.Fatal(err)
	}
	if !m.Coordinator || m.Procs != 1 || m.Range != (partition.Range{Start: 0, End: 10}) {
		t.Errorf("unexpected measurement: %+v", m)
	}
	if m.Result != m.Partial {
		t.Errorf("solo result %f differs from partial %f", m.Result, m.Partial)
	}
	if math.Abs(m.Result-sqrtSum10) > 1e-9 {
		t.Errorf("expected %f but got %f", sqrtSum10, m.Result)
	}
	if m.TotalTime < m.ComputeTime+m.CommTime {
		t.Errorf("total time %v is less than compute %v plus comm %v", m.TotalTime,
			m.ComputeTime, m.CommTime)
	}

	rows, err := log.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Procs != 1 || math.Abs(rows[0].Result-19.306001) > 1e-9 {
		t.Errorf("unexpected rows: %+v", rows)
	}

	line := console.String()
	if !strings.HasPrefix(line, "result=19.3060 ") || !strings.HasSuffix(line, " procs=1\n") {
		t.Errorf("unexpected console output: %q", line)
	}
}

func TestRunLocal(t *testing.T) {
	for _, name := range []string{"naive", "tree"} {
		reducer, _ := reduce.ByName(name)
		for _, size := range []int{1, 2, 3, 8, 13} {
			t.Run(fmt.Sprintf("%s/Size=%d", name, size), func(t *testing.T) {
				log := resultlog.NewLog(t.TempDir())
				var console bytes.Buffer
				m, err := RunLocal(context.Background(), 10, size, reducer,
					Options{Log: log, Console: &console})
				if err != nil {
					t.Fatal(err)
				}
				if !m.Coordinator || m.Rank != 0 || m.Procs != size {
					t.Errorf("unexpected measurement: %+v", m)
				}
				if math.Abs(m.Result-sqrtSum10) > 1e-9 {
					t.Errorf("expected %f but got %f", sqrtSum10, m.Result)
				}
				rows, err := log.ReadAll()
				if err != nil {
					t.Fatal(err)
				}
				if len(rows) != 1 || rows[0].Procs != size {
					t.Errorf("unexpected rows: %+v", rows)
				}
				if n := strings.Count(console.String(), "\n"); n != 1 {
					t.Errorf("expected one console line but got %d", n)
				}
			})
		}
	}
}

func TestRunLocalPartitions(t *testing.T) {
	var ranges []partition.Range
	var partials []float64
	for rank := 0; rank < 3; rank++ {
		r, _ := partition.Partition(10, rank, 3)
		ranges = append(ranges, r)
		partials = append(partials, partition.Sum(r, partition.Sqrt))
	}
	expected := []partition.Range{{Start: 0, End: 3}, {Start: 3, End: 6}, {Start: 6, End: 10}}
	for i, r := range ranges {
		if r != expected[i] {
			t.Errorf("rank %d: expected %v but got %v", i, expected[i], r)
		}
	}
	m, err := RunLocal(context.Background(), 10, 3, reduce.TreeReducer{},
		Options{Console: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if m.Range != expected[0] || m.Partial != partials[0] {
		t.Errorf("unexpected coordinator measurement: %+v", m)
	}
	if m.RunID == "" {
		t.Error("missing run ID")
	}
}

func TestRunInvalid(t *testing.T) {
	_, err := RunLocal(context.Background(), -5, 2, reduce.NaiveReducer{}, Options{})
	if !errors.Is(err, partition.ErrInvalidArgument) {
		t.Errorf("unexpected error: %v", err)
	}
	_, err = RunLocal(context.Background(), 10, 0, reduce.NaiveReducer{}, Options{})
	if !errors.Is(err, partition.ErrInvalidArgument) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunNonCoordinator(t *testing.T) {
	log := resultlog.NewLog(t.TempDir())
	var console bytes.Buffer
	g := &fakeGroup{rank: 1, size: 2}
	m, err := Run(context.Background(), 10, g, Options{Log: log, Console: &console})
	if err != nil {
		t.Fatal(err)
	}
	if m.Coordinator {
		t.Error("rank 1 should not be the coordinator")
	}
	if console.Len() != 0 {
		t.Errorf("unexpected console output: %q", console.String())
	}
	if _, err := log.ReadAll(); !errors.Is(err, resultlog.ErrMissingLog) {
		t.Errorf("non-coordinator should not create the log: %v", err)
	}
}

type fakeGroup struct {
	rank int
	size int
}

func (f *fakeGroup) Rank() int     { return f.rank }
func (f *fakeGroup) Size() int     { return f.size }
func (f *fakeGroup) RunID() string { return "fake" }
func (f *fakeGroup) Close() error  { return nil }

func (f *fakeGroup) ReduceSum(ctx context.Context, local float64) (float64, bool, error) {
	return 0, f.rank == 0, nil
}
