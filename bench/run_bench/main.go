// Command run_bench sums sqrt(i) over [0, n) across a group
// of workers and appends the coordinator's timings to the
// results log.
//
// By default every worker is a Goroutine in this process.
// With -transport grpc, each rank is a separate process:
//
//	run_bench -transport grpc -procs 3 -rank 0 -addr :7070 &
//	run_bench -transport grpc -procs 3 -rank 1 -addr host:7070 &
//	run_bench -transport grpc -procs 3 -rank 2 -addr host:7070
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	"github.com/devalvesg/hpc/bench"
	"github.com/devalvesg/hpc/collcomm/reduce"
	"github.com/devalvesg/hpc/resultlog"
	"github.com/devalvesg/hpc/rpcgroup"
	"github.com/unixpickle/essentials"
)

func main() {
	var n int
	var procs int
	var rank int
	var reducerName string
	var transport string
	var addr string
	var resultsDir string
	var lock bool

	flag.IntVar(&n, "n", bench.DefaultN, "workload size")
	flag.IntVar(&procs, "procs", 1, "number of workers")
	flag.IntVar(&rank, "rank", 0, "rank of this process (grpc transport)")
	flag.StringVar(&reducerName, "reducer", "tree", "reduction algorithm (tree or naive)")
	flag.StringVar(&transport, "transport", "local", "worker transport (local or grpc)")
	flag.StringVar(&addr, "addr", "127.0.0.1:7070", "coordinator address (grpc transport)")
	flag.StringVar(&resultsDir, "results", "results", "directory for the results log")
	flag.BoolVar(&lock, "lock", false, "hold an advisory lock while appending to the log")
	flag.Parse()

	log.SetPrefix("run_bench: ")

	if flag.NArg() > 1 {
		essentials.Die("usage: run_bench [flags] [n]")
	} else if flag.NArg() == 1 {
		parsed, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			essentials.Die("invalid workload size:", flag.Arg(0))
		}
		n = parsed
	}
	if n < 1 {
		essentials.Die(fmt.Sprintf("invalid workload size %d: must be positive", n))
	}

	opts := bench.Options{
		Log: &resultlog.Log{
			Path: filepath.Join(resultsDir, resultlog.DefaultFilename),
			Lock: lock,
		},
	}

	ctx := context.Background()
	var m *bench.Measurement
	var err error
	switch transport {
	case "local":
		reducer, ok := reduce.ByName(reducerName)
		if !ok {
			essentials.Die("unknown reducer:", reducerName)
		}
		m, err = bench.RunLocal(ctx, n, procs, reducer, opts)
	case "grpc":
		m, err = runRemote(ctx, n, procs, rank, addr, opts)
	default:
		essentials.Die("unknown transport:", transport)
	}
	if err != nil {
		essentials.Die(err)
	}

	if m.Coordinator {
		log.Printf("run %s: appended row to %s", m.RunID, opts.Log.Path)
	} else {
		log.Printf("run %s: rank %d contributed %f over %v", m.RunID, m.Rank, m.Partial,
			m.Range)
	}
}

func runRemote(ctx context.Context, n, procs, rank int, addr string,
	opts bench.Options) (*bench.Measurement, error) {
	var g bench.Group
	if rank == 0 {
		c, err := rpcgroup.NewCoordinator(addr, procs)
		if err != nil {
			return nil, err
		}
		log.Printf("coordinating %d ranks on %s", procs, c.Addr())
		g = c
	} else {
		w, err := rpcgroup.NewWorker(addr, rank, procs)
		if err != nil {
			return nil, err
		}
		log.Printf("rank %d joining coordinator at %s (session %s)", rank, addr, w.Session())
		g = w
	}
	defer g.Close()
	return bench.Run(ctx, n, g, opts)
}
