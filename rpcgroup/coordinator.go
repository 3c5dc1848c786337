package rpcgroup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/devalvesg/hpc/partition"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// A Coordinator is rank 0 of a multi-process group.
// It collects every other rank's value and owns the
// reduced result.
type Coordinator struct {
	size     int
	runID    string
	listener net.Listener
	server   *grpc.Server

	lock   sync.Mutex
	values map[int]float64
	done   chan struct{}
}

// NewCoordinator starts serving the group on addr.
//
// The address may use port 0, in which case Addr() reports
// the port that was picked.
func NewCoordinator(addr string, size int) (*Coordinator, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: group size %d is not positive",
			partition.ErrInvalidArgument, size)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Coordinator{
		size:     size,
		runID:    uuid.NewString(),
		listener: listener,
		values:   map[int]float64{},
		done:     make(chan struct{}),
	}
	if size == 1 {
		close(c.done)
	}
	c.server = grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	c.server.RegisterService(&serviceDesc, c)
	go func() {
		if err := c.server.Serve(listener); err != nil &&
			!errors.Is(err, grpc.ErrServerStopped) {
			log.Printf("coordinator stopped serving: %v", err)
		}
	}()
	return c, nil
}

// Addr gets the address the coordinator is listening on.
func (c *Coordinator) Addr() net.Addr {
	return c.listener.Addr()
}

// Rank returns 0.
func (c *Coordinator) Rank() int {
	return 0
}

// Size gets the number of ranks in the group.
func (c *Coordinator) Size() int {
	return c.size
}

// RunID gets the identifier shared by every rank of the
// run.
func (c *Coordinator) RunID() string {
	return c.runID
}

// Contribute records a remote rank's value and blocks until
// every rank has contributed.
func (c *Coordinator) Contribute(ctx context.Context,
	req *contributeRequest) (*contributeResponse, error) {
	if req.Size != c.size {
		return nil, status.Errorf(codes.InvalidArgument,
			"group size %d does not match coordinator group size %d", req.Size, c.size)
	} else if req.Rank < 1 || req.Rank >= c.size {
		return nil, status.Errorf(codes.InvalidArgument,
			"rank %d outside of group of size %d", req.Rank, c.size)
	}

	c.lock.Lock()
	if _, ok := c.values[req.Rank]; ok {
		c.lock.Unlock()
		return nil, status.Errorf(codes.AlreadyExists,
			"rank %d already contributed (session %s)", req.Rank, req.Session)
	}
	c.values[req.Rank] = req.Value
	if len(c.values) == c.size-1 {
		close(c.done)
	}
	c.lock.Unlock()

	select {
	case <-c.done:
		return &contributeResponse{RunID: c.runID}, nil
	case <-ctx.Done():
		return nil, status.FromContextError(ctx.Err()).Err()
	}
}

// ReduceSum waits for every rank to contribute and returns
// the sum of all the values, including local.
//
// The second return value is always true, since the
// coordinator receives the result.
func (c *Coordinator) ReduceSum(ctx context.Context, local float64) (float64, bool, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		return 0, true, ctx.Err()
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	total := local
	for rank := 1; rank < c.size; rank++ {
		total += c.values[rank]
	}
	return total, true, nil
}

// Close stops the server.
//
// If the reduction finished, pending responses are flushed
// to the workers first.
func (c *Coordinator) Close() error {
	select {
	case <-c.done:
		c.server.GracefulStop()
	default:
		c.server.Stop()
	}
	return nil
}

func (c *Coordinator) numContributed() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.values)
}
