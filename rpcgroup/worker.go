package rpcgroup

import (
	"context"
	"fmt"
	"time"

	"github.com/devalvesg/hpc/partition"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// A Worker is a non-coordinating rank of a multi-process
// group.
type Worker struct {
	rank    int
	size    int
	session string
	conn    *grpc.ClientConn

	runID string
}

// NewWorker creates a worker that will contribute to the
// coordinator at the given address.
//
// No connection is made until ReduceSum is called, so the
// coordinator may start after the worker.
func NewWorker(coordinator string, rank, size int) (*Worker, error) {
	if size < 2 || rank < 1 || rank >= size {
		return nil, fmt.Errorf("%w: rank %d cannot be a worker in a group of size %d",
			partition.ErrInvalidArgument, rank, size)
	}
	conn, err := grpc.NewClient(
		coordinator,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Worker{
		rank:    rank,
		size:    size,
		session: uuid.NewString(),
		conn:    conn,
	}, nil
}

// Rank gets the worker's rank.
func (w *Worker) Rank() int {
	return w.rank
}

// Size gets the number of ranks in the group.
func (w *Worker) Size() int {
	return w.size
}

// RunID gets the coordinator's run identifier.
// It is empty until ReduceSum has returned.
func (w *Worker) RunID() string {
	return w.runID
}

// Session gets the identifier of this worker process.
func (w *Worker) Session() string {
	return w.session
}

// ReduceSum sends the local value to the coordinator and
// blocks until every rank has contributed.
//
// Workers never see the reduced value, so the first two
// return values are always 0 and false.
func (w *Worker) ReduceSum(ctx context.Context, local float64) (float64, bool, error) {
	req := &contributeRequest{
		Rank:    w.rank,
		Size:    w.size,
		Session: w.session,
		Value:   local,
	}
	var resp contributeResponse
	if err := w.conn.Invoke(ctx, contributeMethod, req, &resp, grpc.WaitForReady(true)); err != nil {
		return 0, false, err
	}
	w.runID = resp.RunID
	return 0, false, nil
}

// Close closes the connection to the coordinator.
func (w *Worker) Close() error {
	return w.conn.Close()
}
