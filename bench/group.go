// Package bench runs the distributed sum benchmark for one
// rank and records the coordinator's measurement.
package bench

import (
	"context"

	"github.com/devalvesg/hpc/collcomm"
	"github.com/devalvesg/hpc/collcomm/reduce"
	"github.com/google/uuid"
)

// A Group is one rank's view of the workers taking part in
// a run.
//
// ReduceSum must be called exactly once by every rank.
// It blocks until all ranks have called it, and only the
// coordinating rank gets the total (with a true second
// return value).
type Group interface {
	Rank() int
	Size() int
	RunID() string
	ReduceSum(ctx context.Context, local float64) (total float64, coordinator bool, err error)
	Close() error
}

// Solo is a group with a single rank, used when no parallel
// group is available.
// Its reduction is the identity.
type Solo struct {
	runID string
}

// NewSolo creates a single-rank group with a fresh run ID.
func NewSolo() *Solo {
	return &Solo{runID: uuid.NewString()}
}

func (s *Solo) Rank() int {
	return 0
}

func (s *Solo) Size() int {
	return 1
}

func (s *Solo) RunID() string {
	return s.runID
}

// ReduceSum returns local.
func (s *Solo) ReduceSum(ctx context.Context, local float64) (float64, bool, error) {
	return local, true, nil
}

func (s *Solo) Close() error {
	return nil
}

// A CommsGroup is a Group made of Goroutines in the same
// process.
type CommsGroup struct {
	Comms   *collcomm.Comms
	Reducer reduce.Reducer
	ID      string
}

func (c *CommsGroup) Rank() int {
	return c.Comms.Rank()
}

func (c *CommsGroup) Size() int {
	return c.Comms.Size()
}

func (c *CommsGroup) RunID() string {
	return c.ID
}

// ReduceSum runs the Reducer on the local value.
func (c *CommsGroup) ReduceSum(ctx context.Context, local float64) (float64, bool, error) {
	res := c.Reducer.Reduce(c.Comms, collcomm.Scalar(local), collcomm.Sum)
	if res == nil {
		return 0, false, nil
	}
	return res[0], true, nil
}

func (c *CommsGroup) Close() error {
	return nil
}
