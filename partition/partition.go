// Package partition splits a numeric workload across the
// ranks of a worker group and times the local share of the
// computation.
package partition

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidArgument is wrapped by every error caused by a
// bad workload size, rank, or group size.
var ErrInvalidArgument = errors.New("invalid argument")

// A Range is a half-open interval [Start, End) of workload
// indices.
type Range struct {
	Start int
	End   int
}

// Len gets the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty returns true if the range has no indices.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// An ItemFn is the per-index computation whose results are
// summed across the workload.
// It should be a pure function of the index.
type ItemFn func(i int) float64

// Sqrt is the default ItemFn.
func Sqrt(i int) float64 {
	return math.Sqrt(float64(i))
}

// Partition computes the contiguous range of [0, n) owned by
// a rank in a group of the given size.
//
// Every rank gets n/size indices, except for the last rank,
// which also absorbs the remainder.
// When size > n, all but the last rank get empty ranges.
func Partition(n, rank, size int) (Range, error) {
	if err := Validate(n, rank, size); err != nil {
		return Range{}, err
	}
	chunk := n / size
	r := Range{Start: rank * chunk, End: (rank + 1) * chunk}
	if rank == size-1 {
		r.End = n
	}
	return r, nil
}

// Validate checks the arguments to Partition.
func Validate(n, rank, size int) error {
	if n < 0 {
		return fmt.Errorf("%w: workload size %d is negative", ErrInvalidArgument, n)
	} else if size < 1 {
		return fmt.Errorf("%w: group size %d is not positive", ErrInvalidArgument, size)
	} else if rank < 0 || rank >= size {
		return fmt.Errorf("%w: rank %d outside of group of size %d", ErrInvalidArgument,
			rank, size)
	}
	return nil
}

// ComputeLocal sums fn over the rank's partition of [0, n).
//
// The returned duration covers only the accumulation loop,
// not the partition computation.
// If fn is nil, Sqrt is used.
func ComputeLocal(n, rank, size int, fn ItemFn) (partial float64, elapsed time.Duration,
	err error) {
	r, err := Partition(n, rank, size)
	if err != nil {
		return 0, 0, err
	}
	if fn == nil {
		fn = Sqrt
	}
	start := time.Now()
	partial = Sum(r, fn)
	elapsed = time.Since(start)
	return partial, elapsed, nil
}

// Sum adds up fn(i) for every index in a range.
func Sum(r Range, fn ItemFn) float64 {
	var sum float64
	for i := r.Start; i < r.End; i++ {
		sum += fn(i)
	}
	return sum
}
