// Package reduce implements algorithms for summing vectors
// that are distributed across the ranks of a group onto a
// single coordinating rank.
package reduce

import "github.com/devalvesg/hpc/collcomm"

// Coordinator is the rank that receives reduced values.
const Coordinator = 0

// Reducer is an algorithm that applies a ReduceFn to
// vectors that are distributed across ranks.
//
// Every rank must call Reduce exactly once per Comms
// object. The call is a barrier: no rank returns until the
// Coordinator has combined every rank's vector.
// The Coordinator gets the reduced vector, while every other
// rank gets nil.
type Reducer interface {
	Reduce(c *collcomm.Comms, data []float64, fn collcomm.ReduceFn) []float64
}

// ByName looks up a Reducer by its command-line name.
func ByName(name string) (Reducer, bool) {
	switch name {
	case "naive":
		return NaiveReducer{}, true
	case "tree":
		return TreeReducer{}, true
	}
	return nil, false
}
