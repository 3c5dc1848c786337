package reduce

import "github.com/devalvesg/hpc/collcomm"

// A NaiveReducer sends every vector straight to the
// Coordinator, which then releases everybody else.
type NaiveReducer struct{}

// Reduce runs fn() on all of the ranks' vectors on the
// Coordinator.
func (n NaiveReducer) Reduce(c *collcomm.Comms, data []float64,
	fn collcomm.ReduceFn) []float64 {
	if c.Size() == 1 {
		return data
	}
	if c.Rank() != Coordinator {
		c.Send(Coordinator, data)
		// Wait for the release.
		c.Recv()
		return nil
	}

	gatheredVecs := make([][]float64, c.Size())
	gatheredVecs[c.Rank()] = data
	for i := 0; i < len(gatheredVecs)-1; i++ {
		incoming, source := c.Recv()
		gatheredVecs[source] = incoming
	}

	res := fn(gatheredVecs...)
	c.Bcast(nil)
	return res
}
