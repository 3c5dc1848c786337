package reduce

import "github.com/devalvesg/hpc/collcomm"

// A TreeReducer arranges the ranks in a binary tree and
// performs a reduction by going up the tree to the
// Coordinator at the root.
// A release is then passed back down to the leaves.
type TreeReducer struct{}

// Reduce calls fn on vectors along a tree and returns the
// reduced vector on the Coordinator.
func (t TreeReducer) Reduce(c *collcomm.Comms, data []float64,
	fn collcomm.ReduceFn) []float64 {
	parent, children := positionInTree(c.Rank(), c.Size())

	messages := [][]float64{data}
	for range children {
		msg, _ := c.Recv()
		messages = append(messages, msg)
	}

	reduced := fn(messages...)
	if parent >= 0 {
		c.Send(parent, reduced)
		// Wait for the release.
		c.Recv()
		reduced = nil
	}

	for _, child := range children {
		c.Send(child, nil)
	}

	return reduced
}

// positionInTree returns the child ranks and parent rank
// for a rank in the reduction tree.
//
// There may be no children.
// The parent is -1 for the root node.
func positionInTree(idx, size int) (parent int, children []int) {
	parent = -1
	for depth := uint(0); true; depth++ {
		rowSize := 1 << depth
		rowStart := rowSize - 1
		if idx >= rowStart+rowSize {
			continue
		}
		rowIdx := idx - rowStart
		if depth > 0 {
			parent = rowIdx/2 + (rowSize/2 - 1)
		}
		firstChild := rowIdx*2 + (rowSize*2 - 1)
		for i := 0; i < 2; i++ {
			if firstChild+i < size {
				children = append(children, firstChild+i)
			}
		}
		return
	}
	panic("unreachable")
}
