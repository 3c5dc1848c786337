package reduce

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/devalvesg/hpc/collcomm"
)

// RunReducerTests runs a battery of tests on a Reducer.
func RunReducerTests(t *testing.T, reducer Reducer) {
	for _, numRanks := range []int{1, 2, 5, 15, 16, 17} {
		for _, size := range []int{1, 1337} {
			testName := fmt.Sprintf("Ranks=%d,Size=%d", numRanks, size)
			t.Run(testName, func(t *testing.T) {
				vectors := make([][]float64, numRanks)
				sum := make([]float64, size)
				for i := range vectors {
					vectors[i] = make([]float64, size)
					for j := range vectors[i] {
						vectors[i][j] = rand.NormFloat64()
						sum[j] += vectors[i][j]
					}
				}

				var entered int32
				results := make([][]float64, numRanks)
				collcomm.SpawnComms(numRanks, func(c *collcomm.Comms) {
					atomic.AddInt32(&entered, 1)
					results[c.Rank()] = reducer.Reduce(c, vectors[c.Rank()], collcomm.Sum)
					if n := atomic.LoadInt32(&entered); int(n) != numRanks {
						t.Errorf("rank %d left the reduction after only %d ranks entered",
							c.Rank(), n)
					}
				})

				verifyReductionResults(t, results, sum)
			})
		}
	}
}

func verifyReductionResults(t *testing.T, results [][]float64, expected []float64) {
	for i, res := range results[1:] {
		if res != nil {
			t.Errorf("rank %d received a reduced vector", i+1)
		}
	}

	if len(results[0]) != len(expected) {
		t.Fatalf("result has length %d but expected %d", len(results[0]), len(expected))
	}
	for i, x := range expected {
		if math.Abs(x-results[0][i]) > 1e-5 {
			t.Errorf("sum is incorrect (expected %f but got %f at component %d)",
				x, results[0][i], i)
			break
		}
	}
}
