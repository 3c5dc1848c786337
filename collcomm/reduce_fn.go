package collcomm

// A ReduceFn is an operation that reduces many vectors
// into a single vector.
type ReduceFn func(vecs ...[]float64) []float64

// Sum is a ReduceFn that computes a vector sum.
//
// Vectors are added in argument order, so the result is
// deterministic for a fixed ordering of inputs.
func Sum(vecs ...[]float64) []float64 {
	for _, v := range vecs[1:] {
		if len(v) != len(vecs[0]) {
			panic("mismatching lengths")
		}
	}
	res := make([]float64, len(vecs[0]))
	for _, v := range vecs {
		for i, x := range v {
			res[i] += x
		}
	}
	return res
}

// Scalar wraps a single value as a vector.
func Scalar(x float64) []float64 {
	return []float64{x}
}
