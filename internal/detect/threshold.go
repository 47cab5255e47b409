package detect

import "iter"

// Bright yields the timestamps of samples strictly brighter than threshold,
// in input order.
func Bright(samples iter.Seq[Sample], threshold float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for s := range samples {
			if s.Brightness > threshold {
				if !yield(s.Timestamp) {
					return
				}
			}
		}
	}
}
