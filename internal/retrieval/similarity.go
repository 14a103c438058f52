package retrieval

import (
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when two vectors differ in length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// ErrNonFinite is returned when a vector holds NaN or an infinity.
var ErrNonFinite = errors.New("vector has non-finite component")

// CosineSimilarity returns the cosine of the angle between a and b.
// It is 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	sa, sb := maxAbs(a), maxAbs(b)
	if math.IsNaN(sa) || math.IsNaN(sb) {
		return 0, ErrNonFinite
	}
	if sa == 0 || sb == 0 {
		return 0, nil
	}
	// Scaling by the largest component keeps the sums away from overflow
	// and underflow; cosine is scale invariant.
	var dot, na, nb float64
	for i := range a {
		x, y := a[i]/sa, b[i]/sb
		dot += x * y
		na += x * x
		nb += y * y
	}
	// sqrt of the product keeps cos(v, v) at exactly 1.
	s := dot / math.Sqrt(na*nb)
	return max(-1, min(1, s)), nil
}

// maxAbs returns the largest absolute component, or NaN if v holds a
// non-finite value.
func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return math.NaN()
		}
		m = max(m, math.Abs(x))
	}
	return m
}
