package similarity

import "math"

// Cosine computes cosine similarity over two equal-length vectors. Mismatched
// or zero-norm vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Jaccard computes |A ∩ B| / |A ∪ B| over string sets.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}
	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// RatioMinMax returns min/max of two non-negative magnitudes, 0 when either
// is 0.
func RatioMinMax(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return a / b
}

// CircularHourDiff returns the wrap-around distance between two hours of day,
// in [0, 12].
func CircularHourDiff(h1, h2 int) float64 {
	d := math.Abs(float64(h1 - h2))
	return math.Min(d, 24-d)
}

// capacityRatioScore squashes a capacity ratio through a sigmoid so
// near-equal capacities score close to 1 and the score drops steeply as the
// ratio shrinks.
func capacityRatioScore(r float64) float64 {
	return 2/(1+math.Exp(-4*r)) - 1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
