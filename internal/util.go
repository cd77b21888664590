package internal

import "math"

// PercentToFraction converts a 0-100 percentage into a [0, 1] fraction.
// ok is false for NaN or out-of-range input.
func PercentToFraction(percent float64) (fraction float64, ok bool) {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return 0, false
	}
	return percent * 0.01, true
}

// Reverse reverses path in place.
func Reverse[NodeType any](path []NodeType) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}
