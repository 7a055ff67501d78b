package gradecalc

import "math"

// Normalize coerces NaN, infinities and negative values to 0.
func Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func orDefault(v, fallback float64) float64 {
	v = Normalize(v)
	if v == 0 {
		return fallback
	}
	return v
}

func maxScoreOf(ptr *float64) float64 {
	if ptr == nil {
		return DefaultMaxScore
	}
	return Normalize(*ptr)
}

func scoreOf(ptr *float64) float64 {
	if ptr == nil {
		return 0
	}
	return Normalize(*ptr)
}
