package gradecalc

import "math"

// Deduction returns the number of points removed from a late entry whose max
// score is maxScore.
func (p LatePolicy) Deduction(maxScore float64) float64 {
	maxScore = Normalize(maxScore)
	value := Normalize(p.Amount)
	var deduction float64
	switch p.Type {
	case LatePolicyPercentage:
		deduction = maxScore * value / 100
	case LatePolicyFixed:
		deduction = value
	default:
		return 0
	}
	capPct := orDefault(p.MaxDeduction, 100)
	if capPct > 100 {
		capPct = 100
	}
	return math.Min(deduction, maxScore*capPct/100)
}

// Apply returns the score after the late deduction, never below zero. Entries
// that are not late are returned unchanged.
func (p LatePolicy) Apply(score, maxScore float64, status Status) float64 {
	score = Normalize(score)
	if status != StatusLate {
		return score
	}
	return math.Max(0, score-p.Deduction(maxScore))
}
