package domain

import "math"

// basePoints is the per-question value for each difficulty tier.
var basePoints = map[Difficulty]int{
	DifficultyEasy:   10,
	DifficultyMedium: 20,
	DifficultyHard:   30,
}

// BasePoints returns the per-question value for a difficulty, defaulting to
// the easy tier for unknown values.
func BasePoints(d Difficulty) int {
	if p, ok := basePoints[d]; ok {
		return p
	}
	return basePoints[DifficultyEasy]
}

// PointsEarned scales the per-question base value by the fraction of correct
// answers across all questions: round(score/total * base * total).
func PointsEarned(score, total int, d Difficulty) int {
	if total <= 0 {
		return 0
	}
	ratio := float64(score) / float64(total)
	return int(math.Round(ratio * float64(BasePoints(d)) * float64(total)))
}
