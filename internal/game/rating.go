package game

import (
	"math"

	"synonym_arena/internal/domain"
)

const (
	minWinChange  = 25
	maxWinChange  = 40
	minLossChange = -40
	maxLossChange = -25

	baseKFactor = 40.0
	maxKFactor  = 60.0
)

// ExpectedScore is the logistic win probability of rating against other.
func ExpectedScore(rating, other int) float64 {
	return 1 / (1 + math.Pow(10, float64(other-rating)/400))
}

// KFactor grows with the rating gap and is capped at 60.
func KFactor(ratingA, ratingB int) float64 {
	gap := math.Abs(float64(ratingA - ratingB))
	return math.Min(baseKFactor*(1+gap/2000), maxKFactor)
}

// MarginMultiplier maps winner/(winner+loser) from [0.5,1.0] onto [0.85,1.25].
func MarginMultiplier(winnerScore, loserScore int) float64 {
	total := winnerScore + loserScore
	if total <= 0 {
		return 1.0
	}
	ratio := float64(winnerScore) / float64(total)
	return clamp(0.45+ratio*0.8, 0.85, 1.25)
}

// Adjust1v1 applies a finished match to both ratings. The winner's change is
// always within [25,40], the loser's within [-40,-25]; ratings never drop below 0.
func Adjust1v1(o domain.MatchOutcome) (a, b domain.RatingUpdate) {
	expectedA := ExpectedScore(o.RatingA, o.RatingB)
	expectedB := ExpectedScore(o.RatingB, o.RatingA)

	actualA, actualB := 0.0, 0.0
	winnerScore, loserScore := o.ScoreB, o.ScoreA
	if o.Winner == domain.WinnerA {
		actualA = 1
		winnerScore, loserScore = o.ScoreA, o.ScoreB
	} else {
		actualB = 1
	}

	k := KFactor(o.RatingA, o.RatingB)
	margin := MarginMultiplier(winnerScore, loserScore)

	changeA := k * (actualA - expectedA) * margin
	changeB := k * (actualB - expectedB) * margin

	if o.Winner == domain.WinnerA {
		changeA = clamp(changeA, minWinChange, maxWinChange)
		changeB = clamp(changeB, minLossChange, maxLossChange)
	} else {
		changeA = clamp(changeA, minLossChange, maxLossChange)
		changeB = clamp(changeB, minWinChange, maxWinChange)
	}

	a = applyChange(o.RatingA, changeA)
	b = applyChange(o.RatingB, changeB)
	return a, b
}

func applyChange(rating int, change float64) domain.RatingUpdate {
	c := int(math.Round(change))
	return domain.RatingUpdate{
		NewRating: max(0, rating+c),
		Change:    c,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
