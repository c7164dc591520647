package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"synonym_arena/internal/domain"
)

func TestAdjust1v1Bounds(t *testing.T) {
	ratings := []int{0, 30, 500, 1000, 1400, 2200, 3000}
	scores := [][2]int{{0, 0}, {1, 0}, {55, 45}, {100, 0}, {3, 12}}

	for _, ra := range ratings {
		for _, rb := range ratings {
			for _, s := range scores {
				for _, w := range []domain.Winner{domain.WinnerA, domain.WinnerB} {
					a, b := Adjust1v1(domain.MatchOutcome{
						RatingA: ra, RatingB: rb, Winner: w, ScoreA: s[0], ScoreB: s[1],
					})

					win, loss := a, b
					if w == domain.WinnerB {
						win, loss = b, a
					}
					assert.GreaterOrEqual(t, win.Change, 25)
					assert.LessOrEqual(t, win.Change, 40)
					assert.GreaterOrEqual(t, loss.Change, -40)
					assert.LessOrEqual(t, loss.Change, -25)
					assert.GreaterOrEqual(t, a.NewRating, 0)
					assert.GreaterOrEqual(t, b.NewRating, 0)
				}
			}
		}
	}
}

func TestAdjust1v1EqualRatings(t *testing.T) {
	a, b := Adjust1v1(domain.MatchOutcome{
		RatingA: 1000, RatingB: 1000, Winner: domain.WinnerA, ScoreA: 55, ScoreB: 45,
	})
	assert.Equal(t, domain.RatingUpdate{NewRating: 1025, Change: 25}, a)
	assert.Equal(t, domain.RatingUpdate{NewRating: 975, Change: -25}, b)
}

func TestAdjust1v1FloorsAtZero(t *testing.T) {
	a, b := Adjust1v1(domain.MatchOutcome{
		RatingA: 1200, RatingB: 10, Winner: domain.WinnerA, ScoreA: 20, ScoreB: 5,
	})
	assert.Equal(t, 0, b.NewRating)
	assert.Less(t, b.Change, 0)
	assert.Greater(t, a.Change, 0)
}

func TestAdjust1v1RoutBeatsNarrowWin(t *testing.T) {
	// underdog wins; the clamp floor does not hide the margin here
	narrowA, _ := Adjust1v1(domain.MatchOutcome{
		RatingA: 1000, RatingB: 1400, Winner: domain.WinnerA, ScoreA: 55, ScoreB: 45,
	})
	routA, _ := Adjust1v1(domain.MatchOutcome{
		RatingA: 1000, RatingB: 1400, Winner: domain.WinnerA, ScoreA: 100, ScoreB: 0,
	})
	assert.Greater(t, routA.Change, narrowA.Change)
}

func TestAdjust1v1WinnerSymmetry(t *testing.T) {
	a1, b1 := Adjust1v1(domain.MatchOutcome{
		RatingA: 1100, RatingB: 900, Winner: domain.WinnerA, ScoreA: 30, ScoreB: 20,
	})
	b2, a2 := Adjust1v1(domain.MatchOutcome{
		RatingA: 900, RatingB: 1100, Winner: domain.WinnerB, ScoreA: 20, ScoreB: 30,
	})
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}

func TestKFactorCapped(t *testing.T) {
	assert.InDelta(t, 40.0, KFactor(1000, 1000), 1e-9)
	assert.InDelta(t, 50.0, KFactor(1000, 1500), 1e-9)
	assert.InDelta(t, 60.0, KFactor(0, 3000), 1e-9)
}

func TestMarginMultiplier(t *testing.T) {
	assert.InDelta(t, 1.0, MarginMultiplier(0, 0), 1e-9)
	assert.InDelta(t, 0.85, MarginMultiplier(50, 50), 1e-9)
	assert.InDelta(t, 1.25, MarginMultiplier(100, 0), 1e-9)
}
