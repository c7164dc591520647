package game

import (
	"math"

	"synonym_arena/internal/domain"
)

type Rank string

const (
	RankBronze   Rank = "bronze"
	RankSilver   Rank = "silver"
	RankGold     Rank = "gold"
	RankDiamond  Rank = "diamond"
	RankMaster   Rank = "master"
	RankChampion Rank = "champion"
)

const (
	minSoloChange = -30
	maxSoloChange = 30

	soloBaseKFactor = 32.0

	// fallback when a mode or rank has no baseline
	defaultBaseline = 100
)

// baselineScores is the expected total score per rank for each solo mode.
var baselineScores = map[GameMode]map[Rank]int{
	ModeSoloSynon: {
		RankBronze:   10,
		RankSilver:   20,
		RankGold:     40,
		RankDiamond:  60,
		RankMaster:   80,
		RankChampion: 100,
	},
}

func RankFor(rating int) Rank {
	switch {
	case rating >= 2500:
		return RankChampion
	case rating >= 2000:
		return RankMaster
	case rating >= 1500:
		return RankDiamond
	case rating >= 1000:
		return RankGold
	case rating >= 500:
		return RankSilver
	default:
		return RankBronze
	}
}

func BaselineScore(mode GameMode, rank Rank) int {
	if byRank, ok := baselineScores[mode]; ok {
		if v, ok := byRank[rank]; ok {
			return v
		}
	}
	return defaultBaseline
}

// IsSoloMode reports whether mode has a baseline table.
func IsSoloMode(mode GameMode) bool {
	_, ok := baselineScores[mode]
	return ok
}

// AdjustSolo rates a single-player game against the baseline of the
// player's current rank. Volatility shrinks as rating grows.
func AdjustSolo(rating int, mode GameMode, totalScore int) domain.RatingUpdate {
	baseline := BaselineScore(mode, RankFor(rating))

	performance := 1.0
	if baseline != 0 {
		performance = float64(totalScore) / float64(baseline)
	}

	k := soloBaseKFactor * math.Max(0.7, 1-float64(rating)/5000)
	change := clamp((performance-1)*k, minSoloChange, maxSoloChange)

	return applyChange(rating, change)
}
