package game

import (
	"strings"

	"synonym_arena/internal/domain"
)

// PointsMap maps every accepted answer of w (lower-cased) to its tier value.
// An answer listed in several tiers keeps the highest value.
func PointsMap(w domain.Word) map[string]int {
	m := make(map[string]int, len(w.StrongestMatches)+len(w.StrongMatches)+len(w.WeakMatches))
	add := func(answers []string, points int) {
		for _, a := range answers {
			key := normalize(a)
			if key == "" {
				continue
			}
			if points > m[key] {
				m[key] = points
			}
		}
	}
	add(w.StrongestMatches, PointsStrongest)
	add(w.StrongMatches, PointsStrong)
	add(w.WeakMatches, PointsWeak)
	return m
}

// ScoreAnswer returns the point value of answer for w, or false when the
// answer is not in any tier.
func ScoreAnswer(w domain.Word, answer string) (int, bool) {
	key := normalize(answer)
	if key == "" {
		return 0, false
	}
	points, ok := PointsMap(w)[key]
	return points, ok
}

// RoundScore sums submission point values.
func RoundScore(subs []domain.Submission) int {
	total := 0
	for _, s := range subs {
		total += s.PointValue
	}
	return total
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
