package service

import (
	"context"
	"log/slog"
	"time"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/game"
)

const saveMatchTimeout = 3 * time.Second

// RatingService writes finished matches to history and moves both ratings
// when the match is rated.
type RatingService struct {
	matches MatchStore
	log     *slog.Logger
}

func NewRatingService(matches MatchStore, log *slog.Logger) *RatingService {
	if log == nil {
		log = slog.Default()
	}
	return &RatingService{matches: matches, log: log}
}

// Rated reports whether a completed session moves ratings: both players
// must be registered and the scores must differ.
func Rated(sess *domain.Session) bool {
	a, b := sess.Players[0], sess.Players[1]
	return a.UserID != "" && b.UserID != "" && a.UserID != b.UserID && a.TotalScore != b.TotalScore
}

// ApplyCompletion stores the match and returns the rating change of each
// player, in session order. Storage errors are logged and yield no change.
func (s *RatingService) ApplyCompletion(ctx context.Context, sess *domain.Session) [2]*domain.RatingUpdate {
	a, b := sess.Players[0], sess.Players[1]
	rec := &domain.MatchRecord{
		GameID:      sess.Meta.GameID,
		GameMode:    sess.Meta.GameMode,
		PlayerAName: a.DisplayName,
		PlayerBName: b.DisplayName,
		PlayerAID:   optional(a.UserID),
		PlayerBID:   optional(b.UserID),
		ScoreA:      a.TotalScore,
		ScoreB:      b.TotalScore,
	}

	var rate domain.RatingFunc
	if Rated(sess) {
		winner := domain.WinnerA
		rec.WinnerUserID = optional(a.UserID)
		if b.TotalScore > a.TotalScore {
			winner = domain.WinnerB
			rec.WinnerUserID = optional(b.UserID)
		}
		rate = func(ratingA, ratingB int) (domain.RatingUpdate, domain.RatingUpdate) {
			return game.Adjust1v1(domain.MatchOutcome{
				RatingA: ratingA,
				RatingB: ratingB,
				Winner:  winner,
				ScoreA:  a.TotalScore,
				ScoreB:  b.TotalScore,
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveMatchTimeout)
	defer cancel()

	ua, ub, err := s.matches.SaveMatch(ctx, rec, rate)
	if err != nil {
		s.log.Error("save match failed", "game_id", rec.GameID, "error", err)
		return [2]*domain.RatingUpdate{}
	}
	return [2]*domain.RatingUpdate{ua, ub}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
