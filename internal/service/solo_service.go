package service

import (
	"context"
	"fmt"
	"strings"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/game"
)

type SoloGameInput struct {
	UserID     string             `json:"-"`
	GameMode   string             `json:"game_mode"`
	RoundInfo  []domain.SoloRound `json:"round_info"`
	FinalScore int                `json:"final_score"`
}

type SoloService struct {
	games SoloStore
}

func NewSoloService(games SoloStore) *SoloService {
	return &SoloService{games: games}
}

// Record stores a finished single-player game and moves the player's solo
// rating against the baseline of its rank.
func (s *SoloService) Record(ctx context.Context, in SoloGameInput) (*domain.SoloGame, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if !strings.Contains(in.GameMode, "solo") {
		return nil, fmt.Errorf("%w: game_mode must be a solo mode", ErrValidation)
	}
	if len(in.RoundInfo) == 0 {
		return nil, fmt.Errorf("%w: round_info is required", ErrValidation)
	}
	if in.FinalScore < 0 {
		return nil, fmt.Errorf("%w: final_score must not be negative", ErrValidation)
	}

	g := &domain.SoloGame{
		UserID:     in.UserID,
		GameMode:   in.GameMode,
		Rounds:     in.RoundInfo,
		FinalScore: in.FinalScore,
	}
	mode := game.GameMode(in.GameMode)
	rate := func(rating int) domain.RatingUpdate {
		return game.AdjustSolo(rating, mode, in.FinalScore)
	}
	if err := s.games.SaveSoloGame(ctx, g, rate); err != nil {
		return nil, err
	}
	return g, nil
}
