package handlers

import (
	"context"
	"log/slog"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/service"
)

// MatchHistory lists the latest matches of a player.
type MatchHistory interface {
	RecentByPlayer(ctx context.Context, userID string, limit int) ([]domain.MatchRecord, error)
}

// ChainSource serves prompts for the chains word game.
type ChainSource interface {
	Sample(ctx context.Context, n int, excludeIDs []int64) ([]domain.ChainWord, error)
}

type Handler struct {
	Words   service.ContentSource
	Chains  ChainSource
	Players service.PlayerStore
	Matches MatchHistory
	Solo    *service.SoloService
	log     *slog.Logger
}

func NewHandler(words service.ContentSource, chains ChainSource, players service.PlayerStore, matches MatchHistory, solo *service.SoloService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		Words:   words,
		Chains:  chains,
		Players: players,
		Matches: matches,
		Solo:    solo,
		log:     log,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c interface{ GetString(any) string }) (string, bool) {
	id := c.GetString("user_id")
	return id, id != ""
}
