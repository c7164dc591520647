package service

import (
	"context"
	"errors"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/store"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = store.ErrNotFound
	ErrSessionClosed = store.ErrSessionClosed
)

// Notifier pushes one message to a connection. Delivery is best effort.
type Notifier interface {
	Send(ctx context.Context, handle, msgType string, payload any) error
}

// ContentSource draws distinct words for a session.
type ContentSource interface {
	Sample(ctx context.Context, n int, excludeIDs []int64) ([]domain.Word, error)
}

// MatchStore persists finished matches and applies rating changes in the
// same write. rate is nil when ratings must stay unchanged.
type MatchStore interface {
	SaveMatch(ctx context.Context, rec *domain.MatchRecord, rate domain.RatingFunc) (a, b *domain.RatingUpdate, err error)
}

type PlayerStore interface {
	GetPlayer(ctx context.Context, userID string) (*domain.Player, error)
	UpsertPlayer(ctx context.Context, p *domain.Player) error
}

type SoloStore interface {
	SaveSoloGame(ctx context.Context, g *domain.SoloGame, rate domain.SoloRatingFunc) error
}
