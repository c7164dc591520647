package service

import (
	"context"
	"log/slog"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/metrics"
	"synonym_arena/internal/store"
)

type DisconnectService struct {
	queue    store.QueueStore
	sessions store.SessionStore
	notifier Notifier
	log      *slog.Logger
}

func NewDisconnectService(queue store.QueueStore, sessions store.SessionStore, notifier Notifier, log *slog.Logger) *DisconnectService {
	if log == nil {
		log = slog.Default()
	}
	return &DisconnectService{queue: queue, sessions: sessions, notifier: notifier, log: log}
}

// HandleDisconnect removes the connection from the queue and forfeits every
// active session it plays in. The forfeit is a conditional close, so the
// remaining player is told exactly once, and a session that was closed
// first by its last round is left alone. Returns the number of forfeits.
func (s *DisconnectService) HandleDisconnect(ctx context.Context, handle string) int {
	log := s.log.With("connection", handle)

	// written before the lookups so a session created concurrently sees it
	if err := s.sessions.MarkDeparted(ctx, handle); err != nil {
		log.Error("mark departed failed", "error", err)
	}

	if n, err := s.queue.RemoveByConnection(ctx, handle); err != nil {
		log.Error("queue cleanup failed", "error", err)
	} else if n > 0 {
		log.Debug("removed from queue", "entries", n)
	}

	ids, err := s.sessions.FindActiveByConnection(ctx, handle)
	if err != nil {
		log.Error("session lookup failed", "error", err)
		return 0
	}

	forfeits := 0
	for _, id := range ids {
		if forfeit(ctx, s.sessions, s.notifier, log, id, handle) {
			forfeits++
		}
	}
	return forfeits
}

// forfeit closes gameID on behalf of handle and tells the opponent. It
// reports whether this call was the one that closed the session.
func forfeit(ctx context.Context, sessions store.SessionStore, notifier Notifier, log *slog.Logger, gameID, handle string) bool {
	ok, err := sessions.Forfeit(ctx, gameID, handle)
	if err != nil {
		log.Error("forfeit failed", "game_id", gameID, "error", err)
		return false
	}
	if !ok {
		return false
	}
	metrics.GamesEnded.WithLabelValues("forfeit").Inc()

	sess, err := sessions.Get(ctx, gameID)
	if err != nil {
		log.Error("load forfeited session failed", "game_id", gameID, "error", err)
		return true
	}
	opp, found := sess.Opponent(handle)
	if !found {
		return true
	}
	log.Info("session forfeited", "game_id", gameID, "opponent", opp.ConnectionHandle)
	push(ctx, notifier, log, opp.ConnectionHandle, domain.MsgOpponentForfeit, domain.OpponentForfeitPayload{
		Message: domain.ForfeitMessage,
	})
	return true
}
