package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/metrics"
	"synonym_arena/internal/store"
)

type JoinRequest struct {
	GameMode         string
	ConnectionHandle string
	DisplayName      string
	UserID           string
	AvatarRef        string
}

// MatchResult is either Waiting (Peer == nil) or Matched.
type MatchResult struct {
	Peer    *domain.QueueEntry
	Session *domain.Session
}

func (r MatchResult) Matched() bool { return r.Peer != nil }

type MatchmakingService struct {
	queue  store.QueueStore
	rounds *RoundService
	clock  clockwork.Clock
	log    *slog.Logger
}

func NewMatchmakingService(queue store.QueueStore, rounds *RoundService, clock clockwork.Clock, log *slog.Logger) *MatchmakingService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &MatchmakingService{queue: queue, rounds: rounds, clock: clock, log: log}
}

// Join pairs the caller with the oldest waiting entry of its mode, or
// queues it. A peer that was claimed by someone else in the meantime makes
// the caller wait instead; a half-made match is never reported.
func (s *MatchmakingService) Join(ctx context.Context, req JoinRequest) (MatchResult, error) {
	req.GameMode = strings.TrimSpace(req.GameMode)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.GameMode == "" || req.DisplayName == "" || req.ConnectionHandle == "" {
		return MatchResult{}, fmt.Errorf("%w: game_mode and display_name are required", ErrValidation)
	}

	entry := domain.QueueEntry{
		GameMode:         req.GameMode,
		ConnectionHandle: req.ConnectionHandle,
		DisplayName:      req.DisplayName,
		UserID:           req.UserID,
		AvatarRef:        req.AvatarRef,
		JoinedAt:         s.clock.Now().UTC(),
	}
	log := s.log.With("connection", entry.ConnectionHandle, "game_mode", entry.GameMode)

	peer, err := s.queue.Oldest(ctx, entry.GameMode)
	if err != nil {
		return MatchResult{}, err
	}
	if peer == nil {
		return s.wait(ctx, entry, "waiting", log)
	}
	if peer.ConnectionHandle == entry.ConnectionHandle {
		// already queued; a second join keeps the original place
		metrics.QueueJoins.WithLabelValues("waiting").Inc()
		return MatchResult{}, nil
	}

	claimed, err := s.queue.Claim(ctx, *peer)
	if err != nil {
		return MatchResult{}, err
	}
	if !claimed {
		return s.wait(ctx, entry, "requeued", log)
	}

	sess, err := s.rounds.StartSession(ctx, *peer, entry)
	if err != nil {
		// give the peer its place back; the caller sees the error
		if qerr := s.queue.Enqueue(ctx, *peer); qerr != nil {
			log.Error("restore peer failed", "peer", peer.ConnectionHandle, "error", qerr)
		}
		return MatchResult{}, err
	}

	// drop a stale entry of the caller left by an earlier concurrent join
	if _, err := s.queue.Claim(ctx, entry); err != nil {
		log.Warn("drop own queue entry failed", "error", err)
	}

	metrics.QueueJoins.WithLabelValues("matched").Inc()
	log.Info("matched", "peer", peer.ConnectionHandle, "game_id", sess.Meta.GameID)
	return MatchResult{Peer: peer, Session: sess}, nil
}

func (s *MatchmakingService) wait(ctx context.Context, entry domain.QueueEntry, result string, log *slog.Logger) (MatchResult, error) {
	if err := s.queue.Enqueue(ctx, entry); err != nil {
		return MatchResult{}, err
	}
	metrics.QueueJoins.WithLabelValues(result).Inc()
	log.Debug("queued", "result", result)
	return MatchResult{}, nil
}
