package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/game"
	"synonym_arena/internal/metrics"
	"synonym_arena/internal/store"
)

// FinishOutcome is what a finish_round call resolved to.
type FinishOutcome string

const (
	FinishAlreadyFinished    FinishOutcome = "already_finished"
	FinishWaitingForOpponent FinishOutcome = "waiting_for_opponent"
	FinishNextRound          FinishOutcome = "next_round"
	FinishGameOver           FinishOutcome = "game_over"
)

// DefaultStartDelay is how far ahead of now a round's shared start is set.
const DefaultStartDelay = 5 * time.Second

// RoundService drives a session from creation to its last round. It keeps
// no per-session memory: every decision is taken from a conditional write
// in the session store.
type RoundService struct {
	sessions   store.SessionStore
	content    ContentSource
	notifier   Notifier
	ratings    *RatingService
	clock      clockwork.Clock
	startDelay time.Duration
	log        *slog.Logger
}

type RoundServiceConfig struct {
	Sessions   store.SessionStore
	Content    ContentSource
	Notifier   Notifier
	Ratings    *RatingService
	Clock      clockwork.Clock
	StartDelay time.Duration
	Logger     *slog.Logger
}

func NewRoundService(cfg RoundServiceConfig) *RoundService {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.StartDelay <= 0 {
		cfg.StartDelay = DefaultStartDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &RoundService{
		sessions:   cfg.Sessions,
		content:    cfg.Content,
		notifier:   cfg.Notifier,
		ratings:    cfg.Ratings,
		clock:      cfg.Clock,
		startDelay: cfg.StartDelay,
		log:        cfg.Logger,
	}
}

func (s *RoundService) startTimestamp() int64 {
	return s.clock.Now().Add(s.startDelay).UnixMilli()
}

// StartSession creates the session for a freshly matched pair and announces
// it to both players. a is the player who waited in the queue.
func (s *RoundService) StartSession(ctx context.Context, a, b domain.QueueEntry) (*domain.Session, error) {
	words, err := s.content.Sample(ctx, domain.RoundsPerGame, nil)
	if err != nil {
		return nil, fmt.Errorf("sample words: %w", err)
	}
	if len(words) != domain.RoundsPerGame {
		return nil, fmt.Errorf("sample words: got %d, want %d", len(words), domain.RoundsPerGame)
	}

	gameID := uuid.NewString()
	player := func(e domain.QueueEntry) domain.PlayerState {
		return domain.PlayerState{
			GameID:           gameID,
			ConnectionHandle: e.ConnectionHandle,
			UserID:           e.UserID,
			DisplayName:      e.DisplayName,
			AvatarRef:        e.AvatarRef,
			RoundStatus:      domain.RoundInProgress,
			Rounds:           map[int][]domain.Submission{},
			Status:           domain.SessionActive,
		}
	}
	sess := domain.Session{
		Meta: domain.SessionMeta{
			GameID:       gameID,
			GameMode:     a.GameMode,
			CurrentRound: 1,
			Words:        words,
			Status:       domain.SessionActive,
			CreatedAt:    s.clock.Now().UTC(),
		},
		Players: [2]domain.PlayerState{player(a), player(b)},
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	metrics.SessionsCreated.Inc()

	startAt := s.startTimestamp()
	s.log.Info("session created", "game_id", gameID, "player_a", a.ConnectionHandle, "player_b", b.ConnectionHandle)

	push(ctx, s.notifier, s.log, a.ConnectionHandle, domain.MsgGameStart, domain.GameStartPayload{
		GameID:         gameID,
		StartTimestamp: startAt,
		ContentItem:    words[0],
		Opponent:       b.AsOpponent(),
	})
	push(ctx, s.notifier, s.log, b.ConnectionHandle, domain.MsgGameStart, domain.GameStartPayload{
		GameID:         gameID,
		StartTimestamp: startAt,
		ContentItem:    words[0],
		Opponent:       a.AsOpponent(),
	})

	// A player whose connection closed between the claim and the create
	// was not found by its disconnect cleanup; close the session for it.
	for _, e := range [2]domain.QueueEntry{a, b} {
		gone, err := s.sessions.Departed(ctx, e.ConnectionHandle)
		if err != nil {
			s.log.Error("departure check failed", "game_id", gameID, "connection", e.ConnectionHandle, "error", err)
			continue
		}
		if gone {
			forfeit(ctx, s.sessions, s.notifier, s.log.With("connection", e.ConnectionHandle), gameID, e.ConnectionHandle)
		}
	}
	return &sess, nil
}

// SubmitWord relays a scored answer to the opponent. With a game id the
// answer is scored here against the current round's word and unknown
// answers are dropped; without one the client's point value is relayed.
func (s *RoundService) SubmitWord(ctx context.Context, from string, p domain.SubmitWordPayload) error {
	target := p.OpponentConnectionHandle
	points := p.PointValue

	if p.GameID != "" {
		sess, err := s.sessions.Get(ctx, p.GameID)
		if err != nil {
			return err
		}
		if sess.Meta.Status != domain.SessionActive {
			return ErrSessionClosed
		}
		opp, ok := sess.Opponent(from)
		if !ok {
			return fmt.Errorf("%w: not a participant of %s", ErrValidation, p.GameID)
		}
		word, ok := sess.Meta.Word(sess.Meta.CurrentRound)
		if !ok {
			return ErrSessionClosed
		}
		scored, ok := game.ScoreAnswer(word, p.AnsweredWord)
		if !ok {
			return nil
		}
		target, points = opp.ConnectionHandle, scored
	}

	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("%w: opponent_connection_handle is required", ErrValidation)
	}
	if points < 0 || points > game.PointsStrongest {
		return fmt.Errorf("%w: point_value out of range", ErrValidation)
	}

	push(ctx, s.notifier, s.log, target, domain.MsgOpponentSubmitWord, domain.OpponentSubmitWordPayload{PointValue: points})
	return nil
}

// FinishRound records the caller's round and, if the caller is the second
// to finish, advances the session or ends it.
func (s *RoundService) FinishRound(ctx context.Context, from string, p domain.FinishRoundPayload) (FinishOutcome, error) {
	if strings.TrimSpace(p.GameID) == "" {
		return "", fmt.Errorf("%w: game_id is required", ErrValidation)
	}
	log := s.log.With("game_id", p.GameID, "connection", from)

	round, applied, err := s.sessions.MarkFinished(ctx, p.GameID, from, p.RoundNumber, p.Submissions)
	if err != nil {
		if errors.Is(err, store.ErrNotPlayer) {
			return "", fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return "", err
	}
	if !applied {
		metrics.FinishOutcomes.WithLabelValues(string(FinishAlreadyFinished)).Inc()
		return FinishAlreadyFinished, nil
	}

	count, applied, err := s.sessions.IncrementFinished(ctx, p.GameID)
	if err != nil {
		return "", err
	}
	if !applied {
		// counter already saturated; never advance from a failed increment
		log.Warn("finished counter saturated", "round", round, "count", count)
		metrics.FinishOutcomes.WithLabelValues(string(FinishWaitingForOpponent)).Inc()
		return FinishWaitingForOpponent, nil
	}
	if count < 2 {
		metrics.FinishOutcomes.WithLabelValues(string(FinishWaitingForOpponent)).Inc()
		return FinishWaitingForOpponent, nil
	}

	sess, err := s.sessions.Get(ctx, p.GameID)
	if err != nil {
		return "", err
	}
	if round >= domain.RoundsPerGame {
		if err := s.endGame(ctx, sess, log); err != nil {
			return "", err
		}
		metrics.FinishOutcomes.WithLabelValues(string(FinishGameOver)).Inc()
		return FinishGameOver, nil
	}
	if err := s.advance(ctx, sess, round, log); err != nil {
		return "", err
	}
	metrics.FinishOutcomes.WithLabelValues(string(FinishNextRound)).Inc()
	return FinishNextRound, nil
}

func (s *RoundService) advance(ctx context.Context, sess *domain.Session, round int, log *slog.Logger) error {
	ok, err := s.sessions.AdvanceRound(ctx, sess.Meta.GameID, round)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionClosed
	}
	metrics.RoundsAdvanced.Inc()

	next := round + 1
	word, _ := sess.Meta.Word(next)
	payload := domain.NextRoundPayload{
		RoundNumber:    next,
		ContentItem:    word,
		StartTimestamp: s.startTimestamp(),
	}
	log.Info("round advanced", "round", next)
	for _, p := range sess.Players {
		push(ctx, s.notifier, log, p.ConnectionHandle, domain.MsgNextRound, payload)
	}
	return nil
}

func (s *RoundService) endGame(ctx context.Context, sess *domain.Session, log *slog.Logger) error {
	totals := make(map[string]int, len(sess.Players))
	for i := range sess.Players {
		p := &sess.Players[i]
		p.TotalScore = p.Score()
		totals[p.ConnectionHandle] = p.TotalScore
	}

	ok, err := s.sessions.Complete(ctx, sess.Meta.GameID, totals)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionClosed
	}
	metrics.GamesEnded.WithLabelValues("completed").Inc()

	var updates [2]*domain.RatingUpdate
	if s.ratings != nil {
		updates = s.ratings.ApplyCompletion(ctx, sess)
	}

	records := [2]domain.GameRecord{}
	for i, p := range sess.Players {
		p.Status = domain.SessionCompleted
		p.RoundStatus = domain.RoundFinished
		records[i] = domain.GameRecord{PlayerState: p, Rating: updates[i]}
	}

	log.Info("game over",
		"score_a", records[0].TotalScore,
		"score_b", records[1].TotalScore,
	)
	push(ctx, s.notifier, log, records[0].ConnectionHandle, domain.MsgGameOver, domain.GameOverPayload{
		YourRecord:     records[0],
		OpponentRecord: records[1],
	})
	push(ctx, s.notifier, log, records[1].ConnectionHandle, domain.MsgGameOver, domain.GameOverPayload{
		YourRecord:     records[1],
		OpponentRecord: records[0],
	})
	return nil
}
