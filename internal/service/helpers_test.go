package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/game"
	"synonym_arena/internal/logger"
	"synonym_arena/internal/store"
)

type sentMessage struct {
	Handle  string
	Type    string
	Payload any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	dead map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{dead: make(map[string]bool)}
}

func (n *fakeNotifier) Send(_ context.Context, handle, msgType string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.dead[handle] {
		return errors.New("gone")
	}
	n.sent = append(n.sent, sentMessage{Handle: handle, Type: msgType, Payload: payload})
	return nil
}

func (n *fakeNotifier) kill(handle string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dead[handle] = true
}

func (n *fakeNotifier) to(handle, msgType string) []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentMessage
	for _, m := range n.sent {
		if m.Handle == handle && m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (n *fakeNotifier) count(msgType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.sent {
		if m.Type == msgType {
			c++
		}
	}
	return c
}

type harness struct {
	clock      *clockwork.FakeClock
	queue      *store.MemoryQueue
	sessions   *store.MemorySessionStore
	players    *store.MemoryPlayers
	notifier   *fakeNotifier
	rounds     *RoundService
	matchmaker *MatchmakingService
	disconnect *DisconnectService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	words, err := game.LoadSeedWords()
	require.NoError(t, err)

	h := &harness{
		clock:    clockwork.NewFakeClock(),
		notifier: newFakeNotifier(),
	}
	h.queue = store.NewMemoryQueue(h.clock, 10*time.Minute)
	h.sessions = store.NewMemorySessionStore(h.clock, 30*time.Minute)
	h.players = store.NewMemoryPlayers(h.clock, 1000)

	log := logger.Discard()
	h.rounds = NewRoundService(RoundServiceConfig{
		Sessions:   h.sessions,
		Content:    words,
		Notifier:   h.notifier,
		Ratings:    NewRatingService(h.players, log),
		Clock:      h.clock,
		StartDelay: 5 * time.Second,
		Logger:     log,
	})
	h.matchmaker = NewMatchmakingService(h.queue, h.rounds, h.clock, log)
	h.disconnect = NewDisconnectService(h.queue, h.sessions, h.notifier, log)
	return h
}

// match queues a then joins b and returns the created session.
func (h *harness) match(t *testing.T, a, b JoinRequest) *domain.Session {
	t.Helper()
	ctx := context.Background()

	res, err := h.matchmaker.Join(ctx, a)
	require.NoError(t, err)
	require.False(t, res.Matched())

	res, err = h.matchmaker.Join(ctx, b)
	require.NoError(t, err)
	require.True(t, res.Matched())
	return res.Session
}

func joinReq(handle, name, userID string) JoinRequest {
	return JoinRequest{GameMode: "standard", ConnectionHandle: handle, DisplayName: name, UserID: userID}
}

// topAnswers submits one strongest answer for the given round's word.
func topAnswers(sess *domain.Session, round int) []domain.Submission {
	w, _ := sess.Meta.Word(round)
	return []domain.Submission{{Word: w.StrongestMatches[0], PointValue: game.PointsStrongest}}
}
