package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/logger"
	"synonym_arena/internal/store"
)

func TestDisconnectMidRoundForfeitsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", "u1"), joinReq("c2", "bob", "u2"))
	gameID := sess.Meta.GameID

	_, err := h.rounds.FinishRound(ctx, "c2", domain.FinishRoundPayload{GameID: gameID, Submissions: topAnswers(sess, 1)})
	require.NoError(t, err)

	assert.Equal(t, 1, h.disconnect.HandleDisconnect(ctx, "c1"))
	assert.Equal(t, 0, h.disconnect.HandleDisconnect(ctx, "c1"))

	forfeits := h.notifier.to("c2", domain.MsgOpponentForfeit)
	require.Len(t, forfeits, 1)
	assert.Equal(t, domain.OpponentForfeitPayload{Message: domain.ForfeitMessage}, forfeits[0].Payload)

	// the survivor leaving later does not notify anyone
	assert.Equal(t, 0, h.disconnect.HandleDisconnect(ctx, "c2"))
	assert.Empty(t, h.notifier.to("c1", domain.MsgOpponentForfeit))

	// a finish that arrives after the forfeit cannot move the session
	_, err = h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{GameID: gameID})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Zero(t, h.notifier.count(domain.MsgNextRound))
	assert.Zero(t, h.notifier.count(domain.MsgGameOver))

	cur, err := h.sessions.Get(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, cur.Meta.Status)
	assert.Equal(t, "c1", cur.Meta.ForfeitedBy)

	_, err = h.players.GetPlayer(ctx, "u2")
	assert.ErrorIs(t, err, ErrNotFound, "forfeits do not touch ratings")
}

func TestDisconnectWhileQueued(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.matchmaker.Join(ctx, joinReq("c1", "alice", ""))
	require.NoError(t, err)
	require.False(t, res.Matched())

	assert.Equal(t, 0, h.disconnect.HandleDisconnect(ctx, "c1"))

	res, err = h.matchmaker.Join(ctx, joinReq("c2", "bob", ""))
	require.NoError(t, err)
	assert.False(t, res.Matched(), "a departed player is never matched")
}

func TestDisconnectAfterGameOver(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))

	for round := 1; round <= domain.RoundsPerGame; round++ {
		for _, c := range []string{"c1", "c2"} {
			_, err := h.rounds.FinishRound(ctx, c, domain.FinishRoundPayload{GameID: sess.Meta.GameID})
			require.NoError(t, err)
		}
	}

	assert.Equal(t, 0, h.disconnect.HandleDisconnect(ctx, "c1"))
	assert.Zero(t, h.notifier.count(domain.MsgOpponentForfeit))
}

// leaveOnClaim runs onClaim right after the given handle's entry is claimed,
// before the matchmaker gets to create the session.
type leaveOnClaim struct {
	*store.MemoryQueue
	handle  string
	onClaim func()
}

func (q *leaveOnClaim) Claim(ctx context.Context, entry domain.QueueEntry) (bool, error) {
	ok, err := q.MemoryQueue.Claim(ctx, entry)
	if ok && entry.ConnectionHandle == q.handle && q.onClaim != nil {
		q.onClaim()
		q.onClaim = nil
	}
	return ok, err
}

func TestPeerLeavingBeforeSessionCreateIsForfeited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cleanups := -1
	queue := &leaveOnClaim{MemoryQueue: h.queue, handle: "c1", onClaim: func() {
		h.notifier.kill("c1")
		cleanups = h.disconnect.HandleDisconnect(ctx, "c1")
	}}
	matchmaker := NewMatchmakingService(queue, h.rounds, h.clock, logger.Discard())

	res, err := matchmaker.Join(ctx, joinReq("c1", "alice", ""))
	require.NoError(t, err)
	require.False(t, res.Matched())

	res, err = matchmaker.Join(ctx, joinReq("c2", "bob", ""))
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.Equal(t, 0, cleanups, "the cleanup ran before the session existed")

	forfeits := h.notifier.to("c2", domain.MsgOpponentForfeit)
	require.Len(t, forfeits, 1)
	assert.Equal(t, domain.OpponentForfeitPayload{Message: domain.ForfeitMessage}, forfeits[0].Payload)

	cur, err := h.sessions.Get(ctx, res.Session.Meta.GameID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, cur.Meta.Status)
	assert.Equal(t, "c1", cur.Meta.ForfeitedBy)

	_, err = h.rounds.FinishRound(ctx, "c2", domain.FinishRoundPayload{GameID: res.Session.Meta.GameID})
	assert.ErrorIs(t, err, ErrSessionClosed)

	// the survivor can queue again and is not paired with the departed player
	res, err = matchmaker.Join(ctx, joinReq("c2", "bob", ""))
	require.NoError(t, err)
	assert.False(t, res.Matched())
}
