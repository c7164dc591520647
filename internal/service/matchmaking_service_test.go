package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synonym_arena/internal/domain"
)

func TestJoinWaitsThenMatches(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.matchmaker.Join(ctx, joinReq("c1", "alice", ""))
	require.NoError(t, err)
	assert.False(t, res.Matched())

	res, err = h.matchmaker.Join(ctx, joinReq("c2", "bob", ""))
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.Equal(t, "c1", res.Peer.ConnectionHandle)
	require.NotNil(t, res.Session)
	assert.Len(t, res.Session.Meta.Words, domain.RoundsPerGame)

	oldest, err := h.queue.Oldest(ctx, "standard")
	require.NoError(t, err)
	assert.Nil(t, oldest, "neither player stays queued")

	starts := h.notifier.to("c1", domain.MsgGameStart)
	require.Len(t, starts, 1)
	p := starts[0].Payload.(domain.GameStartPayload)
	assert.Equal(t, res.Session.Meta.GameID, p.GameID)
	assert.Equal(t, "c2", p.Opponent.ConnectionHandle)
	assert.Equal(t, "bob", p.Opponent.DisplayName)
	assert.Equal(t, h.clock.Now().Add(5*time.Second).UnixMilli(), p.StartTimestamp)
	assert.Equal(t, res.Session.Meta.Words[0], p.ContentItem)

	starts = h.notifier.to("c2", domain.MsgGameStart)
	require.Len(t, starts, 1)
	assert.Equal(t, "c1", starts[0].Payload.(domain.GameStartPayload).Opponent.ConnectionHandle)
}

func TestJoinValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.matchmaker.Join(context.Background(), JoinRequest{ConnectionHandle: "c1", DisplayName: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = h.matchmaker.Join(context.Background(), JoinRequest{ConnectionHandle: "c1", GameMode: "standard", DisplayName: "  "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJoinTwiceDoesNotSelfMatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := h.matchmaker.Join(ctx, joinReq("c1", "alice", ""))
		require.NoError(t, err)
		assert.False(t, res.Matched())
	}
	assert.Zero(t, h.notifier.count(domain.MsgGameStart))
}

func TestJoinModesArePartitioned(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.matchmaker.Join(ctx, joinReq("c1", "alice", ""))
	require.NoError(t, err)

	other := joinReq("c2", "bob", "")
	other.GameMode = "blitz"
	res, err := h.matchmaker.Join(ctx, other)
	require.NoError(t, err)
	assert.False(t, res.Matched())
}

func TestJoinSkipsExpiredEntry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.matchmaker.Join(ctx, joinReq("c1", "alice", ""))
	require.NoError(t, err)
	h.clock.Advance(11 * time.Minute)

	res, err := h.matchmaker.Join(ctx, joinReq("c2", "bob", ""))
	require.NoError(t, err)
	assert.False(t, res.Matched(), "an abandoned entry is never matched")
}

func TestConcurrentJoinsClaimWaitingEntryOnce(t *testing.T) {
	for iter := 0; iter < 50; iter++ {
		h := newHarness(t)
		ctx := context.Background()

		_, err := h.matchmaker.Join(ctx, joinReq("waiting", "w", ""))
		require.NoError(t, err)

		const joiners = 6
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			matched int
			peers   = map[string]int{}
		)
		for i := 0; i < joiners; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := h.matchmaker.Join(ctx, joinReq(string(rune('a'+i)), "j", ""))
				assert.NoError(t, err)
				if res.Matched() {
					mu.Lock()
					matched++
					peers[res.Peer.ConnectionHandle]++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		// the waiting entry is used once; the rest pair among themselves
		assert.Equal(t, 1, peers["waiting"])
		assert.Equal(t, matched*2, h.notifier.count(domain.MsgGameStart))
	}
}
