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

func TestFullGameAllRounds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))
	gameID := sess.Meta.GameID

	for round := 1; round <= domain.RoundsPerGame; round++ {
		subs := topAnswers(sess, round)

		out, err := h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{GameID: gameID, Submissions: subs})
		require.NoError(t, err)
		assert.Equal(t, FinishWaitingForOpponent, out)

		out, err = h.rounds.FinishRound(ctx, "c2", domain.FinishRoundPayload{GameID: gameID, Submissions: subs})
		require.NoError(t, err)

		if round < domain.RoundsPerGame {
			require.Equal(t, FinishNextRound, out)
			for _, c := range []string{"c1", "c2"} {
				msgs := h.notifier.to(c, domain.MsgNextRound)
				require.Len(t, msgs, round)
				p := msgs[round-1].Payload.(domain.NextRoundPayload)
				assert.Equal(t, round+1, p.RoundNumber)
				assert.Equal(t, sess.Meta.Words[round], p.ContentItem)
			}
		} else {
			require.Equal(t, FinishGameOver, out)
		}
	}

	for _, c := range []string{"c1", "c2"} {
		over := h.notifier.to(c, domain.MsgGameOver)
		require.Len(t, over, 1)
		p := over[0].Payload.(domain.GameOverPayload)
		assert.Equal(t, c, p.YourRecord.ConnectionHandle)
		assert.Equal(t, 15, p.YourRecord.TotalScore)
		assert.Equal(t, 15, p.OpponentRecord.TotalScore)
		assert.Len(t, p.YourRecord.Rounds, domain.RoundsPerGame)
		assert.Nil(t, p.YourRecord.Rating, "anonymous games are not rated")
	}

	final, err := h.sessions.Get(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, final.Meta.Status)
	assert.LessOrEqual(t, final.Meta.CurrentRound, domain.RoundsPerGame+1)

	_, err = h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{GameID: gameID})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Len(t, h.players.Matches(), 1)
}

func TestConcurrentFinishAdvancesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))
	gameID := sess.Meta.GameID

	for round := 1; round <= domain.RoundsPerGame; round++ {
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			outcomes = map[FinishOutcome]int{}
		)
		for _, c := range []string{"c1", "c2"} {
			wg.Add(1)
			go func(c string) {
				defer wg.Done()
				out, err := h.rounds.FinishRound(ctx, c, domain.FinishRoundPayload{GameID: gameID, Submissions: topAnswers(sess, round)})
				assert.NoError(t, err)
				mu.Lock()
				outcomes[out]++
				mu.Unlock()
			}(c)
		}
		wg.Wait()

		advances := outcomes[FinishNextRound] + outcomes[FinishGameOver]
		require.Equal(t, 1, advances, "round %d: %v", round, outcomes)
		assert.Equal(t, 1, outcomes[FinishWaitingForOpponent])

		cur, err := h.sessions.Get(ctx, gameID)
		require.NoError(t, err)
		assert.Equal(t, cur.Meta.FinishedCount, cur.FinishedPlayers())
	}

	assert.Equal(t, 2*(domain.RoundsPerGame-1), h.notifier.count(domain.MsgNextRound))
	assert.Equal(t, 2, h.notifier.count(domain.MsgGameOver))
}

func TestDuplicateFinishIsNoop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))
	req := domain.FinishRoundPayload{GameID: sess.Meta.GameID, Submissions: topAnswers(sess, 1)}

	out, err := h.rounds.FinishRound(ctx, "c1", req)
	require.NoError(t, err)
	assert.Equal(t, FinishWaitingForOpponent, out)

	out, err = h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{GameID: sess.Meta.GameID})
	require.NoError(t, err)
	assert.Equal(t, FinishAlreadyFinished, out)

	cur, err := h.sessions.Get(ctx, sess.Meta.GameID)
	require.NoError(t, err)
	assert.Equal(t, 1, cur.Meta.FinishedCount)
	assert.Equal(t, req.Submissions, cur.Players[0].Rounds[1], "the retry keeps the first submissions")
	assert.Zero(t, h.notifier.count(domain.MsgNextRound))
}

func TestFinishInterleavings(t *testing.T) {
	// every ordering of the four store steps of two finishing players
	type step struct {
		player string
		phase  int
	}
	orders := [][]step{
		{{"c1", 0}, {"c1", 1}, {"c2", 0}, {"c2", 1}},
		{{"c1", 0}, {"c2", 0}, {"c1", 1}, {"c2", 1}},
		{{"c1", 0}, {"c2", 0}, {"c2", 1}, {"c1", 1}},
		{{"c2", 0}, {"c1", 0}, {"c1", 1}, {"c2", 1}},
		{{"c2", 0}, {"c1", 0}, {"c2", 1}, {"c1", 1}},
		{{"c2", 0}, {"c2", 1}, {"c1", 0}, {"c1", 1}},
	}

	for _, order := range orders {
		h := newHarness(t)
		ctx := context.Background()
		sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))
		gameID := sess.Meta.GameID

		sawTwo := 0
		for _, st := range order {
			if st.phase == 0 {
				_, applied, err := h.sessions.MarkFinished(ctx, gameID, st.player, 0, topAnswers(sess, 1))
				require.NoError(t, err)
				require.True(t, applied)
				continue
			}
			count, applied, err := h.sessions.IncrementFinished(ctx, gameID)
			require.NoError(t, err)
			require.True(t, applied)
			if count == 2 {
				sawTwo++
			}
		}
		assert.Equal(t, 1, sawTwo, "order %v", order)
	}
}

func TestFinishRoundErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{GameID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))
	_, err = h.rounds.FinishRound(ctx, "intruder", domain.FinishRoundPayload{GameID: sess.Meta.GameID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRatedGameOver(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", "u1"), joinReq("c2", "bob", "u2"))
	gameID := sess.Meta.GameID

	for round := 1; round <= domain.RoundsPerGame; round++ {
		_, err := h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{GameID: gameID, Submissions: topAnswers(sess, round)})
		require.NoError(t, err)
		_, err = h.rounds.FinishRound(ctx, "c2", domain.FinishRoundPayload{GameID: gameID})
		require.NoError(t, err)
	}

	over := h.notifier.to("c1", domain.MsgGameOver)
	require.Len(t, over, 1)
	p := over[0].Payload.(domain.GameOverPayload)
	require.NotNil(t, p.YourRecord.Rating)
	require.NotNil(t, p.OpponentRecord.Rating)
	assert.Equal(t, 25, p.YourRecord.Rating.Change)
	assert.Equal(t, -25, p.OpponentRecord.Rating.Change)

	winner, err := h.players.GetPlayer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1025, winner.Rating)

	matches := h.players.Matches()
	require.Len(t, matches, 1)
	require.NotNil(t, matches[0].WinnerUserID)
	assert.Equal(t, "u1", *matches[0].WinnerUserID)
}

func TestTiedGameIsNotRated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", "u1"), joinReq("c2", "bob", "u2"))

	for round := 1; round <= domain.RoundsPerGame; round++ {
		for _, c := range []string{"c1", "c2"} {
			_, err := h.rounds.FinishRound(ctx, c, domain.FinishRoundPayload{GameID: sess.Meta.GameID, Submissions: topAnswers(sess, round)})
			require.NoError(t, err)
		}
	}

	p := h.notifier.to("c2", domain.MsgGameOver)[0].Payload.(domain.GameOverPayload)
	assert.Nil(t, p.YourRecord.Rating)
	_, err := h.players.GetPlayer(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitWordRelay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))

	require.NoError(t, h.rounds.SubmitWord(ctx, "c1", domain.SubmitWordPayload{
		OpponentConnectionHandle: "c2", AnsweredWord: "anything", PointValue: 2,
	}))
	msgs := h.notifier.to("c2", domain.MsgOpponentSubmitWord)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.OpponentSubmitWordPayload{PointValue: 2}, msgs[0].Payload)

	w := sess.Meta.Words[0]
	require.NoError(t, h.rounds.SubmitWord(ctx, "c2", domain.SubmitWordPayload{
		GameID: sess.Meta.GameID, AnsweredWord: "  " + w.StrongMatches[0] + " ", PointValue: 3,
	}))
	msgs = h.notifier.to("c1", domain.MsgOpponentSubmitWord)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.OpponentSubmitWordPayload{PointValue: 2}, msgs[0].Payload)

	require.NoError(t, h.rounds.SubmitWord(ctx, "c2", domain.SubmitWordPayload{
		GameID: sess.Meta.GameID, AnsweredWord: "definitely-not-a-synonym",
	}))
	assert.Len(t, h.notifier.to("c1", domain.MsgOpponentSubmitWord), 1)

	err := h.rounds.SubmitWord(ctx, "c1", domain.SubmitWordPayload{AnsweredWord: "x", PointValue: 1})
	assert.ErrorIs(t, err, ErrValidation)

	err = h.rounds.SubmitWord(ctx, "c1", domain.SubmitWordPayload{OpponentConnectionHandle: "c2", PointValue: 9})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPushFailureDoesNotUndoAdvance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))
	h.notifier.kill("c1")

	_, err := h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{GameID: sess.Meta.GameID})
	require.NoError(t, err)
	out, err := h.rounds.FinishRound(ctx, "c2", domain.FinishRoundPayload{GameID: sess.Meta.GameID})
	require.NoError(t, err)
	assert.Equal(t, FinishNextRound, out)

	cur, err := h.sessions.Get(ctx, sess.Meta.GameID)
	require.NoError(t, err)
	assert.Equal(t, 2, cur.Meta.CurrentRound)
	assert.Len(t, h.notifier.to("c2", domain.MsgNextRound), 1)
}

func TestNextRoundTimestampUsesClock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))

	h.clock.Advance(40 * time.Second)
	for _, c := range []string{"c1", "c2"} {
		_, err := h.rounds.FinishRound(ctx, c, domain.FinishRoundPayload{GameID: sess.Meta.GameID})
		require.NoError(t, err)
	}
	p := h.notifier.to("c1", domain.MsgNextRound)[0].Payload.(domain.NextRoundPayload)
	assert.Equal(t, h.clock.Now().Add(5*time.Second).UnixMilli(), p.StartTimestamp)
}

func TestLateFinishForPreviousRoundIsIgnored(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.match(t, joinReq("c1", "alice", ""), joinReq("c2", "bob", ""))
	gameID := sess.Meta.GameID

	for _, c := range []string{"c1", "c2"} {
		_, err := h.rounds.FinishRound(ctx, c, domain.FinishRoundPayload{GameID: gameID, RoundNumber: 1, Submissions: topAnswers(sess, 1)})
		require.NoError(t, err)
	}

	out, err := h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{GameID: gameID, RoundNumber: 1, Submissions: topAnswers(sess, 1)})
	require.NoError(t, err)
	assert.Equal(t, FinishAlreadyFinished, out)

	cur, err := h.sessions.Get(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, 2, cur.Meta.CurrentRound)
	assert.Equal(t, 0, cur.Meta.FinishedCount)

	subs := topAnswers(sess, 2)
	out, err = h.rounds.FinishRound(ctx, "c1", domain.FinishRoundPayload{GameID: gameID, RoundNumber: 2, Submissions: subs})
	require.NoError(t, err)
	assert.Equal(t, FinishWaitingForOpponent, out)

	cur, err = h.sessions.Get(ctx, gameID)
	require.NoError(t, err)
	p, ok := cur.Player("c1")
	require.True(t, ok)
	assert.Equal(t, subs, p.Rounds[2])
}
