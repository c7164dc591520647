package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/game"
	"synonym_arena/internal/logger"
	"synonym_arena/internal/migrations"
	"synonym_arena/internal/repository"
	"synonym_arena/internal/store"
)

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	m, err := migrations.New(dsn, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

func TestWordRepository_Sample(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewWordRepository(db)
	ctx := t.Context()

	words, err := repo.Sample(ctx, 5, nil)
	require.NoError(t, err)
	require.Len(t, words, 5)

	seen := make(map[int64]bool)
	var exclude []int64
	for _, w := range words {
		assert.False(t, seen[w.WordID], "duplicate word %d", w.WordID)
		seen[w.WordID] = true
		assert.NotEmpty(t, w.StrongestMatches)
		exclude = append(exclude, w.WordID)
	}

	rest, err := repo.Sample(ctx, 3, exclude)
	require.NoError(t, err)
	for _, w := range rest {
		assert.False(t, seen[w.WordID], "excluded word %d returned", w.WordID)
	}

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	_, err = repo.Sample(ctx, total+1, nil)
	assert.ErrorIs(t, err, game.ErrNotEnoughWords)
}

func TestChainRepository_Sample(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewChainRepository(db)
	ctx := t.Context()

	chains, err := repo.Sample(ctx, 3, nil)
	require.NoError(t, err)
	require.Len(t, chains, 3)

	var exclude []int64
	for _, cw := range chains {
		assert.NotEmpty(t, cw.FirstChain)
		assert.NotEmpty(t, cw.Links, "links decoded from jsonb")
		exclude = append(exclude, cw.WordID)
	}

	rest, err := repo.Sample(ctx, 2, exclude)
	require.NoError(t, err)
	for _, cw := range rest {
		assert.NotContains(t, exclude, cw.WordID)
	}

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	_, err = repo.Sample(ctx, total+1, nil)
	assert.ErrorIs(t, err, game.ErrNotEnoughWords)
}

func TestPlayerRepository_Upsert(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewPlayerRepository(db, 1000)
	ctx := t.Context()
	id := uniqueID("player")

	_, err := repo.GetPlayer(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	p := &domain.Player{UserID: id, DisplayName: "Ann"}
	require.NoError(t, repo.UpsertPlayer(ctx, p))
	assert.Equal(t, 1000, p.Rating)
	assert.Equal(t, 1000, p.SoloRating)

	p2 := &domain.Player{UserID: id, AvatarRef: "cat.png"}
	require.NoError(t, repo.UpsertPlayer(ctx, p2))
	assert.Equal(t, "Ann", p2.DisplayName)
	assert.Equal(t, "cat.png", p2.AvatarRef)

	got, err := repo.GetPlayer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cat.png", got.AvatarRef)
}

func TestMatchRepository_SaveRated(t *testing.T) {
	db := setupDB(t)
	players := repository.NewPlayerRepository(db, 1000)
	matches := repository.NewMatchRepository(db, 1000)
	ctx := t.Context()

	a, b := uniqueID("a"), uniqueID("b")
	rec := &domain.MatchRecord{
		GameID:       uuid.NewString(),
		GameMode:     "synonyms",
		PlayerAName:  "Ann",
		PlayerBName:  "Bob",
		PlayerAID:    &a,
		PlayerBID:    &b,
		ScoreA:       12,
		ScoreB:       4,
		WinnerUserID: &a,
	}
	rate := func(ra, rb int) (domain.RatingUpdate, domain.RatingUpdate) {
		return game.Adjust1v1(domain.MatchOutcome{RatingA: ra, RatingB: rb, Winner: domain.WinnerA, ScoreA: 12, ScoreB: 4})
	}

	ua, ub, err := matches.SaveMatch(ctx, rec, rate)
	require.NoError(t, err)
	require.NotNil(t, ua)
	require.NotNil(t, ub)
	assert.Positive(t, ua.Change)
	assert.Negative(t, ub.Change)
	assert.NotZero(t, rec.ID)

	pa, err := players.GetPlayer(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, ua.NewRating, pa.Rating)
	pb, err := players.GetPlayer(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, ub.NewRating, pb.Rating)

	_, _, err = matches.SaveMatch(ctx, rec, rate)
	assert.ErrorIs(t, err, repository.ErrDuplicateMatch)

	pa2, err := players.GetPlayer(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, pa.Rating, pa2.Rating, "duplicate save must not move ratings")

	recent, err := matches.RecentByPlayer(ctx, a, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, rec.GameID, recent[0].GameID)
}

func TestMatchRepository_SaveAnonymous(t *testing.T) {
	db := setupDB(t)
	matches := repository.NewMatchRepository(db, 1000)

	rec := &domain.MatchRecord{
		GameID:      uuid.NewString(),
		GameMode:    "synonyms",
		PlayerAName: "guest-1",
		PlayerBName: "guest-2",
		ScoreA:      3,
		ScoreB:      3,
	}
	ua, ub, err := matches.SaveMatch(t.Context(), rec, nil)
	require.NoError(t, err)
	assert.Nil(t, ua)
	assert.Nil(t, ub)
	assert.WithinDuration(t, time.Now(), rec.CreatedAt, time.Minute)
}

func TestSoloGameRepository_Save(t *testing.T) {
	db := setupDB(t)
	players := repository.NewPlayerRepository(db, 1000)
	solo := repository.NewSoloGameRepository(db, 1000)
	ctx := t.Context()
	id := uniqueID("solo")

	g := &domain.SoloGame{
		UserID:     id,
		GameMode:   "synonyms-solo",
		Rounds:     []domain.SoloRound{{Word: "happy", Score: 30}, {Word: "fast", Score: 30}},
		FinalScore: 60,
	}
	rate := func(r int) domain.RatingUpdate { return game.AdjustSolo(r, game.ModeSoloSynon, 60) }
	require.NoError(t, solo.SaveSoloGame(ctx, g, rate))

	assert.Equal(t, 1000, g.RatingBefore)
	assert.Equal(t, 1013, g.RatingAfter)
	assert.Equal(t, 13, g.RatingChange)

	p, err := players.GetPlayer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1013, p.SoloRating)
	assert.Equal(t, 1000, p.Rating)
}
