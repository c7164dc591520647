package repository

import (
	"context"
	"encoding/json"

	"synonym_arena/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SoloGameRepository struct {
	db            *pgxpool.Pool
	defaultRating int
}

func NewSoloGameRepository(db *pgxpool.Pool, defaultRating int) *SoloGameRepository {
	return &SoloGameRepository{db: db, defaultRating: defaultRating}
}

// SaveSoloGame stores the game and moves the player's solo rating in one
// transaction.
func (r *SoloGameRepository) SaveSoloGame(ctx context.Context, g *domain.SoloGame, rate domain.SoloRatingFunc) error {
	roundsJSON, err := json.Marshal(g.Rounds)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := ensurePlayer(ctx, tx, g.UserID, "", r.defaultRating); err != nil {
		return err
	}

	var before int
	if err := tx.QueryRow(ctx,
		`SELECT solo_rating FROM players WHERE user_id = $1 FOR UPDATE`,
		g.UserID,
	).Scan(&before); err != nil {
		return err
	}

	upd := rate(before)
	if _, err := tx.Exec(ctx,
		`UPDATE players SET solo_rating = $2, updated_at = now() WHERE user_id = $1`,
		g.UserID, upd.NewRating,
	); err != nil {
		return err
	}

	g.RatingBefore = before
	g.RatingAfter = upd.NewRating
	g.RatingChange = upd.Change

	err = tx.QueryRow(ctx,
		`INSERT INTO solo_games (user_id, game_mode, rounds, final_score, rating_before, rating_after, rating_change)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		g.UserID, g.GameMode, roundsJSON, g.FinalScore, g.RatingBefore, g.RatingAfter, g.RatingChange,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
