package repository

import (
	"context"
	"errors"
	"fmt"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerRepository struct {
	db            *pgxpool.Pool
	defaultRating int
}

func NewPlayerRepository(db *pgxpool.Pool, defaultRating int) *PlayerRepository {
	return &PlayerRepository{db: db, defaultRating: defaultRating}
}

const selectPlayer = `SELECT user_id, display_name, avatar_ref, rating, solo_rating, created_at, updated_at
	FROM players`

func (r *PlayerRepository) GetPlayer(ctx context.Context, userID string) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, selectPlayer+` WHERE user_id = $1`, userID)

	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("player %s: %w", userID, store.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// UpsertPlayer creates the player with the default ratings or refreshes the
// profile fields of an existing one. Empty fields keep the stored value.
func (r *PlayerRepository) UpsertPlayer(ctx context.Context, p *domain.Player) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO players (user_id, display_name, avatar_ref, rating, solo_rating)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		   display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), players.display_name),
		   avatar_ref   = COALESCE(NULLIF(EXCLUDED.avatar_ref, ''), players.avatar_ref),
		   updated_at   = now()
		 RETURNING user_id, display_name, avatar_ref, rating, solo_rating, created_at, updated_at`,
		p.UserID, p.DisplayName, p.AvatarRef, r.defaultRating,
	)

	got, err := scanPlayer(row)
	if err != nil {
		return fmt.Errorf("upsert player %s: %w", p.UserID, err)
	}
	*p = *got
	return nil
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	if err := row.Scan(
		&p.UserID,
		&p.DisplayName,
		&p.AvatarRef,
		&p.Rating,
		&p.SoloRating,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// ensurePlayer inserts a bare player row inside tx when it is missing.
func ensurePlayer(ctx context.Context, tx pgx.Tx, userID, name string, defaultRating int) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO players (user_id, display_name, rating, solo_rating)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, name, defaultRating,
	)
	return err
}
