package repository

import (
	"context"
	"errors"
	"fmt"

	"synonym_arena/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateMatch = errors.New("match already recorded")

type MatchRepository struct {
	db            *pgxpool.Pool
	defaultRating int
}

func NewMatchRepository(db *pgxpool.Pool, defaultRating int) *MatchRepository {
	return &MatchRepository{db: db, defaultRating: defaultRating}
}

// SaveMatch writes the match to history. When rate is set both player rows
// are locked and updated in the same transaction.
func (r *MatchRepository) SaveMatch(ctx context.Context, rec *domain.MatchRecord, rate domain.RatingFunc) (*domain.RatingUpdate, *domain.RatingUpdate, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if rec.PlayerAID != nil {
		if err := ensurePlayer(ctx, tx, *rec.PlayerAID, rec.PlayerAName, r.defaultRating); err != nil {
			return nil, nil, err
		}
	}
	if rec.PlayerBID != nil {
		if err := ensurePlayer(ctx, tx, *rec.PlayerBID, rec.PlayerBName, r.defaultRating); err != nil {
			return nil, nil, err
		}
	}

	var ua, ub *domain.RatingUpdate
	if rate != nil {
		if rec.PlayerAID == nil || rec.PlayerBID == nil {
			return nil, nil, fmt.Errorf("rated match %s needs both user ids", rec.GameID)
		}
		ratings, err := lockRatings(ctx, tx, *rec.PlayerAID, *rec.PlayerBID)
		if err != nil {
			return nil, nil, err
		}
		a, b := rate(ratings[*rec.PlayerAID], ratings[*rec.PlayerBID])
		for id, rating := range map[string]int{*rec.PlayerAID: a.NewRating, *rec.PlayerBID: b.NewRating} {
			if _, err := tx.Exec(ctx,
				`UPDATE players SET rating = $2, updated_at = now() WHERE user_id = $1`,
				id, rating,
			); err != nil {
				return nil, nil, err
			}
		}
		ua, ub = &a, &b
	}

	var changeA, changeB *int
	if ua != nil {
		changeA, changeB = &ua.Change, &ub.Change
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO match_history (game_id, game_mode, player_a_name, player_b_name,
		   player_a_user_id, player_b_user_id, score_a, score_b, winner_user_id,
		   rating_change_a, rating_change_b)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (game_id) DO NOTHING
		 RETURNING id, created_at`,
		rec.GameID, rec.GameMode, rec.PlayerAName, rec.PlayerBName,
		rec.PlayerAID, rec.PlayerBID, rec.ScoreA, rec.ScoreB, rec.WinnerUserID,
		changeA, changeB,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("game %s: %w", rec.GameID, ErrDuplicateMatch)
		}
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return ua, ub, nil
}

// lockRatings locks both rows in user_id order so concurrent matches between
// the same players cannot deadlock.
func lockRatings(ctx context.Context, tx pgx.Tx, a, b string) (map[string]int, error) {
	rows, err := tx.Query(ctx,
		`SELECT user_id, rating FROM players
		 WHERE user_id = ANY($1)
		 ORDER BY user_id
		 FOR UPDATE`,
		[]string{a, b},
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make(map[string]int, 2)
	for rows.Next() {
		var id string
		var rating int
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		ratings[id] = rating
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ratings) != 2 {
		return nil, fmt.Errorf("lock ratings: expected 2 players, got %d", len(ratings))
	}
	return ratings, nil
}

// RecentByPlayer returns the latest matches a player took part in.
func (r *MatchRepository) RecentByPlayer(ctx context.Context, userID string, limit int) ([]domain.MatchRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, game_id, game_mode, player_a_name, player_b_name, player_a_user_id,
		   player_b_user_id, score_a, score_b, winner_user_id, created_at
		 FROM match_history
		 WHERE player_a_user_id = $1 OR player_b_user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.MatchRecord
	for rows.Next() {
		var m domain.MatchRecord
		if err := rows.Scan(
			&m.ID, &m.GameID, &m.GameMode, &m.PlayerAName, &m.PlayerBName, &m.PlayerAID,
			&m.PlayerBID, &m.ScoreA, &m.ScoreB, &m.WinnerUserID, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
