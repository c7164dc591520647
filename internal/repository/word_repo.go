package repository

import (
	"context"
	"fmt"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/game"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WordRepository serves round content from the word_bank table.
type WordRepository struct {
	db *pgxpool.Pool
}

func NewWordRepository(db *pgxpool.Pool) *WordRepository {
	return &WordRepository{db: db}
}

// Sample returns n random distinct words whose ids are not in excludeIDs.
func (r *WordRepository) Sample(ctx context.Context, n int, excludeIDs []int64) ([]domain.Word, error) {
	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	rows, err := r.db.Query(ctx,
		`SELECT word_id, word, strongest_matches, strong_matches, weak_matches
		 FROM word_bank
		 WHERE NOT (word_id = ANY($1))
		 ORDER BY random()
		 LIMIT $2`,
		excludeIDs, n,
	)
	if err != nil {
		return nil, fmt.Errorf("sample words: %w", err)
	}
	defer rows.Close()

	words := make([]domain.Word, 0, n)
	for rows.Next() {
		var w domain.Word
		if err := rows.Scan(&w.WordID, &w.Word, &w.StrongestMatches, &w.StrongMatches, &w.WeakMatches); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(words) < n {
		return nil, fmt.Errorf("%w: requested %d, available %d", game.ErrNotEnoughWords, n, len(words))
	}
	return words, nil
}

// Count returns the size of the word bank.
func (r *WordRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM word_bank`).Scan(&n)
	return n, err
}
