package repository

import (
	"context"
	"fmt"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/game"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChainRepository serves chain prompts from the chain_words table.
type ChainRepository struct {
	db *pgxpool.Pool
}

func NewChainRepository(db *pgxpool.Pool) *ChainRepository {
	return &ChainRepository{db: db}
}

// Sample returns n random distinct chain words whose ids are not in
// excludeIDs. links is a jsonb column decoded straight into the struct.
func (r *ChainRepository) Sample(ctx context.Context, n int, excludeIDs []int64) ([]domain.ChainWord, error) {
	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	rows, err := r.db.Query(ctx,
		`SELECT word_id, first_chain, links
		 FROM chain_words
		 WHERE NOT (word_id = ANY($1))
		 ORDER BY random()
		 LIMIT $2`,
		excludeIDs, n,
	)
	if err != nil {
		return nil, fmt.Errorf("sample chain words: %w", err)
	}
	defer rows.Close()

	chains := make([]domain.ChainWord, 0, n)
	for rows.Next() {
		var cw domain.ChainWord
		if err := rows.Scan(&cw.WordID, &cw.FirstChain, &cw.Links); err != nil {
			return nil, err
		}
		chains = append(chains, cw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(chains) < n {
		return nil, fmt.Errorf("%w: requested %d, available %d", game.ErrNotEnoughWords, n, len(chains))
	}
	return chains, nil
}

func (r *ChainRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chain_words`).Scan(&n)
	return n, err
}
