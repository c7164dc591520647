package game

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"synonym_arena/internal/domain"
)

//go:embed chains.json
var seedChains []byte

// StaticChains is the in-process chain word bank used without a database.
type StaticChains struct {
	mu     sync.RWMutex
	chains []domain.ChainWord
}

func NewStaticChains(chains []domain.ChainWord) *StaticChains {
	cp := make([]domain.ChainWord, len(chains))
	copy(cp, chains)
	return &StaticChains{chains: cp}
}

func LoadSeedChains() (*StaticChains, error) {
	var chains []domain.ChainWord
	if err := json.Unmarshal(seedChains, &chains); err != nil {
		return nil, fmt.Errorf("decode seed chains: %w", err)
	}
	return NewStaticChains(chains), nil
}

func (s *StaticChains) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chains)
}

func (s *StaticChains) Sample(_ context.Context, n int, excludeIDs []int64) ([]domain.ChainWord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sampleDistinct(s.chains, func(c domain.ChainWord) int64 { return c.WordID }, n, excludeIDs)
}
