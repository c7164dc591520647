package game

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"synonym_arena/internal/domain"
)

var ErrNotEnoughWords = errors.New("not enough words available")

//go:embed words.json
var seedWords []byte

// StaticWords is an in-process word bank. It backs the content source when
// no database is configured.
type StaticWords struct {
	mu    sync.RWMutex
	words []domain.Word
}

func NewStaticWords(words []domain.Word) *StaticWords {
	cp := make([]domain.Word, len(words))
	copy(cp, words)
	return &StaticWords{words: cp}
}

// LoadSeedWords returns the word bank embedded in the binary.
func LoadSeedWords() (*StaticWords, error) {
	var words []domain.Word
	if err := json.Unmarshal(seedWords, &words); err != nil {
		return nil, fmt.Errorf("decode seed words: %w", err)
	}
	return NewStaticWords(words), nil
}

func (s *StaticWords) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Sample picks n distinct words in random order, skipping excluded ids.
func (s *StaticWords) Sample(_ context.Context, n int, excludeIDs []int64) ([]domain.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sampleDistinct(s.words, func(w domain.Word) int64 { return w.WordID }, n, excludeIDs)
}

// sampleDistinct shuffles the items whose id is not excluded and returns
// the first n of them.
func sampleDistinct[T any](items []T, id func(T) int64, n int, excludeIDs []int64) ([]T, error) {
	excluded := make(map[int64]struct{}, len(excludeIDs))
	for _, x := range excludeIDs {
		excluded[x] = struct{}{}
	}

	candidates := make([]T, 0, len(items))
	for _, it := range items {
		if _, skip := excluded[id(it)]; !skip {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) < n {
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrNotEnoughWords, n, len(candidates))
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates[:n], nil
}
