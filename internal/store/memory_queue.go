package store

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"synonym_arena/internal/domain"
)

type queuedEntry struct {
	entry     domain.QueueEntry
	expiresAt time.Time
}

// MemoryQueue is a single-process queue store used in dev mode and tests.
type MemoryQueue struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	ttl    time.Duration
	byMode map[string][]*queuedEntry
}

func NewMemoryQueue(clock clockwork.Clock, ttl time.Duration) *MemoryQueue {
	return &MemoryQueue{
		clock:  clock,
		ttl:    ttl,
		byMode: make(map[string][]*queuedEntry),
	}
}

func (q *MemoryQueue) Oldest(_ context.Context, mode string) (*domain.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked(mode)
	entries := q.byMode[mode]
	if len(entries) == 0 {
		return nil, nil
	}
	e := entries[0].entry
	return &e, nil
}

func (q *MemoryQueue) Enqueue(_ context.Context, entry domain.QueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked(entry.GameMode)
	entries := q.byMode[entry.GameMode]
	for _, qe := range entries {
		if qe.entry.ConnectionHandle == entry.ConnectionHandle {
			// keeps its place and its original join time
			return nil
		}
	}

	q.byMode[entry.GameMode] = append(entries, &queuedEntry{
		entry:     entry,
		expiresAt: q.clock.Now().Add(q.ttl),
	})
	return nil
}

func (q *MemoryQueue) Claim(_ context.Context, entry domain.QueueEntry) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked(entry.GameMode)
	return q.removeLocked(entry.GameMode, entry.ConnectionHandle), nil
}

func (q *MemoryQueue) RemoveByConnection(_ context.Context, handle string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := 0
	for mode := range q.byMode {
		if q.removeLocked(mode, handle) {
			removed++
		}
	}
	return removed, nil
}

func (q *MemoryQueue) removeLocked(mode, handle string) bool {
	entries := q.byMode[mode]
	for i, qe := range entries {
		if qe.entry.ConnectionHandle == handle {
			q.byMode[mode] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

func (q *MemoryQueue) pruneLocked(mode string) {
	now := q.clock.Now()
	entries := q.byMode[mode]
	live := entries[:0]
	for _, qe := range entries {
		if now.Before(qe.expiresAt) {
			live = append(live, qe)
		}
	}
	if len(live) == 0 {
		delete(q.byMode, mode)
		return
	}
	q.byMode[mode] = live
}
