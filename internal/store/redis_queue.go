package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"synonym_arena/internal/domain"
)

// RedisQueue keeps one sorted set per game mode, ordered by join time, and
// a companion hash with the entry bodies. The two share a hash tag; the
// per-connection index does not, so a single Redis node is assumed.
type RedisQueue struct {
	rdb   *redis.Client
	clock clockwork.Clock
	ttl   time.Duration
}

func NewRedisQueue(rdb *redis.Client, clock clockwork.Clock, ttl time.Duration) *RedisQueue {
	return &RedisQueue{rdb: rdb, clock: clock, ttl: ttl}
}

func queueKeys(mode string) []string {
	base := "queue:{" + mode + "}"
	return []string{base, base + ":entries"}
}

func queueConnKey(handle string) string {
	return "queue:conn:" + handle
}

func (q *RedisQueue) Oldest(ctx context.Context, mode string) (*domain.QueueEntry, error) {
	cutoff := q.clock.Now().Add(-q.ttl).UnixMilli()
	raw, err := oldestEntryScript.Run(ctx, q.rdb, queueKeys(mode), strconv.FormatInt(cutoff, 10)).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue oldest %s: %w", mode, err)
	}

	var e domain.QueueEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("decode queue entry: %w", err)
	}
	return &e, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, entry domain.QueueEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode queue entry: %w", err)
	}
	keys := queueKeys(entry.GameMode)
	connKey := queueConnKey(entry.ConnectionHandle)

	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// an entry already queued keeps its score and body
		pipe.ZAddNX(ctx, keys[0], redis.Z{
			Score:  float64(entry.JoinedAt.UnixMilli()),
			Member: entry.ConnectionHandle,
		})
		pipe.HSetNX(ctx, keys[1], entry.ConnectionHandle, body)
		pipe.Expire(ctx, keys[0], q.ttl)
		pipe.Expire(ctx, keys[1], q.ttl)
		pipe.SAdd(ctx, connKey, entry.GameMode)
		pipe.Expire(ctx, connKey, q.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", entry.ConnectionHandle, err)
	}
	return nil
}

func (q *RedisQueue) Claim(ctx context.Context, entry domain.QueueEntry) (bool, error) {
	n, err := claimEntryScript.Run(ctx, q.rdb, queueKeys(entry.GameMode), entry.ConnectionHandle).Int()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", entry.ConnectionHandle, err)
	}
	if n == 1 {
		q.rdb.SRem(ctx, queueConnKey(entry.ConnectionHandle), entry.GameMode)
	}
	return n == 1, nil
}

func (q *RedisQueue) RemoveByConnection(ctx context.Context, handle string) (int, error) {
	connKey := queueConnKey(handle)
	modes, err := q.rdb.SMembers(ctx, connKey).Result()
	if err != nil {
		return 0, fmt.Errorf("queue modes for %s: %w", handle, err)
	}

	removed := 0
	for _, mode := range modes {
		n, err := claimEntryScript.Run(ctx, q.rdb, queueKeys(mode), handle).Int()
		if err != nil {
			return removed, fmt.Errorf("remove %s from %s: %w", handle, mode, err)
		}
		removed += n
	}
	if err := q.rdb.Del(ctx, connKey).Err(); err != nil {
		return removed, fmt.Errorf("drop queue index %s: %w", handle, err)
	}
	return removed, nil
}
