package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"synonym_arena/internal/domain"
)

// RedisSessionStore keeps every session as one metadata hash plus one hash
// per player, keyed under the {game_id} hash tag. The per-connection index
// and departure keys live outside that tag and are written in the same
// transaction, so the store expects a single Redis node.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func metaKey(gameID string) string {
	return "game:{" + gameID + "}:meta"
}

func playerKey(gameID, handle string) string {
	return "game:{" + gameID + "}:player:" + handle
}

func connGamesKey(handle string) string {
	return "conn:" + handle + ":games"
}

func departedKey(handle string) string {
	return "conn:" + handle + ":departed"
}

func roundField(round int) string {
	return "round:" + strconv.Itoa(round)
}

func (r *RedisSessionStore) Create(ctx context.Context, s domain.Session) error {
	words, err := json.Marshal(s.Meta.Words)
	if err != nil {
		return fmt.Errorf("encode words: %w", err)
	}
	gameID := s.Meta.GameID
	mk := metaKey(gameID)

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, mk, map[string]any{
			"game_id":        gameID,
			"game_mode":      s.Meta.GameMode,
			"current_round":  s.Meta.CurrentRound,
			"finished_count": s.Meta.FinishedCount,
			"status":         string(s.Meta.Status),
			"created_at":     s.Meta.CreatedAt.UTC().Format(time.RFC3339Nano),
			"words":          words,
			"player_a":       s.Players[0].ConnectionHandle,
			"player_b":       s.Players[1].ConnectionHandle,
		})
		pipe.Expire(ctx, mk, r.ttl)

		for _, p := range s.Players {
			pk := playerKey(gameID, p.ConnectionHandle)
			pipe.HSet(ctx, pk, map[string]any{
				"game_id":           gameID,
				"connection_handle": p.ConnectionHandle,
				"user_id":           p.UserID,
				"display_name":      p.DisplayName,
				"avatar_ref":        p.AvatarRef,
				"round_status":      string(p.RoundStatus),
				"status":            string(p.Status),
				"total_score":       p.TotalScore,
			})
			pipe.Expire(ctx, pk, r.ttl)

			ck := connGamesKey(p.ConnectionHandle)
			pipe.SAdd(ctx, ck, gameID)
			pipe.Expire(ctx, ck, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create session %s: %w", gameID, err)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, gameID string) (*domain.Session, error) {
	meta, err := r.rdb.HGetAll(ctx, metaKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", gameID, err)
	}
	if len(meta) == 0 {
		return nil, fmt.Errorf("session %s: %w", gameID, ErrNotFound)
	}

	handles := [2]string{meta["player_a"], meta["player_b"]}
	var cmds [2]*redis.MapStringStringCmd
	_, err = r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, h := range handles {
			cmds[i] = pipe.HGetAll(ctx, playerKey(gameID, h))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load players of %s: %w", gameID, err)
	}

	s := &domain.Session{}
	if err := decodeMeta(meta, &s.Meta); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", gameID, err)
	}
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			return nil, fmt.Errorf("player %s of %s: %w", handles[i], gameID, ErrNotFound)
		}
		if err := decodePlayer(fields, &s.Players[i]); err != nil {
			return nil, fmt.Errorf("decode player %s: %w", handles[i], err)
		}
	}
	return s, nil
}

func (r *RedisSessionStore) MarkFinished(ctx context.Context, gameID, handle string, round int, subs []domain.Submission) (int, bool, error) {
	if subs == nil {
		subs = []domain.Submission{}
	}
	body, err := json.Marshal(subs)
	if err != nil {
		return 0, false, fmt.Errorf("encode submissions: %w", err)
	}

	res, err := markFinishedScript.Run(ctx, r.rdb, []string{metaKey(gameID), playerKey(gameID, handle)}, body, round).Result()
	if err != nil {
		return 0, false, fmt.Errorf("mark finished %s: %w", gameID, err)
	}
	current, applied, err := scriptPair(res)
	if err != nil {
		return 0, false, err
	}
	if err := scriptCodeErr(gameID, current); err != nil {
		return 0, false, err
	}
	return current, applied == 1, nil
}

func (r *RedisSessionStore) IncrementFinished(ctx context.Context, gameID string) (int, bool, error) {
	res, err := incrementFinishedScript.Run(ctx, r.rdb, []string{metaKey(gameID)}).Result()
	if err != nil {
		return 0, false, fmt.Errorf("increment finished %s: %w", gameID, err)
	}
	count, applied, err := scriptPair(res)
	if err != nil {
		return 0, false, err
	}
	if err := scriptCodeErr(gameID, count); err != nil {
		return 0, false, err
	}
	return count, applied == 1, nil
}

func (r *RedisSessionStore) AdvanceRound(ctx context.Context, gameID string, fromRound int) (bool, error) {
	keys, _, err := r.sessionKeys(ctx, gameID)
	if err != nil {
		return false, err
	}
	n, err := advanceRoundScript.Run(ctx, r.rdb, keys, fromRound).Int()
	if err != nil {
		return false, fmt.Errorf("advance %s: %w", gameID, err)
	}
	return n == 1, nil
}

func (r *RedisSessionStore) Complete(ctx context.Context, gameID string, totals map[string]int) (bool, error) {
	keys, handles, err := r.sessionKeys(ctx, gameID)
	if err != nil {
		return false, err
	}
	n, err := completeScript.Run(ctx, r.rdb, keys,
		domain.RoundsPerGame, TerminalRound,
		totals[handles[0]], totals[handles[1]],
		int(r.ttl.Seconds()),
	).Int()
	if err != nil {
		return false, fmt.Errorf("complete %s: %w", gameID, err)
	}
	return n == 1, nil
}

func (r *RedisSessionStore) Forfeit(ctx context.Context, gameID, handle string) (bool, error) {
	keys, handles, err := r.sessionKeys(ctx, gameID)
	if err != nil {
		return false, err
	}
	if handle != handles[0] && handle != handles[1] {
		return false, ErrNotPlayer
	}
	n, err := forfeitScript.Run(ctx, r.rdb, keys, handle, int(r.ttl.Seconds())).Int()
	if err != nil {
		return false, fmt.Errorf("forfeit %s: %w", gameID, err)
	}
	return n == 1, nil
}

func (r *RedisSessionStore) FindActiveByConnection(ctx context.Context, handle string) ([]string, error) {
	ck := connGamesKey(handle)
	ids, err := r.rdb.SMembers(ctx, ck).Result()
	if err != nil {
		return nil, fmt.Errorf("sessions of %s: %w", handle, err)
	}

	var active []string
	for _, id := range ids {
		status, err := r.rdb.HGet(ctx, metaKey(id), "status").Result()
		if errors.Is(err, redis.Nil) {
			r.rdb.SRem(ctx, ck, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("session status %s: %w", id, err)
		}
		if status == string(domain.SessionActive) {
			active = append(active, id)
		}
	}
	return active, nil
}

func (r *RedisSessionStore) MarkDeparted(ctx context.Context, handle string) error {
	if err := r.rdb.Set(ctx, departedKey(handle), 1, r.ttl).Err(); err != nil {
		return fmt.Errorf("mark departed %s: %w", handle, err)
	}
	return nil
}

func (r *RedisSessionStore) Departed(ctx context.Context, handle string) (bool, error) {
	n, err := r.rdb.Exists(ctx, departedKey(handle)).Result()
	if err != nil {
		return false, fmt.Errorf("departed %s: %w", handle, err)
	}
	return n == 1, nil
}

// sessionKeys resolves the metadata key and both player keys of a session.
func (r *RedisSessionStore) sessionKeys(ctx context.Context, gameID string) ([]string, [2]string, error) {
	vals, err := r.rdb.HMGet(ctx, metaKey(gameID), "player_a", "player_b").Result()
	if err != nil {
		return nil, [2]string{}, fmt.Errorf("load players of %s: %w", gameID, err)
	}
	a, okA := vals[0].(string)
	b, okB := vals[1].(string)
	if !okA || !okB {
		return nil, [2]string{}, fmt.Errorf("session %s: %w", gameID, ErrNotFound)
	}
	return []string{metaKey(gameID), playerKey(gameID, a), playerKey(gameID, b)}, [2]string{a, b}, nil
}

func scriptCodeErr(gameID string, code int) error {
	switch code {
	case -1:
		return fmt.Errorf("session %s: %w", gameID, ErrNotFound)
	case -2:
		return ErrSessionClosed
	case -3:
		return ErrNotPlayer
	}
	return nil
}

func decodeMeta(f map[string]string, m *domain.SessionMeta) error {
	var err error
	m.GameID = f["game_id"]
	m.GameMode = f["game_mode"]
	m.Status = domain.SessionStatus(f["status"])
	m.ForfeitedBy = f["forfeited_by"]
	if m.CurrentRound, err = strconv.Atoi(f["current_round"]); err != nil {
		return fmt.Errorf("current_round: %w", err)
	}
	if m.FinishedCount, err = strconv.Atoi(f["finished_count"]); err != nil {
		return fmt.Errorf("finished_count: %w", err)
	}
	if v := f["created_at"]; v != "" {
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return fmt.Errorf("created_at: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(f["words"]), &m.Words); err != nil {
		return fmt.Errorf("words: %w", err)
	}
	return nil
}

func decodePlayer(f map[string]string, p *domain.PlayerState) error {
	p.GameID = f["game_id"]
	p.ConnectionHandle = f["connection_handle"]
	p.UserID = f["user_id"]
	p.DisplayName = f["display_name"]
	p.AvatarRef = f["avatar_ref"]
	p.RoundStatus = domain.RoundStatus(f["round_status"])
	p.Status = domain.SessionStatus(f["status"])
	if v := f["total_score"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("total_score: %w", err)
		}
		p.TotalScore = n
	}

	p.Rounds = make(map[int][]domain.Submission)
	for round := 1; round <= domain.RoundsPerGame; round++ {
		raw, ok := f[roundField(round)]
		if !ok {
			continue
		}
		var subs []domain.Submission
		if err := json.Unmarshal([]byte(raw), &subs); err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		p.Rounds[round] = subs
	}
	return nil
}
