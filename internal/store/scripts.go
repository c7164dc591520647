package store

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Queue scripts.
//
// KEYS[1]: zset of handles scored by joined_at (ms)
// KEYS[2]: hash handle -> entry json

// ARGV[1]: cutoff (ms); older entries are dropped before the lookup
var oldestEntryScript = redis.NewScript(`
local stale = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
for _, h in ipairs(stale) do
  redis.call('HDEL', KEYS[2], h)
end
if #stale > 0 then
  redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
end
local first = redis.call('ZRANGE', KEYS[1], 0, 0)
if #first == 0 then
  return false
end
return redis.call('HGET', KEYS[2], first[1])
`)

// ARGV[1]: handle
var claimEntryScript = redis.NewScript(`
if redis.call('ZREM', KEYS[1], ARGV[1]) == 1 then
  redis.call('HDEL', KEYS[2], ARGV[1])
  return 1
end
return 0
`)

// Session scripts. KEYS[1] is always the metadata hash; player hashes follow.
// Codes: -1 missing session, -2 closed session, -3 missing player.

// KEYS[2]: caller's player hash
// ARGV[1]: submissions json, ARGV[2]: expected round or 0
var markFinishedScript = redis.NewScript(`
local status = redis.call('HGET', KEYS[1], 'status')
if not status then
  return {-1, 0}
end
if status ~= 'active' then
  return {-2, 0}
end
local rs = redis.call('HGET', KEYS[2], 'round_status')
if not rs then
  return {-3, 0}
end
local round = tonumber(redis.call('HGET', KEYS[1], 'current_round'))
local want = tonumber(ARGV[2])
if rs == 'finished' or (want ~= 0 and want ~= round) then
  return {round, 0}
end
redis.call('HSET', KEYS[2], 'round_status', 'finished', 'round:' .. round, ARGV[1])
return {round, 1}
`)

var incrementFinishedScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {-1, 0}
end
local c = tonumber(redis.call('HGET', KEYS[1], 'finished_count') or '0')
if c >= 2 then
  return {c, 0}
end
return {redis.call('HINCRBY', KEYS[1], 'finished_count', 1), 1}
`)

// KEYS[2], KEYS[3]: player hashes
// ARGV[1]: round being left
var advanceRoundScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'status') ~= 'active' then
  return 0
end
if tonumber(redis.call('HGET', KEYS[1], 'current_round')) ~= tonumber(ARGV[1]) then
  return 0
end
if tonumber(redis.call('HGET', KEYS[1], 'finished_count')) ~= 2 then
  return 0
end
redis.call('HSET', KEYS[1], 'current_round', tonumber(ARGV[1]) + 1, 'finished_count', 0)
redis.call('HSET', KEYS[2], 'round_status', 'in_progress')
redis.call('HSET', KEYS[3], 'round_status', 'in_progress')
return 1
`)

// KEYS[2], KEYS[3]: player hashes
// ARGV[1]: last round, ARGV[2]: terminal round, ARGV[3], ARGV[4]: totals, ARGV[5]: ttl seconds
var completeScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'status') ~= 'active' then
  return 0
end
if tonumber(redis.call('HGET', KEYS[1], 'current_round')) ~= tonumber(ARGV[1]) then
  return 0
end
if tonumber(redis.call('HGET', KEYS[1], 'finished_count')) ~= 2 then
  return 0
end
redis.call('HSET', KEYS[1], 'status', 'completed', 'current_round', ARGV[2])
redis.call('HSET', KEYS[2], 'status', 'completed', 'total_score', ARGV[3])
redis.call('HSET', KEYS[3], 'status', 'completed', 'total_score', ARGV[4])
for i = 1, 3 do
  redis.call('EXPIRE', KEYS[i], ARGV[5])
end
return 1
`)

// KEYS[2], KEYS[3]: player hashes
// ARGV[1]: forfeiting handle, ARGV[2]: ttl seconds
var forfeitScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'status') ~= 'active' then
  return 0
end
redis.call('HSET', KEYS[1], 'status', 'completed', 'forfeited_by', ARGV[1])
redis.call('HSET', KEYS[2], 'status', 'completed')
redis.call('HSET', KEYS[3], 'status', 'completed')
for i = 1, 3 do
  redis.call('EXPIRE', KEYS[i], ARGV[2])
end
return 1
`)

// scriptPair decodes a two-element integer reply.
func scriptPair(res any) (int, int, error) {
	vals, ok := res.([]any)
	if !ok || len(vals) != 2 {
		return 0, 0, fmt.Errorf("unexpected script reply %v", res)
	}
	a, ok1 := vals[0].(int64)
	b, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("unexpected script reply %v", res)
	}
	return int(a), int(b), nil
}
