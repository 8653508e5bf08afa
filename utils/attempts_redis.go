package utils

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAttemptStore keeps attempt state as a hash per key with a TTL, so
// stale records expire on their own. HIncrBy makes concurrent failed
// attempts against one key count correctly across workers.
type RedisAttemptStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func attemptKey(key string) string { return "login_attempts:" + key }

func (s *RedisAttemptStore) State(ctx context.Context, key string) (AttemptState, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := s.Client.HGetAll(ctx, attemptKey(key)).Result()
	if err != nil {
		return AttemptState{}, err
	}
	if len(data) == 0 {
		return AttemptState{}, nil
	}

	state := AttemptState{}
	if v, ok := data["count"]; ok {
		state.Count, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := data["locked_until"]; ok && v != "" {
		unix, err := strconv.ParseInt(v, 10, 64)
		if err == nil && unix > 0 {
			state.LockedUntil = time.Unix(unix, 0)
		}
	}
	return state, nil
}

func (s *RedisAttemptStore) Increment(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	k := attemptKey(key)
	count, err := s.Client.HIncrBy(ctx, k, "count", 1).Result()
	if err != nil {
		return 0, err
	}
	if err := s.Client.Expire(ctx, k, s.TTL).Err(); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *RedisAttemptStore) SetLock(ctx context.Context, key string, until time.Time, count int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	k := attemptKey(key)
	fields := map[string]any{
		"count":        count,
		"locked_until": until.Unix(),
	}
	if err := s.Client.HSet(ctx, k, fields).Err(); err != nil {
		return err
	}
	return s.Client.Expire(ctx, k, s.TTL).Err()
}

func (s *RedisAttemptStore) Reset(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.Client.Del(ctx, attemptKey(key)).Err()
}
