package cachestore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/filevault/botcore/internal/cachestore/codec"
)

// RedisStore is the go-redis backed Store implementation.
type RedisStore struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisStore dials addr and returns a ready RedisStore.
func NewRedisStore(addr, password string, db int, log zerolog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{rdb: rdb, log: log.With().Str("component", "cachestore").Logger()}
}

func (s *RedisStore) Close(ctx context.Context) error {
	return s.rdb.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string, out any) bool {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Debug().Err(err).Str("key", key).Msg("cache get error")
		}
		return false
	}
	ok, err := codec.Decode(raw, out)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache decode error")
		return false
	}
	return ok
}

func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	encoded, err := codec.Encode(value)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache encode error")
		return false
	}
	if err := s.rdb.Set(ctx, key, encoded, ttl).Err(); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache set error")
		return false
	}
	return true
}

func (s *RedisStore) Delete(ctx context.Context, key string) bool {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache delete error")
		return false
	}
	return true
}

// DeletePattern scans in cursor chunks of <=100 and deletes matches,
// counting per-chunk failures without aborting the scan.
func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) int {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			s.log.Debug().Err(err).Str("pattern", pattern).Msg("cache scan error")
			return deleted
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				s.log.Debug().Err(err).Str("pattern", pattern).Msg("cache bulk delete error")
			} else {
				deleted += len(keys)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deleted
}

func (s *RedisStore) Exists(ctx context.Context, key string) bool {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func (s *RedisStore) MGet(ctx context.Context, keys []string, out func(i int) any) []bool {
	found := make([]bool, len(keys))
	if len(keys) == 0 {
		return found
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		s.log.Debug().Err(err).Msg("cache mget error")
		return found
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		ok, err := codec.Decode([]byte(raw), out(i))
		found[i] = ok && err == nil
	}
	return found
}

func (s *RedisStore) Incr(ctx context.Context, key string, amount int64) (int64, bool) {
	n, err := s.rdb.IncrBy(ctx, key, amount).Result()
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache incr error")
		return 0, false
	}
	return n, true
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := s.rdb.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false
	}
	return ok
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, bool) {
	d, err := s.rdb.TTL(ctx, key).Result()
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}
