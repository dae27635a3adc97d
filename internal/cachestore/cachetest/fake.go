// Package cachetest provides an in-memory cachestore.Store test double.
package cachetest

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"time"
)

type entry struct {
	data    []byte
	expires time.Time
}

// Store is an in-memory cachestore.Store with real TTL expiry, JSON
// round-tripping (so callers can't mutate stored values through aliasing),
// and glob-pattern deletion via path.Match semantics.
type Store struct {
	mu   sync.Mutex
	data map[string]entry
}

// New builds an empty Store.
func New() *Store {
	return &Store{data: make(map[string]entry)}
}

func (s *Store) Get(ctx context.Context, key string, out any) bool {
	s.mu.Lock()
	e, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return false
	}
	return json.Unmarshal(e.data, out) == nil
}

func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	b, err := json.Marshal(value)
	if err != nil {
		return false
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.data[key] = entry{data: b, expires: exp}
	s.mu.Unlock()
	return true
}

func (s *Store) Delete(ctx context.Context, key string) bool {
	s.mu.Lock()
	_, ok := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()
	return ok
}

func (s *Store) DeletePattern(ctx context.Context, pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.data {
		if ok, _ := filepath.Match(pattern, k); ok {
			delete(s.data, k)
			n++
		}
	}
	return n
}

func (s *Store) Exists(ctx context.Context, key string) bool {
	s.mu.Lock()
	_, ok := s.data[key]
	s.mu.Unlock()
	return ok
}

func (s *Store) MGet(ctx context.Context, keys []string, out func(i int) any) []bool {
	found := make([]bool, len(keys))
	for i, k := range keys {
		found[i] = s.Get(ctx, k, out(i))
	}
	return found
}

func (s *Store) Incr(ctx context.Context, key string, amount int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur int64
	if e, ok := s.data[key]; ok {
		json.Unmarshal(e.data, &cur)
	}
	cur += amount
	b, _ := json.Marshal(cur)
	s.data[key] = entry{data: b}
	return cur, true
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return false
	}
	e.expires = time.Now().Add(ttl)
	s.data[key] = e
	return true
}

func (s *Store) TTL(ctx context.Context, key string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return 0, false
	}
	if e.expires.IsZero() {
		return -1, true
	}
	return time.Until(e.expires), true
}

func (s *Store) Close(ctx context.Context) error { return nil }
