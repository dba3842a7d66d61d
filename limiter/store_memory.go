package limiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

// memoryStore is a per-process Store. A single mutex makes every window
// operation atomic, mirroring the guarantees the Redis scripts give on a
// shared instance.
type memoryStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	zsets    map[string]*memoryZSet
	closed   bool
}

type memoryCounter struct {
	value    int64
	expireAt time.Time
}

type memoryZSet struct {
	members  map[string]int64 // member -> score
	expireAt time.Time
}

var errStoreClosed = errors.New("store is closed")

// NewMemoryStore creates an in-process store with background expiry
// cleanup.
func NewMemoryStore() Store {
	s := &memoryStore{
		counters: make(map[string]*memoryCounter),
		zsets:    make(map[string]*memoryZSet),
	}
	go s.cleanupLoop(time.Minute)
	return s
}

// IncrWindow checks and increments under one mutex hold.
func (s *memoryStore) IncrWindow(ctx context.Context, key string, limit int64, ttl time.Duration) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false, errStoreClosed
	}

	now := time.Now()
	c, ok := s.counters[key]
	if ok && !c.expireAt.IsZero() && now.After(c.expireAt) {
		delete(s.counters, key)
		ok = false
	}

	var count int64
	if ok {
		count = c.value
	}
	if count >= limit {
		return count, false, nil
	}

	if !ok {
		// first hit of a new window: expiry fixed here, never refreshed
		s.counters[key] = &memoryCounter{value: 1, expireAt: now.Add(ttl)}
		return 1, true, nil
	}
	c.value++
	return c.value, true, nil
}

// SlideWindow prunes, counts and conditionally adds under one mutex hold.
func (s *memoryStore) SlideWindow(ctx context.Context, key, member string, limit int64, windowStart, now int64, ttl time.Duration) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false, errStoreClosed
	}

	wall := time.Now()
	zs, ok := s.zsets[key]
	if ok && !zs.expireAt.IsZero() && wall.After(zs.expireAt) {
		delete(s.zsets, key)
		ok = false
	}
	var count int64
	if ok {
		for m, score := range zs.members {
			if score < windowStart {
				delete(zs.members, m)
			}
		}
		count = int64(len(zs.members))
	}

	if count >= limit {
		return count, false, nil
	}

	if !ok {
		zs = &memoryZSet{members: make(map[string]int64)}
		s.zsets[key] = zs
	}
	zs.members[member] = now
	zs.expireAt = wall.Add(ttl)
	return count + 1, true, nil
}

// DecrIfPositive refunds one slot, flooring at zero.
func (s *memoryStore) DecrIfPositive(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errStoreClosed
	}

	c, ok := s.counters[key]
	if !ok || c.value <= 0 {
		return 0, nil
	}
	c.value--
	return c.value, nil
}

// PopNewest removes the highest-scored member.
func (s *memoryStore) PopNewest(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errStoreClosed
	}

	zs, ok := s.zsets[key]
	if !ok || len(zs.members) == 0 {
		return nil
	}

	var newest string
	var newestScore int64 = -1
	for m, score := range zs.members {
		if score > newestScore {
			newest, newestScore = m, score
		}
	}
	delete(zs.members, newest)
	return nil
}

// TTL reports the remaining lifetime of a counter or set.
func (s *memoryStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errStoreClosed
	}

	now := time.Now()
	if c, ok := s.counters[key]; ok && !c.expireAt.IsZero() {
		if d := c.expireAt.Sub(now); d > 0 {
			return d, nil
		}
	}
	if zs, ok := s.zsets[key]; ok && !zs.expireAt.IsZero() {
		if d := zs.expireAt.Sub(now); d > 0 {
			return d, nil
		}
	}
	return 0, nil
}

// Del removes keys from both keyspaces.
func (s *memoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errStoreClosed
	}

	for _, key := range keys {
		delete(s.counters, key)
		delete(s.zsets, key)
	}
	return nil
}

// Close stops the store; subsequent calls error.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.counters = nil
	s.zsets = nil
	return nil
}

func (s *memoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		now := time.Now()
		for key, c := range s.counters {
			if !c.expireAt.IsZero() && now.After(c.expireAt) {
				delete(s.counters, key)
			}
		}
		for key, zs := range s.zsets {
			if !zs.expireAt.IsZero() && now.After(zs.expireAt) {
				delete(s.zsets, key)
			}
		}
		s.mu.Unlock()
	}
}
