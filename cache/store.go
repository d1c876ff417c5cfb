// cache/store.go
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	logger "github.com/jeevanhealth/shell/logging"
	"github.com/jeevanhealth/shell/util"
)

// Status is the lifecycle state of a cache entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is one cached resource. Entries are immutable snapshots: the store
// replaces them wholesale on every transition, so a reader never observes a
// half-written value.
type Entry struct {
	Key       Key
	Data      any
	Status    Status
	Err       error
	FetchedAt time.Time
	Stale     bool
}

// Terminal reports whether the entry has reached success or error.
func (e Entry) Terminal() bool {
	return e.Status == StatusSuccess || e.Status == StatusError
}

// Fetcher loads the value for a key from the remote gateway.
type Fetcher func(ctx context.Context) (any, error)

// Store is the server-state cache. It owns entry lifetimes exclusively:
// de-duplication of concurrent fetches, staleness, invalidation, and
// wholesale clearing on logout. There is no automatic retry; a failed entry
// stays failed until a caller fetches again.
//
// Stores are constructed per application instance and injected, never held
// as an ambient global.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	gens       map[string]uint64
	flight     singleflight.Group
	bus        *util.EventBus
	staleAfter time.Duration
	clock      func() time.Time
}

// New creates a Store. staleAfter of zero means entries only go stale
// through explicit invalidation. bus may be nil.
func New(bus *util.EventBus, staleAfter time.Duration) *Store {
	return &Store{
		entries:    make(map[string]Entry),
		gens:       make(map[string]uint64),
		bus:        bus,
		staleAfter: staleAfter,
		clock:      time.Now,
	}
}

// Get returns a snapshot of the current entry without triggering any fetch.
// An unknown key yields an idle entry.
func (s *Store) Get(key Key) Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key.String()]
	if !ok {
		return Entry{Key: key, Status: StatusIdle}
	}
	return e
}

// Fetch returns the cached value for key, fetching through f when the entry
// is missing, stale, or failed. Concurrent callers for the same key attach
// to a single in-flight fetch and all observe the same resolution.
//
// A resolution that lands after the key was invalidated or cleared is
// discarded: the generation captured at issue time no longer matches, so
// the stale response never overwrites newer state.
func (s *Store) Fetch(ctx context.Context, key Key, f Fetcher) Entry {
	ks := key.String()

	s.mu.Lock()
	if e, ok := s.entries[ks]; ok && e.Status == StatusSuccess && !e.Stale && !s.expiredLocked(e) {
		s.mu.Unlock()
		return e
	}
	gen := s.gens[ks]
	prev := s.entries[ks]
	s.entries[ks] = Entry{Key: key, Data: prev.Data, Status: StatusLoading, Stale: true}
	s.mu.Unlock()

	data, err, _ := s.flight.Do(ks, func() (any, error) {
		return f(ctx)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[ks] != gen {
		// Superseded while in flight; a fresher fetch owns this key now.
		logger.Debug("Discarding stale fetch resolution", zap.String("key", ks))
		if e, ok := s.entries[ks]; ok {
			return e
		}
		return Entry{Key: key, Status: StatusIdle}
	}

	var e Entry
	if err != nil {
		e = Entry{Key: key, Status: StatusError, Err: err}
	} else {
		e = Entry{Key: key, Data: data, Status: StatusSuccess, FetchedAt: s.clock()}
	}
	s.entries[ks] = e
	return e
}

// Invalidate marks the given keys stale as one batch: a reader either sees
// none or all of them invalidated, never a partially stale set. The next
// Fetch per key goes back to the gateway.
func (s *Store) Invalidate(keys ...Key) {
	if len(keys) == 0 {
		return
	}

	s.mu.Lock()
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		ks := key.String()
		s.invalidateLocked(ks)
		names = append(names, ks)
	}
	s.mu.Unlock()

	logger.Debug("Cache invalidated", zap.Strings("keys", names))
	if s.bus != nil {
		s.bus.Publish(context.Background(), util.EventCacheInvalidated, names)
	}
}

// InvalidatePrefix invalidates every entry belonging to the named operation,
// whatever its parameters.
func (s *Store) InvalidatePrefix(name string) {
	s.mu.Lock()
	var names []string
	for ks, e := range s.entries {
		if e.Key.HasPrefix(name) {
			s.invalidateLocked(ks)
			names = append(names, ks)
		}
	}
	s.mu.Unlock()

	if len(names) == 0 {
		return
	}
	logger.Debug("Cache invalidated by prefix", zap.String("prefix", name), zap.Strings("keys", names))
	if s.bus != nil {
		s.bus.Publish(context.Background(), util.EventCacheInvalidated, names)
	}
}

// Clear drops every entry. Called on logout so no cached data leaks across
// sessions. In-flight fetches resolve against bumped generations and are
// discarded.
func (s *Store) Clear() {
	s.mu.Lock()
	for ks := range s.entries {
		s.gens[ks]++
		s.flight.Forget(ks)
	}
	s.entries = make(map[string]Entry)
	s.mu.Unlock()

	logger.Info("Cache cleared")
	if s.bus != nil {
		s.bus.Publish(context.Background(), util.EventCacheCleared, nil)
	}
}

func (s *Store) invalidateLocked(ks string) {
	s.gens[ks]++
	s.flight.Forget(ks)
	if e, ok := s.entries[ks]; ok {
		e.Stale = true
		s.entries[ks] = e
	}
}

func (s *Store) expiredLocked(e Entry) bool {
	if s.staleAfter <= 0 || e.FetchedAt.IsZero() {
		return false
	}
	return s.clock().Sub(e.FetchedAt) > s.staleAfter
}
