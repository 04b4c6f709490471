// Package store provides the per-category data store used by profile
// sessions. One Store holds one kind of remote clinical data together with
// its fetch lifecycle flags.
package store

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/renalcare/dashboard/internal/platform/upstream"
)

// FetchFunc loads the category's data from its upstream collaborator.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithClone sets the copy function applied to data returned by Snapshot, so
// callers cannot mutate the cache through a snapshot alias.
func WithClone[T any](clone func(T) T) Option[T] {
	return func(s *Store[T]) { s.clone = clone }
}

// SliceClone is a clone function for slice-backed stores: it copies the slice
// so element assignment through a snapshot leaves the cache untouched.
func SliceClone[E any](in []E) []E {
	if in == nil {
		return nil
	}
	out := make([]E, len(in))
	copy(out, in)
	return out
}

// Snapshot is the read-only view handed to callers. Data and Err are mutually
// exclusive after a completed fetch.
type Snapshot[T any] struct {
	Data      T
	Err       error
	IsLoading bool
	IsFetched bool
}

// Store caches one category of remote data with at-most-once fetch semantics.
// All methods are safe for concurrent use.
type Store[T any] struct {
	name  string
	fetch FetchFunc[T]
	clone func(T) T

	mu        sync.Mutex
	sf        singleflight.Group
	data      T
	err       error
	isLoading bool
	isFetched bool
}

// New creates an empty store. name tags classified errors and deduplicates
// in-flight fetches.
func New[T any](name string, fetch FetchFunc[T], opts ...Option[T]) *Store[T] {
	s := &Store[T]{name: name, fetch: fetch}
	for _, o := range opts {
		o(s)
	}
	return s
}

// EnsureLoaded returns the cached result if a fetch has already completed,
// successfully or not. Otherwise it performs the fetch; concurrent callers
// share a single in-flight request and all receive its result.
func (s *Store[T]) EnsureLoaded(ctx context.Context) (T, error) {
	s.mu.Lock()
	if s.isFetched {
		data, err := s.data, s.err
		s.mu.Unlock()
		return data, err
	}
	s.isLoading = true
	s.mu.Unlock()

	return s.load(ctx)
}

// ForceReload bypasses the fetched short-circuit and always refetches.
// Concurrent forced reloads still share one in-flight request.
func (s *Store[T]) ForceReload(ctx context.Context) (T, error) {
	s.mu.Lock()
	s.isFetched = false
	s.isLoading = true
	s.mu.Unlock()

	return s.load(ctx)
}

func (s *Store[T]) load(ctx context.Context) (T, error) {
	v, err, _ := s.sf.Do(s.name, func() (any, error) {
		// A caller can pass the fetched check while another flight is in
		// progress and enter here only after that flight retired. Re-check
		// under the lock so late joiners get the committed result instead
		// of starting a second fetch.
		s.mu.Lock()
		if s.isFetched {
			data, err := s.data, s.err
			s.isLoading = false
			s.mu.Unlock()
			return data, err
		}
		s.mu.Unlock()

		data, err := s.fetch(ctx)
		err = upstream.Classify(s.name, err)

		s.mu.Lock()
		if err != nil {
			var zero T
			s.data, s.err = zero, err
		} else {
			s.data, s.err = data, nil
		}
		s.isFetched = true
		s.isLoading = false
		s.mu.Unlock()

		return data, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Snapshot returns the current state without triggering a fetch. When a clone
// function is configured the returned data is an independent copy.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.data
	if s.clone != nil {
		data = s.clone(s.data)
	}
	return Snapshot[T]{
		Data:      data,
		Err:       s.err,
		IsLoading: s.isLoading,
		IsFetched: s.isFetched,
	}
}

// Update applies a mutation to successfully fetched data under the store's
// lock. It reports false when there is no data to mutate yet. This is the
// only sanctioned way to change cached data in place; snapshots are copies.
func (s *Store[T]) Update(mutate func(T) T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isFetched || s.err != nil {
		return false
	}
	s.data = mutate(s.data)
	return true
}

// SetResult commits a result produced outside the fetch path and marks the
// store fetched, so later EnsureLoaded calls are cache hits.
func (s *Store[T]) SetResult(data T, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		var zero T
		s.data, s.err = zero, err
	} else {
		s.data, s.err = data, nil
	}
	s.isFetched = true
	s.isLoading = false
}

// Reset returns the store to its unfetched state.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.data = zero
	s.err = nil
	s.isLoading = false
	s.isFetched = false
}
