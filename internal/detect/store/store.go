// Package store holds the most recent data URI regions of each buffer.
//
// Every completed scan replaces the whole region set of its buffer, so a
// reader sees either the previous set or the new one and never a mix of
// offsets from two buffer states.
package store

import (
	"sync"

	"github.com/dshills/urilens/internal/detect/match"
)

// Store maps buffer identities to their ordered region sets.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	regions map[string][]match.Region
}

// New creates an empty store.
func New() *Store {
	return &Store{
		regions: make(map[string][]match.Region),
	}
}

// Replace publishes regions as the complete set for bufferID.
// The slice is copied; later changes by the caller are not visible.
// An empty set is recorded as a known buffer with no regions.
func (s *Store) Replace(bufferID string, regions []match.Region) {
	published := match.Clone(regions)
	if published == nil {
		published = []match.Region{}
	}

	s.mu.Lock()
	s.regions[bufferID] = published
	s.mu.Unlock()
}

// Get returns the regions recorded for bufferID.
// Unknown buffers yield an empty slice.
func (s *Store) Get(bufferID string) []match.Region {
	s.mu.RLock()
	regions := s.regions[bufferID]
	s.mu.RUnlock()

	// Published slices are never mutated in place, but callers may be.
	return match.Clone(regions)
}

// Has returns true if a scan result has been recorded for bufferID.
func (s *Store) Has(bufferID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.regions[bufferID]
	return ok
}

// Delete discards the entry for bufferID.
func (s *Store) Delete(bufferID string) {
	s.mu.Lock()
	delete(s.regions, bufferID)
	s.mu.Unlock()
}

// Len returns the number of buffers with a recorded entry.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

// Buffers returns the identities of all buffers with a recorded entry.
func (s *Store) Buffers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.regions))
	for id := range s.regions {
		ids = append(ids, id)
	}
	return ids
}
