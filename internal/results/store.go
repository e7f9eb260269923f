// Package results holds the latest scan outcome behind an explicit
// single-writer, multi-reader cell, replacing ambient global state.
package results

import (
	"sync"
	"time"

	"swingbot/internal/types"
)

// Store is the latest-results cell. The scan loop is the only writer; HTTP
// handlers read concurrently.
type Store struct {
	mu      sync.RWMutex
	latest  *types.ScanResult
	updated time.Time
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored result.
func (s *Store) Set(res *types.ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = res
	s.updated = time.Now()
}

// Latest returns the most recent result and its timestamp. ok is false when
// no scan has completed yet.
func (s *Store) Latest() (res *types.ScanResult, updated time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, time.Time{}, false
	}
	return s.latest, s.updated, true
}
