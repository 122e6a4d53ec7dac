package tracker

import (
	"sync"

	"invbot/internal/inventory"
)

// Store maps account id -> last successfully fetched snapshot.
//
// An entry appears on the first successful fetch, is overwritten wholesale
// on every later one and is never removed for the life of the process. The
// sweep loop is the only writer; the mutex still guards against future
// readers (status endpoints and the like).
type Store struct {
	mu    sync.Mutex
	snaps map[string]inventory.Snapshot
}

func NewStore() *Store {
	return &Store{snaps: make(map[string]inventory.Snapshot)}
}

// Get returns the stored snapshot for account and whether one exists.
func (s *Store) Get(account string) (inventory.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[account]
	return snap, ok
}

// Put replaces the stored snapshot for account.
func (s *Store) Put(account string, snap inventory.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[account] = snap
}

// Len returns the number of accounts with a stored baseline.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}
