// Package state owns the single process-wide presentation state. It is
// mutated only through the three transitions below; merge rules live here
// and nowhere else.
package state

import (
	"sync"

	"github.com/Markrodriguez1105/Live-Score-Board/internal/scores"
)

// Snapshot is the full presentation state sent to clients, both on connect
// and after every accepted mutation.
type Snapshot struct {
	Index      int                      `json:"index"`
	Candidates []scores.CandidateRecord `json:"candidates"`
	Idle       bool                     `json:"idle"`
	Category   string                   `json:"category"`
}

// Store holds the presentation state for the lifetime of the process.
// Transitions replace fields wholesale and resolve concurrent writers by
// last-write-wins in arrival order; there is no versioning or conflict
// detection. The store never validates Index against the candidate list —
// out-of-range indices are clamped by display clients.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore creates a store with the initial state: index 0, no candidates,
// not idle, category unset.
func NewStore() *Store {
	return &Store{
		snap: Snapshot{Candidates: []scores.CandidateRecord{}},
	}
}

// Snapshot returns a copy of the current state. The candidate slice is
// shared but treated as immutable: transitions replace it, never patch it.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetIndex moves the display pointer. When candidates is non-nil the
// candidate list is replaced wholesale; idle and category are untouched.
func (s *Store) SetIndex(index int, candidates []scores.CandidateRecord) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Index = index
	if candidates != nil {
		s.snap.Candidates = candidates
	}
	return s.snap
}

// SetIdle flips the idle flag and touches nothing else.
func (s *Store) SetIdle(idle bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Idle = idle
	return s.snap
}

// SetCategory switches the active section. The index always resets to 0;
// when candidates is non-nil the list is replaced wholesale; idle is
// untouched.
func (s *Store) SetCategory(category string, candidates []scores.CandidateRecord) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Category = category
	s.snap.Index = 0
	if candidates != nil {
		s.snap.Candidates = candidates
	}
	return s.snap
}
