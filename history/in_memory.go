package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dewantaratirta/agentkit/core"
)

// ErrDuplicateTurn is returned by Append when a turn with the same ID was
// already recorded.
var ErrDuplicateTurn = errors.New("duplicate turn id")

// InMemoryStore is a volatile core.History keeping every turn in a process
// local slice. It is safe for concurrent access: each Append and Snapshot is
// atomic, but the relative order of turns appended by concurrent callers is
// whatever order they acquired the lock in.
type InMemoryStore struct {
	mu    sync.RWMutex
	turns []core.Turn
	ids   map[string]struct{}
}

// NewInMemoryStore constructs an empty in-memory history.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{ids: make(map[string]struct{})}
}

// Append records a clone of turn at the end of the log.
func (s *InMemoryStore) Append(turn core.Turn) error {
	if turn.ID == "" {
		return fmt.Errorf("append turn: empty id")
	}
	if !turn.Role.Valid() {
		return fmt.Errorf("append turn %s: invalid role %q", turn.ID, turn.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[turn.ID]; exists {
		return fmt.Errorf("append turn %s: %w", turn.ID, ErrDuplicateTurn)
	}

	s.ids[turn.ID] = struct{}{}
	s.turns = append(s.turns, turn.Clone())

	return nil
}

// Snapshot returns a copy of the full log in insertion order.
func (s *InMemoryStore) Snapshot() []core.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]core.Turn, len(s.turns))
	for i, t := range s.turns {
		turns[i] = t.Clone()
	}

	return turns
}

// Len returns the number of recorded turns.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}
