package tracker

import (
	"sort"
	"time"

	"speedrun-tracker/internal/speedrun"
)

// RunEntry is a registered run together with its registry metadata.
type RunEntry struct {
	ID           RunID
	DefinitionID DefinitionID
	Run          *speedrun.Run
	RegisteredAt time.Time

	// Seq orders entries by registration.
	Seq uint64
}

// Store is the persistence abstraction for registered runs.
// Implementations can be in-memory, file-based, or remote.
// The Registry uses Store for all reads and writes and holds its own lock;
// Store implementations need not be safe for concurrent use.
type Store interface {
	GetRun(id RunID) (*RunEntry, bool)
	SetRun(e *RunEntry)
	DeleteRun(id RunID)
	ListRunIDs() []RunID
}

// InMemoryStore is an in-memory implementation of Store.
type InMemoryStore struct {
	runs map[RunID]*RunEntry
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		runs: make(map[RunID]*RunEntry),
	}
}

// GetRun implements Store.GetRun.
func (s *InMemoryStore) GetRun(id RunID) (*RunEntry, bool) {
	e, ok := s.runs[id]
	return e, ok
}

// SetRun implements Store.SetRun.
func (s *InMemoryStore) SetRun(e *RunEntry) {
	s.runs[e.ID] = e
}

// DeleteRun implements Store.DeleteRun.
func (s *InMemoryStore) DeleteRun(id RunID) {
	delete(s.runs, id)
}

// ListRunIDs implements Store.ListRunIDs. IDs are ordered by Seq so ticks
// visit runs in a stable order.
func (s *InMemoryStore) ListRunIDs() []RunID {
	ids := make([]RunID, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.runs[ids[i]].Seq < s.runs[ids[j]].Seq
	})
	return ids
}
