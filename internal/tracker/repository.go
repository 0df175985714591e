package tracker

import (
	"errors"
	"sync"
	"time"

	"speedrun-tracker/internal/speedrun"
)

// Registry is the explicit, concurrency-safe owner of live runs. It replaces
// a process-wide updater: the application root creates one and drives it.
//
// The speedrun core is single-threaded; every call into a run goes through
// the registry lock.
type Registry interface {
	// Register adds run for the given definition and returns its ID. At most
	// one run per definition may be live; an ended run for the same
	// definition is replaced.
	Register(defID DefinitionID, run *speedrun.Run) (RunID, error)

	// With calls fn with the run under the registry lock and returns its
	// error.
	With(id RunID, fn func(*speedrun.Run) error) error

	// LiveRun returns the ID of the definition's run that has not ended.
	LiveRun(defID DefinitionID) (RunID, bool)

	// Tick advances every active, unpaused run by delta and returns how
	// many runs were advanced.
	Tick(delta time.Duration) int

	// Snapshot returns a copy of the run's state.
	Snapshot(id RunID) (RunSnapshot, bool)

	// List returns snapshots of every registered run in registration order.
	List() []RunSnapshot

	// Discard removes a run regardless of its state.
	Discard(id RunID) error

	// ActiveRunCount returns the number of runs that have not ended.
	// Used for metrics.
	ActiveRunCount() int
}

var (
	// ErrRunNotFound is returned when no run is registered under an ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunLive is returned when registering a run for a definition that
	// already has a run in progress.
	ErrRunLive = errors.New("definition already has a live run")
)

// InMemoryRegistry is a concurrency-safe in-memory implementation of Registry.
// It uses a Store for persistence; by default that is an InMemoryStore.
type InMemoryRegistry struct {
	mu    sync.Mutex
	store Store
	seq   uint64
}

// NewInMemoryRegistry constructs a new registry with a default in-memory store.
func NewInMemoryRegistry() *InMemoryRegistry {
	return NewInMemoryRegistryWithStore(NewInMemoryStore())
}

// NewInMemoryRegistryWithStore constructs a registry that uses the given Store.
func NewInMemoryRegistryWithStore(store Store) *InMemoryRegistry {
	return &InMemoryRegistry{store: store}
}

// Register implements Registry.Register.
func (r *InMemoryRegistry) Register(defID DefinitionID, run *speedrun.Run) (RunID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.store.ListRunIDs() {
		e, ok := r.store.GetRun(id)
		if !ok || e.DefinitionID != defID {
			continue
		}
		if !e.Run.IsEnded() {
			return "", ErrRunLive
		}
		r.store.DeleteRun(id)
	}

	r.seq++
	e := &RunEntry{
		ID:           NewRunID(),
		DefinitionID: defID,
		Run:          run,
		RegisteredAt: time.Now().UTC(),
		Seq:          r.seq,
	}
	r.store.SetRun(e)
	return e.ID, nil
}

// With implements Registry.With.
func (r *InMemoryRegistry) With(id RunID, fn func(*speedrun.Run) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.store.GetRun(id)
	if !ok {
		return ErrRunNotFound
	}
	return fn(e.Run)
}

// LiveRun implements Registry.LiveRun.
func (r *InMemoryRegistry) LiveRun(defID DefinitionID) (RunID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.store.ListRunIDs() {
		if e, ok := r.store.GetRun(id); ok && e.DefinitionID == defID && !e.Run.IsEnded() {
			return id, true
		}
	}
	return "", false
}

// Tick implements Registry.Tick.
func (r *InMemoryRegistry) Tick(delta time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range r.store.ListRunIDs() {
		e, ok := r.store.GetRun(id)
		if !ok || !e.Run.IsActive() || e.Run.IsPaused() {
			continue
		}
		if err := e.Run.Update(delta); err == nil {
			n++
		}
	}
	return n
}

// Snapshot implements Registry.Snapshot.
func (r *InMemoryRegistry) Snapshot(id RunID) (RunSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.store.GetRun(id)
	if !ok {
		return RunSnapshot{}, false
	}
	return NewRunSnapshot(e.ID, e.Run), true
}

// List implements Registry.List.
func (r *InMemoryRegistry) List() []RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.store.ListRunIDs()
	out := make([]RunSnapshot, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.store.GetRun(id); ok {
			out = append(out, NewRunSnapshot(e.ID, e.Run))
		}
	}
	return out
}

// Discard implements Registry.Discard.
func (r *InMemoryRegistry) Discard(id RunID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store.GetRun(id); !ok {
		return ErrRunNotFound
	}
	r.store.DeleteRun(id)
	return nil
}

// ActiveRunCount implements Registry.ActiveRunCount.
func (r *InMemoryRegistry) ActiveRunCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range r.store.ListRunIDs() {
		if e, ok := r.store.GetRun(id); ok && !e.Run.IsEnded() {
			n++
		}
	}
	return n
}
