package tracker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"speedrun-tracker/internal/speedrun"
)

var (
	// ErrSegmentNotFound is returned when a run has no segment with the given ID.
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrStepNotFound is returned when a run has no step with the given ID.
	ErrStepNotFound = errors.New("step not found")
)

// Service creates runs from the catalog and routes commands to them through
// the Registry.
type Service struct {
	registry Registry
	catalog  *Catalog
	log      *slog.Logger
	listener speedrun.Listener
}

// NewService returns a Service over registry and catalog. listener, if not
// nil, is subscribed to every run the service creates.
func NewService(registry Registry, catalog *Catalog, log *slog.Logger, listener speedrun.Listener) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{registry: registry, catalog: catalog, log: log, listener: listener}
}

// Definitions lists the catalog.
func (s *Service) Definitions() []DefinitionSummary {
	return s.catalog.List()
}

// StartRun instantiates and starts a run of the given definition. It fails
// with ErrRunLive while a previous run of the same definition has not ended.
func (s *Service) StartRun(defID DefinitionID) (RunSnapshot, error) {
	def, ok := s.catalog.Get(defID)
	if !ok {
		return RunSnapshot{}, ErrDefinitionNotFound
	}

	opts := []speedrun.Option{speedrun.WithLogger(s.log.With(slog.String("definition", string(defID))))}
	if s.listener != nil {
		opts = append(opts, speedrun.WithListener(s.listener))
	}
	run := speedrun.NewRun(def, opts...)

	id, err := s.registry.Register(defID, run)
	if err != nil {
		return RunSnapshot{}, err
	}
	if err := s.registry.With(id, (*speedrun.Run).Start); err != nil {
		_ = s.registry.Discard(id)
		return RunSnapshot{}, err
	}
	return s.snapshot(id)
}

// Pause pauses a run.
func (s *Service) Pause(id RunID) (RunSnapshot, error) {
	return s.apply(id, (*speedrun.Run).Pause)
}

// Resume resumes a paused run.
func (s *Service) Resume(id RunID) (RunSnapshot, error) {
	return s.apply(id, (*speedrun.Run).Resume)
}

// Cancel cancels a run.
func (s *Service) Cancel(id RunID) (RunSnapshot, error) {
	return s.apply(id, (*speedrun.Run).Cancel)
}

// FinishSegment explicitly finishes a segment of a run.
func (s *Service) FinishSegment(id RunID, segmentID string) (RunSnapshot, error) {
	return s.apply(id, func(run *speedrun.Run) error {
		seg := run.SegmentByID(segmentID)
		if seg == nil {
			return fmt.Errorf("%w: %q", ErrSegmentNotFound, segmentID)
		}
		return seg.Finish()
	})
}

// CancelSegment cancels a segment of a run.
func (s *Service) CancelSegment(id RunID, segmentID string) (RunSnapshot, error) {
	return s.apply(id, func(run *speedrun.Run) error {
		seg := run.SegmentByID(segmentID)
		if seg == nil {
			return fmt.Errorf("%w: %q", ErrSegmentNotFound, segmentID)
		}
		return seg.Cancel()
	})
}

// CompleteStep completes a step of a run.
func (s *Service) CompleteStep(id RunID, stepID string) (RunSnapshot, error) {
	return s.apply(id, func(run *speedrun.Run) error {
		st := run.StepByID(stepID)
		if st == nil {
			return fmt.Errorf("%w: %q", ErrStepNotFound, stepID)
		}
		return st.Complete()
	})
}

// CompleteStepByDefinition completes a step on the live run of a definition.
// Gameplay triggers use it without tracking run IDs.
func (s *Service) CompleteStepByDefinition(defID DefinitionID, stepID string) (RunSnapshot, error) {
	if _, ok := s.catalog.Get(defID); !ok {
		return RunSnapshot{}, ErrDefinitionNotFound
	}
	id, ok := s.registry.LiveRun(defID)
	if !ok {
		return RunSnapshot{}, ErrRunNotFound
	}
	return s.CompleteStep(id, stepID)
}

// Snapshot returns the current state of a run.
func (s *Service) Snapshot(id RunID) (RunSnapshot, bool) {
	return s.registry.Snapshot(id)
}

// List returns every registered run.
func (s *Service) List() []RunSnapshot {
	return s.registry.List()
}

// Splits renders a run's split table.
func (s *Service) Splits(id RunID) (string, bool) {
	snap, ok := s.registry.Snapshot(id)
	if !ok {
		return "", false
	}
	return BuildSplits(snap), true
}

// Discard removes a run from the registry.
func (s *Service) Discard(id RunID) error {
	return s.registry.Discard(id)
}

// Tick advances every running run by delta.
func (s *Service) Tick(delta time.Duration) int {
	return s.registry.Tick(delta)
}

// ActiveRunCount returns the number of runs that have not ended.
func (s *Service) ActiveRunCount() int {
	return s.registry.ActiveRunCount()
}

func (s *Service) apply(id RunID, fn func(*speedrun.Run) error) (RunSnapshot, error) {
	if err := s.registry.With(id, fn); err != nil {
		return RunSnapshot{}, err
	}
	return s.snapshot(id)
}

func (s *Service) snapshot(id RunID) (RunSnapshot, error) {
	snap, ok := s.registry.Snapshot(id)
	if !ok {
		return RunSnapshot{}, ErrRunNotFound
	}
	return snap, nil
}
