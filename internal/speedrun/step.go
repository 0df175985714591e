package speedrun

import "fmt"

// Step is the leaf of the run tree. Once completed it never reverts.
type Step struct {
	def         *StepDefinition
	segment     *Segment
	completedAt *Milliseconds
}

func newStep(def *StepDefinition, seg *Segment) *Step {
	return &Step{def: def, segment: seg}
}

// Definition returns the definition the step was built from.
func (s *Step) Definition() *StepDefinition { return s.def }

// Segment returns the owning segment.
func (s *Step) Segment() *Segment { return s.segment }

// ID returns the definition ID.
func (s *Step) ID() string { return s.def.ID }

// Name returns the display name.
func (s *Step) Name() string { return s.def.DisplayName() }

// IsCheckpoint reports whether the step counts toward its segment's finish.
func (s *Step) IsCheckpoint() bool { return s.def.Checkpoint }

// IsCompleted reports whether Complete has succeeded.
func (s *Step) IsCompleted() bool { return s.completedAt != nil }

// CompletedAt returns the run elapsed time at completion, or nil.
func (s *Step) CompletedAt() *Milliseconds { return s.completedAt }

// Complete marks the step done. The timestamp is the run's elapsed time, not
// wall time, so restored runs stay consistent. The owning segment is notified
// exactly once per successful call.
func (s *Step) Complete() error {
	seg := s.segment
	run := seg.run
	switch {
	case !run.IsStarted():
		return s.fail(ErrRunNotStarted)
	case run.IsEnded():
		return s.fail(ErrRunEnded)
	case seg.IsEnded():
		return s.fail(ErrSegmentEnded)
	case s.IsCompleted():
		return s.fail(ErrStepAlreadyCompleted)
	}

	s.completedAt = stamp(run.TimeMilliseconds())
	run.emit(Event{Kind: EventStepCompleted, Segment: seg, Step: s})
	seg.onStepChanged()
	return nil
}

func (s *Step) fail(err error) error {
	err = fmt.Errorf("complete step %q: %w", s.Name(), err)
	s.segment.run.warn(err, "segment", s.segment.Name(), "step", s.Name())
	return err
}
