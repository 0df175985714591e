package speedrun

import (
	"fmt"
	"log/slog"
)

// Segment owns an ordered sequence of steps and derives its finished,
// completed and ended state from them. Once ended it is immutable.
type Segment struct {
	def   *SegmentDefinition
	run   *Run
	steps []*Step

	finishedAt  *Milliseconds
	completedAt *Milliseconds
	canceledAt  *Milliseconds
}

func newSegment(def *SegmentDefinition, run *Run) *Segment {
	seg := &Segment{def: def, run: run}
	for i, sd := range def.Steps {
		if sd == nil {
			run.log.Warn("dropping step with no definition",
				slog.String("run", run.Name()),
				slog.String("segment", def.DisplayName()),
				slog.Int("index", i))
			continue
		}
		seg.steps = append(seg.steps, newStep(sd, seg))
	}
	if len(seg.steps) == 0 {
		run.log.Warn("segment has no valid steps, canceling",
			slog.String("run", run.Name()),
			slog.String("segment", def.DisplayName()))
		seg.canceledAt = stamp(0)
	}
	return seg
}

// Definition returns the definition the segment was built from.
func (s *Segment) Definition() *SegmentDefinition { return s.def }

// Run returns the owning run.
func (s *Segment) Run() *Run { return s.run }

// ID returns the definition ID.
func (s *Segment) ID() string { return s.def.ID }

// Name returns the display name.
func (s *Segment) Name() string { return s.def.DisplayName() }

// Steps returns the segment's steps in definition order.
func (s *Segment) Steps() []*Step { return s.steps }

// FinishedAt returns the elapsed time the finish was pinned at, or nil.
// Checkpoint-free segments are finished without a timestamp.
func (s *Segment) FinishedAt() *Milliseconds { return s.finishedAt }

// CompletedAt returns the elapsed time of completion, or nil.
func (s *Segment) CompletedAt() *Milliseconds { return s.completedAt }

// CanceledAt returns the elapsed time of cancellation, or nil.
func (s *Segment) CanceledAt() *Milliseconds { return s.canceledAt }

// IsFinished reports whether the finish was pinned, or the segment has no
// checkpoint steps at all.
func (s *Segment) IsFinished() bool {
	return s.finishedAt != nil || !s.hasCheckpoints()
}

// IsCompleted reports whether every step is completed. A segment without
// steps is canceled, never completed.
func (s *Segment) IsCompleted() bool {
	return len(s.steps) > 0 && s.allCompleted(false)
}

// IsCanceled reports whether the segment was canceled.
func (s *Segment) IsCanceled() bool { return s.canceledAt != nil }

// IsEnded reports whether the segment accepts no further transitions.
func (s *Segment) IsEnded() bool {
	if s.IsCompleted() || s.IsCanceled() {
		return true
	}
	return s.finishedAt != nil && s.run.settings.EndSegmentOnFinish
}

// CompletionRatio returns completed steps over total steps.
func (s *Segment) CompletionRatio() float64 {
	if len(s.steps) == 0 {
		return 0
	}
	return float64(s.completedSteps()) / float64(len(s.steps))
}

// FindStep returns the step built from def, or nil.
func (s *Segment) FindStep(def *StepDefinition) *Step {
	for _, st := range s.steps {
		if sameStep(st.def, def) {
			return st
		}
	}
	return nil
}

// StepByID returns the step whose definition ID is id, or nil.
func (s *Segment) StepByID(id string) *Step {
	for _, st := range s.steps {
		if st.def.ID == id {
			return st
		}
	}
	return nil
}

// Finish pins the segment's finish at the run's current elapsed time.
func (s *Segment) Finish() error {
	switch {
	case !s.run.IsActive():
		return s.fail("finish", ErrRunNotActive)
	case s.IsEnded():
		return s.fail("finish", ErrSegmentEnded)
	case s.IsFinished():
		return s.fail("finish", ErrSegmentAlreadyFinished)
	}

	s.markFinished()
	if s.IsEnded() {
		s.run.emit(Event{Kind: EventSegmentEnded, Segment: s})
	}
	s.run.onSegmentChanged()
	return nil
}

// Cancel aborts the segment.
func (s *Segment) Cancel() error {
	switch {
	case !s.run.IsActive():
		return s.fail("cancel", ErrRunNotActive)
	case s.IsEnded():
		return s.fail("cancel", ErrSegmentEnded)
	}

	s.canceledAt = stamp(s.run.TimeMilliseconds())
	s.run.emit(Event{Kind: EventSegmentCanceled, Segment: s})
	s.run.emit(Event{Kind: EventSegmentEnded, Segment: s})
	s.run.onSegmentChanged()
	return nil
}

// onStepChanged re-derives state after a child step completed. Whatever
// transitions happen, the run is notified exactly once at the end.
func (s *Segment) onStepChanged() {
	if s.endedPinned() {
		return
	}

	finishedNow := false
	if s.finishedAt == nil && !s.run.settings.ManualFinish && s.hasCheckpoints() && s.allCompleted(true) {
		s.markFinished()
		finishedNow = true
	}

	if s.completedAt == nil && s.IsCompleted() {
		// A finish pinned in this same cascade shares its timestamp so
		// completedAt is never earlier than finishedAt.
		if s.finishedAt == nil && s.hasCheckpoints() {
			s.markFinished()
			finishedNow = true
		}
		at := s.run.TimeMilliseconds()
		if finishedNow {
			at = *s.finishedAt
		}
		s.completedAt = stamp(at)
		s.run.emit(Event{Kind: EventSegmentCompleted, Segment: s})
	}

	if s.IsEnded() {
		s.run.emit(Event{Kind: EventSegmentEnded, Segment: s})
	}
	s.run.onSegmentChanged()
}

// endedPinned reports ended state from pinned timestamps only. The step that
// triggered this cascade may already make IsCompleted true.
func (s *Segment) endedPinned() bool {
	if s.completedAt != nil || s.canceledAt != nil {
		return true
	}
	return s.finishedAt != nil && s.run.settings.EndSegmentOnFinish
}

// markFinished pins the finish and fires the finish event without notifying
// the run.
func (s *Segment) markFinished() {
	s.finishedAt = stamp(s.run.TimeMilliseconds())
	s.run.emit(Event{Kind: EventSegmentFinished, Segment: s})
}

func (s *Segment) hasCheckpoints() bool {
	for _, st := range s.steps {
		if st.IsCheckpoint() {
			return true
		}
	}
	return false
}

// allCompleted reports whether every step (or every checkpoint step, when
// checkpointsOnly is set) is completed.
func (s *Segment) allCompleted(checkpointsOnly bool) bool {
	for _, st := range s.steps {
		if checkpointsOnly && !st.IsCheckpoint() {
			continue
		}
		if !st.IsCompleted() {
			return false
		}
	}
	return true
}

func (s *Segment) completedSteps() int {
	n := 0
	for _, st := range s.steps {
		if st.IsCompleted() {
			n++
		}
	}
	return n
}

func (s *Segment) fail(op string, err error) error {
	err = fmt.Errorf("%s segment %q: %w", op, s.Name(), err)
	s.run.warn(err, "segment", s.Name())
	return err
}
