// Package speedrun tracks a live speedrun against a definition tree of
// segments and steps: pause-aware timing plus cascading finish, complete and
// cancel state.
//
// The package is single-threaded. Callers that drive a Run from several
// goroutines must serialize access themselves.
package speedrun

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Option configures a Run.
type Option func(*Run)

// WithLogger sets the logger precondition failures and listener panics are
// reported to. The default discards.
func WithLogger(log *slog.Logger) Option {
	return func(r *Run) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock overrides the wall clock used for started/paused/resumed stamps.
func WithClock(c Clock) Option {
	return func(r *Run) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithListener subscribes l before any event can fire.
func WithListener(l Listener) Option {
	return func(r *Run) { r.Subscribe(l) }
}

// Run is one playthrough of a RunDefinition. It owns its segments, the
// elapsed timer and the pause bookkeeping.
type Run struct {
	def      *RunDefinition
	settings Settings
	segments []*Segment

	log       *slog.Logger
	clock     Clock
	listeners []subscription
	nextSub   int

	// tick is advanced only by Update. While timing, elapsed is
	// accumulated + (tick - anchor); otherwise it is frozen at accumulated.
	tick        time.Duration
	anchor      Milliseconds
	accumulated Milliseconds
	timing      bool

	startedAt *time.Time
	pausedAt  *time.Time
	resumedAt *time.Time

	finishedAt  *Milliseconds
	completedAt *Milliseconds
	canceledAt  *Milliseconds
}

// NewRun builds the segment and step tree for def. Segments without a
// definition are dropped; a run left with no segments is canceled at once.
func NewRun(def *RunDefinition, opts ...Option) *Run {
	r := &Run{
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if def == nil {
		r.log.Warn("run has no definition")
		def = &RunDefinition{}
	}
	r.def = def
	r.settings = def.Settings

	for i, sd := range def.Segments {
		if sd == nil {
			r.log.Warn("dropping segment with no definition",
				slog.String("run", r.Name()),
				slog.Int("index", i))
			continue
		}
		r.segments = append(r.segments, newSegment(sd, r))
	}
	if len(r.segments) == 0 {
		r.log.Warn("run has no valid segments, canceling", slog.String("run", r.Name()))
		r.canceledAt = stamp(0)
	}
	return r
}

// Definition returns the definition the run was built from.
func (r *Run) Definition() *RunDefinition { return r.def }

// Settings returns the settings snapshot taken at construction.
func (r *Run) Settings() Settings { return r.settings }

// ID returns the definition ID.
func (r *Run) ID() string { return r.def.ID }

// Name returns the display name.
func (r *Run) Name() string { return r.def.DisplayName() }

// Segments returns the segments in definition order.
func (r *Run) Segments() []*Segment { return r.segments }

// StartedAt returns the wall time of Start, or nil.
func (r *Run) StartedAt() *time.Time { return r.startedAt }

// PausedAt returns the wall time of the current pause, or nil.
func (r *Run) PausedAt() *time.Time { return r.pausedAt }

// ResumedAt returns the wall time of the last Resume, or nil.
func (r *Run) ResumedAt() *time.Time { return r.resumedAt }

// FinishedAt returns the elapsed time every segment was finished at, or nil.
func (r *Run) FinishedAt() *Milliseconds { return r.finishedAt }

// CompletedAt returns the elapsed time of completion, or nil.
func (r *Run) CompletedAt() *Milliseconds { return r.completedAt }

// CanceledAt returns the elapsed time of cancellation, or nil.
func (r *Run) CanceledAt() *Milliseconds { return r.canceledAt }

// IsStarted reports whether Start has succeeded.
func (r *Run) IsStarted() bool { return r.startedAt != nil }

// IsActive reports whether the run is started and not yet ended.
func (r *Run) IsActive() bool { return r.IsStarted() && !r.IsEnded() }

// IsPaused reports whether the run is paused. An ended run is never paused.
func (r *Run) IsPaused() bool { return r.pausedAt != nil }

// IsCanceled reports whether the run was canceled.
func (r *Run) IsCanceled() bool { return r.canceledAt != nil }

// IsFinished reports whether every segment is finished, or the finish has
// already been pinned.
func (r *Run) IsFinished() bool {
	if r.finishedAt != nil {
		return true
	}
	return r.IsStarted() && r.allSegments((*Segment).IsFinished)
}

// IsCompleted reports whether every segment is completed.
func (r *Run) IsCompleted() bool {
	return r.IsStarted() && len(r.segments) > 0 && r.allSegments((*Segment).IsCompleted)
}

// IsEnded reports whether the run is terminal.
func (r *Run) IsEnded() bool {
	if r.IsCompleted() || r.IsCanceled() {
		return true
	}
	return r.finishedAt != nil && r.settings.EndSpeedrunOnFinish
}

// TimeMilliseconds returns elapsed run time, excluding paused intervals.
func (r *Run) TimeMilliseconds() Milliseconds {
	if !r.timing {
		return r.accumulated
	}
	return r.accumulated + r.now() - r.anchor
}

// CompletionRatio returns completed steps over total steps across all
// segments.
func (r *Run) CompletionRatio() float64 {
	total, done := 0, 0
	for _, seg := range r.segments {
		total += len(seg.steps)
		done += seg.completedSteps()
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// Subscribe registers l for every event in the run tree and returns a
// function that removes it.
func (r *Run) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	r.nextSub++
	id := r.nextSub
	r.listeners = append(r.listeners, subscription{id: id, fn: l})
	return func() {
		for i, sub := range r.listeners {
			if sub.id == id {
				r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// Start begins timing. Calling Start on a paused run resumes it.
func (r *Run) Start() error {
	if r.IsEnded() {
		return r.fail("start", ErrRunEnded)
	}
	if r.IsStarted() {
		if r.IsPaused() {
			return r.Resume()
		}
		return r.fail("start", ErrRunAlreadyStarted)
	}

	r.startedAt = wall(r.clock())
	r.anchor = r.now()
	r.timing = true
	r.emit(Event{Kind: EventRunStarted})

	// Segments without checkpoints are finished from the start; a run made
	// only of them is finished at 0.
	r.onSegmentChanged()
	return nil
}

// Pause freezes elapsed time. Pausing a paused run succeeds without change.
func (r *Run) Pause() error {
	if err := r.checkLive("pause"); err != nil {
		return err
	}
	if r.IsPaused() {
		return nil
	}

	r.freeze()
	r.pausedAt = wall(r.clock())
	r.emit(Event{Kind: EventRunPauseChanged, Paused: true})
	return nil
}

// Resume restarts timing after Pause. Resuming a running run succeeds
// without change.
func (r *Run) Resume() error {
	if err := r.checkLive("resume"); err != nil {
		return err
	}
	if !r.IsPaused() {
		return nil
	}

	r.pausedAt = nil
	r.resumedAt = wall(r.clock())
	r.anchor = r.now()
	r.timing = true
	r.emit(Event{Kind: EventRunPauseChanged, Paused: false})
	return nil
}

// Cancel aborts the run and freezes its elapsed time.
func (r *Run) Cancel() error {
	if err := r.checkLive("cancel"); err != nil {
		return err
	}

	r.freeze()
	r.pausedAt = nil
	r.canceledAt = stamp(r.accumulated)
	r.emit(Event{Kind: EventRunCanceled})
	r.emit(Event{Kind: EventRunEnded})
	return nil
}

// Update advances the run timer by delta, the real time since the previous
// tick. The driving loop must call it at most once per tick.
func (r *Run) Update(delta time.Duration) error {
	if err := r.checkLive("update"); err != nil {
		return err
	}
	if r.IsPaused() {
		return r.fail("update", ErrRunPaused)
	}
	if delta < 0 {
		return r.fail("update", ErrNegativeDelta)
	}
	r.tick += delta
	return nil
}

// FindSegment returns the segment built from def, or nil.
func (r *Run) FindSegment(def *SegmentDefinition) *Segment {
	for _, seg := range r.segments {
		if sameSegment(seg.def, def) {
			return seg
		}
	}
	return nil
}

// FindStep returns the step built from def, or nil.
func (r *Run) FindStep(def *StepDefinition) *Step {
	for _, seg := range r.segments {
		if st := seg.FindStep(def); st != nil {
			return st
		}
	}
	return nil
}

// SegmentByID returns the segment whose definition ID is id, or nil.
func (r *Run) SegmentByID(id string) *Segment {
	for _, seg := range r.segments {
		if seg.def.ID == id {
			return seg
		}
	}
	return nil
}

// StepByID returns the first step whose definition ID is id, or nil.
func (r *Run) StepByID(id string) *Step {
	for _, seg := range r.segments {
		if st := seg.StepByID(id); st != nil {
			return st
		}
	}
	return nil
}

// onSegmentChanged re-derives run state after a segment transition.
func (r *Run) onSegmentChanged() {
	if r.endedPinned() {
		return
	}

	if r.finishedAt == nil && r.allSegments((*Segment).IsFinished) {
		if r.settings.EndSpeedrunOnFinish {
			r.freeze()
		}
		r.finishedAt = stamp(r.TimeMilliseconds())
		r.emit(Event{Kind: EventRunFinished})
	}

	if r.completedAt == nil && r.IsCompleted() {
		r.freeze()
		r.completedAt = stamp(r.accumulated)
		r.emit(Event{Kind: EventRunCompleted})
	}

	if r.IsEnded() {
		r.freeze()
		r.pausedAt = nil
		r.emit(Event{Kind: EventRunEnded})
	}
}

// endedPinned reports ended state from pinned timestamps only. Derived
// completion can already be true mid-cascade, before it has been recorded.
func (r *Run) endedPinned() bool {
	if r.completedAt != nil || r.canceledAt != nil {
		return true
	}
	return r.finishedAt != nil && r.settings.EndSpeedrunOnFinish
}

// freeze folds the running interval into the accumulator exactly once.
func (r *Run) freeze() {
	if !r.timing {
		return
	}
	r.accumulated = r.TimeMilliseconds()
	r.timing = false
}

func (r *Run) now() Milliseconds {
	return Milliseconds(r.tick.Milliseconds())
}

func (r *Run) allSegments(pred func(*Segment) bool) bool {
	for _, seg := range r.segments {
		if !pred(seg) {
			return false
		}
	}
	return true
}

func (r *Run) checkLive(op string) error {
	if !r.IsStarted() {
		return r.fail(op, ErrRunNotStarted)
	}
	if r.IsEnded() {
		return r.fail(op, ErrRunEnded)
	}
	return nil
}

func (r *Run) fail(op string, err error) error {
	err = fmt.Errorf("%s run %q: %w", op, r.Name(), err)
	r.warn(err)
	return err
}

func (r *Run) warn(err error, attrs ...any) {
	args := append([]any{slog.String("run", r.Name()), slog.String("error", err.Error())}, attrs...)
	r.log.Warn("speedrun transition rejected", args...)
}
