package speedrun

import (
	"fmt"
	"log/slog"
)

// EventKind identifies a state transition in the run tree.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventStepCompleted
	EventSegmentFinished
	EventSegmentCompleted
	EventSegmentCanceled
	EventSegmentEnded
	EventRunStarted
	EventRunPauseChanged
	EventRunFinished
	EventRunCompleted
	EventRunCanceled
	EventRunEnded
)

var eventNames = [...]string{
	EventUnknown:          "unknown",
	EventStepCompleted:    "step_completed",
	EventSegmentFinished:  "segment_finished",
	EventSegmentCompleted: "segment_completed",
	EventSegmentCanceled:  "segment_canceled",
	EventSegmentEnded:     "segment_ended",
	EventRunStarted:       "run_started",
	EventRunPauseChanged:  "run_pause_changed",
	EventRunFinished:      "run_finished",
	EventRunCompleted:     "run_completed",
	EventRunCanceled:      "run_canceled",
	EventRunEnded:         "run_ended",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventNames[k]
}

// Event carries the entity a transition happened on. Segment and Step are nil
// for run-level events; Paused is only meaningful for EventRunPauseChanged.
type Event struct {
	Kind    EventKind
	Run     *Run
	Segment *Segment
	Step    *Step
	Paused  bool
	Elapsed Milliseconds
}

// Listener receives events synchronously, in cascade order.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// emit delivers ev to every listener. A panicking listener is logged and
// skipped so it cannot break the cascade.
func (r *Run) emit(ev Event) {
	ev.Run = r
	ev.Elapsed = r.TimeMilliseconds()
	for _, sub := range r.listeners {
		r.deliver(sub.fn, ev)
	}
}

func (r *Run) deliver(fn Listener, ev Event) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("event listener panicked",
				slog.String("run", r.Name()),
				slog.String("event", ev.Kind.String()),
				slog.Any("panic", p))
		}
	}()
	fn(ev)
}
