package metrics

import (
	"speedrun-tracker/internal/speedrun"
)

// RunListener returns a speedrun.Listener that records run tree events.
func (m *Metrics) RunListener() speedrun.Listener {
	return func(ev speedrun.Event) {
		m.eventsTotal.WithLabelValues(ev.Kind.String()).Inc()

		def := ev.Run.ID()
		switch ev.Kind {
		case speedrun.EventRunStarted:
			m.runsStarted.WithLabelValues(def).Inc()
		case speedrun.EventStepCompleted:
			m.stepsCompleted.WithLabelValues(def).Inc()
		case speedrun.EventRunEnded:
			outcome := runOutcome(ev.Run)
			m.runsEnded.WithLabelValues(def, outcome).Inc()
			m.runTimeSeconds.WithLabelValues(def, outcome).Observe(ev.Elapsed.Duration().Seconds())
		}
	}
}

func runOutcome(r *speedrun.Run) string {
	switch {
	case r.IsCompleted():
		return "completed"
	case r.IsCanceled():
		return "canceled"
	default:
		return "finished"
	}
}
