package tracker

import (
	"time"

	"github.com/google/uuid"

	"speedrun-tracker/internal/speedrun"
)

// RunID uniquely identifies a registered run.
type RunID string

// DefinitionID identifies a run definition in the catalog.
type DefinitionID string

// NewRunID returns a random run identifier.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

// StepSnapshot is the JSON view of a step.
type StepSnapshot struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Checkpoint  bool                   `json:"checkpoint"`
	Completed   bool                   `json:"completed"`
	CompletedAt *speedrun.Milliseconds `json:"completed_at_ms,omitempty"`
}

// SegmentSnapshot is the JSON view of a segment.
type SegmentSnapshot struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Finished        bool                   `json:"finished"`
	Completed       bool                   `json:"completed"`
	Canceled        bool                   `json:"canceled"`
	Ended           bool                   `json:"ended"`
	CompletionRatio float64                `json:"completion_ratio"`
	FinishedAt      *speedrun.Milliseconds `json:"finished_at_ms,omitempty"`
	CompletedAt     *speedrun.Milliseconds `json:"completed_at_ms,omitempty"`
	CanceledAt      *speedrun.Milliseconds `json:"canceled_at_ms,omitempty"`
	Steps           []StepSnapshot         `json:"steps"`
}

// RunSnapshot is the JSON view of a run, copied out under the registry lock.
type RunSnapshot struct {
	ID              RunID                  `json:"id"`
	DefinitionID    DefinitionID           `json:"definition_id"`
	Name            string                 `json:"name"`
	Started         bool                   `json:"started"`
	Active          bool                   `json:"active"`
	Paused          bool                   `json:"paused"`
	Finished        bool                   `json:"finished"`
	Completed       bool                   `json:"completed"`
	Canceled        bool                   `json:"canceled"`
	Ended           bool                   `json:"ended"`
	CompletionRatio float64                `json:"completion_ratio"`
	TimeMS          speedrun.Milliseconds  `json:"time_ms"`
	Time            string                 `json:"time"`
	StartedAt       *time.Time             `json:"started_at,omitempty"`
	PausedAt        *time.Time             `json:"paused_at,omitempty"`
	ResumedAt       *time.Time             `json:"resumed_at,omitempty"`
	FinishedAt      *speedrun.Milliseconds `json:"finished_at_ms,omitempty"`
	CompletedAt     *speedrun.Milliseconds `json:"completed_at_ms,omitempty"`
	CanceledAt      *speedrun.Milliseconds `json:"canceled_at_ms,omitempty"`
	Segments        []SegmentSnapshot      `json:"segments"`
}

// DefinitionSummary is the JSON view of a catalog entry.
type DefinitionSummary struct {
	ID       DefinitionID      `json:"id"`
	Name     string            `json:"name"`
	Settings speedrun.Settings `json:"settings"`
	Segments int               `json:"segments"`
	Steps    int               `json:"steps"`
}

// NewRunSnapshot copies the state of run. Caller must hold the registry lock.
func NewRunSnapshot(id RunID, run *speedrun.Run) RunSnapshot {
	snap := RunSnapshot{
		ID:              id,
		DefinitionID:    DefinitionID(run.ID()),
		Name:            run.Name(),
		Started:         run.IsStarted(),
		Active:          run.IsActive(),
		Paused:          run.IsPaused(),
		Finished:        run.IsFinished(),
		Completed:       run.IsCompleted(),
		Canceled:        run.IsCanceled(),
		Ended:           run.IsEnded(),
		CompletionRatio: run.CompletionRatio(),
		TimeMS:          run.TimeMilliseconds(),
		Time:            run.TimeMilliseconds().String(),
		StartedAt:       run.StartedAt(),
		PausedAt:        run.PausedAt(),
		ResumedAt:       run.ResumedAt(),
		FinishedAt:      run.FinishedAt(),
		CompletedAt:     run.CompletedAt(),
		CanceledAt:      run.CanceledAt(),
		Segments:        make([]SegmentSnapshot, 0, len(run.Segments())),
	}
	for _, seg := range run.Segments() {
		ss := SegmentSnapshot{
			ID:              seg.ID(),
			Name:            seg.Name(),
			Finished:        seg.IsFinished(),
			Completed:       seg.IsCompleted(),
			Canceled:        seg.IsCanceled(),
			Ended:           seg.IsEnded(),
			CompletionRatio: seg.CompletionRatio(),
			FinishedAt:      seg.FinishedAt(),
			CompletedAt:     seg.CompletedAt(),
			CanceledAt:      seg.CanceledAt(),
			Steps:           make([]StepSnapshot, 0, len(seg.Steps())),
		}
		for _, st := range seg.Steps() {
			ss.Steps = append(ss.Steps, StepSnapshot{
				ID:          st.ID(),
				Name:        st.Name(),
				Checkpoint:  st.IsCheckpoint(),
				Completed:   st.IsCompleted(),
				CompletedAt: st.CompletedAt(),
			})
		}
		snap.Segments = append(snap.Segments, ss)
	}
	return snap
}

// Summarize returns the catalog view of def.
func Summarize(def *speedrun.RunDefinition) DefinitionSummary {
	sum := DefinitionSummary{
		ID:       DefinitionID(def.ID),
		Name:     def.DisplayName(),
		Settings: def.Settings,
	}
	for _, seg := range def.Segments {
		if seg == nil {
			continue
		}
		sum.Segments++
		for _, st := range seg.Steps {
			if st != nil {
				sum.Steps++
			}
		}
	}
	return sum
}
