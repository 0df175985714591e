package speedrun_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speedrun-tracker/internal/speedrun"
)

// oneSegment builds a run with a single segment holding steps; checkpoints
// lists which step indexes are checkpoints.
func oneSegment(settings speedrun.Settings, steps int, checkpoints ...int) *speedrun.RunDefinition {
	seg := &speedrun.SegmentDefinition{ID: "level", Name: "Level"}
	for i := 0; i < steps; i++ {
		seg.Steps = append(seg.Steps, &speedrun.StepDefinition{ID: string(rune('a' + i)), Name: "Step " + string(rune('A'+i))})
	}
	for _, i := range checkpoints {
		seg.Steps[i].Checkpoint = true
	}
	return &speedrun.RunDefinition{ID: "run", Settings: settings, Segments: []*speedrun.SegmentDefinition{seg}}
}

func TestSegment_CheckpointsFinishAllStepsComplete(t *testing.T) {
	run, _ := startedRun(t, oneSegment(speedrun.DefaultSettings(), 4, 1, 3))
	seg := run.SegmentByID("level")

	require.NoError(t, run.StepByID("b").Complete())
	assert.False(t, seg.IsFinished())

	require.NoError(t, run.StepByID("d").Complete())
	assert.True(t, seg.IsFinished())
	assert.False(t, seg.IsCompleted())
	assert.False(t, seg.IsEnded())

	require.NoError(t, run.StepByID("a").Complete())
	require.NoError(t, run.StepByID("c").Complete())
	assert.True(t, seg.IsCompleted())
	assert.True(t, seg.IsEnded())
}

func TestSegment_NoCheckpointsFinishedFromConstruction(t *testing.T) {
	run := speedrun.NewRun(oneSegment(speedrun.DefaultSettings(), 2))
	seg := run.SegmentByID("level")

	assert.True(t, seg.IsFinished())
	assert.Nil(t, seg.FinishedAt())
	assert.False(t, seg.IsCompleted())

	require.NoError(t, run.Start())
	assert.ErrorIs(t, seg.Finish(), speedrun.ErrSegmentAlreadyFinished)

	require.NoError(t, run.StepByID("a").Complete())
	assert.False(t, seg.IsCompleted())
	require.NoError(t, run.StepByID("b").Complete())
	assert.True(t, seg.IsCompleted())
}

func TestSegment_NoValidStepsIsCanceled(t *testing.T) {
	def := &speedrun.RunDefinition{ID: "run", Segments: []*speedrun.SegmentDefinition{
		{ID: "broken", Steps: []*speedrun.StepDefinition{nil}},
		{ID: "empty"},
	}}
	run := speedrun.NewRun(def)

	for _, seg := range run.Segments() {
		assert.True(t, seg.IsCanceled(), seg.ID())
		assert.True(t, seg.IsEnded(), seg.ID())
		assert.False(t, seg.IsCompleted(), seg.ID())
		assert.Empty(t, seg.Steps(), seg.ID())
	}
	assert.False(t, run.IsCanceled())
}

func TestSegment_CompletionSharesCascadeFinishTimestamp(t *testing.T) {
	run, rec := startedRun(t, oneSegment(speedrun.DefaultSettings(), 2, 1))
	seg := run.SegmentByID("level")
	require.NoError(t, run.StepByID("a").Complete())
	require.NoError(t, run.Update(700*time.Millisecond))
	rec.reset()

	require.NoError(t, run.StepByID("b").Complete())

	require.NotNil(t, seg.FinishedAt())
	require.NotNil(t, seg.CompletedAt())
	assert.Equal(t, *seg.FinishedAt(), *seg.CompletedAt())
	assert.Equal(t, speedrun.Milliseconds(700), *seg.CompletedAt())
	assert.Equal(t, []speedrun.EventKind{
		speedrun.EventStepCompleted,
		speedrun.EventSegmentFinished,
		speedrun.EventSegmentCompleted,
		speedrun.EventSegmentEnded,
		speedrun.EventRunFinished,
		speedrun.EventRunCompleted,
		speedrun.EventRunEnded,
	}, rec.kinds())
}

func TestSegment_EndedRejectsEverything(t *testing.T) {
	cases := map[string]func(t *testing.T, run *speedrun.Run, seg *speedrun.Segment){
		"completed": func(t *testing.T, run *speedrun.Run, seg *speedrun.Segment) {
			require.NoError(t, run.StepByID("a").Complete())
			require.NoError(t, run.StepByID("b").Complete())
		},
		"canceled": func(t *testing.T, run *speedrun.Run, seg *speedrun.Segment) {
			require.NoError(t, seg.Cancel())
		},
	}

	for name, end := range cases {
		t.Run(name, func(t *testing.T) {
			def := oneSegment(speedrun.DefaultSettings(), 2, 1)
			def.Segments = append(def.Segments, &speedrun.SegmentDefinition{ID: "next", Steps: []*speedrun.StepDefinition{{ID: "z"}}})
			run, _ := startedRun(t, def)
			seg := run.SegmentByID("level")
			end(t, run, seg)
			require.True(t, seg.IsEnded())

			assert.Error(t, seg.Finish())
			assert.ErrorIs(t, seg.Cancel(), speedrun.ErrSegmentEnded)
			for _, st := range seg.Steps() {
				assert.Error(t, st.Complete())
			}
		})
	}
}

func TestSegment_Cancel(t *testing.T) {
	def := oneSegment(speedrun.DefaultSettings(), 2, 0)
	def.Segments = append(def.Segments, &speedrun.SegmentDefinition{ID: "next", Steps: []*speedrun.StepDefinition{{ID: "z"}}})
	run, rec := startedRun(t, def)
	require.NoError(t, run.Update(90*time.Millisecond))
	seg := run.SegmentByID("level")
	rec.reset()

	require.NoError(t, seg.Cancel())
	assert.True(t, seg.IsCanceled())
	assert.Equal(t, speedrun.Milliseconds(90), *seg.CanceledAt())
	assert.Equal(t, []speedrun.EventKind{speedrun.EventSegmentCanceled, speedrun.EventSegmentEnded}, rec.kinds())
	assert.ErrorIs(t, run.StepByID("a").Complete(), speedrun.ErrSegmentEnded)
	assert.True(t, run.IsActive())
}

func TestSegment_RequiresActiveRun(t *testing.T) {
	run := speedrun.NewRun(oneSegment(speedrun.DefaultSettings(), 2, 0))
	seg := run.SegmentByID("level")

	assert.ErrorIs(t, seg.Finish(), speedrun.ErrRunNotActive)
	assert.ErrorIs(t, seg.Cancel(), speedrun.ErrRunNotActive)
	assert.ErrorIs(t, run.StepByID("a").Complete(), speedrun.ErrRunNotStarted)
	assert.False(t, seg.IsCanceled())
}

func TestSegment_ExplicitFinish(t *testing.T) {
	t.Run("end_segment_on_finish", func(t *testing.T) {
		settings := speedrun.DefaultSettings()
		settings.EndSegmentOnFinish = true
		def := oneSegment(settings, 3, 2)
		def.Segments = append(def.Segments, &speedrun.SegmentDefinition{ID: "next", Steps: []*speedrun.StepDefinition{{ID: "z", Checkpoint: true}}})
		run, rec := startedRun(t, def)
		seg := run.SegmentByID("level")
		rec.reset()

		require.NoError(t, seg.Finish())
		assert.True(t, seg.IsFinished())
		assert.False(t, seg.IsCompleted())
		assert.True(t, seg.IsEnded())
		assert.Equal(t, []speedrun.EventKind{speedrun.EventSegmentFinished, speedrun.EventSegmentEnded}, rec.kinds())
		assert.ErrorIs(t, run.StepByID("a").Complete(), speedrun.ErrSegmentEnded)
	})

	t.Run("stays_open_without_end_on_finish", func(t *testing.T) {
		run, _ := startedRun(t, oneSegment(speedrun.DefaultSettings(), 3, 2))
		seg := run.SegmentByID("level")

		require.NoError(t, seg.Finish())
		assert.True(t, seg.IsFinished())
		assert.False(t, seg.IsEnded())
		assert.ErrorIs(t, seg.Finish(), speedrun.ErrSegmentAlreadyFinished)

		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, run.StepByID(id).Complete())
		}
		assert.True(t, seg.IsCompleted())
		assert.True(t, seg.IsEnded())
		assert.True(t, run.IsCompleted())
	})

	t.Run("end_segment_on_checkpoint_finish", func(t *testing.T) {
		settings := speedrun.DefaultSettings()
		settings.EndSegmentOnFinish = true
		run, _ := startedRun(t, oneSegment(settings, 2, 0))
		seg := run.SegmentByID("level")

		require.NoError(t, run.StepByID("a").Complete())
		assert.True(t, seg.IsEnded())
		assert.False(t, seg.IsCompleted())
		assert.ErrorIs(t, run.StepByID("b").Complete(), speedrun.ErrSegmentEnded)
	})
}

func TestSegment_ZeroSettingsFinishOnCheckpoints(t *testing.T) {
	run, _ := startedRun(t, &speedrun.RunDefinition{ID: "run", Segments: []*speedrun.SegmentDefinition{
		{ID: "level", Steps: []*speedrun.StepDefinition{{ID: "a", Checkpoint: true}, {ID: "b"}}},
	}})
	seg := run.SegmentByID("level")

	require.NoError(t, run.StepByID("a").Complete())
	assert.True(t, seg.IsFinished())
	assert.NotNil(t, seg.FinishedAt())
	assert.False(t, seg.IsCompleted())
}

func TestSegment_ManualFinish(t *testing.T) {
	settings := speedrun.Settings{ManualFinish: true}
	run, _ := startedRun(t, oneSegment(settings, 2, 0))
	seg := run.SegmentByID("level")

	require.NoError(t, run.StepByID("a").Complete())
	assert.False(t, seg.IsFinished())

	require.NoError(t, run.Update(5*time.Millisecond))
	require.NoError(t, run.StepByID("b").Complete())
	assert.True(t, seg.IsFinished())
	assert.True(t, seg.IsCompleted())
	assert.Equal(t, *seg.FinishedAt(), *seg.CompletedAt())
}

func TestStep_Complete(t *testing.T) {
	run, rec := startedRun(t, oneSegment(speedrun.DefaultSettings(), 2, 1))
	require.NoError(t, run.Update(321*time.Millisecond))
	step := run.StepByID("a")
	rec.reset()

	require.NoError(t, step.Complete())
	assert.True(t, step.IsCompleted())
	require.NotNil(t, step.CompletedAt())
	assert.Equal(t, speedrun.Milliseconds(321), *step.CompletedAt())
	require.Len(t, rec.events, 1)
	assert.Equal(t, speedrun.EventStepCompleted, rec.events[0].Kind)
	assert.Same(t, step, rec.events[0].Step)

	assert.ErrorIs(t, step.Complete(), speedrun.ErrStepAlreadyCompleted)
	assert.Len(t, rec.events, 1)
}

func TestStep_CompleteWhilePaused(t *testing.T) {
	run, _ := startedRun(t, oneSegment(speedrun.DefaultSettings(), 2, 1))
	require.NoError(t, run.Update(10*time.Millisecond))
	require.NoError(t, run.Pause())

	require.NoError(t, run.StepByID("a").Complete())
	assert.Equal(t, speedrun.Milliseconds(10), *run.StepByID("a").CompletedAt())
}
