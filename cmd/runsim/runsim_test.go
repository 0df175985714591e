package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const definitionYAML = `
id: any-percent
name: Any%
segments:
  - id: forest
    name: Forest
    steps:
      - {id: forest-boss, name: Forest Boss, checkpoint: true}
      - {id: forest-key, name: Forest Key}
  - id: castle
    name: Castle
    steps:
      - {id: castle-boss, name: Castle Boss, checkpoint: true}
      - {id: castle-key, name: Castle Key}
`

func writeDefinition(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "def.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlay(t *testing.T) {
	out, err := execute(t, "play", writeDefinition(t, definitionYAML), "--pause-every", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Any%")
	assert.Contains(t, out, "paused")
	assert.Contains(t, out, "resumed")
	assert.Contains(t, out, "run_completed")
	assert.Contains(t, out, "# 00:04.000 completed 100%")
}

func TestPlay_rejects_bad_frame(t *testing.T) {
	_, err := execute(t, "play", writeDefinition(t, definitionYAML), "--frame", "0s")
	assert.ErrorContains(t, err, "frame must be positive")
}

func TestAdvance_sums_partial_frames(t *testing.T) {
	out, err := execute(t, "play", writeDefinition(t, definitionYAML), "--step-time", "250ms", "--frame", "100ms")
	require.NoError(t, err)
	assert.Contains(t, out, "# 00:01.000 completed 100%")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", writeDefinition(t, definitionYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "Any% (2 segments, 4 steps)")

	out, err = execute(t, "validate", writeDefinition(t, "id: empty\n"), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "1 of 2 files failed to load")
	assert.Contains(t, out, "no segments")
}

func TestPlay_frame_default(t *testing.T) {
	cmd := newPlayCmd()
	frame, err := cmd.Flags().GetDuration("frame")
	require.NoError(t, err)
	assert.Equal(t, time.Second/60, frame)
}
