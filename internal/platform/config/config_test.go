package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SPEEDRUN_TEST_VALUE", "")
	assert.Equal(t, "fallback", GetEnv("SPEEDRUN_TEST_VALUE", "fallback"))

	t.Setenv("SPEEDRUN_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("SPEEDRUN_TEST_VALUE", "fallback"))
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Second},
		{"250ms", 250 * time.Millisecond},
		{"soon", time.Second},
		{"0s", time.Second},
		{"-5ms", time.Second},
	}
	for _, tt := range tests {
		t.Setenv("SPEEDRUN_TEST_DURATION", tt.value)
		assert.Equal(t, tt.want, GetEnvDuration("SPEEDRUN_TEST_DURATION", time.Second), "value %q", tt.value)
	}
}

func TestLoadServer_defaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "LOG_FORMAT", "DEFINITIONS_DIR", "TICK_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := LoadServer()
	assert.Equal(t, Server{
		Port:           "8080",
		LogLevel:       "info",
		LogFormat:      "json",
		DefinitionsDir: "./definitions",
		TickInterval:   16 * time.Millisecond,
	}, cfg)
}

func TestLoad_env_file(t *testing.T) {
	// godotenv never overrides a variable that is already set, even to "".
	t.Setenv("DEFINITIONS_DIR", "")
	require.NoError(t, os.Unsetenv("DEFINITIONS_DIR"))
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DEFINITIONS_DIR=/srv/runs\n"), 0o644))

	require.NoError(t, Load(path))
	assert.Equal(t, "/srv/runs", LoadServer().DefinitionsDir)

	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.env")))
}
