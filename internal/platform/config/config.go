package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more paths
// to load from specific files (e.g. ".env"); with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvDuration returns the duration value (e.g. "16ms") of the environment
// variable named by key, or fallback if the variable is unset, empty, invalid,
// or not positive.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// Server is the configuration of cmd/server.
type Server struct {
	Port           string
	LogLevel       string
	LogFormat      string
	DefinitionsDir string
	TickInterval   time.Duration
}

// LoadServer reads the server configuration from the environment.
func LoadServer() Server {
	return Server{
		Port:           GetEnv("PORT", "8080"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogFormat:      GetEnv("LOG_FORMAT", "json"),
		DefinitionsDir: GetEnv("DEFINITIONS_DIR", "./definitions"),
		TickInterval:   GetEnvDuration("TICK_INTERVAL", 16*time.Millisecond),
	}
}
