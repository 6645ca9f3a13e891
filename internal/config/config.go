package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by Load.
const (
	EnvPort              = "SEQSEARCH_PORT"
	EnvDataDir           = "SEQSEARCH_DATA_DIR"
	EnvLogLevel          = "SEQSEARCH_LOG_LEVEL"
	EnvWatch             = "SEQSEARCH_WATCH"
	EnvSearchConcurrency = "SEQSEARCH_SEARCH_CONCURRENCY"
	EnvSearchTimeout     = "SEQSEARCH_SEARCH_TIMEOUT"
	EnvMaxSubjectBytes   = "SEQSEARCH_MAX_SUBJECT_BYTES"
)

// Config holds the server settings.
type Config struct {
	Port     string
	DataDir  string
	LogLevel string

	// Watch keeps the corpus in sync with DataDir.
	Watch bool

	SearchConcurrency int
	SearchTimeout     time.Duration

	// MaxSubjectBytes caps request bodies and corpus documents.
	MaxSubjectBytes int64
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Port:              "8080",
		DataDir:           "data",
		LogLevel:          "info",
		SearchConcurrency: 8,
		SearchTimeout:     10 * time.Second,
		MaxSubjectBytes:   1 << 20,
	}
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvPort); ok {
		cfg.Port = v
	}
	if v, ok := get(EnvDataDir); ok {
		cfg.DataDir = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get(EnvWatch); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvWatch, err)
		}
		cfg.Watch = b
	}
	if v, ok := get(EnvSearchConcurrency); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s: want a positive integer, got %q", EnvSearchConcurrency, v)
		}
		cfg.SearchConcurrency = n
	}
	if v, ok := get(EnvSearchTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSearchTimeout, err)
		}
		cfg.SearchTimeout = d
	}
	if v, ok := get(EnvMaxSubjectBytes); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s: want a positive integer, got %q", EnvMaxSubjectBytes, v)
		}
		cfg.MaxSubjectBytes = n
	}
	return cfg, nil
}

// ParseLogLevel maps a level name to a slog.Level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
