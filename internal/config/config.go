package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr = ":8080"
	defaultDBPath     = "scanforge.db"
	defaultWorkerBin  = "scanforge-worker"

	envListenAddr       = "SCANFORGE_LISTEN_ADDR"
	envDBPath           = "SCANFORGE_DB_PATH"
	envLogLevel         = "SCANFORGE_LOG_LEVEL"
	envDefaultTimeoutMS = "SCANFORGE_DEFAULT_TIMEOUT_MS"
	envWorkerBin        = "SCANFORGE_WORKER_BIN"
	envRulesPath        = "SCANFORGE_RULES_PATH"
)

// Config holds application configuration loaded from environment variables.
// It is loaded once at process start and never mutated afterward; the default
// timeout is handed to the coordinators at construction time.
type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   slog.Level

	// DefaultTimeout is the process-wide default scan deadline. Zero means
	// unset; the deadline policy falls back to its hardcoded constant.
	DefaultTimeout time.Duration

	// WorkerBin is the worker binary spawned per isolated job.
	WorkerBin string

	// RulesPath optionally points at a YAML rules file overriding the
	// built-in scanner rule set.
	RulesPath string
}

// Load reads configuration from environment variables with sensible defaults.
// A malformed or non-positive timeout value is ignored, not an error.
func Load() Config {
	cfg := Config{
		ListenAddr: defaultListenAddr,
		DBPath:     defaultDBPath,
		LogLevel:   slog.LevelInfo,
		WorkerBin:  defaultWorkerBin,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envDefaultTimeoutMS); v != "" {
		cfg.DefaultTimeout = parseTimeoutMS(v)
	}
	if v := os.Getenv(envWorkerBin); v != "" {
		cfg.WorkerBin = v
	}
	if v := os.Getenv(envRulesPath); v != "" {
		cfg.RulesPath = v
	}

	return cfg
}

// parseTimeoutMS parses a millisecond duration, returning zero for anything
// that is not a positive integer.
func parseTimeoutMS(s string) time.Duration {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
