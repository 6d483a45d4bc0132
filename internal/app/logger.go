package app

import (
	"log/slog"
	"os"
)

// NewLogger returns a configured slog.Logger. Development keeps debug
// records and the text handler; production defaults to info and can switch
// to JSON via LOG_FORMAT.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     LogLevel(cfg),
	}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// LogLevel maps the environment to the minimum record level.
func LogLevel(cfg *Config) slog.Level {
	if cfg.IsProduction() {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
