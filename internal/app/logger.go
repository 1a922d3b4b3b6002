package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the process-wide slog.Logger. Production runs emit
// JSON; everything else gets the text handler.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && !cfg.IsProduction() {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{AddSource: true, Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg != nil && (cfg.LogFormat == "json" || cfg.IsProduction()) {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "folio"))
}
