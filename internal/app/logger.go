package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON in production or when
// LOG_FORMAT=json, readable text otherwise. Source locations are recorded
// only outside production to keep hot-path records small.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: !cfg.IsProduction()}
	if cfg.IsProduction() || (cfg != nil && cfg.LogFormat == "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
