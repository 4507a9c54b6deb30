package observability

import (
	"io"
	"log/slog"
	"strings"

	"github.com/couchcryptid/neo-approach-etl/internal/config"
)

// NewLogger builds the run logger from LOG_LEVEL and LOG_FORMAT. Unknown
// levels fall back to info. Output goes to w, normally stderr, so that query
// results on stdout stay machine-readable.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
