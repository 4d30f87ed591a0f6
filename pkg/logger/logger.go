package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Config holds logger settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Level is the minimum level emitted: debug, info, warn, or error.
	// Cache and quota internals log their degradation diagnostics at
	// debug, so flip this on when chasing store trouble.
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	Sentry SentryConfig
}

// New creates a JSON-formatted slog logger writing to stdout.
// Unknown level strings fall back to info.
func New(cfg Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
