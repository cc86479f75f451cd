package app

import (
	"io"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/rl1809/mintmarket/internal/config"
)

// NewLogger creates the process logger from cfg, writes to os.Stderr and
// installs it as the slog default. Every record carries the service name and
// build version.
//
// Format "json" produces JSON output, "text" human-readable output with
// source info. Level is one of debug, info, warn, error; defaults to info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: replaceAmount,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		opts.AddSource = true
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("service", "mintmarket"),
		slog.String("version", Version),
	)
}

// replaceAmount logs *big.Int prices and funds as decimal strings so JSON
// consumers keep every digit.
func replaceAmount(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	if v, ok := a.Value.Any().(*big.Int); ok {
		if v == nil {
			return slog.String(a.Key, "")
		}
		return slog.String(a.Key, v.String())
	}
	return a
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
