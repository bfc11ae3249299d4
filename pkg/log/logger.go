// Package log provides structured logging for quantfactor operations.
//
// It wires Go's standard log/slog for general JSON logging and bridges the
// library's warning channel (pkg/errors.Warn) into zerolog so that warnings
// such as SVD fallbacks are emitted as structured events instead of raw
// console prints.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/quantfactor/pkg/errors"
)

// SetupLogger installs a JSON slog handler on slog.Default at the given level.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	slog.SetDefault(slog.New(handler))
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey = "error"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// EnableStructuredWarnings routes library warnings (pkg/errors.Warn) through a
// zerolog logger writing to w. Warnings implementing zerolog.LogObjectMarshaler,
// such as ConvergenceWarning, are embedded as structured objects.
func EnableStructuredWarnings(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	errors.SetZerologWarnFunc(func(warning error) {
		event := logger.Warn()
		if marshaler, ok := warning.(zerolog.LogObjectMarshaler); ok {
			event.EmbedObject(marshaler).Msg("quantfactor warning")
			return
		}
		event.Err(warning).Msg("quantfactor warning")
	})
}

// DisableStructuredWarnings removes the zerolog bridge, restoring the plain
// warning handler.
func DisableStructuredWarnings() {
	errors.SetZerologWarnFunc(nil)
}
