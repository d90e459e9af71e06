package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"go.opentelemetry.io/otel/trace"
)

// Format is a log output format.
type Format string

// Level is a log level name.
type Level string

type contextKey string

const (
	// FormatText is the human-readable format.
	FormatText Format = "text"
	// FormatLogfmt is the key=value format.
	FormatLogfmt Format = "logfmt"
	// FormatJSON is the JSON lines format.
	FormatJSON Format = "json"

	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"

	loggerContextKey contextKey = "logger"
)

var (
	// ErrUnknownLogLevel is returned for a level name that is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat is returned for a format name that is not recognized.
	ErrUnknownLogFormat = errors.New("unknown log format")

	// AllFormats lists the accepted format names, for flag help.
	AllFormats = []string{string(FormatText), string(FormatLogfmt), string(FormatJSON)}
	// AllLevels lists the accepted level names, for flag help.
	AllLevels = []string{string(LevelError), string(LevelWarn), string(LevelInfo), string(LevelDebug)}
)

// NewLogger creates a redacting logger writing to w.
// level and format are matched case-insensitively.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := GetLevel(level)
	if err != nil {
		return nil, err
	}
	fmtName, err := GetFormat(format)
	if err != nil {
		return nil, err
	}

	return slog.New(NewRedactHandler(newHandler(w, lvl, fmtName))), nil
}

// newHandler creates the handler for a validated level and format.
func newHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatLogfmt:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case FormatText:
		return newCharmHandler(w, level)
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
}

// newCharmHandler creates the text handler. Colors follow the terminal's
// capabilities, so output redirected to a file stays plain.
func newCharmHandler(w io.Writer, level slog.Level) slog.Handler {
	//nolint:gosec // G115: level comes from GetLevel.
	lvl := int32(level)

	logger := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(lvl),
		Formatter:       charmlog.TextFormatter,
		ReportTimestamp: true,
		TimeFormat:      time.StampMilli,
	})
	logger.SetColorProfile(termenv.ColorProfile())

	return logger
}

// GetLevel parses a level name. "warning" is accepted as an alias of "warn".
func GetLevel(level string) (slog.Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(level))) {
	case LevelError:
		return slog.LevelError, nil
	case LevelWarn, "warning":
		return slog.LevelWarn, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelDebug:
		return slog.LevelDebug, nil
	}

	return 0, ErrUnknownLogLevel
}

// GetFormat parses a format name.
func GetFormat(format string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(format)))
	if slices.Contains([]Format{FormatText, FormatLogfmt, FormatJSON}, f) {
		return f, nil
	}

	return "", ErrUnknownLogFormat
}

// NewContext returns a copy of ctx that carries logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// WithContext returns the logger stored in ctx by NewContext, or the default
// logger. When ctx carries a valid span, the logger is annotated with the
// first eight characters of its trace id.
func WithContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey).(*slog.Logger)
	if !ok {
		logger = slog.Default()
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		traceID := span.SpanContext().TraceID().String()
		if len(traceID) > 8 {
			traceID = traceID[:8]
		}
		return logger.With(slog.String("trace_id", traceID))
	}

	return logger
}
