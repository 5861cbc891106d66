package parser

import (
	"context"
	"log/slog"
)

// Logger receives structured records from every stage of a build. Attributes
// are alternating key-value pairs, as with log/slog:
//
//	logger.Debug("parsed definition", "document", "petstore/pets", "operations", 3)
//
// Wrap a *slog.Logger with [NewSlogAdapter]:
//
//	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	res, err := builder.Build(ctx, "spec", "out", "1.0.0",
//		builder.WithLogger(parser.NewSlogAdapter(slog.New(handler))))
type Logger interface {
	Debug(msg string, attrs ...any)
	Info(msg string, attrs ...any)
	Warn(msg string, attrs ...any)
	Error(msg string, attrs ...any)

	// With returns a Logger that adds attrs to every record.
	With(attrs ...any) Logger
}

// NopLogger discards every record. Stages fall back to it when no logger is
// configured.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any) {}
func (NopLogger) Warn(string, ...any) {}
func (NopLogger) Error(string, ...any) {}
func (n NopLogger) With(...any) Logger { return n }

// SlogAdapter sends records to a *slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger, or slog.Default() when logger is nil.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (s *SlogAdapter) Debug(msg string, attrs ...any) { s.log(slog.LevelDebug, msg, attrs) }
func (s *SlogAdapter) Info(msg string, attrs ...any) { s.log(slog.LevelInfo, msg, attrs) }
func (s *SlogAdapter) Warn(msg string, attrs ...any) { s.log(slog.LevelWarn, msg, attrs) }
func (s *SlogAdapter) Error(msg string, attrs ...any) { s.log(slog.LevelError, msg, attrs) }

func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

func (s *SlogAdapter) log(level slog.Level, msg string, attrs []any) {
	s.logger.Log(context.Background(), level, msg, attrs...)
}

var (
	_ Logger = NopLogger{}
	_ Logger = (*SlogAdapter)(nil)
)

// OrNop returns l, or NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// ForDocument scopes l to one definition document.
func ForDocument(l Logger, spec, document string) Logger {
	return OrNop(l).With("spec", spec, "document", document)
}
