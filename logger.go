package gamewire

import "log/slog"

// Logger is the interface for structured logging.
// *slog.Logger satisfies it; cmd/gamewire adapts zerolog to it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

func defaultLogger() Logger {
	return slog.Default()
}

// fieldLogger prepends fixed key-value pairs to every entry.
type fieldLogger struct {
	Logger
	fields []any
}

// withFields returns a Logger that adds args to every entry of l.
func withFields(l Logger, args ...any) Logger {
	if len(args) == 0 {
		return l
	}
	if fl, ok := l.(*fieldLogger); ok {
		return &fieldLogger{Logger: fl.Logger, fields: append(append([]any(nil), fl.fields...), args...)}
	}
	return &fieldLogger{Logger: l, fields: args}
}

func (l *fieldLogger) with(args []any) []any {
	return append(append(make([]any, 0, len(l.fields)+len(args)), l.fields...), args...)
}

func (l *fieldLogger) Debug(msg string, args ...any) { l.Logger.Debug(msg, l.with(args)...) }
func (l *fieldLogger) Info(msg string, args ...any)  { l.Logger.Info(msg, l.with(args)...) }
func (l *fieldLogger) Warn(msg string, args ...any)  { l.Logger.Warn(msg, l.with(args)...) }
func (l *fieldLogger) Error(msg string, args ...any) { l.Logger.Error(msg, l.with(args)...) }
