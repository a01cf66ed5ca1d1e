package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zereker/gamewire"
)

const appName = "gamewire"

// newLogger builds the process logger. Pretty output goes through a
// ConsoleWriter; otherwise entries are JSON lines.
func newLogger(cfg LogConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("app", appName).Logger()
}

// zerologAdapter lets a zerolog.Logger serve as a gamewire.Logger.
type zerologAdapter struct {
	logger zerolog.Logger
}

var _ gamewire.Logger = zerologAdapter{}

func newZerologAdapter(l zerolog.Logger) gamewire.Logger {
	return zerologAdapter{logger: l}
}

func (a zerologAdapter) Debug(msg string, args ...any) { a.log(a.logger.Debug(), msg, args) }
func (a zerologAdapter) Info(msg string, args ...any)  { a.log(a.logger.Info(), msg, args) }
func (a zerologAdapter) Warn(msg string, args ...any)  { a.log(a.logger.Warn(), msg, args) }
func (a zerologAdapter) Error(msg string, args ...any) { a.log(a.logger.Error(), msg, args) }

func (a zerologAdapter) log(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	e.Fields(fields(args)).Msg(msg)
}

// fields turns slog-style alternating key-value args into a map.
// A trailing key without a value is logged under "!BADKEY".
func fields(args []any) map[string]any {
	m := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			m["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		m[key] = fieldValue(args[i+1])
	}
	return m
}

func fieldValue(v any) any {
	switch v := v.(type) {
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return v
	}
}
