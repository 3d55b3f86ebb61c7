// Package logsink routes the recoverable diagnostics produced while
// tokenizing, tree-building, resolving styles, and loading resources
// through a single structured-logging seam, instead of fmt.Printf or a
// panic. Only out-of-memory during arena growth is fatal to a parse; every
// other condition is reported here and the caller continues.
package logsink

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Level mirrors the severities a parse pass can emit.
type Level uint8

const (
	// LevelParseError is an unexpected-but-recoverable token or byte
	// sequence: the producing component applied its spec-mandated
	// recovery and continued.
	LevelParseError Level = iota
	// LevelWarn is a style/layout/resource condition resolved with a
	// sentinel (AUTO, default font, missing-glyph box, zero-sized image).
	LevelWarn
	// LevelInfo is non-diagnostic progress information.
	LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelParseError:
		return "parse_error"
	case LevelWarn:
		return "warn"
	default:
		return "info"
	}
}

// Sink is the single seam every component in this module reports through.
// Implementations must not block or panic.
type Sink interface {
	Log(level Level, component, message string, fields ...zap.Field)
}

// ZapSink adapts a *zap.Logger to Sink and aggregates every LevelParseError
// and LevelWarn it receives into a multierr-joined Diagnostics() error, so a
// caller that wants to inspect everything after a parse pass can do so
// without the pass itself aborting.
type ZapSink struct {
	logger *zap.Logger
	errs   error
}

// NewZapSink wraps logger (pass zap.NewNop() in tests that don't care about
// log output).
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Log(level Level, component, message string, fields ...zap.Field) {
	all := append([]zap.Field{zap.String("component", component)}, fields...)
	switch level {
	case LevelParseError:
		s.logger.Warn(message, all...)
		s.errs = multierr.Append(s.errs, &Diagnostic{Level: level, Component: component, Message: message})
	case LevelWarn:
		s.logger.Warn(message, all...)
		s.errs = multierr.Append(s.errs, &Diagnostic{Level: level, Component: component, Message: message})
	default:
		s.logger.Info(message, all...)
	}
}

// Diagnostics returns every LevelParseError/LevelWarn reported so far,
// joined with multierr, or nil if none were reported.
func (s *ZapSink) Diagnostics() error { return s.errs }

// Diagnostic is one reported recoverable condition.
type Diagnostic struct {
	Level     Level
	Component string
	Message   string
}

func (d *Diagnostic) Error() string {
	return d.Level.String() + "[" + d.Component + "]: " + d.Message
}

// Nop is a Sink that discards everything; used by components and tests
// that don't wire a real logger.
var Nop Sink = nopSink{}

type nopSink struct{}

func (nopSink) Log(Level, string, string, ...zap.Field) {}
