package logger

import (
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the logging interface handed to workers, stores and clients.
// Implementations attach structured fields rather than formatting messages.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

// New builds the process-wide zap logger. format is "json" for production
// output or "console" for human-readable development output. Unknown level
// strings fall back to info.
func New(levelStr, format string) *zap.Logger {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// zapAdapter implements Logger on top of a *zap.Logger.
type zapAdapter struct {
	l *zap.Logger
}

// NewZapAdapter wraps an existing *zap.Logger in the Logger interface.
func NewZapAdapter(l *zap.Logger) Logger {
	return &zapAdapter{l: l}
}

// NewTestLogger returns a Logger that writes through t.Log, so worker tests
// show log output only on failure or with -v.
func NewTestLogger(t testing.TB) Logger {
	return &zapAdapter{l: zaptest.NewLogger(t)}
}

func (a *zapAdapter) Debug(msg string, fields map[string]interface{}) {
	a.l.Debug(msg, toZapFields(fields)...)
}

func (a *zapAdapter) Info(msg string, fields map[string]interface{}) {
	a.l.Info(msg, toZapFields(fields)...)
}

func (a *zapAdapter) Warn(msg string, fields map[string]interface{}) {
	a.l.Warn(msg, toZapFields(fields)...)
}

func (a *zapAdapter) Error(msg string, fields map[string]interface{}) {
	a.l.Error(msg, toZapFields(fields)...)
}

func (a *zapAdapter) WithFields(fields map[string]interface{}) Logger {
	return &zapAdapter{l: a.l.With(toZapFields(fields)...)}
}

func (a *zapAdapter) WithError(err error) Logger {
	return &zapAdapter{l: a.l.With(zap.Error(err))}
}

// toZapFields converts a field map into zap fields in key order, so repeated
// log lines keep a stable field layout.
func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
