package core

import "go.uber.org/zap"

// Logger receives diagnostics from the service and registry. Lookup misses
// and rule warnings are reported here instead of failing the caller.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger adapts a zap logger to the service Logger interface. A nil
// argument falls back to zap's production configuration.
func NewZapLogger(base *zap.Logger) Logger {
	if base == nil {
		base, _ = zap.NewProduction()
	}
	return zapLogger{sugar: base.Sugar()}
}

func (l zapLogger) Debug(msg string, keysAndValues ...any) { l.sugar.Debugw(msg, keysAndValues...) }
func (l zapLogger) Info(msg string, keysAndValues ...any)  { l.sugar.Infow(msg, keysAndValues...) }
func (l zapLogger) Warn(msg string, keysAndValues ...any)  { l.sugar.Warnw(msg, keysAndValues...) }
func (l zapLogger) Error(msg string, keysAndValues ...any) { l.sugar.Errorw(msg, keysAndValues...) }
