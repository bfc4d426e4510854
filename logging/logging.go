// Package logging provides the structured logger used across the scheduler:
// the MILP builder and solver driver (cellmodel.Builder) take a
// logging.Logger rather than reaching for the global logger directly; the
// validator and estimator do not log.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the structured logging surface used throughout the module.
// It is deliberately small: callers log key-value pairs, never formatted
// strings, so log lines stay greppable across packages.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	// Sublogger returns a child logger whose name is namespaced under
	// this one, e.g. logger.Sublogger("builder") on a logger named
	// "cellopt" yields one named "cellopt.builder".
	Sublogger(name string) Logger
}

type impl struct {
	sugar *zap.SugaredLogger
	name  string
}

// NewLogger builds a production logger at the given name, writing JSON
// to stderr at Info level and above.
func NewLogger(name string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap.NewProductionConfig().Build only fails on a malformed
		// encoder config, which is a programming error, not a runtime one.
		panic(err)
	}
	return &impl{sugar: z.Sugar().Named(name), name: name}
}

// NewTestLogger builds a logger that writes through the given test's
// t.Log, at Debug level, so `go test -v` shows every logged line
// interleaved with test output.
func NewTestLogger(tb testing.TB) Logger {
	z := zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel))
	return &impl{sugar: z.Sugar(), name: ""}
}

func (l *impl) Debugw(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *impl) Infow(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *impl) Warnw(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *impl) Errorw(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }

func (l *impl) Sublogger(name string) Logger {
	childName := name
	if l.name != "" {
		childName = l.name + "." + name
	}
	return &impl{sugar: l.sugar.Named(name), name: childName}
}
