package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger returns a logger writing to an in-memory observer, for
// asserting on emitted log entries in tests.
func NewTestLogger(module string) (*CtxZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core).With(zap.String("module", module))
	return &CtxZapLogger{base: base, module: module}, logs
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *CtxZapLogger {
	return &CtxZapLogger{base: zap.NewNop(), module: "nop"}
}
