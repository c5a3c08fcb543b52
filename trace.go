package memmgr

import "go.uber.org/zap"

// trace gates the verbose per-call debug logging used while chasing
// allocator bugs. It mirrors the teacher's own `trace` debug const, except
// the sink is a structured logger instead of fmt.Fprintf(os.Stderr, ...).
var trace = false

// logger receives trace output when trace is true. It defaults to a no-op
// logger so importing this package never forces a logging dependency on
// callers who don't ask for one.
var logger = zap.NewNop()

// SetTrace toggles the verbose per-allocation/deallocation debug log.
func SetTrace(on bool) { trace = on }

// SetLogger installs the logger used for trace output. Passing nil restores
// the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// traceFields builds a single-field zap.Field slice for the common
// "one labelled int" trace call sites scattered through the allocators.
func traceFields(key string, value int) []zap.Field {
	return []zap.Field{zap.Int(key, value)}
}
