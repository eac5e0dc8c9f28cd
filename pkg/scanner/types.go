package scanner

import (
	"fmt"
	"io"
	"sync"
)

// DebugLogger provides per-blob progress logging.
type DebugLogger interface {
	Log(format string, args ...interface{})
}

// NoopLogger is a no-op logger.
type NoopLogger struct{}

func (NoopLogger) Log(format string, args ...interface{}) {}

// WriterLogger writes one line per call to an io.Writer. It is safe for
// concurrent use.
type WriterLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterLogger creates a logger writing to w.
func NewWriterLogger(w io.Writer) *WriterLogger {
	return &WriterLogger{w: w}
}

func (l *WriterLogger) Log(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format+"\n", args...)
}
