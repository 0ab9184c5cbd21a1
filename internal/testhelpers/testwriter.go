package testhelpers

import (
	"io"
	"strings"
	"sync/atomic"
	"testing"
)

// Writer forwards writes to tb.Log so that server logs only show up for failing tests.
type Writer struct {
	tb   testing.TB
	done atomic.Bool
}

// NewWriter creates a Writer bound to the lifetime of tb.
func NewWriter(tb testing.TB) io.Writer {
	w := &Writer{tb: tb} //nolint:exhaustruct // done starts false.
	tb.Cleanup(func() {
		w.done.Store(true)
	})
	return w
}

// Write implements io.Writer. Writing after the test has finished panics, which points at a server that was not
// shut down with t.Cleanup.
func (w *Writer) Write(p []byte) (int, error) {
	if w.done.Load() {
		panic("testwriter: attempted to write after test completion. Did you remember to t.Cleanup(server.Shutdown)?")
	}
	if output := strings.TrimSuffix(string(p), "\n"); output != "" {
		w.tb.Log(output)
	}
	return len(p), nil
}
