package podexec

import (
	"bytes"
	"sync"

	"github.com/go-logr/logr"
)

// Listener receives session lifecycle callbacks. Callbacks run on the
// session goroutine.
type Listener interface {
	OnOpen()
	OnFailure(err error)
	OnClose(code int, reason string)
}

// LogListener logs every callback and takes no further action.
type LogListener struct {
	Logger logr.Logger
}

// OnOpen implements Listener.
func (l LogListener) OnOpen() {
	l.Logger.Info("exec session opened")
}

// OnFailure implements Listener.
func (l LogListener) OnFailure(err error) {
	l.Logger.Error(err, "exec session failed")
}

// OnClose implements Listener.
func (l LogListener) OnClose(code int, reason string) {
	l.Logger.Info("exec session closed", "code", code, "reason", reason)
}

// lineWriter forwards remote output to a logger one line at a time. A
// trailing partial line is held until the next newline or Flush.
type lineWriter struct {
	mu      sync.Mutex
	logger  logr.Logger
	stream  string
	pending []byte
}

func newLineWriter(logger logr.Logger, stream string) *lineWriter {
	return &lineWriter{logger: logger, stream: stream}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.emit(w.pending[:i])
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

// Flush logs the remaining partial line, if any.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) > 0 {
		w.emit(w.pending)
		w.pending = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	w.logger.V(1).Info("exec output", "stream", w.stream, "line", string(bytes.TrimSuffix(line, []byte("\r"))))
}
