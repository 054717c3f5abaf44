// Package responsewriter records the status code and body size of a response
// for the logging, metrics and tracing middleware.
package responsewriter

import (
	"net/http"
)

// ResponseWriter wraps http.ResponseWriter to record response metrics.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int
	headerWritten bool
}

// Wrap returns w wrapped for recording. Wrapping an already wrapped writer
// returns it unchanged so stacked middleware share one recorder.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader records the first status code; later calls are ignored like
// net/http does.
func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.statusCode = statusCode
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

// Flush forwards to the underlying writer when it supports flushing.
func (w *ResponseWriter) Flush() {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// StatusCode returns the recorded status, 200 if nothing was written.
func (w *ResponseWriter) StatusCode() int { return w.statusCode }

// BytesWritten returns the number of body bytes written.
func (w *ResponseWriter) BytesWritten() int { return w.bytesWritten }

// Written reports whether the header has been sent.
func (w *ResponseWriter) Written() bool { return w.headerWritten }

// Unwrap returns the underlying http.ResponseWriter (for http.ResponseController support).
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
