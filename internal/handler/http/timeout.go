package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
)

// DefaultRequestTimeout bounds a request unless REQUEST_TIMEOUT says otherwise.
const DefaultRequestTimeout = 30 * time.Second

// Timeout answers 504 {"error":"request timeout"} when the handler has not
// written anything within d. The handler keeps running on a cancelled
// context; its later writes fail with http.ErrHandlerTimeout.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			r = r.WithContext(ctx)

			tw := &timeoutWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				if !tw.written {
					respond.JSON(w, http.StatusGatewayTimeout, map[string]string{"error": "request timeout"})
				}
			}
		})
	}
}

// timeoutWriter lets exactly one of the handler and the timeout branch write
// the response.
type timeoutWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	timedOut bool
	written  bool
}

func (w *timeoutWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut || w.written {
		return
	}
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *timeoutWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !w.written {
		w.written = true
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
