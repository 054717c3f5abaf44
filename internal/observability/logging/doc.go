// Package logging configures log/slog for the API and worker and carries
// request-scoped loggers through context.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
//	    log := logging.ForRequest(r.Context(), h.Logger)
//	    log.Info("enrollment received")
//	}
package logging
