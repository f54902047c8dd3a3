// Package logging builds the process-wide slog logger and carries
// request-scoped loggers through context.
//
//	logger := logging.New(logging.Options{Level: cfg.LogLevel})
//	slog.SetDefault(logger)
//
//	func (h RSSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
//	    log := logging.WithRequestID(r.Context(), slog.Default())
//	    log.Info("fetching feed")
//	}
package logging
