// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/huangsam/flowstate/core"
	"github.com/rs/zerolog"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(svc *core.Service, tokens map[string]string, log zerolog.Logger) *mux.Router {
	h := NewHandlers(svc, log)

	r := mux.NewRouter()
	r.Use(Logging(log))
	r.Use(Recovery(log))
	r.Use(Authenticate(tokens))

	// Routes stay on the root router so an unsupported method answers 405 rather than 404.
	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/report/weekly", h.WeeklyReport).Methods(http.MethodGet)
	r.HandleFunc("/api/sync", h.Sync).Methods(http.MethodPost)
	r.HandleFunc("/api/calendar/analyze", h.AnalyzeCalendar).Methods(http.MethodPost)
	r.HandleFunc("/api/github/analyze", h.AnalyzeCommits).Methods(http.MethodPost)
	r.HandleFunc("/api/settings", h.GetSettings).Methods(http.MethodGet)
	r.HandleFunc("/api/settings", h.UpdateSettings).Methods(http.MethodPut)
	r.HandleFunc("/api/demo-data", h.DemoData).Methods(http.MethodGet)

	return r
}

// Serve runs the HTTP server on addr until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	log.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
