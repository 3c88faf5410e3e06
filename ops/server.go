package ops

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Pinger is a dependency whose connectivity /healthz reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the ops routes: /healthz, /metrics and /status.
func NewRouter(tracker *Tracker, metrics http.Handler, checks map[string]Pinger, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", healthHandler(checks)).Methods(http.MethodGet)
	router.HandleFunc("/status", statusHandler(tracker)).Methods(http.MethodGet)
	if metrics != nil {
		router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	logged := handlers.CustomLoggingHandler(io.Discard, router, func(_ io.Writer, p handlers.LogFormatterParams) {
		logger.Debug("ops request",
			"method", p.Request.Method,
			"path", p.URL.Path,
			"status", p.StatusCode,
			"size", p.Size,
		)
	})
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(logged)
}

func healthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string            `json:"status"`
			Components map[string]string `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]string, len(checks)),
		}

		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components[name] = "disconnected: " + err.Error()
				continue
			}
			health.Components[name] = "connected"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(health)
	}
}

func statusHandler(tracker *Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tracker.Snapshot())
	}
}

// Serve runs the ops server on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting ops server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
