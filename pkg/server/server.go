package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/google/uuid"
	"github.com/levenlabs/go-lflag"
	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/meteo"
	"github.com/vitorcape/homeclima/pkg/metrics"
	"github.com/vitorcape/homeclima/pkg/storage"
	"github.com/vitorcape/homeclima/pkg/window"
)

// Server handles the HTTP API for the HomeClima system.
// It orchestrates the storage, sun, and forecast collaborators; every request
// is an independent stateless computation.
type Server struct {
	storage  storage.Database
	sun      meteo.SunProvider
	forecast meteo.ForecastProvider

	listenAddr string
	apiKey     string
	serverName string
	httpServer *http.Server

	// now and loc are injected so handlers never read ambient clock state
	now func() time.Time
	loc *time.Location
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(db storage.Database, sunP meteo.SunProvider, fcP meteo.ForecastProvider) *Server {
	srv := &Server{
		storage:    db,
		sun:        sunP,
		forecast:   fcP,
		serverName: "homeclima",
		now:        time.Now,
		loc:        window.Location,
	}
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	apiKey := lflag.RequiredString("device-api-key", "Shared secret devices must send in x-api-key on ingest")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		srv.apiKey = *apiKey
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/ingest", s.handleIngest)
	apiMux.HandleFunc("GET /api/readings", s.handleReadings)
	apiMux.HandleFunc("GET /api/home-summary", s.handleHomeSummary)
	apiMux.HandleFunc("GET /api/day-summary", s.handleDaySummary)
	apiMux.HandleFunc("GET /api/forecast", s.handleForecast)
	apiMux.HandleFunc("GET /api/compare", s.handleCompare)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiMux)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())

	return s.serverNameMiddleware(gziphandler.GzipHandler(s.requestIDMiddleware(mux)))
}

// requestIDMiddleware tags every request's context logger with a request id
// and the request path.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(
			slog.String("requestID", uuid.NewString()),
			slog.String("reqPath", r.URL.Path),
		))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) serverNameMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capturing server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Context canceled, shut down gracefully
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

// resolveDay turns an optional date query parameter into the reference
// instant for that calendar day, defaulting to now.
func (s *Server) resolveDay(r *http.Request) (time.Time, error) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		return s.now(), nil
	}
	return window.ParseDate(dateStr, s.loc)
}
