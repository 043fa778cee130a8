// Package api serves backtests and past runs over HTTP.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rxtech-lab/argo-threshold/internal/backtest/engine"
	"github.com/rxtech-lab/argo-threshold/internal/logger"
	"github.com/rxtech-lab/argo-threshold/internal/store"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the backtest engine and the result store.
type Server struct {
	engine   engine.Engine
	store    store.ResultStore
	log      *logger.Logger
	validate *validator.Validate
	// AllowedOrigins feeds the CORS middleware. Empty allows every origin.
	allowedOrigins []string

	httpServer *http.Server
	listener   net.Listener
}

// NewServer builds a server around an initialized engine with a provider set.
func NewServer(backtestEngine engine.Engine, resultStore store.ResultStore, log *logger.Logger) (*Server, error) {
	if backtestEngine == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "engine is required")
	}

	if resultStore == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "result store is required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Server{
		engine:         backtestEngine,
		store:          resultStore,
		log:            log,
		validate:       validator.New(),
		allowedOrigins: nil,
		httpServer:     nil,
		listener:       nil,
	}, nil
}

// SetAllowedOrigins restricts CORS to the given origins.
func (s *Server) SetAllowedOrigins(origins []string) {
	s.allowedOrigins = origins
}

// Handler returns the routed handler wrapped in CORS.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.recoverMiddleware, s.logMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/run_backtest", s.handleRunBacktest).Methods(http.MethodPost)
	api.HandleFunc("/get_past_runs", s.handleGetPastRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.ErrCodeDataNotFound, "Not Found")
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errors.ErrCodeInvalidParameter, "Method Not Allowed")
	})

	// a method mismatch inside the subrouter does not reach the root handlers
	router.NotFoundHandler = notFound
	router.MethodNotAllowedHandler = methodNotAllowed
	api.MethodNotAllowedHandler = methodNotAllowed

	options := cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}

	return cors.New(options).Handler(router)
}

// Start listens on address and serves in the background. ":0" picks a free port.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", address)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("HTTP API listening", zap.String("address", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, address string) error {
	if err := s.Start(address); err != nil {
		return err
	}

	<-ctx.Done()

	return s.Stop()
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.log.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(started)),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				s.log.Error("Handler panicked",
					zap.String("path", r.URL.Path),
					zap.Any("panic", recovered),
				)
				writeError(w, http.StatusInternalServerError, errors.ErrCodeUnknown, "An unexpected error occurred")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
