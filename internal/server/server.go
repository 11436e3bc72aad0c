package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"nzbforge/internal/export"
	"nzbforge/internal/logging"
	"nzbforge/internal/namestore"
)

// Runner starts an export and reports what it produced.
type Runner interface {
	Run(ctx context.Context) (*export.Summary, error)
}

// Server hosts the web API.
type Server struct {
	bind   string
	token  string
	runner Runner
	names  *namestore.Store
	logger *slog.Logger

	listener net.Listener
	server   *http.Server

	mu          sync.Mutex
	running     bool
	lastSummary *export.Summary
	lastError   string
}

// New builds a server. token may be empty to disable auth.
func New(bind, token string, runner Runner, names *namestore.Store, logger *slog.Logger) *Server {
	srv := &Server{
		bind:   strings.TrimSpace(bind),
		token:  strings.TrimSpace(token),
		runner: runner,
		names:  names,
		logger: logging.WithComponent(logger, "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.withAuth(srv.handleStatus))
	mux.HandleFunc("POST /api/export", srv.withAuth(srv.handleExport))
	mux.HandleFunc("GET /api/names/{kind}", srv.withAuth(srv.handleNames))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins listening and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listener address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			header := r.Header.Get("Authorization")
			if header != "Bearer "+s.token {
				s.writeError(w, http.StatusUnauthorized, "missing or invalid token")
				return
			}
		}
		next(w, r)
	}
}

type statusResponse struct {
	Running     bool            `json:"running"`
	LastSummary *export.Summary `json:"last_summary,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	payload := statusResponse{
		Running:     s.running,
		LastSummary: s.lastSummary,
		LastError:   s.lastError,
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, payload)
}

// handleExport kicks off an asynchronous run. A second request while one is
// in flight gets 409.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.writeError(w, http.StatusConflict, "an export is already running")
		return
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		summary, err := s.runner.Run(context.Background())

		s.mu.Lock()
		defer s.mu.Unlock()
		s.running = false
		if err != nil {
			s.lastError = err.Error()
			s.lastSummary = nil
			s.logger.Error("export run failed", slog.Any("error", err))
			return
		}
		s.lastError = ""
		s.lastSummary = summary
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

type namesResponse struct {
	Kind   string   `json:"kind"`
	Titles []string `json:"titles"`
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	var file string
	switch kind {
	case "movies":
		file = namestore.MovieNamesFile
	case "series":
		file = namestore.SeriesNamesFile
	default:
		s.writeError(w, http.StatusNotFound, "unknown name list")
		return
	}

	titles, err := s.names.Load(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, namesResponse{Kind: kind, Titles: titles})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response failed", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
