// Package web serves the generated dashboard documents over HTTP.
//
// The server exposes the documents written by the pipeline as a read-only
// JSON API and pushes a "reload" Server-Sent Event after every successful
// regeneration so open dashboards can refetch.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/robinvdvleuten/finboard/telemetry"
)

type Server struct {
	Port    int
	Host    string
	Version string

	// DataDir holds the generated documents.
	DataDir string
	// StaticDir, when set, is served at / (the built dashboard front end).
	StaticDir string

	logger *slog.Logger

	// SSE clients for broadcasting reload events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStaticDir serves the files in dir at /.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.StaticDir = dir
	}
}

// WithVersion sets the version reported by /api/version.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.Version = version
	}
}

// New creates a Server for the documents in dataDir.
func New(port int, dataDir string, opts ...Option) *Server {
	s := &Server{
		Port:       port,
		Host:       "127.0.0.1",
		DataDir:    dataDir,
		logger:     slog.Default(),
		sseClients: make(map[chan string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("web.start %s", s.Addr()))
	mux, err := s.setupRouter()
	timer.End()
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelling ctx also ends open event streams.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving dashboard data", "addr", "http://"+s.Addr(), "dir", s.DataDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the server's routes.
func (s *Server) Handler() (http.Handler, error) {
	return s.setupRouter()
}

func (s *Server) setupRouter() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/finance-data", s.handleFinanceData)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("GET /api/budgets", s.handleBudgets)
	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("GET /api/events", s.handleSSE)

	// The dashboard front end fetches the generated files directly.
	mux.Handle("GET /data/", http.StripPrefix("/data/", http.FileServerFS(os.DirFS(s.DataDir))))

	if s.StaticDir != "" {
		info, err := os.Stat(s.StaticDir)
		if err != nil {
			return nil, fmt.Errorf("static directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("static directory %s is not a directory", s.StaticDir)
		}
		mux.Handle("GET /", http.FileServerFS(os.DirFS(s.StaticDir)))
	}

	return mux, nil
}

// Reload tells every connected dashboard to refetch its documents.
func (s *Server) Reload() {
	s.broadcast("reload")
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients. Clients whose
// buffer is full miss the event.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
		}
	}
}

// clients returns the number of connected SSE clients.
func (s *Server) clients() int {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	return len(s.sseClients)
}
