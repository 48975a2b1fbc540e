package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/store"
	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// researcher runs one research session and streams its events.
type researcher interface {
	Run(ctx context.Context, topic string, handler autoresearch.EventHandler) (*autoresearch.Outcome, error)
}

// historySource lists stored research runs.
type historySource interface {
	List(ctx context.Context, limit int) ([]store.Entry, error)
}

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
}

type serverOption func(*server)

func withAddr(addr string) serverOption {
	return func(s *server) {
		s.addr = addr
	}
}

func withResearcher(r researcher) serverOption {
	return func(s *server) {
		s.researcher = r
	}
}

func withHistory(h historySource) serverOption {
	return func(s *server) {
		s.history = h
	}
}

func withStaticDir(dir string) serverOption {
	return func(s *server) {
		s.staticDir = dir
	}
}

func withAllowedOrigins(origins ...string) serverOption {
	return func(s *server) {
		s.allowedOrigins = origins
	}
}

func withRegistry(reg *prometheus.Registry) serverOption {
	return func(s *server) {
		s.registry = reg
	}
}

type server struct {
	addr           string
	researcher     researcher
	history        historySource
	staticDir      string
	allowedOrigins []string
	registry       *prometheus.Registry
	metrics        *metrics
	mux            *http.ServeMux
}

func newServer(opts ...serverOption) *server {
	s := &server{
		addr:           ":8000",
		allowedOrigins: defaultAllowedOrigins,
		mux:            http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)
	s.setupRoutes()
	return s
}

func (s *server) setupRoutes() {
	// API routes
	s.mux.HandleFunc("POST /research/stream", s.handleStream)
	s.mux.HandleFunc("GET /research/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Built frontend, registered last so that API routes take priority
	if s.staticDir == "" {
		return
	}
	if info, err := os.Stat(s.staticDir); err != nil || !info.IsDir() {
		slog.Warn("static directory not found, running in API-only mode", slog.String("dir", s.staticDir))
		return
	}
	s.mux.Handle("/", s.spaHandler())
}

func (s *server) spaHandler() http.Handler {
	root := os.DirFS(s.staticDir)
	fileServer := http.FileServer(http.FS(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		// Serve the file when it exists, index.html otherwise
		if f, err := root.Open(filepath.ToSlash(path[1:])); err == nil {
			_ = f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}

		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}

// cors allows the configured origins. Preflight requests are answered here.
func (s *server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(s.allowedOrigins, origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handler() http.Handler {
	return s.cors(s.mux)
}

func (s *server) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return goerr.Wrap(err, "failed to listen", goerr.Value("addr", s.addr))
	}

	addr := listener.Addr().String()
	slog.Info("starting research server", slog.String("addr", addr), slog.String("url", "http://"+addr))

	srv := &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return goerr.Wrap(err, "server error")
	}

	return nil
}
