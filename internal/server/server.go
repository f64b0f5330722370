// Package server serves the inventory page, static assets and, in watch
// mode, a live-reload websocket.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/prime-website/internal/config"
	"github.com/conneroisu/prime-website/internal/logging"
	"github.com/conneroisu/prime-website/internal/watcher"
)

// reloadDebounce groups the bursts of events an editor save produces.
const reloadDebounce = 200 * time.Millisecond

// Server is the inventory HTTP server.
type Server struct {
	config      config.ServerConfig
	logger      logging.Logger
	view        *View
	router      chi.Router
	reload      *LiveReload
	watcher     *watcher.FileWatcher
	httpServer  *http.Server
	serverMutex sync.RWMutex
	shutdown    sync.Once
}

// New creates a server for cfg. Nothing is read from disk until a request
// arrives.
func New(cfg config.ServerConfig, logger logging.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: logger.WithComponent("server"),
		view:   NewView(cfg),
	}
	if cfg.Watch {
		s.reload = NewLiveReload(s.logger)
		s.view.liveReload = true
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(SecurityMiddleware(DefaultSecurityConfig()))

	r.Get("/", s.handleInventory)
	r.Get("/healthz", s.handleHealth)

	if s.reload != nil {
		r.Get(liveReloadPath, s.reload.ServeHTTP)
		r.Get(liveReloadScriptPath, serveLiveReloadScript)
	}

	static := s.staticHandler()
	r.Get("/*", static)
	r.Head("/*", static)
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is cancelled
// or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln. When ctx is cancelled the server shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.reload != nil {
		if err := s.startWatcher(ctx); err != nil {
			_ = ln.Close()
			return err
		}
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, err, "Graceful shutdown failed")
		}
	}()

	s.logger.Info(ctx, "Server listening", "address", ln.Addr().String(), "site", s.config.SiteDir, "watch", s.config.Watch)
	if err := server.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the watcher, closes live-reload clients and drains
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdown.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop file watcher")
			}
		}
		if s.reload != nil {
			s.reload.Close()
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()
		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// startWatcher notifies live-reload clients when site sources change.
func (s *Server) startWatcher(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(reloadDebounce, s.logger)
	if err != nil {
		return err
	}
	fw.AddFilter(watcher.NoGitFilter)
	fw.AddFilter(watcher.NoEditorTempFilter)

	// The data file may sit in the site root, so only its own directory is
	// watched.
	dataDir := filepath.Dir(s.config.DataPath())
	if err := fw.AddPath(dataDir); err != nil {
		_ = fw.Stop()
		return fmt.Errorf("watch %s: %w", dataDir, err)
	}
	for _, dir := range s.watchDirs() {
		if err := fw.AddRecursive(dir); err != nil {
			_ = fw.Stop()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		paths := make([]string, 0, len(events))
		for _, e := range events {
			paths = append(paths, e.Path)
		}
		s.logger.Info(ctx, "Site changed, reloading browsers", "files", len(paths), "clients", s.reload.Clients())
		s.reload.Reload(paths)
		return nil
	})

	s.watcher = fw
	return fw.Start(ctx)
}

func (s *Server) watchDirs() []string {
	return []string{
		filepath.Join(s.config.SiteDir, s.config.ViewsDir),
		s.config.PublicPath(),
	}
}
