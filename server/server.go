package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/umputun/newsnexus/pkg/domain"
	"github.com/umputun/newsnexus/pkg/repository"
	"github.com/umputun/newsnexus/pkg/scheduler"
)

//go:generate moq -out mocks/settings_store.go -pkg mocks -skip-ensure -fmt goimports . SettingsStore
//go:generate moq -out mocks/item_store.go -pkg mocks -skip-ensure -fmt goimports . ItemStore
//go:generate moq -out mocks/refresher.go -pkg mocks -skip-ensure -fmt goimports . Refresher

// Server represents HTTP server instance
type Server struct {
	cfg       Config
	settings  SettingsStore
	items     ItemStore
	refresher Refresher

	settingsLock sync.Mutex // serializes load-modify-save of settings
	lock         sync.Mutex
	httpServer   *http.Server
	router       *routegroup.Bundle
}

// Config holds server configuration
type Config struct {
	Listen   string
	Timeout  time.Duration
	BaseURL  string
	Version  string
	Debug    bool
	Defaults domain.Settings // used for missing or reset settings
}

// SettingsStore reads and writes user settings and run stats
type SettingsStore interface {
	LoadSettings(ctx context.Context, defaults domain.Settings) (domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error
	ResetSettings(ctx context.Context) error
	LoadStats(ctx context.Context) (domain.AggregationStats, error)
}

// ItemStore gives access to cached items
type ItemStore interface {
	GetItems(ctx context.Context, f repository.ItemFilter) ([]domain.NewsItem, error)
}

// Refresher runs a blocking refresh
type Refresher interface {
	Refresh(ctx context.Context) (scheduler.Outcome, error)
}

// New initializes a new server instance
func New(cfg Config, settings SettingsStore, items ItemStore, refresher Refresher) *Server {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	s := &Server{
		cfg:       cfg,
		settings:  settings,
		items:     items,
		refresher: refresher,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	lgr.Printf("[INFO] starting server on %s", s.cfg.Listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           otelhttp.NewHandler(s.router, "newsnexus"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.Timeout,
		// refresh waits for every source, give it room past the request timeout
		WriteTimeout: 2 * s.cfg.Timeout,
	}
	srv := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newsnexus", "umputun", s.cfg.Version))
	s.router.Use(rest.Ping)

	if s.cfg.Debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /items", s.itemsHandler)
		r.HandleFunc("GET /stats", s.statsHandler)
		r.HandleFunc("POST /refresh", s.refreshHandler)

		r.HandleFunc("GET /settings", s.getSettingsHandler)
		r.HandleFunc("PUT /settings", s.putSettingsHandler)
		r.HandleFunc("POST /settings/reset", s.resetSettingsHandler)
		r.HandleFunc("PUT /settings/keywords", s.putKeywordsHandler)
		r.HandleFunc("POST /settings/sources/{source}/toggle", s.toggleSourceHandler)
		r.HandleFunc("POST /settings/feeds", s.addFeedHandler)
		r.HandleFunc("DELETE /settings/feeds/{index}", s.deleteFeedHandler)
		r.HandleFunc("POST /settings/scrapers", s.addScraperHandler)
		r.HandleFunc("DELETE /settings/scrapers/{id}", s.deleteScraperHandler)
	})

	s.router.HandleFunc("GET /rss", s.rssHandler)
	s.router.HandleFunc("GET /opml", s.opmlHandler)
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
