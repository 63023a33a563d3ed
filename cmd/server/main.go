package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-assess/internal/api"
	"github.com/p-n-ai/pai-assess/internal/catalog"
	"github.com/p-n-ai/pai-assess/internal/events"
	"github.com/p-n-ai/pai-assess/internal/platform/cache"
	"github.com/p-n-ai/pai-assess/internal/platform/config"
	"github.com/p-n-ai/pai-assess/internal/platform/database"
	"github.com/p-n-ai/pai-assess/internal/schedule"
	"github.com/p-n-ai/pai-assess/internal/submission"
)

const readinessTimeout = 2 * time.Second

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log, os.Stdout))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := build(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(a.api, a.checks...),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "submission_backend", cfg.Submission.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// readinessCheck is a dependency /readyz reports on.
type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

type app struct {
	api     *api.Server
	checks  []readinessCheck
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build wires the service from configuration. The database is required only
// when a component is configured to use it; the cache is best effort.
func build(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	var db *database.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = database.New(ctx, cfg.Database)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.checks = append(a.checks, readinessCheck{name: "database", check: db.HealthCheck})

		if cfg.Database.Migrate {
			if err := db.Migrate(ctx, submission.Schema); err != nil {
				a.close()
				return nil, err
			}
		}
	}

	var kv *cache.Cache
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Warn("cache unavailable, continuing without it", "error", err)
		} else {
			kv = c
			a.closers = append(a.closers, func() { _ = c.Close() })
			a.checks = append(a.checks, readinessCheck{name: "cache", check: c.HealthCheck})
		}
	}

	provider := catalog.NewProvider(nil)
	provider.Start(ctx, catalogSource(cfg.Curriculum, kv, cfg.Cache.CatalogTTL))
	a.checks = append(a.checks, readinessCheck{name: "catalog", check: catalogReady(provider)})

	submitter, err := newSubmitter(cfg.Submission, db)
	if err != nil {
		a.close()
		return nil, err
	}

	hub := events.NewHub()
	loggers := events.Multi{hub}
	if cfg.Events.Persist {
		loggers = append(loggers, events.NewPostgresLogger(db.Pool))
	}

	a.api = api.NewServer(provider, submitter,
		api.WithEvents(loggers),
		api.WithEventStream(hub),
	)
	return a, nil
}

// catalogSource orders the configured subject sources. The provider falls back
// to the built-in table when every source fails.
func catalogSource(cfg config.CurriculumConfig, kv *cache.Cache, ttl time.Duration) catalog.Source {
	var chain catalog.Chain
	if cfg.URL != "" {
		var src catalog.Source = catalog.NewHTTPSource(cfg.URL,
			catalog.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		)
		if kv != nil {
			src = catalog.NewCachedSource(src, kv, ttl)
		}
		chain = append(chain, src)
	}
	if cfg.WorkbookPath != "" {
		chain = append(chain, catalog.WorkbookSource{Path: cfg.WorkbookPath, Sheet: cfg.WorkbookSheet})
	}
	if cfg.YAMLPath != "" {
		chain = append(chain, catalog.YAMLFileSource{Path: cfg.YAMLPath})
	}
	return chain
}

func catalogReady(p *catalog.Provider) func(context.Context) error {
	return func(context.Context) error {
		select {
		case <-p.Ready():
			return nil
		default:
			return schedule.ErrCatalogPending
		}
	}
}

func newSubmitter(cfg config.SubmissionConfig, db *database.DB) (schedule.Submitter, error) {
	switch cfg.Backend {
	case config.SubmissionHTTP:
		return submission.NewHTTPSubmitter(cfg.URL,
			submission.WithToken(cfg.Token),
			submission.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		), nil
	case config.SubmissionPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres submission backend needs a database")
		}
		return submission.NewPostgresStore(db.Pool)
	default:
		slog.Warn("using in-memory submission store, submitted tests are not persisted")
		return submission.NewMemoryStore(), nil
	}
}

// newMux creates the HTTP router with health check endpoints and, when given,
// the API routes.
func newMux(apiServer *api.Server, checks ...readinessCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz(checks))
	if apiServer != nil {
		apiServer.Register(mux)
	}
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(checks []readinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				slog.Warn("readiness check failed", "check", c.name, "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "check": c.name})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
