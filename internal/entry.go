// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/achntj/lab/internal/api"
	"github.com/achntj/lab/internal/index"
	"github.com/achntj/lab/internal/mcpserver"
	"github.com/achntj/lab/internal/models"
	"github.com/achntj/lab/internal/recordservice"
	"github.com/achntj/lab/internal/sse"
	"github.com/achntj/lab/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOut: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup installs the JSON logger and opens the index.
func (app *application) setup() (*slog.Logger, *index.DB, error) {
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := index.Open(cfg.SQLite.Path, index.WithLimits(cfg.Search.ResultLimit, cfg.Search.QueryLimit))
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	logger.Debug("index: opened",
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("fts5", index.FTSAvailable))
	return logger, db, nil
}

// openVault creates the vault directory if needed and returns its provider.
func openVault(cfg *Config) (*storage.FS, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

// Run starts the HTTP server, the vault watcher and the SSE broker.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, db, err := app.setup()
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(cfg.Events.GraphThrottle)
	defer broker.Close()

	svc := recordservice.NewService(db, broker.PublishRecordEvent)

	var store *storage.FS
	if cfg.Vault.Enabled() {
		if store, err = openVault(cfg); err != nil {
			return err
		}
		if err := index.Sync(ctx, db, store, logger, broker.PublishRecordEvent); err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		}
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := svc.Ready(req.Context()); err != nil {
			writeHealth(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeHealth(w, http.StatusOK, "ok")
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open SSE streams end when the broker closes their channels.
	httpServer.RegisterOnShutdown(broker.Close)

	g, gCtx := errgroup.WithContext(ctx)

	if store != nil {
		g.Go(func() error {
			return index.Watch(gCtx, db, store, logger, broker.PublishRecordEvent)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

func writeHealth(w http.ResponseWriter, status int, state string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": state})
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to the configured
// log output, which must not be stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger, db, err := app.setup()
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("mcp: serving on stdio")
	return mcpserver.New(recordservice.NewService(db, nil), app.version).ServeStdio()
}

// Search runs one query and writes the results to out as JSON.
func Search(ctx context.Context, query string, out io.Writer, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	_, db, err := app.setup()
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := recordservice.NewService(db, nil).Search(ctx, query)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// Reindex rebuilds the full-text index and resyncs the vault from scratch.
func Reindex(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger, db, err := app.setup()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RebuildFTS(ctx); err != nil {
		return err
	}
	logger.Info("reindex: full-text index rebuilt", slog.Bool("fts5", index.FTSAvailable))

	if !app.config.Vault.Enabled() {
		return nil
	}
	store, err := openVault(app.config)
	if err != nil {
		return err
	}
	if err := db.ResetVaultChecksums(ctx); err != nil {
		return err
	}
	if err := index.Sync(ctx, db, store, logger, nil); err != nil {
		return err
	}
	logger.Info("reindex: vault synced", slog.String("vault_path", app.config.Vault.Path))
	return nil
}

// Import loads the export file at path into the index.
func Import(ctx context.Context, path string, opts ...Option) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	var exp models.Export
	if err := json.Unmarshal(raw, &exp); err != nil {
		return fmt.Errorf("decode export: %w", err)
	}

	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger, db, err := app.setup()
	if err != nil {
		return err
	}
	defer db.Close()

	sum, err := recordservice.NewService(db, nil).Import(ctx, &exp)
	if err != nil {
		return err
	}
	logger.Info("import: done",
		slog.String("path", path),
		slog.Int("records", sum.Records),
		slog.Int("skipped_records", sum.SkippedRecords),
		slog.Int("links", sum.Links),
		slog.Int("skipped_links", sum.SkippedLinks))
	return nil
}
