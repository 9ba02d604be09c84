// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
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
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/autotag/internal/api"
	"github.com/starford/autotag/internal/sse"
	"github.com/starford/autotag/internal/watcher"
)

// EventDocumentFailed is broadcast when the watcher could not handle a
// changed document.
const EventDocumentFailed = "document.failed"

// Run starts the watcher and, in ModeServe, the HTTP API until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{mode: ModeServe}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		var out io.Writer = os.Stderr
		if cfg.App.LogFile != "" {
			rotating := &lumberjack.Logger{
				Filename:   cfg.App.LogFile,
				MaxSize:    cfg.App.LogMaxSizeMB,
				MaxBackups: cfg.App.LogMaxBackups,
				Compress:   true,
			}
			defer rotating.Close()
			out = rotating
		}
		logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("mode", string(app.mode)),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("keywords_dir", cfg.Vault.KeywordsDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	pipe, err := NewPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer pipe.Close()

	if err := pipe.RebuildIndex(logger); err != nil {
		logger.Warn("initial index rebuild failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	pipe.Syncer.Subscribe(broker.PublishSyncEvent)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if app.scan {
			if _, err := pipe.Processor.Scan(gCtx); err != nil && gCtx.Err() == nil {
				logger.Warn("initial scan failed", slog.String("error", err.Error()))
			}
		}
		return watcher.Watch(gCtx, pipe.Store.Root(), pipe.Processor, logger, watcher.Config{
			Debounce: cfg.Watch.Debounce,
			SkipDirs: cfg.Vault.SkipDirs(),
			OnEvent: func(kind, path string) {
				if kind == watcher.KindFailed {
					broker.Publish(sse.Event{Type: EventDocumentFailed, Data: map[string]string{"path": path}})
				}
			},
		})
	})

	if app.mode == ModeServe {
		httpServer := &http.Server{
			Addr:              cfg.App.HTTP.Address(),
			Handler:           newRouter(cfg, pipe, broker),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			return errShutdown
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped successfully")
	return nil
}

// errShutdown cancels the group when a signal arrives.
var errShutdown = errors.New("shutdown requested")

func newRouter(cfg *Config, pipe *Pipeline, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(pipe.Processor, pipe.Catalog, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	return r
}
