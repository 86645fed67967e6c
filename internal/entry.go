// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/scribe/internal/api"
	"github.com/starford/scribe/internal/autoformat"
	"github.com/starford/scribe/internal/codec"
	"github.com/starford/scribe/internal/docservice"
	"github.com/starford/scribe/internal/mcpserver"
	"github.com/starford/scribe/internal/sse"
	"github.com/starford/scribe/internal/storage"
	"github.com/starford/scribe/internal/watch"
)

// runtime is the wired core shared by every entry point.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  storage.Store
	svc    *docservice.Service
}

func newRuntime(ctx context.Context, opts []Option, svcOpts ...docservice.Option) (*runtime, error) {
	app := &application{logOutput: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("format", cfg.Storage.Format),
		slog.String("log_level", cfg.App.LogLevel.String()))

	format, err := codec.ParseFormat(cfg.Storage.Format)
	if err != nil {
		return nil, err
	}

	engine, err := autoformat.New(cfg.Editor.Styles, autoformat.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("init autoformat: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	svcOpts = append([]docservice.Option{
		docservice.WithLogger(logger),
		docservice.WithFormat(format),
	}, svcOpts...)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		svc:    docservice.NewService(store, engine, svcOpts...),
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rt, err := newRuntime(ctx, opts, docservice.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer rt.store.Close()

	cfg, logger := rt.cfg, rt.logger

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := rt.store.List(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	// Shutdown cancels ctx so the watcher stops with the server.
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	// Reload open documents when their files change on disk.
	if fsStore, ok := rt.store.(*storage.FS); ok && !cfg.Watch.Disabled {
		g.Go(func() error {
			if err := watch.Watch(gCtx, fsStore, rt.svc, cfg.Watch.Settle, logger); err != nil {
				logger.Warn("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		stop()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdin/stdout until the client disconnects.
// Logs go to the writer set with WithLogOutput, stderr by default.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.store.Close()

	rt.logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(rt.svc).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Type feeds chars through the shorthand engine into document id and,
// when save is set, writes the result to storage. It returns the document's
// plain text.
func Type(ctx context.Context, id, chars string, save bool, opts ...Option) (string, error) {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return "", err
	}
	defer rt.store.Close()

	if _, _, err := rt.svc.Input(ctx, id, chars); err != nil {
		return "", err
	}
	if save {
		if _, err := rt.svc.Save(ctx, id, ""); err != nil {
			return "", err
		}
	}
	return rt.svc.PlainText(ctx, id)
}

// Show returns the stored record of id encoded in format.
func Show(ctx context.Context, id string, format codec.Format, opts ...Option) ([]byte, error) {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer rt.store.Close()

	rec, err := rt.svc.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	return codec.Encode(rec, format)
}
