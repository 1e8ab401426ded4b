package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/pagegrab/api"
	"github.com/use-agent/pagegrab/cache"
	"github.com/use-agent/pagegrab/cleaner"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/fetcher"
	"github.com/use-agent/pagegrab/models"
)

// serialFetcher guards the single browser session with a mutex: a session
// drives one page, so concurrent API fetches must take turns.
type serialFetcher struct {
	mu      sync.Mutex
	session *fetcher.Session
}

func (s *serialFetcher) Fetch(ctx context.Context, req *models.FetchRequest) (*models.PageResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Fetch(ctx, req)
}

func newServeCmd() *cobra.Command {
	var (
		host     string
		port     int
		logLevel string
		logFile  string
	)

	serve := &cobra.Command{
		Use:           "serve",
		Short:         "Run the HTTP fetch API",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initLogger(logLevel, logFile)

			cfg := config.Load()
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			return runServe(cmd.Context(), cfg)
		},
	}

	f := serve.Flags()
	f.StringVar(&host, "host", "", "listen address (default from PAGEGRAB_HOST)")
	f.IntVar(&port, "port", 0, "listen port (default from PAGEGRAB_PORT)")
	f.StringVar(&logLevel, "log-level", "INFO", "log level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	f.StringVar(&logFile, "log-file", "", "also write logs to this rotating file")

	return serve
}

func runServe(ctx context.Context, cfg *config.Config) error {
	slog.Info("pagegrab API starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)

	// ── 1. Launch the browser session ───────────────────────────────
	session, err := fetcher.NewSession(ctx, cfg)
	if err != nil {
		slog.Error("browser session failed to start", "error", err)
		return err
	}
	defer session.Close()

	// ── 2. Wire the router ──────────────────────────────────────────
	cl := cleaner.NewCleaner()
	cc := cache.New(cfg.Cache.MaxEntries)
	router := api.NewRouter(&serialFetcher{session: session}, cl, cfg, cc, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// ── 3. Serve until a shutdown signal arrives ────────────────────
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give in-flight requests 5 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// session.Close() runs via defer — stops the watcher and kills Chromium.
	slog.Info("pagegrab API stopped")
	return nil
}
