package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/vpsmonitor/internal/adapter/driving/http"
	"github.com/ericfisherdev/vpsmonitor/internal/application"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the refresh scheduler (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// serve runs until ctx is canceled, then drains the HTTP server and waits for
// an in-flight scheduled refresh.
func (a *app) serve(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"scrape_cron", cfg.ScrapeCron,
		"target_url", cfg.TargetURL,
		"display_tz", cfg.DisplayZone.String(),
		"encryption", cfg.HasSecretKey(),
	)

	// 1. Open database and run migrations.
	db, store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", db.Path())

	// 2. Wire services.
	refreshSvc := application.NewRefreshService(store, a.newScraper(), logger)

	scheduler, err := application.NewRefreshScheduler(refreshSvc, cfg.ScrapeCron, logger)
	if err != nil {
		return err
	}
	scheduler.Start(ctx)

	// 3. HTTP server.
	h := httphandler.NewHandler(store, refreshSvc, cfg.DisplayZone, logger)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(h, logger, cfg.StaticDir),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Refresh endpoints scrape synchronously; refresh-all scales with account count.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logger.Info("vpsmonitor started", "listen_addr", cfg.ListenAddr, "static_dir", cfg.StaticDir)

	// 4. Wait for shutdown signal or a listener failure.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		logger.Error("http server error", "error", err)
		runErr = err
	}

	// 5. Graceful shutdown with 10s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	scheduler.Stop(shutdownCtx)

	logger.Info("shutdown complete")
	return runErr
}
