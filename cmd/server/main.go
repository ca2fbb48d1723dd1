package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/vdl/internal/api"
	"github.com/your-org/vdl/internal/artifact"
	"github.com/your-org/vdl/internal/config"
	"github.com/your-org/vdl/internal/download"
	"github.com/your-org/vdl/internal/ingest"
	"github.com/your-org/vdl/internal/observability"
)

func sweepOrphans(ws *artifact.Workspace, maxAge time.Duration) {
	removed, err := ws.Sweep(maxAge)
	if err != nil {
		slog.Warn("sweep: scan work dir", "error", err)
		return
	}
	if removed > 0 {
		observability.ArtifactsSwept.Add(float64(removed))
		slog.Info("sweep: removed orphaned scratch dirs", "removed", removed)
	}
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting vdl server", "port", cfg.Server.Port, "work_dir", cfg.Download.WorkDir)

	ws, err := artifact.NewWorkspace(cfg.Download.WorkDir, nil)
	if err != nil {
		slog.Error("prepare work dir", "error", err)
		os.Exit(1)
	}

	ytdlp := ingest.NewYTDLP(cfg.Download.YTDLPPath, cfg.Download.ExtraArgs)
	if err := ytdlp.LookPath(); err != nil {
		slog.Warn("extractor unavailable, downloads will fail until it is installed", "error", err)
	}

	pool := ingest.NewPool(cfg.Download.MaxConcurrent, cfg.Download.Timeout)
	svc := download.NewService(ws, pool, ytdlp, cfg.Download.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Orphan sweeper: leftovers from a previous crash go first, then periodically.
	sweepOrphans(ws, cfg.Download.OrphanMaxAge)
	if cfg.Download.SweepInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Download.SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					sweepOrphans(ws, cfg.Download.OrphanMaxAge)
				}
			}
		}()
	}

	router := api.NewRouter(api.RouterConfig{
		APIKey:    cfg.Server.APIKey,
		Downloads: svc,
		YTDLP:     ytdlp,
		Workspace: ws,
		RateLimit: cfg.Download.RateLimit,
		RateBurst: cfg.Download.RateBurst,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
