package main

import (
	"context"
	"errors"
	"flag"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/api"
	"github.com/ashwin-iyer1/portfolio_backend/internal/bootstrap"
	"github.com/ashwin-iyer1/portfolio_backend/internal/config"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const sweepInterval = 5 * time.Minute

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	logger := bootstrap.NewLogger(cfg.App.Env, os.Stdout)

	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	sessions := app.Sessions()
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Info("expired idle sessions", "sessions", n)
				}
			}
		}
	}()

	server := api.NewServer(
		api.Addr(cfg.Server.Host, cfg.Server.Port),
		api.Logger(logger),
		api.DBContext(app.DB),
		api.MessageBus(app.Bus),
		api.OuraService(app.Oura),
		api.Dashboard(app.Aggregator.Catalog(), cfg.Oura.DashboardDays),
		api.Sessions(sessions),
		api.ProjectService(app.Projects),
		api.SongService(app.Songs),
		api.Snapshots(app.Snapshots),
		api.Refresher(app.Refresher),
		api.Authorizer(app.Authorizer),
	)

	errCh := make(chan error)

	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server was not shutdown gracefully", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server closed with unexpected error", "error", err)
			}
		}
	}
	logger.Info("server shutdown")
}
