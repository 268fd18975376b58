package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"

	adapterlogger "agency-rbac/internal/adapters/logger"
	"agency-rbac/internal/app"
	"agency-rbac/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		adapterlogger.New(nil).Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	level, err := adapterlogger.ParseLevel(cfg.LogLevel)
	if err != nil {
		adapterlogger.New(nil).Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	logger := adapterlogger.New(level).With("service", "agency-rbac")
	xray.Configure(xray.Config{LogLevel: "error"})

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to initialize service", "error", err)
		os.Exit(1)
	}
	// Seeding failures are logged inside Seed; the API still serves whatever
	// the store already holds.
	_ = a.Seed(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "http shutdown failed", "error", err)
		}
	}()

	logger.Info(ctx, "starting http server", "port", cfg.Port, "store", cfg.Store, "auth_mode", cfg.AuthMode)
	if err := a.Echo.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(ctx, "http server stopped", "error", err)
		os.Exit(1)
	}
}
