package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"recytoken-up-go/internal/common"
	"recytoken-up-go/internal/config"
	"recytoken-up-go/internal/httpapi"
	"recytoken-up-go/internal/sweeper"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	invoiceSweeper, err := sweeper.New(services.Billing, cfg.Sweeper.Interval)
	if err != nil {
		zap.L().Fatal("Failed to create invoice sweeper", zap.Error(err))
	}
	invoiceSweeper.Start(ctx)
	defer invoiceSweeper.Stop()

	server := httpapi.New(cfg.HTTP, services.Console)
	go func() {
		zap.L().Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exited")
}
