package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shibalabs/inspection-console/internal/app"
	"github.com/shibalabs/inspection-console/internal/config"
	"github.com/shibalabs/inspection-console/internal/logging"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		// The app's own logger may not exist yet, so build a minimal one.
		logger := logging.New(logging.LevelError)
		logger.Error("Failed to initialize", logging.WithField("error", err.Error()))
		logger.Sync()
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		application.Logger.Info("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := application.Shutdown(shutdownCtx); err != nil {
			application.Logger.Error("Shutdown error", logging.WithField("error", err.Error()))
		}
		cancel()
	}()

	if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		application.Logger.Error("HTTP server error", logging.WithField("error", err.Error()))
		application.Logger.Sync()
		os.Exit(1)
	}
}
