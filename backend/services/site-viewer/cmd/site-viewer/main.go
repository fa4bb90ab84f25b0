package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"go.uber.org/zap"

	"siteviewer/backend/libs/logging"
	"siteviewer/backend/services/site-viewer/internal/app"
	"siteviewer/backend/services/site-viewer/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewLogger("site-viewer")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	application, err := app.New(cfg, nil, logger)
	if err != nil {
		logger.Fatal("failed to init site viewer", zap.Error(err))
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("site viewer stopped with error", zap.Error(err))
	}
}
