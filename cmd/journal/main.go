// Command journal runs the learning journal web application.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quillhub/journal/internal/app"
	"github.com/quillhub/journal/internal/config"
	"github.com/quillhub/journal/internal/logging"
)

func main() {
	_ = godotenv.Load() // allow .env for local runs

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("initialize application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		logger.Fatalf("server error: %v", err)
	}

	if err := application.Shutdown(context.Background()); err != nil {
		logger.Fatalf("shutdown: %v", err)
	}
	logger.Info("journal stopped")
}
