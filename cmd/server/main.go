package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"userhub/internal/config"
	"userhub/internal/logger"
	"userhub/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Mode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// Create and run server
	srv, err := server.New(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to create server", "error", err)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		zlog.Error("server error", "error", err)
	}
}
