package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/IndraPur1/ChatApp/internal/logging"
	"github.com/IndraPur1/ChatApp/internal/server"
	"github.com/IndraPur1/ChatApp/internal/server/config"
)

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, config.Load(), log); err != nil {
		log.Error(ctx, "server exited with error", "error", err)
		os.Exit(1)
	}
}
