// Package main is the entry point for the portfolio backend server.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sakif/portfolio-backend/internal/config"
	"github.com/sakif/portfolio-backend/internal/server"
)

func main() {
	// A .env file is a development convenience; in production the
	// environment comes from the process manager.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("server setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
