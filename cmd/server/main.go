package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/heart-risk-mcp-server/internal/api"
	"github.com/heart-risk-mcp-server/internal/app"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "path to config.yaml")
	pflag.Parse()

	// Load configuration, logging and model artifacts
	a, err := app.Bootstrap(*configFile)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	cfg := a.Config.GetConfig()
	a.Logger.WithField("addr", cfg.Server.Host).WithField("port", cfg.Server.Port).Info("Starting heart-risk HTTP server")

	// Create server
	server := api.NewServer(a.Config, a.Predictor, a.Logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		a.Logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		a.Logger.WithError(err).Fatal("Server failed")
	}

	a.Logger.Info("Server stopped")
}
