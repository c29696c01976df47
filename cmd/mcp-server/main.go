package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/heart-risk-mcp-server/internal/app"
	"github.com/heart-risk-mcp-server/internal/mcp"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "path to config.yaml")
	useStdio := pflag.Bool("stdio", false, "serve MCP over stdio")
	useHTTP := pflag.Bool("http", false, "serve MCP over streamable HTTP")
	pflag.Parse()

	// stdout carries the protocol on stdio, so logs always go to stderr
	a, err := app.Bootstrap(*configFile, app.WithStderrLogs())
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	flagTransport, err := mcp.FlagTransport(*useStdio, *useHTTP)
	if err != nil {
		a.Logger.WithError(err).Fatal("Invalid MCP transport")
	}
	endpoint, err := mcp.ResolveEndpoint(flagTransport, os.Getenv, *a.Config.GetMCPConfig(), a.Logger)
	if err != nil {
		a.Logger.WithError(err).Fatal("Invalid MCP transport")
	}

	// Create MCP server
	mcpServer, err := mcp.NewServer(*a.Config.GetMCPConfig(), a.Predictor, a.Logger)
	if err != nil {
		a.Logger.WithError(err).Fatal("Failed to create MCP server")
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start MCP server
	if err := mcpServer.Start(ctx, endpoint); err != nil {
		a.Logger.WithError(err).Fatal("MCP server failed")
	}

	a.Logger.Info("Heart-risk MCP server stopped")
}
