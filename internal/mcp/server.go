// Package mcp exposes the heart-disease predictor as Model Context Protocol
// tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/heart-risk-mcp-server/internal/domain"
)

// ErrMissingPredictor is returned when no predictor is supplied
var ErrMissingPredictor = errors.New("mcp: predictor is required")

// Server is the heart-risk MCP server
type Server struct {
	config    domain.MCPConfig
	predictor domain.RiskPredictor
	server    *mcp.Server
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg domain.MCPConfig, predictor domain.RiskPredictor, logger *logrus.Logger) (*Server, error) {
	if predictor == nil {
		return nil, ErrMissingPredictor
	}

	name := cfg.ServerName
	if name == "" {
		name = "heart-risk-mcp-server"
	}
	version := cfg.ServerVersion
	if version == "" {
		version = "v0.1.0"
	}

	s := &Server{
		config:    cfg,
		predictor: predictor,
		server:    mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		logger:    logger,
	}

	s.registerTools()
	s.registerResources()
	logger.WithFields(logrus.Fields{
		"name":    name,
		"version": version,
	}).Info("Registered MCP tools and resources")

	return s, nil
}

// Start serves MCP on the resolved endpoint until ctx is cancelled
func (s *Server) Start(ctx context.Context, endpoint Endpoint) error {
	s.logger.WithField("transport", endpoint.Transport).Info("Starting heart-risk MCP server")

	switch endpoint.Transport {
	case TransportStdio, "":
		if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	case TransportHTTP:
		return s.runHTTP(ctx, endpoint.Addr)
	default:
		return fmt.Errorf("unsupported transport type: %s", endpoint.Transport)
	}
}

// HTTPHandler returns the streamable HTTP handler for this server
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) runHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("MCP HTTP shutdown failed")
		}
	}()

	s.logger.WithField("addr", addr).Info("MCP HTTP transport listening")
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
