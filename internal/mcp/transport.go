package mcp

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/heart-risk-mcp-server/internal/domain"
)

// Transport names
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Endpoint is the resolved transport and, for HTTP, its listen address
type Endpoint struct {
	Transport string
	Addr      string
}

// FlagTransport maps the --stdio/--http command line switches to a transport
// name. It returns "" when neither is set.
func FlagTransport(stdio, http bool) (string, error) {
	switch {
	case stdio && http:
		return "", fmt.Errorf("--stdio and --http are mutually exclusive")
	case stdio:
		return TransportStdio, nil
	case http:
		return TransportHTTP, nil
	default:
		return "", nil
	}
}

// ResolveEndpoint picks the transport. A transport chosen on the command
// line wins over the MCP_TRANSPORT/MCP_HTTP_HOST/MCP_HTTP_PORT environment,
// which wins over configuration; the default is stdio.
func ResolveEndpoint(flagTransport string, getenv func(string) string, cfg domain.MCPConfig, logger *logrus.Logger) (Endpoint, error) {
	transport := ""

	switch flagTransport {
	case "":
	case TransportStdio, TransportHTTP:
		transport = flagTransport
		logger.WithField("transport", transport).Debug("Transport selected by command line")
	default:
		return Endpoint{}, fmt.Errorf("unsupported transport type: %s", flagTransport)
	}

	if transport == "" {
		if env := getenv("MCP_TRANSPORT"); env != "" {
			switch env {
			case TransportStdio, TransportHTTP:
				transport = env
				logger.WithField("transport", transport).Debug("Transport selected by MCP_TRANSPORT")
			default:
				logger.WithField("transport", env).Warn("Unknown transport type in MCP_TRANSPORT")
			}
		}
	}

	if transport == "" {
		switch cfg.Transport {
		case "":
			transport = TransportStdio
		case TransportStdio, TransportHTTP:
			transport = cfg.Transport
		default:
			return Endpoint{}, fmt.Errorf("unsupported transport type: %s", cfg.Transport)
		}
	}

	if transport == TransportStdio {
		return Endpoint{Transport: TransportStdio}, nil
	}

	host := cfg.HTTPHost
	port := cfg.HTTPPort
	if envHost := getenv("MCP_HTTP_HOST"); envHost != "" {
		host = envHost
	}
	if envPort := getenv("MCP_HTTP_PORT"); envPort != "" {
		p, err := strconv.Atoi(envPort)
		if err != nil {
			return Endpoint{}, fmt.Errorf("invalid MCP_HTTP_PORT %q: %w", envPort, err)
		}
		port = p
	}
	if port <= 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("invalid MCP HTTP port: %d", port)
	}

	return Endpoint{Transport: TransportHTTP, Addr: fmt.Sprintf("%s:%d", host, port)}, nil
}
