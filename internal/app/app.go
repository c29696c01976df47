// Package app wires configuration, logging, artifacts and the predictor in
// the order every entry point needs them.
package app

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/heart-risk-mcp-server/internal/artifacts"
	"github.com/heart-risk-mcp-server/internal/config"
	"github.com/heart-risk-mcp-server/internal/logging"
	"github.com/heart-risk-mcp-server/internal/service"
)

// App holds the process-wide components
type App struct {
	Config    *config.Manager
	Logger    *logrus.Logger
	Predictor *service.Predictor
	logCloser io.Closer
}

type options struct {
	stderrLogs bool
}

// Option customises Bootstrap
type Option func(*options)

// WithStderrLogs moves stdout logging to stderr, for processes whose stdout
// carries protocol or command output
func WithStderrLogs() Option {
	return func(o *options) {
		o.stderrLogs = true
	}
}

// Bootstrap loads configuration and artifacts. Missing or broken artifacts do
// not fail it; the predictor is then disabled and reports why.
func Bootstrap(configFile string, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	configManager, err := config.NewManager(configFile)
	if err != nil {
		return nil, err
	}
	if err := configManager.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logCfg := *configManager.GetLoggingConfig()
	if o.stderrLogs && (logCfg.Output == "" || logCfg.Output == "stdout") {
		logCfg.Output = "stderr"
	}
	logger, closer, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	state := artifacts.Load(artifacts.PathsFrom(*configManager.GetArtifactsConfig()), logger)

	predictor, err := service.NewPredictor(state, service.PredictorConfigFrom(configManager.GetConfig()), logger)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to create predictor: %w", err)
	}

	return &App{
		Config:    configManager,
		Logger:    logger,
		Predictor: predictor,
		logCloser: closer,
	}, nil
}

// Close releases the log output
func (a *App) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}
