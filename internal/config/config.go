package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/heart-risk-mcp-server/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// NewManager creates a new configuration manager. configFile may be empty,
// in which case config.yaml is searched in the default locations.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{configFile: configFile}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := viper.New()

	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/heart-risk/")
	}

	v.SetEnvPrefix("HEART_RISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || m.configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)

	// Artifact defaults
	v.SetDefault("artifacts.dir", "saved_models")
	v.SetDefault("artifacts.model_file", "logistic_regression_model.json")
	v.SetDefault("artifacts.scaler_file", "scaler.json")
	v.SetDefault("artifacts.preprocessing_file", "preprocessing_info.json")

	// Feature and prediction defaults
	v.SetDefault("features.unknown_category_policy", domain.CategoryPolicyLenient)
	v.SetDefault("prediction.validate_input", true)
	v.SetDefault("prediction.cache_size", 1024)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.filename", "")

	// MCP defaults
	v.SetDefault("mcp.server_name", "heart-risk-mcp-server")
	v.SetDefault("mcp.server_version", "v0.1.0")
	v.SetDefault("mcp.transport", "stdio")
	v.SetDefault("mcp.http_host", "127.0.0.1")
	v.SetDefault("mcp.http_port", 8081)

	v.SetDefault("environment", "development")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetArtifactsConfig returns artifact locations
func (m *Manager) GetArtifactsConfig() *domain.ArtifactsConfig {
	return &m.config.Artifacts
}

// GetLoggingConfig returns logging configuration
func (m *Manager) GetLoggingConfig() *domain.LoggingConfig {
	return &m.config.Logging
}

// GetMCPConfig returns MCP server configuration
func (m *Manager) GetMCPConfig() *domain.MCPConfig {
	return &m.config.MCP
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %v", config.Server.RateLimit)
	}
	if config.Server.RateLimit > 0 && config.Server.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting is enabled")
	}

	if config.Artifacts.ModelFile == "" {
		return fmt.Errorf("model artifact file is required")
	}
	if config.Artifacts.ScalerFile == "" {
		return fmt.Errorf("scaler artifact file is required")
	}
	if config.Artifacts.PreprocessingFile == "" {
		return fmt.Errorf("preprocessing artifact file is required")
	}

	switch config.Features.UnknownCategoryPolicy {
	case domain.CategoryPolicyLenient, domain.CategoryPolicyStrict:
	default:
		return fmt.Errorf("invalid unknown category policy: %s", config.Features.UnknownCategoryPolicy)
	}

	if config.Prediction.CacheSize < 0 {
		return fmt.Errorf("invalid prediction cache size: %d", config.Prediction.CacheSize)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	switch config.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}
	switch config.Logging.Output {
	case "stdout", "stderr":
	case "file":
		if config.Logging.Filename == "" {
			return fmt.Errorf("logging filename is required for file output")
		}
	default:
		return fmt.Errorf("invalid log output: %s", config.Logging.Output)
	}

	switch config.MCP.Transport {
	case "stdio":
	case "http":
		if config.MCP.HTTPPort <= 0 || config.MCP.HTTPPort > 65535 {
			return fmt.Errorf("invalid MCP HTTP port: %d", config.MCP.HTTPPort)
		}
	default:
		return fmt.Errorf("invalid MCP transport: %s", config.MCP.Transport)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.v.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.v.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
