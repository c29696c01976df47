package domain

import (
	"path/filepath"
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts"`
	Features   FeaturesConfig   `mapstructure:"features"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	MCP        MCPConfig        `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second per client, 0 disables
	RateBurst      int           `mapstructure:"rate_burst"`
}

// ArtifactsConfig locates the three pretrained artifacts
type ArtifactsConfig struct {
	Dir               string `mapstructure:"dir"`
	ModelFile         string `mapstructure:"model_file"`
	ScalerFile        string `mapstructure:"scaler_file"`
	PreprocessingFile string `mapstructure:"preprocessing_file"`
}

// ModelPath returns the classifier artifact path
func (a ArtifactsConfig) ModelPath() string {
	return a.resolve(a.ModelFile)
}

// ScalerPath returns the scaler artifact path
func (a ArtifactsConfig) ScalerPath() string {
	return a.resolve(a.ScalerFile)
}

// PreprocessingPath returns the preprocessing metadata artifact path
func (a ArtifactsConfig) PreprocessingPath() string {
	return a.resolve(a.PreprocessingFile)
}

func (a ArtifactsConfig) resolve(file string) string {
	if filepath.IsAbs(file) || a.Dir == "" {
		return file
	}
	return filepath.Join(a.Dir, file)
}

// Unknown-category policies of the feature transformer
const (
	CategoryPolicyLenient = "lenient"
	CategoryPolicyStrict  = "strict"
)

// FeaturesConfig configures the feature transformer
type FeaturesConfig struct {
	UnknownCategoryPolicy string `mapstructure:"unknown_category_policy"`
}

// PredictionConfig configures the predictor
type PredictionConfig struct {
	ValidateInput bool `mapstructure:"validate_input"`
	CacheSize     int  `mapstructure:"cache_size"` // 0 disables the result cache
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"` // stdout, stderr or file
	Filename string `mapstructure:"filename"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
	Transport     string `mapstructure:"transport"` // "stdio", "http"
	HTTPHost      string `mapstructure:"http_host"`
	HTTPPort      int    `mapstructure:"http_port"`
}
