package domain

import (
	"context"
)

// Classifier is a fitted binary classifier over an ordered feature vector
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
}

// Scaler transforms the designated numeric columns in place
type Scaler interface {
	Columns() []string
	Transform(values []float64) error
}

// FeatureTransformer maps a raw record to the model's feature schema
type FeatureTransformer interface {
	Transform(record PatientRecord) (FeatureVector, error)
	FeatureNames() []string
}

// RiskPredictor produces a verdict for a patient record. It never returns an
// error; failures are reported through the outcome's diagnostic.
type RiskPredictor interface {
	Predict(ctx context.Context, record PatientRecord) PredictionOutcome
	PredictPreset(ctx context.Context, presetID string) PredictionOutcome
	Transform(ctx context.Context, record PatientRecord) (FeatureVector, *Diagnostic)
	Status() ModelStatus
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetArtifactsConfig() *ArtifactsConfig
	GetLoggingConfig() *LoggingConfig
	GetMCPConfig() *MCPConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
