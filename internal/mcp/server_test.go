package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heart-risk-mcp-server/internal/artifacts"
	"github.com/heart-risk-mcp-server/internal/domain"
	"github.com/heart-risk-mcp-server/internal/service"
)

func newPredictor(t *testing.T, dir string) *service.Predictor {
	t.Helper()
	logger, _ := test.NewNullLogger()
	state := artifacts.Load(artifacts.Paths{
		Model:         filepath.Join(dir, "logistic_regression_model.json"),
		Scaler:        filepath.Join(dir, "scaler.json"),
		Preprocessing: filepath.Join(dir, "preprocessing_info.json"),
	}, logger)
	p, err := service.NewPredictor(state, service.PredictorConfig{ValidateInput: true, CacheSize: 4}, logger)
	require.NoError(t, err)
	return p
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s, err := NewServer(domain.MCPConfig{}, newPredictor(t, filepath.Join("..", "artifacts", "testdata")), logger)
	require.NoError(t, err)
	return s
}

func newDisabledServer(t *testing.T) *Server {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s, err := NewServer(domain.MCPConfig{}, newPredictor(t, t.TempDir()), logger)
	require.NoError(t, err)
	return s
}

func elderlyInput() PatientInput {
	return PatientInput{
		Age: 70, Sex: 1, CP: "typical", Trestbps: 160, Chol: 290, FBS: 1, RestECG: 2,
		Thalach: 95, Exang: 1, Oldpeak: 3.0, Slope: 3, CA: 2, Thal: "reversable",
	}
}

func TestNewServer(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := NewServer(domain.MCPConfig{}, nil, logger)
	assert.ErrorIs(t, err, ErrMissingPredictor)

	s := newTestServer(t)
	assert.NotNil(t, s.server)
	assert.NotNil(t, s.HTTPHandler())
}

func TestServer_handlePredict(t *testing.T) {
	ctx := context.Background()

	t.Run("returns prediction", func(t *testing.T) {
		_, output, err := newTestServer(t).handlePredict(ctx, nil, elderlyInput())

		require.NoError(t, err)
		assert.Equal(t, "ok", output.Status)
		assert.Equal(t, "disease", output.Prediction)
		assert.Equal(t, "high", output.RiskLevel)
		assert.InDelta(t, 0.998927, output.Probability, 1e-4)
		assert.Nil(t, output.Diagnostic)
	})

	t.Run("reports invalid record as diagnostic", func(t *testing.T) {
		input := elderlyInput()
		input.Chol = 20

		_, output, err := newTestServer(t).handlePredict(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "unavailable", output.Status)
		require.NotNil(t, output.Diagnostic)
		assert.Equal(t, domain.ErrTransformFailure, output.Diagnostic.Code)
		assert.Contains(t, output.Diagnostic.Details, "chol")
	})

	t.Run("reports missing artifacts", func(t *testing.T) {
		_, output, err := newDisabledServer(t).handlePredict(ctx, nil, elderlyInput())

		require.NoError(t, err)
		assert.Equal(t, "unavailable", output.Status)
		assert.Equal(t, domain.ErrArtifactMissing, output.Diagnostic.Code)
		assert.Empty(t, output.Prediction)
	})
}

func TestServer_handlePredictPreset(t *testing.T) {
	s := newTestServer(t)

	_, output, err := s.handlePredictPreset(context.Background(), nil, PresetInput{PresetID: "sem-risco"})
	require.NoError(t, err)
	assert.Equal(t, "no_disease", output.Prediction)
	assert.Equal(t, "low", output.RiskLevel)

	_, output, err = s.handlePredictPreset(context.Background(), nil, PresetInput{PresetID: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, domain.ErrPresetNotFound, output.Diagnostic.Code)
}

func TestServer_handleListPresets(t *testing.T) {
	_, output, err := newTestServer(t).handleListPresets(context.Background(), nil, EmptyInput{})

	require.NoError(t, err)
	assert.Equal(t, 4, output.Count)
	assert.Equal(t, "idoso-com-risco", output.Presets[1].ID)
	assert.Equal(t, domain.ThalReversable, output.Presets[1].Record.Thal)
}

func TestServer_handleTransform(t *testing.T) {
	_, output, err := newTestServer(t).handleTransform(context.Background(), nil, elderlyInput())

	require.NoError(t, err)
	require.Len(t, output.Features, 22)
	assert.Nil(t, output.Diagnostic)
	assert.Equal(t, "age", output.Features[0].Name)

	_, output, err = newDisabledServer(t).handleTransform(context.Background(), nil, elderlyInput())
	require.NoError(t, err)
	assert.Empty(t, output.Features)
	assert.Equal(t, domain.ErrArtifactMissing, output.Diagnostic.Code)
}

func TestServer_handleModelStatus(t *testing.T) {
	_, output, err := newTestServer(t).handleModelStatus(context.Background(), nil, EmptyInput{})
	require.NoError(t, err)
	assert.True(t, output.Ready)
	assert.Equal(t, 22, output.FeatureCount)
	assert.NotEmpty(t, output.LoadedAt)

	_, output, err = newDisabledServer(t).handleModelStatus(context.Background(), nil, EmptyInput{})
	require.NoError(t, err)
	assert.False(t, output.Ready)
	// a failed load still records when it was attempted
	assert.NotEmpty(t, output.LoadedAt)
	assert.Equal(t, domain.ErrArtifactMissing, output.Diagnostic.Code)
}

func TestPatientInput_Record(t *testing.T) {
	rec := elderlyInput().Record()
	assert.Equal(t, domain.ChestPainTypical, rec.CP)
	assert.Equal(t, domain.ThalReversable, rec.Thal)
	assert.Equal(t, 3.0, rec.Oldpeak)
	assert.NoError(t, rec.Validate())
}

func TestExtractPresetID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid preset URI", "heart-risk://presets/sem-risco", "sem-risco"},
		{"invalid prefix", "file://presets/sem-risco", ""},
		{"nested path", "heart-risk://presets/sem-risco/record", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractPresetID(tt.uri))
		})
	}
}

func TestServer_handlePresetResource(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handlePresetResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "heart-risk://presets/jovem-saudavel"},
	})
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var preset struct {
		ID     string               `json:"id"`
		Record domain.PatientRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &preset))
	assert.Equal(t, "jovem-saudavel", preset.ID)
	assert.Equal(t, 28, preset.Record.Age)

	_, err = s.handlePresetResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "heart-risk://presets/nobody"},
	})
	assert.Error(t, err)
}

func TestServer_handleModelResource(t *testing.T) {
	result, err := newDisabledServer(t).handleModelResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "heart-risk://model"},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	assert.Contains(t, result.Contents[0].Text, domain.ErrArtifactMissing)
}

func TestResolveEndpoint(t *testing.T) {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	noEnv := func(string) string { return "" }
	cfg := domain.MCPConfig{Transport: "stdio", HTTPHost: "127.0.0.1", HTTPPort: 8081}

	tests := []struct {
		name    string
		flag    string
		env     map[string]string
		cfg     domain.MCPConfig
		want    Endpoint
		wantErr bool
	}{
		{name: "default stdio", cfg: domain.MCPConfig{}, want: Endpoint{Transport: TransportStdio}},
		{name: "configured stdio", cfg: cfg, want: Endpoint{Transport: TransportStdio}},
		{name: "flag selects http", flag: TransportHTTP, cfg: cfg,
			want: Endpoint{Transport: TransportHTTP, Addr: "127.0.0.1:8081"}},
		{name: "env selects http", env: map[string]string{"MCP_TRANSPORT": "http", "MCP_HTTP_PORT": "9000"}, cfg: cfg,
			want: Endpoint{Transport: TransportHTTP, Addr: "127.0.0.1:9000"}},
		{name: "flag beats env", flag: TransportStdio, env: map[string]string{"MCP_TRANSPORT": "http"}, cfg: cfg,
			want: Endpoint{Transport: TransportStdio}},
		{name: "unknown env falls back to config", env: map[string]string{"MCP_TRANSPORT": "carrier-pigeon"}, cfg: cfg,
			want: Endpoint{Transport: TransportStdio}},
		{name: "unknown configured transport", cfg: domain.MCPConfig{Transport: "websocket"}, wantErr: true},
		{name: "bad env port", env: map[string]string{"MCP_HTTP_PORT": "eighty"},
			cfg: domain.MCPConfig{Transport: "http", HTTPPort: 8081}, wantErr: true},
		{name: "missing http port", cfg: domain.MCPConfig{Transport: "http"}, wantErr: true},
		{name: "unknown flag transport", flag: "sse", cfg: cfg, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := noEnv
			if tt.env != nil {
				getenv = func(k string) string { return tt.env[k] }
			}

			got, err := ResolveEndpoint(tt.flag, getenv, tt.cfg, logger)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagTransport(t *testing.T) {
	tests := []struct {
		name    string
		stdio   bool
		http    bool
		want    string
		wantErr bool
	}{
		{name: "neither", want: ""},
		{name: "stdio", stdio: true, want: TransportStdio},
		{name: "http", http: true, want: TransportHTTP},
		{name: "both", stdio: true, http: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlagTransport(tt.stdio, tt.http)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredictionOutput_KeepsZeroProbability(t *testing.T) {
	output := predictionOutput(domain.OutcomeOf(domain.PredictionResult{
		Prediction:  domain.PredictionNoDisease,
		Probability: 0,
		RiskLevel:   domain.RiskLow,
	}))

	data, err := json.Marshal(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"probability":0`)
}
