package service

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heart-risk-mcp-server/internal/artifacts"
	"github.com/heart-risk-mcp-server/internal/domain"
	"github.com/heart-risk-mcp-server/internal/presets"
)

func fixturePaths(dir string) artifacts.Paths {
	return artifacts.Paths{
		Model:         filepath.Join(dir, "logistic_regression_model.json"),
		Scaler:        filepath.Join(dir, "scaler.json"),
		Preprocessing: filepath.Join(dir, "preprocessing_info.json"),
	}
}

func newTestPredictor(t *testing.T, cfg PredictorConfig, opts ...PredictorOption) (*Predictor, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	state := artifacts.Load(fixturePaths(filepath.Join("..", "artifacts", "testdata")), logger)
	require.True(t, state.Ready(), "fixture artifacts must load: %v", state.Err())

	p, err := NewPredictor(state, cfg, logger, opts...)
	require.NoError(t, err)
	return p, hook
}

func defaultConfig() PredictorConfig {
	return PredictorConfig{CategoryPolicy: domain.CategoryPolicyLenient, ValidateInput: true, CacheSize: 16}
}

func presetRecord(t *testing.T, id string) domain.PatientRecord {
	t.Helper()
	p, ok := presets.Lookup(id)
	require.True(t, ok)
	return p.Record
}

// fakeClassifier returns canned answers
type fakeClassifier struct {
	class int
	proba []float64
	err   error
	panic bool
	calls atomic.Int32
}

func (f *fakeClassifier) Predict(features []float64) (int, error) {
	f.calls.Add(1)
	if f.panic {
		panic("classifier exploded")
	}
	return f.class, f.err
}

func (f *fakeClassifier) PredictProba(features []float64) ([]float64, error) {
	return f.proba, f.err
}

// countingClassifier forwards to a real classifier and counts calls
type countingClassifier struct {
	domain.Classifier
	calls atomic.Int32
}

func (c *countingClassifier) Predict(features []float64) (int, error) {
	c.calls.Add(1)
	return c.Classifier.Predict(features)
}

func TestPredictor_Presets(t *testing.T) {
	p, _ := newTestPredictor(t, defaultConfig())

	tests := []struct {
		id          string
		prediction  domain.Prediction
		probability float64
		risk        domain.RiskLevel
	}{
		{"jovem-saudavel", domain.PredictionNoDisease, 0.000517, domain.RiskLow},
		{"idoso-com-risco", domain.PredictionDisease, 0.998927, domain.RiskHigh},
		{"risco-moderado", domain.PredictionDisease, 0.6676, domain.RiskMedium},
		{"sem-risco", domain.PredictionNoDisease, 0.000318, domain.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			outcome := p.PredictPreset(context.Background(), tt.id)

			require.True(t, outcome.Available(), "diagnostic: %v", outcome.Diagnostic)
			assert.Equal(t, domain.OutcomeOK, outcome.Status)
			assert.Nil(t, outcome.Diagnostic)
			assert.Equal(t, tt.prediction, outcome.Result.Prediction)
			assert.InDelta(t, tt.probability, outcome.Result.Probability, 1e-4)
			assert.Equal(t, tt.risk, outcome.Result.RiskLevel)
		})
	}
}

func TestPredictor_PredictMatchesPreset(t *testing.T) {
	p, _ := newTestPredictor(t, defaultConfig())

	direct := p.Predict(context.Background(), presetRecord(t, "idoso-com-risco"))
	viaPreset := p.PredictPreset(context.Background(), "idoso-com-risco")

	assert.Equal(t, direct, viaPreset)
}

func TestPredictor_UnknownPreset(t *testing.T) {
	p, _ := newTestPredictor(t, defaultConfig())

	outcome := p.PredictPreset(context.Background(), "nobody")

	assert.False(t, outcome.Available())
	require.NotNil(t, outcome.Diagnostic)
	assert.Equal(t, domain.ErrPresetNotFound, outcome.Diagnostic.Code)
	assert.Contains(t, outcome.Diagnostic.Message, "nobody")
}

func TestPredictor_MissingArtifacts(t *testing.T) {
	logger, hook := test.NewNullLogger()
	state := artifacts.Load(fixturePaths(t.TempDir()), logger)
	require.False(t, state.Ready())

	p, err := NewPredictor(state, defaultConfig(), logger)
	require.NoError(t, err)

	outcome := p.Predict(context.Background(), presetRecord(t, "jovem-saudavel"))
	assert.Equal(t, domain.OutcomeUnavailable, outcome.Status)
	require.NotNil(t, outcome.Diagnostic)
	assert.Equal(t, domain.ErrArtifactMissing, outcome.Diagnostic.Code)

	_, diag := p.Transform(context.Background(), presetRecord(t, "jovem-saudavel"))
	require.NotNil(t, diag)
	assert.Equal(t, domain.ErrArtifactMissing, diag.Code)

	status := p.Status()
	assert.False(t, status.Ready)
	assert.Zero(t, status.FeatureCount)
	require.NotNil(t, status.Diagnostic)
	assert.Equal(t, domain.ErrArtifactMissing, status.Diagnostic.Code)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Prediction disabled" {
			warned = true
			assert.Equal(t, logrus.WarnLevel, entry.Level)
		}
	}
	assert.True(t, warned)
}

func TestPredictor_Status(t *testing.T) {
	p, hook := newTestPredictor(t, defaultConfig())

	status := p.Status()

	assert.True(t, status.Ready)
	assert.Nil(t, status.Diagnostic)
	assert.Equal(t, 22, status.FeatureCount)
	assert.Equal(t, domain.CategoryPolicyLenient, status.CategoryPolicy)
	assert.False(t, status.LoadedAt.IsZero())
	assert.Contains(t, status.ModelPath, "logistic_regression_model.json")
	assert.Equal(t, "Predictor ready", hook.LastEntry().Message)
}

func TestPredictor_ValidateInput(t *testing.T) {
	rec := presetRecord(t, "risco-moderado")
	rec.Age = 140

	validating, _ := newTestPredictor(t, defaultConfig())
	outcome := validating.Predict(context.Background(), rec)
	assert.False(t, outcome.Available())
	require.NotNil(t, outcome.Diagnostic)
	assert.Equal(t, domain.ErrTransformFailure, outcome.Diagnostic.Code)
	assert.Contains(t, outcome.Diagnostic.Details, "age")

	cfg := defaultConfig()
	cfg.ValidateInput = false
	permissive, _ := newTestPredictor(t, cfg)
	outcome = permissive.Predict(context.Background(), rec)
	assert.True(t, outcome.Available())
}

func TestPredictor_StrictPolicy(t *testing.T) {
	cfg := defaultConfig()
	cfg.CategoryPolicy = domain.CategoryPolicyStrict
	cfg.ValidateInput = false
	p, _ := newTestPredictor(t, cfg)

	rec := presetRecord(t, "jovem-saudavel")
	rec.CP = "burning"

	outcome := p.Predict(context.Background(), rec)
	assert.False(t, outcome.Available())
	assert.Equal(t, domain.ErrTransformFailure, outcome.Diagnostic.Code)
	assert.Equal(t, domain.CategoryPolicyStrict, p.Status().CategoryPolicy)
}

func TestPredictor_LenientUnknownCategory(t *testing.T) {
	cfg := defaultConfig()
	cfg.ValidateInput = false
	p, _ := newTestPredictor(t, cfg)

	rec := presetRecord(t, "jovem-saudavel")
	rec.CP = "burning"

	outcome := p.Predict(context.Background(), rec)
	assert.True(t, outcome.Available())
}

func TestPredictor_NonPositiveAge(t *testing.T) {
	cfg := defaultConfig()
	cfg.ValidateInput = false
	p, _ := newTestPredictor(t, cfg)

	rec := presetRecord(t, "jovem-saudavel")
	rec.Age = 0

	outcome := p.Predict(context.Background(), rec)
	assert.False(t, outcome.Available())
	assert.Equal(t, domain.ErrTransformFailure, outcome.Diagnostic.Code)
}

func TestPredictor_InferenceFailures(t *testing.T) {
	tests := []struct {
		name       string
		classifier *fakeClassifier
		details    string
	}{
		{"classifier error", &fakeClassifier{err: errors.New("bad weights")}, "bad weights"},
		{"panic", &fakeClassifier{panic: true}, "classifier exploded"},
		{"unexpected class", &fakeClassifier{class: 7, proba: []float64{0.5, 0.5}}, "unexpected class label 7"},
		{"wrong arity", &fakeClassifier{class: 1, proba: []float64{1}}, "expected 2 class probabilities"},
		{"NaN probability", &fakeClassifier{class: 1, proba: []float64{0, math.NaN()}}, "outside [0,1]"},
		{"probability above one", &fakeClassifier{class: 1, proba: []float64{-0.5, 1.5}}, "outside [0,1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPredictor(t, defaultConfig(), WithClassifier(tt.classifier))

			assert.NotPanics(t, func() {
				outcome := p.Predict(context.Background(), presetRecord(t, "jovem-saudavel"))
				assert.Equal(t, domain.OutcomeUnavailable, outcome.Status)
				require.NotNil(t, outcome.Diagnostic)
				assert.Equal(t, domain.ErrInferenceFailure, outcome.Diagnostic.Code)
				assert.Contains(t, outcome.Diagnostic.Details, tt.details)
			})
		})
	}
}

func TestPredictor_FailuresAreNotCached(t *testing.T) {
	fake := &fakeClassifier{err: errors.New("transient")}
	p, _ := newTestPredictor(t, defaultConfig(), WithClassifier(fake))
	rec := presetRecord(t, "jovem-saudavel")

	p.Predict(context.Background(), rec)
	p.Predict(context.Background(), rec)

	assert.Equal(t, int32(2), fake.calls.Load())
}

func TestPredictor_Cache(t *testing.T) {
	logger, _ := test.NewNullLogger()
	state := artifacts.Load(fixturePaths(filepath.Join("..", "artifacts", "testdata")), logger)
	require.True(t, state.Ready())
	counter := &countingClassifier{Classifier: state.Bundle().Classifier()}

	p, err := NewPredictor(state, defaultConfig(), logger, WithClassifier(counter))
	require.NoError(t, err)

	rec := presetRecord(t, "risco-moderado")
	first := p.Predict(context.Background(), rec)
	second := p.Predict(context.Background(), rec)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), counter.calls.Load())

	rec.Chol++
	p.Predict(context.Background(), rec)
	assert.Equal(t, int32(2), counter.calls.Load())
}

func TestPredictor_CacheDisabled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	state := artifacts.Load(fixturePaths(filepath.Join("..", "artifacts", "testdata")), logger)
	counter := &countingClassifier{Classifier: state.Bundle().Classifier()}

	cfg := defaultConfig()
	cfg.CacheSize = 0
	p, err := NewPredictor(state, cfg, logger, WithClassifier(counter))
	require.NoError(t, err)

	rec := presetRecord(t, "risco-moderado")
	p.Predict(context.Background(), rec)
	p.Predict(context.Background(), rec)

	assert.Equal(t, int32(2), counter.calls.Load())
}

func TestPredictor_Transform(t *testing.T) {
	p, _ := newTestPredictor(t, defaultConfig())

	vec, diag := p.Transform(context.Background(), presetRecord(t, "jovem-saudavel"))

	require.Nil(t, diag)
	require.Len(t, vec.Names, 22)
	age, ok := vec.Get("age")
	require.True(t, ok)
	assert.InDelta(t, -2.933333, age, 1e-6)
}

func TestPredictor_FeaturePlanFailureDisables(t *testing.T) {
	logger, hook := test.NewNullLogger()
	state := artifacts.Load(fixturePaths(filepath.Join("..", "artifacts", "testdata")), logger)
	require.True(t, state.Ready())

	prev := compileTransformer
	compileTransformer = func([]string, domain.Scaler, string) (domain.FeatureTransformer, error) {
		return nil, errors.New("scaler column \"cholesterol\" is not a constructed feature")
	}
	t.Cleanup(func() { compileTransformer = prev })

	p, err := NewPredictor(state, defaultConfig(), logger)
	require.NoError(t, err)

	outcome := p.Predict(context.Background(), presetRecord(t, "jovem-saudavel"))
	require.NotNil(t, outcome.Diagnostic)
	assert.Equal(t, domain.ErrArtifactLoadFailure, outcome.Diagnostic.Code)
	assert.Contains(t, outcome.Diagnostic.Details, "cholesterol")

	status := p.Status()
	assert.False(t, status.Ready)
	assert.Zero(t, status.FeatureCount)

	_, diag := p.Transform(context.Background(), presetRecord(t, "jovem-saudavel"))
	require.NotNil(t, diag)
	assert.Equal(t, domain.ErrArtifactLoadFailure, diag.Code)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "Failed to compile feature plan", hook.LastEntry().Message)
}

func TestNewPredictor_UnknownPolicy(t *testing.T) {
	logger, _ := test.NewNullLogger()
	state := artifacts.Load(fixturePaths(filepath.Join("..", "artifacts", "testdata")), logger)

	_, err := NewPredictor(state, PredictorConfig{CategoryPolicy: "loose"}, logger)
	assert.Error(t, err)

	p, err := NewPredictor(state, PredictorConfig{}, logger)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryPolicyLenient, p.Status().CategoryPolicy)
}

func TestPredictor_ConcurrentCallers(t *testing.T) {
	p, _ := newTestPredictor(t, defaultConfig())
	want := p.PredictPreset(context.Background(), "risco-moderado")

	var wg sync.WaitGroup
	results := make([]domain.PredictionOutcome, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.PredictPreset(context.Background(), presets.All()[i%4].ID)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.True(t, got.Available())
		if i%4 == 2 {
			assert.Equal(t, want, got)
		}
	}
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", RequestID(ctx))
}
