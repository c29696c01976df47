package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/heart-risk-mcp-server/internal/artifacts"
	"github.com/heart-risk-mcp-server/internal/domain"
	"github.com/heart-risk-mcp-server/internal/features"
	"github.com/heart-risk-mcp-server/internal/presets"
)

// PredictorConfig holds the predictor settings taken from configuration
type PredictorConfig struct {
	CategoryPolicy string
	ValidateInput  bool
	CacheSize      int
}

// PredictorConfigFrom extracts predictor settings from the application config
func PredictorConfigFrom(cfg *domain.Config) PredictorConfig {
	return PredictorConfig{
		CategoryPolicy: cfg.Features.UnknownCategoryPolicy,
		ValidateInput:  cfg.Prediction.ValidateInput,
		CacheSize:      cfg.Prediction.CacheSize,
	}
}

// compileTransformer builds the feature plan for a loaded bundle
var compileTransformer = func(featureNames []string, scaler domain.Scaler, policy string) (domain.FeatureTransformer, error) {
	return features.NewTransformer(featureNames, scaler, policy)
}

// PredictorOption is a functional option for Predictor
type PredictorOption func(*Predictor)

// WithClassifier replaces the classifier taken from the artifact bundle
func WithClassifier(c domain.Classifier) PredictorOption {
	return func(p *Predictor) {
		p.classifier = c
	}
}

// Predictor turns patient records into risk verdicts. Everything it holds is
// read-only after construction except the result cache, which is
// synchronised internally.
type Predictor struct {
	logger      *logrus.Logger
	state       *artifacts.State
	config      PredictorConfig
	transformer domain.FeatureTransformer
	classifier  domain.Classifier
	disabled    *domain.Diagnostic
	cache       *lru.Cache[domain.PatientRecord, domain.PredictionResult]
}

// NewPredictor wires a predictor around the startup artifact state. A
// disabled state yields a predictor whose every call is unavailable.
func NewPredictor(state *artifacts.State, cfg PredictorConfig, logger *logrus.Logger, opts ...PredictorOption) (*Predictor, error) {
	switch cfg.CategoryPolicy {
	case "":
		cfg.CategoryPolicy = domain.CategoryPolicyLenient
	case domain.CategoryPolicyLenient, domain.CategoryPolicyStrict:
	default:
		return nil, fmt.Errorf("unknown category policy %q", cfg.CategoryPolicy)
	}

	p := &Predictor{
		logger: logger,
		state:  state,
		config: cfg,
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[domain.PatientRecord, domain.PredictionResult](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create prediction cache: %w", err)
		}
		p.cache = cache
	}

	if !state.Ready() {
		p.disabled = state.Diagnostic()
		logger.WithField("code", p.disabled.Code).Warn("Prediction disabled")
		return p, nil
	}

	bundle := state.Bundle()
	transformer, err := compileTransformer(bundle.FeatureNames(), bundle.Scaler(), cfg.CategoryPolicy)
	if err != nil {
		p.disabled = domain.NewDiagnostic(domain.ErrArtifactLoadFailure,
			"Model artifacts are inconsistent; prediction is disabled", err.Error())
		logger.WithError(err).Error("Failed to compile feature plan")
		return p, nil
	}
	p.transformer = transformer
	p.classifier = bundle.Classifier()

	for _, opt := range opts {
		opt(p)
	}

	logger.WithFields(logrus.Fields{
		"feature_count":   len(bundle.FeatureNames()),
		"category_policy": cfg.CategoryPolicy,
		"validate_input":  cfg.ValidateInput,
		"cache_size":      cfg.CacheSize,
	}).Info("Predictor ready")

	return p, nil
}

// Predict classifies one record. It never panics and never returns an error;
// failures come back as an unavailable outcome with a diagnostic.
func (p *Predictor) Predict(ctx context.Context, rec domain.PatientRecord) domain.PredictionOutcome {
	log := p.logger.WithField("request_id", RequestID(ctx))

	if p.disabled != nil {
		log.WithField("code", p.disabled.Code).Debug("Prediction requested while disabled")
		return domain.Unavailable(p.disabled)
	}

	if p.cache != nil {
		if result, ok := p.cache.Get(rec); ok {
			log.Debug("Prediction served from cache")
			return domain.OutcomeOf(result)
		}
	}

	vec, diag := p.transform(rec)
	if diag != nil {
		log.WithField("code", diag.Code).WithField("details", diag.Details).Warn("Feature transformation failed")
		return domain.Unavailable(diag)
	}

	result, diag := p.infer(vec)
	if diag != nil {
		log.WithField("code", diag.Code).WithField("details", diag.Details).Error("Inference failed")
		return domain.Unavailable(diag)
	}

	if p.cache != nil {
		p.cache.Add(rec, result)
	}

	log.WithFields(logrus.Fields{
		"prediction":  result.Prediction,
		"probability": result.Probability,
		"risk_level":  result.RiskLevel,
	}).Info("Prediction completed")

	return domain.OutcomeOf(result)
}

// PredictPreset classifies one of the example patients
func (p *Predictor) PredictPreset(ctx context.Context, presetID string) domain.PredictionOutcome {
	preset, ok := presets.Lookup(presetID)
	if !ok {
		return domain.Unavailable(domain.NewDiagnostic(domain.ErrPresetNotFound,
			fmt.Sprintf("Unknown example %q", presetID), ""))
	}
	return p.Predict(ctx, preset.Record)
}

// Transform returns the feature vector the classifier would receive
func (p *Predictor) Transform(ctx context.Context, rec domain.PatientRecord) (domain.FeatureVector, *domain.Diagnostic) {
	if p.disabled != nil {
		return domain.FeatureVector{}, p.disabled
	}
	vec, diag := p.transform(rec)
	if diag != nil {
		p.logger.WithField("request_id", RequestID(ctx)).WithField("code", diag.Code).Debug("Feature transformation failed")
	}
	return vec, diag
}

// Status describes the loaded artifacts
func (p *Predictor) Status() domain.ModelStatus {
	paths := p.state.Paths()
	status := domain.ModelStatus{
		Ready:          p.disabled == nil,
		Message:        "Model loaded",
		ModelPath:      paths.Model,
		ScalerPath:     paths.Scaler,
		MetadataPath:   paths.Preprocessing,
		CategoryPolicy: p.config.CategoryPolicy,
		LoadedAt:       p.state.LoadedAt(),
	}
	if p.disabled != nil {
		status.Message = p.disabled.Message
		status.Diagnostic = p.disabled
		return status
	}
	status.FeatureCount = len(p.transformer.FeatureNames())
	return status
}

func (p *Predictor) transform(rec domain.PatientRecord) (vec domain.FeatureVector, diag *domain.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			diag = domain.NewDiagnostic(domain.ErrTransformFailure, "Feature transformation failed", fmt.Sprint(r))
		}
	}()

	if p.config.ValidateInput {
		if err := rec.Validate(); err != nil {
			return domain.FeatureVector{}, domain.NewDiagnostic(domain.ErrTransformFailure,
				"Patient record is outside the accepted ranges", err.Error())
		}
	}

	vec, err := p.transformer.Transform(rec)
	if err != nil {
		return domain.FeatureVector{}, diagnosticFor(err, domain.ErrTransformFailure, "Feature transformation failed")
	}
	return vec, nil
}

func (p *Predictor) infer(vec domain.FeatureVector) (result domain.PredictionResult, diag *domain.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			diag = domain.NewDiagnostic(domain.ErrInferenceFailure, "Prediction failed", fmt.Sprint(r))
		}
	}()

	class, err := p.classifier.Predict(vec.Values)
	if err != nil {
		return result, diagnosticFor(err, domain.ErrInferenceFailure, "Prediction failed")
	}
	if class != 0 && class != 1 {
		return result, domain.NewDiagnostic(domain.ErrInferenceFailure, "Prediction failed",
			fmt.Sprintf("unexpected class label %d", class))
	}

	proba, err := p.classifier.PredictProba(vec.Values)
	if err != nil {
		return result, diagnosticFor(err, domain.ErrInferenceFailure, "Prediction failed")
	}
	if len(proba) != 2 {
		return result, domain.NewDiagnostic(domain.ErrInferenceFailure, "Prediction failed",
			fmt.Sprintf("expected 2 class probabilities, got %d", len(proba)))
	}
	probability := proba[1]
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return result, domain.NewDiagnostic(domain.ErrInferenceFailure, "Prediction failed",
			fmt.Sprintf("probability %v is outside [0,1]", probability))
	}

	return domain.PredictionResult{
		Prediction:  domain.PredictionFromClass(class),
		Probability: probability,
		RiskLevel:   domain.RiskLevelFor(probability),
	}, nil
}

func diagnosticFor(err error, code, message string) *domain.Diagnostic {
	var diagErr *domain.DiagnosticError
	if errors.As(err, &diagErr) {
		return diagErr.Diagnostic()
	}
	return domain.NewDiagnostic(code, message, err.Error())
}
