// Package artifacts loads the pretrained classifier, scaler and preprocessing
// metadata from disk.
//
// Loading happens once at startup. When any artifact is missing or broken the
// returned State is disabled and carries a diagnostic instead of an error, so
// callers can keep running with prediction turned off.
package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/heart-risk-mcp-server/internal/domain"
)

// Paths locates the three artifacts
type Paths struct {
	Model         string `json:"model"`
	Scaler        string `json:"scaler"`
	Preprocessing string `json:"preprocessing"`
}

// PathsFrom resolves artifact paths from configuration
func PathsFrom(cfg domain.ArtifactsConfig) Paths {
	return Paths{
		Model:         cfg.ModelPath(),
		Scaler:        cfg.ScalerPath(),
		Preprocessing: cfg.PreprocessingPath(),
	}
}

// Bundle holds the loaded artifacts. It is never modified after Load returns
// and may be shared between goroutines.
type Bundle struct {
	model         *LogisticRegression
	scaler        *StandardScaler
	preprocessing *PreprocessingInfo
}

// NewBundle checks a set of decoded artifacts for consistency
func NewBundle(model *LogisticRegression, scaler *StandardScaler, info *PreprocessingInfo) (*Bundle, error) {
	if err := model.validate(); err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	if err := scaler.validate(); err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}
	if err := info.validate(); err != nil {
		return nil, fmt.Errorf("preprocessing info: %w", err)
	}

	if len(model.Coef) != len(info.FeatureNames) {
		return nil, fmt.Errorf("classifier expects %d features, preprocessing info lists %d",
			len(model.Coef), len(info.FeatureNames))
	}
	if len(model.FeatureNames) > 0 && !slices.Equal(model.FeatureNames, info.FeatureNames) {
		return nil, fmt.Errorf("classifier feature names differ from preprocessing feature_names")
	}
	if !slices.Equal(scaler.FeatureNames, info.NumericalFeaturesToScale) {
		return nil, fmt.Errorf("scaler columns differ from numerical_features_to_scale")
	}

	return &Bundle{model: model, scaler: scaler, preprocessing: info}, nil
}

// Classifier returns the fitted classifier
func (b *Bundle) Classifier() *LogisticRegression { return b.model }

// Scaler returns the fitted scaler
func (b *Bundle) Scaler() *StandardScaler { return b.scaler }

// FeatureNames returns a copy of the training-time feature schema
func (b *Bundle) FeatureNames() []string {
	return slices.Clone(b.preprocessing.FeatureNames)
}

// ScaledColumns returns a copy of the columns to scale
func (b *Bundle) ScaledColumns() []string {
	return slices.Clone(b.preprocessing.NumericalFeaturesToScale)
}

// State is the outcome of the one-shot startup load
type State struct {
	paths      Paths
	bundle     *Bundle
	diagnostic *domain.Diagnostic
	err        error
	loadedAt   time.Time
}

// Ready reports whether all artifacts loaded
func (s *State) Ready() bool { return s.bundle != nil }

// Bundle returns the loaded artifacts, or nil when disabled
func (s *State) Bundle() *Bundle { return s.bundle }

// Diagnostic explains why the state is disabled. It is nil when ready.
func (s *State) Diagnostic() *domain.Diagnostic { return s.diagnostic }

// Err returns the underlying load error, if any
func (s *State) Err() error { return s.err }

// Paths returns the locations that were loaded
func (s *State) Paths() Paths { return s.paths }

// LoadedAt returns when the load was attempted
func (s *State) LoadedAt() time.Time { return s.loadedAt }

// Disabled builds a disabled state from a diagnostic
func Disabled(paths Paths, diag *domain.Diagnostic, err error) *State {
	return &State{paths: paths, diagnostic: diag, err: err, loadedAt: time.Now().UTC()}
}

// ReadyState builds a ready state around an already-validated bundle
func ReadyState(paths Paths, bundle *Bundle) *State {
	return &State{paths: paths, bundle: bundle, loadedAt: time.Now().UTC()}
}

// Load reads the three artifacts. It never fails; inspect Ready and
// Diagnostic on the returned state.
func Load(paths Paths, logger *logrus.Logger) *State {
	fields := logrus.Fields{
		"model_path":         paths.Model,
		"scaler_path":        paths.Scaler,
		"preprocessing_path": paths.Preprocessing,
	}

	var missing []string
	for _, p := range []string{paths.Model, paths.Scaler, paths.Preprocessing} {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		diag := domain.NewDiagnostic(domain.ErrArtifactMissing,
			"Model artifacts not found; prediction is disabled until the model is trained and exported",
			"missing: "+strings.Join(missing, ", "))
		logger.WithFields(fields).WithField("missing", missing).Error("Model artifacts not found")
		return Disabled(paths, diag, fmt.Errorf("artifacts missing: %s", strings.Join(missing, ", ")))
	}

	bundle, err := decodeBundle(paths)
	if err != nil {
		diag := domain.NewDiagnostic(domain.ErrArtifactLoadFailure,
			"Failed to load model artifacts; prediction is disabled", err.Error())
		logger.WithFields(fields).WithError(err).Error("Failed to load model artifacts")
		return Disabled(paths, diag, err)
	}

	logger.WithFields(fields).WithFields(logrus.Fields{
		"feature_count":  len(bundle.preprocessing.FeatureNames),
		"scaled_columns": len(bundle.preprocessing.NumericalFeaturesToScale),
	}).Info("Model artifacts loaded")

	return ReadyState(paths, bundle)
}

func decodeBundle(paths Paths) (*Bundle, error) {
	model := &LogisticRegression{}
	if err := decodeFile(paths.Model, model); err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	scaler := &StandardScaler{}
	if err := decodeFile(paths.Scaler, scaler); err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}
	info := &PreprocessingInfo{}
	if err := decodeFile(paths.Preprocessing, info); err != nil {
		return nil, fmt.Errorf("preprocessing info: %w", err)
	}
	return NewBundle(model, scaler, info)
}

func decodeFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
