package artifacts

import (
	"fmt"
	"math"
)

// ModelKindLogisticRegression identifies a binary logistic-regression export
const ModelKindLogisticRegression = "logistic_regression"

// LogisticRegression is a fitted binary logistic-regression classifier,
// exported from the coef_, intercept_ and classes_ attributes of the
// trained estimator.
type LogisticRegression struct {
	Kind         string    `json:"kind"`
	Classes      []int     `json:"classes"`
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
	FeatureNames []string  `json:"feature_names,omitempty"`
}

func (m *LogisticRegression) validate() error {
	if m.Kind != "" && m.Kind != ModelKindLogisticRegression {
		return fmt.Errorf("unsupported model kind %q", m.Kind)
	}
	if len(m.Classes) != 2 {
		return fmt.Errorf("expected 2 classes, got %d", len(m.Classes))
	}
	if len(m.Coef) == 0 {
		return fmt.Errorf("model has no coefficients")
	}
	if len(m.FeatureNames) > 0 && len(m.FeatureNames) != len(m.Coef) {
		return fmt.Errorf("model has %d coefficients for %d feature names", len(m.Coef), len(m.FeatureNames))
	}
	for i, c := range m.Coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("intercept is not finite")
	}
	return nil
}

// DecisionFunction returns coef·x + intercept
func (m *LogisticRegression) DecisionFunction(features []float64) (float64, error) {
	if len(features) != len(m.Coef) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.Coef), len(features))
	}
	z := m.Intercept
	for i, x := range features {
		z += m.Coef[i] * x
	}
	return z, nil
}

// Predict returns the positive class when the decision is strictly positive
func (m *LogisticRegression) Predict(features []float64) (int, error) {
	z, err := m.DecisionFunction(features)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return m.Classes[1], nil
	}
	return m.Classes[0], nil
}

// PredictProba returns the probabilities of Classes[0] and Classes[1]
func (m *LogisticRegression) PredictProba(features []float64) ([]float64, error) {
	z, err := m.DecisionFunction(features)
	if err != nil {
		return nil, err
	}
	p := sigmoid(z)
	return []float64{1 - p, p}, nil
}

// sigmoid is evaluated on the side that cannot overflow
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
