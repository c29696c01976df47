package artifacts

import (
	"fmt"
	"math"
)

// ScalerKindStandard identifies a standard (z-score) scaler export
const ScalerKindStandard = "standard"

// StandardScaler is a fitted z-score scaler, exported from the mean_ and
// scale_ attributes of the trained scaler. FeatureNames lists the columns
// it was fit on, in order.
type StandardScaler struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	WithMean     *bool     `json:"with_mean,omitempty"`
	WithStd      *bool     `json:"with_std,omitempty"`
}

func (s *StandardScaler) validate() error {
	if s.Kind != "" && s.Kind != ScalerKindStandard {
		return fmt.Errorf("unsupported scaler kind %q", s.Kind)
	}
	n := len(s.FeatureNames)
	if n == 0 {
		return fmt.Errorf("scaler has no feature names")
	}
	if s.centers() && len(s.Mean) != n {
		return fmt.Errorf("scaler has %d means for %d features", len(s.Mean), n)
	}
	if s.scales() {
		if len(s.Scale) != n {
			return fmt.Errorf("scaler has %d scales for %d features", len(s.Scale), n)
		}
		for i, sc := range s.Scale {
			if sc == 0 || math.IsNaN(sc) || math.IsInf(sc, 0) {
				return fmt.Errorf("scale of %s is not a usable divisor", s.FeatureNames[i])
			}
		}
	}
	return nil
}

func (s *StandardScaler) centers() bool { return s.WithMean == nil || *s.WithMean }

func (s *StandardScaler) scales() bool { return s.WithStd == nil || *s.WithStd }

// Columns returns the names of the columns the scaler transforms
func (s *StandardScaler) Columns() []string {
	return s.FeatureNames
}

// Transform scales values in place. values must follow Columns() order.
func (s *StandardScaler) Transform(values []float64) error {
	if len(values) != len(s.FeatureNames) {
		return fmt.Errorf("expected %d values to scale, got %d", len(s.FeatureNames), len(values))
	}
	for i := range values {
		if s.centers() {
			values[i] -= s.Mean[i]
		}
		if s.scales() {
			values[i] /= s.Scale[i]
		}
	}
	return nil
}
