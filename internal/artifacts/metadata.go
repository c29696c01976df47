package artifacts

import (
	"fmt"

	"github.com/heart-risk-mcp-server/internal/domain"
)

// PreprocessingInfo is the training-time preprocessing metadata
type PreprocessingInfo struct {
	NumericalFeaturesToScale []string `json:"numerical_features_to_scale"`
	FeatureNames             []string `json:"feature_names"`
}

func (p *PreprocessingInfo) validate() error {
	if len(p.FeatureNames) == 0 {
		return fmt.Errorf("feature_names is empty")
	}
	seen := make(map[string]bool, len(p.FeatureNames))
	for _, name := range p.FeatureNames {
		if seen[name] {
			return fmt.Errorf("feature_names lists %q twice", name)
		}
		seen[name] = true
	}
	for _, name := range p.NumericalFeaturesToScale {
		if !domain.IsConstructedColumn(name) {
			return fmt.Errorf("cannot scale unknown column %q", name)
		}
	}
	return nil
}
