package domain

import "time"

// Prediction is the binary verdict of the classifier
type Prediction string

const (
	PredictionDisease   Prediction = "disease"
	PredictionNoDisease Prediction = "no_disease"
)

// PredictionFromClass maps a classifier decision to a verdict
func PredictionFromClass(class int) Prediction {
	if class == 1 {
		return PredictionDisease
	}
	return PredictionNoDisease
}

// RiskLevel buckets the positive-class probability
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Risk tier thresholds. A probability equal to a threshold stays in the lower tier.
const (
	HighRiskThreshold   = 0.7
	MediumRiskThreshold = 0.3
)

// RiskLevelFor returns the risk tier for a positive-class probability
func RiskLevelFor(probability float64) RiskLevel {
	switch {
	case probability > HighRiskThreshold:
		return RiskHigh
	case probability > MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// PredictionResult is the simplified verdict shown to the user
type PredictionResult struct {
	Prediction  Prediction `json:"prediction"`
	Probability float64    `json:"probability"`
	RiskLevel   RiskLevel  `json:"risk_level"`
}

// OutcomeStatus tells whether a prediction call produced a result
type OutcomeStatus string

const (
	OutcomeOK          OutcomeStatus = "ok"
	OutcomeUnavailable OutcomeStatus = "unavailable"
)

// PredictionOutcome is returned by every predictor call. Exactly one of
// Result and Diagnostic is set.
type PredictionOutcome struct {
	Status     OutcomeStatus     `json:"status"`
	Result     *PredictionResult `json:"result,omitempty"`
	Diagnostic *Diagnostic       `json:"diagnostic,omitempty"`
}

// Available reports whether the outcome carries a result
func (o PredictionOutcome) Available() bool {
	return o.Status == OutcomeOK && o.Result != nil
}

// OutcomeOf wraps a result
func OutcomeOf(result PredictionResult) PredictionOutcome {
	return PredictionOutcome{Status: OutcomeOK, Result: &result}
}

// Unavailable wraps a diagnostic
func Unavailable(diag *Diagnostic) PredictionOutcome {
	return PredictionOutcome{Status: OutcomeUnavailable, Diagnostic: diag}
}

// FeatureVector is the ordered model input built from one patient record.
// Names always equals the training-time feature schema.
type FeatureVector struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
}

// Get returns the value of a named column
func (v FeatureVector) Get(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Map returns the vector as a name to value map
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, len(v.Names))
	for i, n := range v.Names {
		m[n] = v.Values[i]
	}
	return m
}

// ModelStatus describes the state of the loaded artifacts
type ModelStatus struct {
	Ready          bool        `json:"ready"`
	Message        string      `json:"message"`
	Diagnostic     *Diagnostic `json:"diagnostic,omitempty"`
	ModelPath      string      `json:"model_path"`
	ScalerPath     string      `json:"scaler_path"`
	MetadataPath   string      `json:"metadata_path"`
	FeatureCount   int         `json:"feature_count"`
	CategoryPolicy string      `json:"category_policy"`
	LoadedAt       time.Time   `json:"loaded_at"`
}
