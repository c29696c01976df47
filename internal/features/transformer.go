// Package features maps raw patient records onto the feature schema the
// classifier was trained on.
package features

import (
	"fmt"
	"slices"

	"github.com/heart-risk-mcp-server/internal/domain"
)

// Transformer builds feature vectors for one fixed schema. The index plan is
// compiled once in NewTransformer; Transform only reads it, so a Transformer
// can be shared between goroutines.
type Transformer struct {
	names    []string
	outIndex [numColumns]int // output position per constructed column, -1 when dropped
	scaled   []int           // constructed columns to scale, in scaler order
	scaler   domain.Scaler
	strict   bool
}

// NewTransformer compiles the plan that maps constructed columns onto
// featureNames. The scaler's columns must all be constructed columns.
func NewTransformer(featureNames []string, scaler domain.Scaler, policy string) (*Transformer, error) {
	if len(featureNames) == 0 {
		return nil, fmt.Errorf("feature schema is empty")
	}
	if scaler == nil {
		return nil, fmt.Errorf("scaler is required")
	}

	t := &Transformer{
		names:  slices.Clone(featureNames),
		scaler: scaler,
	}

	switch policy {
	case "", domain.CategoryPolicyLenient:
	case domain.CategoryPolicyStrict:
		t.strict = true
	default:
		return nil, fmt.Errorf("unknown category policy %q", policy)
	}

	for i := range t.outIndex {
		t.outIndex[i] = -1
	}
	for pos, name := range t.names {
		if idx, ok := columnIndex[name]; ok {
			t.outIndex[idx] = pos
		}
	}

	for _, name := range scaler.Columns() {
		idx, ok := columnIndex[name]
		if !ok {
			return nil, fmt.Errorf("scaler column %q is not a constructed feature", name)
		}
		t.scaled = append(t.scaled, idx)
	}

	return t, nil
}

// FeatureNames returns a copy of the output schema
func (t *Transformer) FeatureNames() []string {
	return slices.Clone(t.names)
}

// Strict reports whether unknown categories are rejected
func (t *Transformer) Strict() bool {
	return t.strict
}

// Transform builds the feature vector for one record. Errors are
// *domain.DiagnosticError values with code TRANSFORM_FAILURE.
func (t *Transformer) Transform(rec domain.PatientRecord) (domain.FeatureVector, error) {
	if rec.Age <= 0 {
		return domain.FeatureVector{}, transformError(fmt.Sprintf("age must be positive, got %d", rec.Age), nil)
	}
	if t.strict {
		if !rec.CP.IsKnown() {
			return domain.FeatureVector{}, transformError(fmt.Sprintf("unknown chest pain type %q", rec.CP), nil)
		}
		if !rec.Thal.IsKnown() {
			return domain.FeatureVector{}, transformError(fmt.Sprintf("unknown thal value %q", rec.Thal), nil)
		}
	}

	var row [numColumns]float64

	row[idxAge] = float64(rec.Age)
	row[idxSex] = float64(rec.Sex)
	row[idxTrestbps] = float64(rec.Trestbps)
	row[idxChol] = float64(rec.Chol)
	row[idxFBS] = float64(rec.FBS)
	row[idxRestECG] = float64(rec.RestECG)
	row[idxThalach] = float64(rec.Thalach)
	row[idxExang] = float64(rec.Exang)
	row[idxOldpeak] = rec.Oldpeak
	row[idxSlope] = float64(rec.Slope)
	row[idxCA] = float64(rec.CA)

	// Unknown categories match no indicator and stay all-zero
	if idx, ok := chestPainIndex[rec.CP]; ok {
		row[idx] = 1
	}
	if idx, ok := thalIndex[rec.Thal]; ok {
		row[idx] = 1
	}
	if bin, ok := findAgeBin(rec.Age); ok && bin.column >= 0 {
		row[bin.column] = 1
	}

	row[idxBPPerAge] = float64(rec.Trestbps) / float64(rec.Age)
	row[idxHRPerAge] = float64(rec.Thalach) / float64(rec.Age)

	if len(t.scaled) > 0 {
		buf := make([]float64, len(t.scaled))
		for i, idx := range t.scaled {
			buf[i] = row[idx]
		}
		if err := t.scaler.Transform(buf); err != nil {
			return domain.FeatureVector{}, transformError("scaling failed", err)
		}
		for i, idx := range t.scaled {
			row[idx] = buf[i]
		}
	}

	values := make([]float64, len(t.names))
	for idx, pos := range t.outIndex {
		if pos >= 0 {
			values[pos] = row[idx]
		}
	}

	return domain.FeatureVector{Names: slices.Clone(t.names), Values: values}, nil
}

func transformError(message string, cause error) error {
	return domain.NewDiagnosticError(domain.ErrTransformFailure, message, cause)
}
