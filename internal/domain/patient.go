package domain

// ChestPain is the chest pain type reported for a patient (the "cp" column)
type ChestPain string

const (
	ChestPainTypical      ChestPain = "typical"
	ChestPainNonTypical   ChestPain = "nontypical"
	ChestPainNonAnginal   ChestPain = "nonanginal"
	ChestPainAsymptomatic ChestPain = "asymptomatic"
)

// ChestPainTypes lists the chest pain vocabulary in indicator-column order
var ChestPainTypes = []ChestPain{
	ChestPainTypical,
	ChestPainNonTypical,
	ChestPainNonAnginal,
	ChestPainAsymptomatic,
}

// IsKnown reports whether the value belongs to the chest pain vocabulary
func (c ChestPain) IsKnown() bool {
	for _, known := range ChestPainTypes {
		if c == known {
			return true
		}
	}
	return false
}

// Thal is the thalassemia test result (the "thal" column)
type Thal string

const (
	ThalNormal     Thal = "normal"
	ThalFixed      Thal = "fixed"
	ThalReversable Thal = "reversable"
)

// ThalTypes lists the thal vocabulary. ThalFixed is the reference level.
var ThalTypes = []Thal{ThalNormal, ThalFixed, ThalReversable}

// IsKnown reports whether the value belongs to the thal vocabulary
func (t Thal) IsKnown() bool {
	for _, known := range ThalTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PatientRecord holds the raw clinical attributes entered for one patient.
// It is a comparable value and can be used as a map or cache key.
type PatientRecord struct {
	Age      int       `json:"age"`
	Sex      int       `json:"sex"`
	CP       ChestPain `json:"cp"`
	Trestbps int       `json:"trestbps"`
	Chol     int       `json:"chol"`
	FBS      int       `json:"fbs"`
	RestECG  int       `json:"restecg"`
	Thalach  int       `json:"thalach"`
	Exang    int       `json:"exang"`
	Oldpeak  float64   `json:"oldpeak"`
	Slope    int       `json:"slope"`
	CA       int       `json:"ca"`
	Thal     Thal      `json:"thal"`
}

type intRange struct {
	field    string
	value    int
	min, max int
}

// Validate checks the numeric fields against their clinical domains.
// Categorical fields are left to the feature transformer's category policy.
func (r PatientRecord) Validate() error {
	ranges := []intRange{
		{"age", r.Age, 20, 100},
		{"sex", r.Sex, 0, 1},
		{"trestbps", r.Trestbps, 80, 220},
		{"chol", r.Chol, 100, 600},
		{"fbs", r.FBS, 0, 1},
		{"restecg", r.RestECG, 0, 2},
		{"thalach", r.Thalach, 50, 220},
		{"exang", r.Exang, 0, 1},
		{"slope", r.Slope, 1, 3},
		{"ca", r.CA, 0, 3},
	}
	for _, rg := range ranges {
		if rg.value < rg.min || rg.value > rg.max {
			return NewValidationError(rg.field, rangeMessage(rg.min, rg.max), rg.value)
		}
	}

	// NaN fails both comparisons, so it is rejected here as well
	if !(r.Oldpeak >= 0 && r.Oldpeak <= 10) {
		return NewValidationError("oldpeak", "must be between 0.0 and 10.0", r.Oldpeak)
	}

	return nil
}
