// Package presets holds the fixed example patients offered next to the
// manual form.
package presets

import "github.com/heart-risk-mcp-server/internal/domain"

// Preset is a named example patient
type Preset struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Record      domain.PatientRecord `json:"record"`
}

var catalogue = []Preset{
	{
		ID:          "jovem-saudavel",
		Name:        "Jovem saudável",
		Description: "Young patient with normal exercise test results",
		Record: domain.PatientRecord{
			Age: 28, Sex: 1, CP: domain.ChestPainAsymptomatic, Trestbps: 118, Chol: 180,
			FBS: 0, RestECG: 0, Thalach: 185, Exang: 0, Oldpeak: 0.0, Slope: 1, CA: 0,
			Thal: domain.ThalNormal,
		},
	},
	{
		ID:          "idoso-com-risco",
		Name:        "Idoso com risco",
		Description: "Elderly patient with typical angina and abnormal exercise test",
		Record: domain.PatientRecord{
			Age: 70, Sex: 1, CP: domain.ChestPainTypical, Trestbps: 160, Chol: 290,
			FBS: 1, RestECG: 2, Thalach: 95, Exang: 1, Oldpeak: 3.0, Slope: 3, CA: 2,
			Thal: domain.ThalReversable,
		},
	},
	{
		ID:          "risco-moderado",
		Name:        "Risco moderado",
		Description: "Middle-aged patient with mixed findings",
		Record: domain.PatientRecord{
			Age: 55, Sex: 0, CP: domain.ChestPainNonTypical, Trestbps: 135, Chol: 240,
			FBS: 0, RestECG: 1, Thalach: 140, Exang: 1, Oldpeak: 1.5, Slope: 2, CA: 1,
			Thal: domain.ThalReversable,
		},
	},
	{
		ID:          "sem-risco",
		Name:        "Sem risco",
		Description: "Young patient without risk factors",
		Record: domain.PatientRecord{
			Age: 30, Sex: 0, CP: domain.ChestPainAsymptomatic, Trestbps: 110, Chol: 170,
			FBS: 0, RestECG: 0, Thalach: 180, Exang: 0, Oldpeak: 0.0, Slope: 1, CA: 0,
			Thal: domain.ThalNormal,
		},
	},
}

// All returns the presets in display order
func All() []Preset {
	out := make([]Preset, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup finds a preset by ID
func Lookup(id string) (Preset, bool) {
	for _, p := range catalogue {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}
