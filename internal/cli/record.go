package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/heart-risk-mcp-server/internal/domain"
	"github.com/heart-risk-mcp-server/internal/presets"
)

// formDefaults mirrors the initial values of the manual patient form
var formDefaults = domain.PatientRecord{
	Age: 50, Sex: 1, CP: domain.ChestPainTypical, Trestbps: 120, Chol: 200,
	FBS: 0, RestECG: 0, Thalach: 150, Exang: 0, Oldpeak: 0.0, Slope: 1, CA: 0,
	Thal: domain.ThalNormal,
}

func addRecordFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("preset", "", "start from an example patient (see heartrisk presets)")
	f.Int("age", formDefaults.Age, "age in years (20-100)")
	f.Int("sex", formDefaults.Sex, "sex, 1 = male, 0 = female")
	f.String("cp", string(formDefaults.CP), "chest pain type: typical, nontypical, nonanginal, asymptomatic")
	f.Int("trestbps", formDefaults.Trestbps, "resting blood pressure in mm Hg (80-220)")
	f.Int("chol", formDefaults.Chol, "serum cholesterol in mg/dl (100-600)")
	f.Int("fbs", formDefaults.FBS, "fasting blood sugar > 120 mg/dl, 1 = yes, 0 = no")
	f.Int("restecg", formDefaults.RestECG, "resting ECG result (0-2)")
	f.Int("thalach", formDefaults.Thalach, "maximum heart rate achieved (50-220)")
	f.Int("exang", formDefaults.Exang, "exercise induced angina, 1 = yes, 0 = no")
	f.Float64("oldpeak", formDefaults.Oldpeak, "ST depression induced by exercise (0.0-10.0)")
	f.Int("slope", formDefaults.Slope, "slope of the peak exercise ST segment (1-3)")
	f.Int("ca", formDefaults.CA, "major vessels colored by fluoroscopy (0-3)")
	f.String("thal", string(formDefaults.Thal), "thalassemia: normal, fixed, reversable")
}

// recordFromFlags starts from the preset, or the form defaults, and applies
// every flag the user set explicitly
func recordFromFlags(cmd *cobra.Command) (domain.PatientRecord, error) {
	f := cmd.Flags()

	rec := formDefaults
	if id, _ := f.GetString("preset"); id != "" {
		p, ok := presets.Lookup(id)
		if !ok {
			return domain.PatientRecord{}, fmt.Errorf("unknown preset %q, see heartrisk presets", id)
		}
		rec = p.Record
	}

	ints := map[string]*int{
		"age": &rec.Age, "sex": &rec.Sex, "trestbps": &rec.Trestbps, "chol": &rec.Chol,
		"fbs": &rec.FBS, "restecg": &rec.RestECG, "thalach": &rec.Thalach,
		"exang": &rec.Exang, "slope": &rec.Slope, "ca": &rec.CA,
	}
	var err error
	f.VisitAll(func(flag *pflag.Flag) {
		if err != nil || !flag.Changed {
			return
		}
		if dst, ok := ints[flag.Name]; ok {
			*dst, err = f.GetInt(flag.Name)
			return
		}
		switch flag.Name {
		case "oldpeak":
			rec.Oldpeak, err = f.GetFloat64("oldpeak")
		case "cp":
			var v string
			v, err = f.GetString("cp")
			rec.CP = domain.ChestPain(v)
		case "thal":
			var v string
			v, err = f.GetString("thal")
			rec.Thal = domain.Thal(v)
		}
	})
	if err != nil {
		return domain.PatientRecord{}, fmt.Errorf("reading patient flags: %w", err)
	}

	return rec, nil
}
