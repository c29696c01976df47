package domain

// Column names produced by the feature transformer before reindexing to the
// training-time schema.
const (
	ColAge      = "age"
	ColSex      = "sex"
	ColTrestbps = "trestbps"
	ColChol     = "chol"
	ColFBS      = "fbs"
	ColRestECG  = "restecg"
	ColThalach  = "thalach"
	ColExang    = "exang"
	ColOldpeak  = "oldpeak"
	ColSlope    = "slope"
	ColCA       = "ca"

	ColCPTypical      = "cp_typical"
	ColCPNonTypical   = "cp_nontypical"
	ColCPNonAnginal   = "cp_nonanginal"
	ColCPAsymptomatic = "cp_asymptomatic"

	ColThalNormal     = "thal_normal"
	ColThalReversable = "thal_reversable"

	ColAgeGroupMeiaIdade = "age_group_meia_idade"
	ColAgeGroupSenior    = "age_group_sênior"
	ColAgeGroupIdoso     = "age_group_idoso"

	ColBPPerAge = "bp_per_age"
	ColHRPerAge = "hr_per_age"
)

// ConstructedColumns lists every column the transformer can build, in the
// fixed order used for its internal row.
var ConstructedColumns = []string{
	ColAge, ColSex, ColTrestbps, ColChol, ColFBS, ColRestECG,
	ColThalach, ColExang, ColOldpeak, ColSlope, ColCA,
	ColCPTypical, ColCPNonTypical, ColCPNonAnginal, ColCPAsymptomatic,
	ColThalNormal, ColThalReversable,
	ColAgeGroupMeiaIdade, ColAgeGroupSenior, ColAgeGroupIdoso,
	ColBPPerAge, ColHRPerAge,
}

// IsConstructedColumn reports whether name is built by the transformer
func IsConstructedColumn(name string) bool {
	for _, c := range ConstructedColumns {
		if c == name {
			return true
		}
	}
	return false
}
