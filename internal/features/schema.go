package features

import "github.com/heart-risk-mcp-server/internal/domain"

// Fixed positions of the constructed columns, matching domain.ConstructedColumns
const (
	idxAge = iota
	idxSex
	idxTrestbps
	idxChol
	idxFBS
	idxRestECG
	idxThalach
	idxExang
	idxOldpeak
	idxSlope
	idxCA
	idxCPTypical
	idxCPNonTypical
	idxCPNonAnginal
	idxCPAsymptomatic
	idxThalNormal
	idxThalReversable
	idxAgeGroupMeiaIdade
	idxAgeGroupSenior
	idxAgeGroupIdoso
	idxBPPerAge
	idxHRPerAge
	numColumns
)

// columnIndex maps a constructed column name to its fixed position
var columnIndex = func() map[string]int {
	m := make(map[string]int, len(domain.ConstructedColumns))
	for i, name := range domain.ConstructedColumns {
		m[name] = i
	}
	return m
}()

// chestPainIndex maps each known chest pain type to its indicator column
var chestPainIndex = map[domain.ChestPain]int{
	domain.ChestPainTypical:      idxCPTypical,
	domain.ChestPainNonTypical:   idxCPNonTypical,
	domain.ChestPainNonAnginal:   idxCPNonAnginal,
	domain.ChestPainAsymptomatic: idxCPAsymptomatic,
}

// thalIndex maps thal values that own an indicator column. ThalFixed is the
// reference level and has none.
var thalIndex = map[domain.Thal]int{
	domain.ThalNormal:     idxThalNormal,
	domain.ThalReversable: idxThalReversable,
}

// Age group labels, from youngest to oldest
const (
	AgeGroupJovem     = "jovem"
	AgeGroupMeiaIdade = "meia_idade"
	AgeGroupSenior    = "sênior"
	AgeGroupIdoso     = "idoso"
)

// ageBin is a half-open interval (lower, upper]
type ageBin struct {
	lower, upper int
	label        string
	column       int // -1 for the reference level
}

var ageBins = []ageBin{
	{0, 40, AgeGroupJovem, -1},
	{40, 55, AgeGroupMeiaIdade, idxAgeGroupMeiaIdade},
	{55, 65, AgeGroupSenior, idxAgeGroupSenior},
	{65, 100, AgeGroupIdoso, idxAgeGroupIdoso},
}

// AgeGroup returns the age group label, or "" when age falls outside (0,100]
func AgeGroup(age int) string {
	if bin, ok := findAgeBin(age); ok {
		return bin.label
	}
	return ""
}

func findAgeBin(age int) (ageBin, bool) {
	for _, bin := range ageBins {
		if age > bin.lower && age <= bin.upper {
			return bin, true
		}
	}
	return ageBin{}, false
}
