package engine

// MeasureType classifies a MEASURE code.
type MeasureType string

const (
	MeasureSector       MeasureType = "sector"
	MeasureNatureSource MeasureType = "nature_source"
	MeasureGas          MeasureType = "gas"
	MeasureUnknown      MeasureType = "unknown"
)

// MeasureInfo describes a MEASURE code for display.
type MeasureInfo struct {
	Code   string      `json:"code"`
	Type   MeasureType `json:"type"`
	Icon   string      `json:"icon"`
	Name   string      `json:"name"`
	Suffix string      `json:"suffix"`
}

var sectorNames = map[string]string{
	"TR":         "Transport (TR)",
	"IPP":        "Power Production (IPP)",
	"EI":         "Energy Industries (EI)",
	"AGR":        "Agriculture (AGR)",
	"OTH_SECTOR": "Other Sectors (OTH_SECTOR)",
	"MIC":        "Manufacturing & Construction (MIC)",
	"WASTE":      "Waste Management (WASTE)",
	"OTH":        "Other (OTH)",
}

var natureSourceNames = map[string]string{
	"SETT_CO2":  "Settlements CO2 (SETT_CO2)",
	"CL_CH4":    "Cropland CH4 (CL_CH4)",
	"CL_CO2":    "Cropland CO2 (CL_CO2)",
	"OT_N2O":    "Other Land N2O (OT_N2O)",
	"GL_N2O":    "Grassland N2O (GL_N2O)",
	"GL_CO2":    "Grassland CO2 (GL_CO2)",
	"GL_CH4":    "Grassland CH4 (GL_CH4)",
	"F_N2O":     "Forest N2O (F_N2O)",
	"WET_N2O":   "Wetlands N2O (WET_N2O)",
	"HWP_CO2":   "Wood Products CO2 (HWP_CO2)",
	"F_CH4":     "Forest CH4 (F_CH4)",
	"F_CO2":     "Forest CO2 (F_CO2)",
	"SETT_N2O":  "Settlements N2O (SETT_N2O)",
	"SETT_CH4":  "Settlements CH4 (SETT_CH4)",
	"CL_N2O":    "Cropland N2O (CL_N2O)",
	"WET_CH4":   "Wetlands CH4 (WET_CH4)",
	"OTHER_CO2": "Other CO2 (OTHER_CO2)",
	"OTHER_N2O": "Other N2O (OTHER_N2O)",
	"OT_CO2":    "Other Land CO2 (OT_CO2)",
	"OTHER_CH4": "Other CH4 (OTHER_CH4)",
	"OT_CH4":    "Other Land CH4 (OT_CH4)",
	"WET_CO2":   "Wetlands CO2 (WET_CO2)",
}

var gasNames = map[string]string{
	"CH4": "Methane (CH4)",
	"CO2": "Carbon Dioxide (CO2)",
	"HFC": "Hydrofluorocarbons (HFC)",
	"N2O": "Nitrous Oxide (N2O)",
	"PFC": "Perfluorocarbons (PFC)",
	"SF":  "Sulfur Hexafluoride (SF)",
}

// DescribeMeasure looks a code up in the sector, nature source and gas
// tables, in that order.
func DescribeMeasure(code string) MeasureInfo {
	if name, ok := sectorNames[code]; ok {
		return MeasureInfo{Code: code, Type: MeasureSector, Icon: "🏗️", Name: name, Suffix: "Sector"}
	}
	if name, ok := natureSourceNames[code]; ok {
		return MeasureInfo{Code: code, Type: MeasureNatureSource, Icon: "⚗️", Name: name, Suffix: "Source"}
	}
	if name, ok := gasNames[code]; ok {
		return MeasureInfo{Code: code, Type: MeasureGas, Icon: "🏭", Name: name, Suffix: "Gas"}
	}
	return MeasureInfo{Code: code, Type: MeasureUnknown, Icon: "❓", Name: code, Suffix: "Measure"}
}

// DescribeMeasures describes each distinct measure of t.
func DescribeMeasures(t *Table) []MeasureInfo {
	codes := t.Unique(DimMeasure)
	out := make([]MeasureInfo, len(codes))
	for i, c := range codes {
		out[i] = DescribeMeasure(c)
	}
	return out
}

// CategoryNode is a node of the GHS category hierarchy.
type CategoryNode struct {
	Name     string
	Children []CategoryNode
}

func leaves(codes ...string) []CategoryNode {
	out := make([]CategoryNode, len(codes))
	for i, c := range codes {
		out[i] = CategoryNode{Name: c}
	}
	return out
}

// CategoryHierarchy is the fixed tree of GHS subtopics and their measure
// codes.
func CategoryHierarchy() CategoryNode {
	gases := []string{"CH4", "CO2", "HFC", "N2O", "PFC", "SF"}
	return CategoryNode{Name: "GHS", Children: []CategoryNode{
		{Name: "Without LULUCF", Children: leaves(gases...)},
		{Name: "From LULUCF", Children: leaves("CH4_LULUCF", "CO2_LULUCF", "N2O_LULUCF")},
		{Name: "With LULUCF", Children: leaves(gases...)},
		{Name: "Sector", Children: leaves("TR", "IPP", "EI", "AGR", "OTH_SECTOR", "MIC", "WASTE", "OTH")},
		{Name: "Nature Source", Children: leaves(
			"SETT_CO2", "CL_CH4", "CL_CO2", "OT_N2O", "GL_N2O", "GL_CO2", "GL_CH4", "F_N2O",
			"WET_N2O", "HWP_CO2", "F_CH4", "F_CO2", "SETT_N2O", "SETT_CH4", "CL_N2O", "WET_CH4",
			"OTHER_CO2", "OTHER_N2O", "OT_CO2", "OTHER_CH4", "OT_CH4", "WET_CO2",
		)},
	}}
}

// Leaves counts the leaf nodes under n.
func (n CategoryNode) Leaves() int {
	if len(n.Children) == 0 {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += c.Leaves()
	}
	return total
}
