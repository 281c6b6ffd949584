package models

import "math"

type TopicList struct {
	Topics []TopicInfo `json:"topics"`
}

type TopicInfo struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Subtopics []SubtopicInfo `json:"subtopics"`
	Errors    []LoadFailure  `json:"errors,omitempty"`
}

type SubtopicInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LoadFailure struct {
	Subtopic string `json:"subtopic"`
	Error    string `json:"error"`
}

type IndicatorInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Selection struct {
	Years    []int    `json:"years"`
	Areas    []string `json:"areas"`
	Measures []string `json:"measures"`
}

type Options struct {
	Topic      string          `json:"topic"`
	Subtopic   string          `json:"subtopic"`
	Years      []int           `json:"years"`
	Areas      []string        `json:"areas"`
	Measures   []string        `json:"measures"`
	Defaults   Selection       `json:"defaults"`
	Indicators []IndicatorInfo `json:"indicators"`
	ColorMode  string          `json:"color_mode"`
}

// ObservationRow keeps the CSV column names. A missing value is null.
type ObservationRow struct {
	RefArea    string   `json:"REF_AREA"`
	TimePeriod int      `json:"TIME_PERIOD"`
	Measure    string   `json:"MEASURE"`
	Value      *float64 `json:"OBS_VALUE"`
}

type Measure struct {
	Code   string `json:"code"`
	Type   string `json:"type"`
	Icon   string `json:"icon"`
	Name   string `json:"name"`
	Suffix string `json:"suffix"`
}

type SummaryRow struct {
	Area        string   `json:"country"`
	Description string   `json:"description"`
	Start       *float64 `json:"start"`
	End         *float64 `json:"end"`
	Change      *float64 `json:"change_percent"`
}

type SummaryResponse struct {
	StartYear int          `json:"start_year"`
	EndYear   int          `json:"end_year"`
	Rows      []SummaryRow `json:"rows"`
	Measures  []Measure    `json:"measures"`
}

type PivotResponse struct {
	X        string      `json:"x"`
	Category string      `json:"category"`
	Index    []string    `json:"index"`
	Columns  []string    `json:"columns"`
	Values   [][]float64 `json:"values"`
	Totals   []float64   `json:"totals"`
	Shares   [][]float64 `json:"shares"`
	AbsTotal []float64   `json:"abs_totals"`
	Colors   ColorMap    `json:"colors"`
}

type AreaShare struct {
	Category string  `json:"category"`
	Area     float64 `json:"area"`
	Percent  float64 `json:"percent"`
}

type AreaAnnotation struct {
	Category string  `json:"category"`
	X        int     `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	FontSize int     `json:"font_size"`
}

type AreaResponse struct {
	Category    string           `json:"category"`
	Total       float64          `json:"total"`
	Shares      []AreaShare      `json:"shares"`
	Annotations []AreaAnnotation `json:"annotations"`
	// Stacked is false when negative values force a plain line chart.
	Stacked bool `json:"stacked"`
}

type Contribution struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Percent  float64 `json:"percent"`
	Color    string  `json:"color"`
}

type ContributorsResponse struct {
	By      string         `json:"by"`
	Sign    string         `json:"sign"`
	Items   []Contribution `json:"items"`
	Message string         `json:"message,omitempty"`
}

type WaterfallBar struct {
	Category    string  `json:"category"`
	Base        float64 `json:"base"`
	Height      float64 `json:"height"`
	Color       string  `json:"color"`
	InsideText  string  `json:"inside_text"`
	OutsideText string  `json:"outside_text"`
	Percent     float64 `json:"percent"`
	FontSize    int     `json:"font_size"`
	Total       bool    `json:"total,omitempty"`
}

type Connector struct {
	From int     `json:"from"`
	To   int     `json:"to"`
	Y    float64 `json:"y"`
}

type WaterfallResponse struct {
	Indicator  string         `json:"indicator,omitempty"`
	Bars       []WaterfallBar `json:"bars"`
	Connectors []Connector    `json:"connectors"`
	GrandTotal float64        `json:"grand_total"`
	YMin       float64        `json:"y_min"`
	YMax       float64        `json:"y_max"`
}

type RankItem struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

type RankFrame struct {
	Period int        `json:"period"`
	Items  []RankItem `json:"items"`
}

type RankingResponse struct {
	By     string      `json:"by"`
	Frames []RankFrame `json:"frames"`
	Colors ColorMap    `json:"colors"`
	XMax   float64     `json:"x_max"`
}

type BubblePoint struct {
	Area       string  `json:"country"`
	Period     int     `json:"period,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Population float64 `json:"population"`
	Size       int     `json:"size"`
}

type BubbleResponse struct {
	Indicator string        `json:"indicator"`
	Animated  bool          `json:"animated"`
	Points    []BubblePoint `json:"points"`
	Colors    ColorMap      `json:"colors"`
}

type ColorMap map[string]string

// Float maps NaN to nil so it encodes as JSON null.
func Float(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
