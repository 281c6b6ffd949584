package engine

import (
	"fmt"
	"math"
	"strings"
)

// Sign selects which contributors a pie or treemap shows.
type Sign int

const (
	SignAll Sign = iota
	SignEmissions
	SignAbsorption
)

func (s Sign) Label() string {
	switch s {
	case SignEmissions:
		return "Show all contributors to GHS Emissions"
	case SignAbsorption:
		return "Show all contributors to GHS Absorption"
	}
	return "All Values"
}

func ParseSign(s string) (Sign, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return SignAll, nil
	case "emissions", "positive":
		return SignEmissions, nil
	case "absorption", "negative":
		return SignAbsorption, nil
	}
	return SignAll, fmt.Errorf("unknown sign filter %q", s)
}

func (s Sign) keep(v float64) bool {
	switch s {
	case SignEmissions:
		return v >= 0
	case SignAbsorption:
		return v < 0
	}
	return true
}

// Contribution is one category's slice of a pie or treemap.
type Contribution struct {
	Category string
	Value    float64
	Percent  float64
	Color    string
}

// Contributors is the grouped, sign-filtered input of a pie or treemap.
// When Empty is set, Message explains why nothing is drawn.
type Contributors struct {
	By      Dim
	Sign    Sign
	Items   []Contribution
	Empty   bool
	Message string
}

// GroupContributors totals t per value of by and keeps the categories
// matching sign. Percent is each value's share of the kept sum. When
// absolute is set, absorption values are reported as magnitudes.
//
// Colors come from colors; when it is nil they are assigned over the kept
// categories only.
func GroupContributors(t *Table, by Dim, sign Sign, absolute bool, colors map[string]string) (*Contributors, error) {
	totals, err := SumBy(t, by)
	if err != nil {
		return nil, err
	}
	out := &Contributors{By: by, Sign: sign, Items: []Contribution{}}

	var sum float64
	kept := make([]string, 0, len(totals))
	for _, ct := range totals {
		if !sign.keep(ct.Value) {
			continue
		}
		v := ct.Value
		if absolute && sign == SignAbsorption {
			v = math.Abs(v)
		}
		out.Items = append(out.Items, Contribution{Category: ct.Category, Value: v})
		kept = append(kept, ct.Category)
		sum += v
	}
	if len(out.Items) == 0 || sum == 0 {
		out.Items = []Contribution{}
		out.Empty = true
		out.Message = fmt.Sprintf("No %s found in the selected data", strings.ToLower(sign.Label()))
		return out, nil
	}

	if colors == nil {
		// SumBy output is sorted, so kept is too.
		colors = paletteFor(kept)
	}
	for i := range out.Items {
		out.Items[i].Percent = out.Items[i].Value / sum * 100
		out.Items[i].Color = colors[out.Items[i].Category]
	}
	return out, nil
}
