package engine

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatNumber abbreviates v with a T/B/M/k suffix and one decimal. Values
// under a thousand are rounded to an integer. NaN and 0 print "0".
func FormatNumber(v float64) string {
	if math.IsNaN(v) || v == 0 {
		return "0"
	}
	a := math.Abs(v)
	switch {
	case a >= 1e12:
		return fmt.Sprintf("%.1fT", v/1e12)
	case a >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	}
	return fmt.Sprintf("%.0f", v)
}

// FormatPercent prints a share with one decimal.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

var printer = message.NewPrinter(language.English)

// FormatGrouped rounds v and prints it with thousands separators.
func FormatGrouped(v float64) string {
	if math.IsNaN(v) {
		return "0"
	}
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// FontSize estimates the largest font that fits textLen characters into
// availablePx, assuming each glyph is charRatio of the font size wide. The
// result is clamped to [minSize, maxSize] and floored.
func FontSize(textLen int, availablePx float64, minSize, maxSize int, charRatio float64) int {
	if textLen <= 0 || charRatio <= 0 {
		return maxSize
	}
	fit := availablePx / (float64(textLen) * charRatio)
	return int(math.Max(float64(minSize), math.Min(fit, float64(maxSize))))
}

// BarWidth estimates the pixel width of one bar: 80% of the plot holds
// bars, and each bar takes 80% of its slot.
func BarWidth(plotWidth float64, bars int) float64 {
	if bars <= 0 {
		return 0
	}
	return plotWidth * 0.8 / float64(bars) * 0.8
}

// Plot widths the label presets are tuned for.
const (
	BarPlotWidth       = 700
	WaterfallPlotWidth = 800
)

// BarTotalFontSize is the uniform font size for total labels over a
// stacked bar chart, fitted to the longest label.
func BarTotalFontSize(labels []string) int {
	longest := 0
	for _, l := range labels {
		longest = max(longest, len(l))
	}
	return FontSize(longest, BarWidth(BarPlotWidth, len(labels)), 8, 16, 0.6)
}

// WaterfallFontSize sizes a value label over a waterfall bar. Only 90% of
// the bar is usable and the result never drops below 10.
func WaterfallFontSize(text string, barWidth float64) int {
	n := len(strings.ReplaceAll(text, "\n", ""))
	return max(FontSize(n, barWidth*0.9, 8, 18, 0.55), 10)
}

var dimLabels = map[Dim]string{
	DimArea:    "Country",
	DimMeasure: "Measure",
	DimPeriod:  "Year",
}

var titleCaser = cases.Title(language.English)

// LabelForDim is the axis label of a column: REF_AREA reads "Country".
// Other names are title-cased with underscores as spaces.
func LabelForDim(d Dim) string {
	if l, ok := dimLabels[d]; ok {
		return l
	}
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(string(d)), "_", " "))
}
