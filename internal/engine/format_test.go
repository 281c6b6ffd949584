package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:         "0",
		999:       "999",
		1500:      "1.5k",
		2_500_000: "2.5M",
		3.2e9:     "3.2B",
		1.25e12:   "1.2T",
		-4200:     "-4.2k",
		12.6:      "13",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatNumber(in), "FormatNumber(%v)", in)
	}
	assert.Equal(t, "0", FormatNumber(math.NaN()))
}

func TestFormatGroupedAndPercent(t *testing.T) {
	assert.Equal(t, "1,234,568", FormatGrouped(1234567.6))
	assert.Equal(t, "-1,000", FormatGrouped(-1000))
	assert.Equal(t, "0", FormatGrouped(math.NaN()))
	assert.Equal(t, "66.7%", FormatPercent(200.0/3))
}

func TestFontSize(t *testing.T) {
	// 100px / (5 * 0.6) = 33 -> clamped to 16.
	assert.Equal(t, 16, FontSize(5, 100, 8, 16, 0.6))
	// 31px / (5 * 0.6) = 10.3, floored.
	assert.Equal(t, 10, FontSize(5, 31, 8, 16, 0.6))
	// Never below the minimum.
	assert.Equal(t, 8, FontSize(50, 30, 8, 16, 0.6))
	assert.Equal(t, 16, FontSize(0, 30, 8, 16, 0.6))
}

func TestBarWidthAndPresets(t *testing.T) {
	assert.InDelta(t, 700*0.8/4*0.8, BarWidth(700, 4), 1e-9)
	assert.Equal(t, 0.0, BarWidth(700, 0))

	size := BarTotalFontSize([]string{"1.5k", "250", "12.0M"})
	assert.GreaterOrEqual(t, size, 8)
	assert.LessOrEqual(t, size, 16)

	assert.Equal(t, 10, WaterfallFontSize("123.4M\n(100.0%)", 20))
	assert.Equal(t, 18, WaterfallFontSize("1", 500))
}

func TestLabelForDim(t *testing.T) {
	assert.Equal(t, "Country", LabelForDim(DimArea))
	assert.Equal(t, "Year", LabelForDim(DimPeriod))
	assert.Equal(t, "Unit Mult", LabelForDim("UNIT_MULT"))
}
