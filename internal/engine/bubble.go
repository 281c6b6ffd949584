package engine

import (
	"math"
	"sort"

	"golang.org/x/exp/maps"
)

// Bubble sizing, in pixels.
const (
	MaxBubbleSize = 50
	MinBubbleSize = 1
)

// BubblePoint places one country: X is the indicator, Y the GHS output and
// the bubble area follows population. Period is 0 for the static chart.
type BubblePoint struct {
	Area       string
	Period     int
	X          float64
	Y          float64
	Population float64
	Size       int
}

// Bubbles is a bubble chart. Frames is set for the animated variant.
type Bubbles struct {
	Points []BubblePoint
	Frames []BubbleFrame
	Colors map[string]string
}

// Areas lists the countries with at least one bubble, sorted.
func (b *Bubbles) Areas() []string { return areasOf(b.Points) }

type BubbleFrame struct {
	Period int
	Points []BubblePoint
}

// StaticBubbles sums GHS and the indicator per country over the selected
// periods. Population is the country's median over its periods. Only
// countries present in all three tables are kept. A nil colors map is
// assigned over the kept countries.
func StaticBubbles(ghs, indicator, population *Table, colors map[string]string) *Bubbles {
	y := totalsByArea(ghs)
	x := totalsByArea(indicator)
	pop := medianByArea(population)

	var points []BubblePoint
	for _, area := range sortedKeys(x) {
		yv, okY := y[area]
		pv, okP := pop[area]
		if !okY || !okP {
			continue
		}
		points = append(points, BubblePoint{Area: area, X: x[area], Y: yv, Population: pv})
	}
	sizeBubbles(points)
	return &Bubbles{Points: points, Colors: bubbleColors(points, colors)}
}

type areaPeriod struct {
	area   string
	period int
}

// AnimatedBubbles joins the three tables on (country, period), one frame
// per period.
func AnimatedBubbles(ghs, indicator, population *Table, colors map[string]string) *Bubbles {
	y := totalsByAreaPeriod(ghs)
	x := totalsByAreaPeriod(indicator)
	pop := totalsByAreaPeriod(population)

	keys := make([]areaPeriod, 0, len(x))
	for k := range x {
		if _, ok := y[k]; !ok {
			continue
		}
		if _, ok := pop[k]; !ok {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].period != keys[j].period {
			return keys[i].period < keys[j].period
		}
		return keys[i].area < keys[j].area
	})

	points := make([]BubblePoint, len(keys))
	for i, k := range keys {
		points[i] = BubblePoint{Area: k.area, Period: k.period, X: x[k], Y: y[k], Population: pop[k]}
	}
	sizeBubbles(points)

	b := &Bubbles{Points: points, Colors: bubbleColors(points, colors)}
	for _, p := range points {
		if n := len(b.Frames); n == 0 || b.Frames[n-1].Period != p.Period {
			b.Frames = append(b.Frames, BubbleFrame{Period: p.Period})
		}
		f := &b.Frames[len(b.Frames)-1]
		f.Points = append(f.Points, p)
	}
	return b
}

func bubbleColors(points []BubblePoint, colors map[string]string) map[string]string {
	if colors != nil {
		return colors
	}
	return paletteFor(areasOf(points))
}

// sizeBubbles scales bubble area with population against the largest one.
func sizeBubbles(points []BubblePoint) {
	var largest float64
	for _, p := range points {
		largest = math.Max(largest, p.Population)
	}
	for i := range points {
		size := MinBubbleSize
		if largest > 0 && points[i].Population > 0 {
			size = max(int(math.Round(MaxBubbleSize*math.Sqrt(points[i].Population/largest))), MinBubbleSize)
		}
		points[i].Size = size
	}
}

func totalsByArea(t *Table) map[string]float64 {
	out := make(map[string]float64)
	for i := 0; i < t.Len(); i++ {
		out[t.Area(i)] += t.value(i)
	}
	return out
}

func totalsByAreaPeriod(t *Table) map[areaPeriod]float64 {
	out := make(map[areaPeriod]float64)
	for i := 0; i < t.Len(); i++ {
		out[areaPeriod{t.Area(i), t.Period(i)}] += t.value(i)
	}
	return out
}

// medianByArea sums each country's rows per period, then takes the median
// across periods.
func medianByArea(t *Table) map[string]float64 {
	perPeriod := totalsByAreaPeriod(t)
	series := make(map[string][]float64)
	for k, v := range perPeriod {
		series[k.area] = append(series[k.area], v)
	}
	out := make(map[string]float64, len(series))
	for area, vs := range series {
		out[area] = median(vs)
	}
	return out
}

func median(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), vs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func sortedKeys(m map[string]float64) []string {
	keys := maps.Keys(m)
	sort.Strings(keys)
	return keys
}

func areasOf(points []BubblePoint) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range points {
		if !seen[p.Area] {
			seen[p.Area] = true
			out = append(out, p.Area)
		}
	}
	sort.Strings(out)
	return out
}
