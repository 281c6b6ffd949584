package engine

import (
	"fmt"
	"strings"
	"sync"
)

// Palette is the qualitative palette categories cycle through.
var Palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Sign colors for categories without a palette entry.
const (
	ColorPositive = "green"
	ColorNegative = "red"
	ColorTotal    = "blue"
)

// AssignColors maps each sorted distinct value of column to
// Palette[i mod len(Palette)]. An unknown column falls back to the first
// text column holding data; with none the map is empty.
//
// The mapping depends only on the distinct values present, so filtering a
// category out can shift the colors of the others.
func AssignColors(t *Table, column string) map[string]string {
	d, ok := colorColumn(t, column)
	if !ok {
		return map[string]string{}
	}
	return paletteFor(t.Unique(d))
}

func colorColumn(t *Table, column string) (Dim, bool) {
	if d := Dim(column); d.Valid() {
		return d, true
	}
	for _, d := range textDims {
		if t.hasText(d) {
			return d, true
		}
	}
	return "", false
}

// hasText reports whether column d carries any non-empty value. Files
// without the column load it as empty strings.
func (t *Table) hasText(d Dim) bool {
	for i := 0; i < t.Len(); i++ {
		if t.Key(i, d) != "" {
			return true
		}
	}
	return false
}

func paletteFor(sorted []string) map[string]string {
	out := make(map[string]string, len(sorted))
	for i, v := range sorted {
		out[v] = Palette[i%len(Palette)]
	}
	return out
}

// ColorMode selects how a ColorScheme picks its category universe.
type ColorMode int

const (
	// ColorsDynamic recolors from the visible rows on every render.
	ColorsDynamic ColorMode = iota
	// ColorsFixed colors from the full unfiltered table once and holds it.
	ColorsFixed
)

func (m ColorMode) String() string {
	if m == ColorsFixed {
		return "fixed"
	}
	return "dynamic"
}

func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed":
		return ColorsFixed, nil
	case "dynamic":
		return ColorsDynamic, nil
	}
	return ColorsDynamic, fmt.Errorf("unknown color mode %q", s)
}

// ColorScheme hands out category colors for one server. In fixed mode the
// first assignment per scope and column is kept until Reset. Visible values
// missing from the held map, such as countries found only in an indicator
// table, take the next palette slots; held entries never change.
type ColorScheme struct {
	mode ColorMode

	mu    sync.Mutex
	fixed map[string]map[string]string
}

func NewColorScheme(mode ColorMode) *ColorScheme {
	return &ColorScheme{mode: mode, fixed: make(map[string]map[string]string)}
}

func (s *ColorScheme) Mode() ColorMode { return s.mode }

// Colors returns the color map for column. scope identifies the dataset
// (topic/subtopic) that universe was loaded from.
func (s *ColorScheme) Colors(scope string, universe, visible *Table, column string) map[string]string {
	if s == nil || s.mode == ColorsDynamic {
		return AssignColors(visible, column)
	}

	key := scope + "|" + column
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.fixed[key]
	if !ok {
		m = AssignColors(universe, column)
	}
	m = extendColors(m, visible, column)
	s.fixed[key] = m
	return m
}

// extendColors returns held plus a palette color for every value of column
// in visible that held lacks. held is copied, never modified, since callers
// may still be reading it.
func extendColors(held map[string]string, visible *Table, column string) map[string]string {
	d, ok := colorColumn(visible, column)
	if !ok {
		return held
	}
	var missing []string
	for _, v := range visible.Unique(d) {
		if _, ok := held[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return held
	}
	out := make(map[string]string, len(held)+len(missing))
	for k, v := range held {
		out[k] = v
	}
	for i, v := range missing {
		out[v] = Palette[(len(held)+i)%len(Palette)]
	}
	return out
}

// Reset drops every held assignment.
func (s *ColorScheme) Reset() {
	s.mu.Lock()
	s.fixed = make(map[string]map[string]string)
	s.mu.Unlock()
}
