package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"oecddash/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionFor(t *testing.T) {
	// 1. Setup
	universe := engine.NewTable([]engine.Observation{
		{RefArea: "USA", TimePeriod: 2010, Measure: "CO2", Value: 1},
		{RefArea: "FRA", TimePeriod: 2012, Measure: "CH4", Value: 2},
	})

	// 2. Run: only a start year and an area
	cfg := selectionFor(universe, renderFlags{from: 2011, areas: []string{"USA"}})

	// 3. Assertions
	assert.Equal(t, []int{2011, 2012}, cfg.Years())
	assert.Equal(t, []string{"USA"}, cfg.Areas())
	assert.Equal(t, []string{"CH4", "CO2"}, cfg.Measures())
}

func TestRender(t *testing.T) {
	// 1. Setup
	dir := t.TempDir()
	path := filepath.Join(dir, "ghg.csv")
	require.NoError(t, os.WriteFile(path, []byte("REF_AREA,MEASURE,TIME_PERIOD,OBS_VALUE\nUSA,CO2,2010,5\nFRA,CO2,2010,3\n"), 0o644))
	repo := engine.NewRepository(engine.Catalog{Topics: []engine.Topic{
		{ID: "ghg", Name: "GHG", Subtopics: []engine.Source{{ID: "with", Name: "With LULUCF", Path: path}}},
	}}, 0)
	f := renderFlags{topic: "ghg", subtopic: "with", kind: "waterfall", x: "REF_AREA", category: "MEASURE", sign: "all"}

	// 2. Run
	var buf bytes.Buffer
	require.NoError(t, render(context.Background(), repo, f, &buf))

	// 3. Assertions
	assert.Contains(t, buf.String(), "chart_waterfall")
	assert.Contains(t, buf.String(), "With LULUCF")

	f.kind = "histogram"
	assert.Error(t, render(context.Background(), repo, f, &buf))
}
