package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"oecddash/internal/engine"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cat := cfg.Catalog()
	ghg, ok := cat.Topic("ghg")
	require.True(t, ok)
	require.Len(t, ghg.Subtopics, 5)
	assert.Equal(t, "Without LULUCF", ghg.Subtopics[0].Name)
	assert.Equal(t, filepath.Join("DataSource", "GreenHouseGas", "GreenHouseGasWithoutLULUCF.csv"), ghg.Subtopics[0].Path)

	nutrient, ok := cat.Topic("nutrient")
	require.True(t, ok)
	assert.Empty(t, nutrient.Subtopics)

	assert.Len(t, cat.Indicators, 3)
	assert.Equal(t, filepath.Join("DataSource", "Population", "AnnualPopulationOECDCountry.csv"), cat.Population)
	assert.Equal(t, engine.ColorsFixed, cfg.ColorMode())
}

func TestLoadOverridesDefaults(t *testing.T) {
	// 1. Setup
	path := writeConfig(t, `
addr: ":9090"
data_dir: /srv/oecd
log_level: debug
rate_limit: 20
cache:
  ttl: 5m
  watch: true
colors:
  mode: dynamic
indicators:
  - id: gdp
    name: GDP
    path: /abs/gdp.csv
`)

	// 2. Run
	cfg, err := Load(path)

	// 3. Assertions
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Cache.Watch)
	assert.Equal(t, engine.ColorsDynamic, cfg.ColorMode())
	assert.Equal(t, 20.0, cfg.RateLimit)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, log.DEBUG, lvl)

	cat := cfg.Catalog()
	require.Len(t, cat.Indicators, 1)
	assert.Equal(t, "/abs/gdp.csv", cat.Indicators[0].Path, "absolute paths are kept")
	assert.Len(t, cat.Topics, 2, "topics keep their defaults")
	assert.Equal(t, filepath.Join("/srv/oecd", "GreenHouseGas", "GreenHouseGasWithLULUCF.csv"), cat.Topics[0].Subtopics[2].Path)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "colors:\n  mode: rainbow\nlog_level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rainbow")
	assert.Contains(t, err.Error(), "loud")

	_, err = Load(writeConfig(t, "topics:\n  - id: a\n    subtopics:\n      - id: x\n      - id: x\n        path: b.csv\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicated")
	assert.Contains(t, err.Error(), "has no path")

	_, err = Load(writeConfig(t, "addr: [\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
