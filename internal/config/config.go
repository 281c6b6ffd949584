package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"oecddash/internal/engine"

	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr     string `yaml:"addr"`
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	// RateLimit is requests per second per client. 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`

	Cache  CacheConfig  `yaml:"cache"`
	Colors ColorsConfig `yaml:"colors"`

	Topics     []engine.Topic  `yaml:"topics"`
	Indicators []engine.Source `yaml:"indicators"`
	Population string          `yaml:"population"`
}

type CacheConfig struct {
	// TTL of 0 keeps loaded datasets until they are invalidated.
	TTL   time.Duration `yaml:"ttl"`
	Watch bool          `yaml:"watch"`
}

type ColorsConfig struct {
	Mode string `yaml:"mode"`
}

// Default is the OECD dataset layout under ./DataSource.
func Default() Config {
	ghg := func(id, name, file string) engine.Source {
		return engine.Source{ID: id, Name: name, Path: filepath.Join("GreenHouseGas", file)}
	}
	return Config{
		Addr:     ":8080",
		DataDir:  "DataSource",
		LogLevel: "info",
		Colors:   ColorsConfig{Mode: "fixed"},
		Topics: []engine.Topic{
			{
				ID:   "ghg",
				Name: "Greenhouse Gas Output",
				Subtopics: []engine.Source{
					ghg("without-lulucf", "Without LULUCF", "GreenHouseGasWithoutLULUCF.csv"),
					ghg("from-lulucf", "From LULUCF", "GreenHouseGasFromLULUCF.csv"),
					ghg("with-lulucf", "With LULUCF", "GreenHouseGasWithLULUCF.csv"),
					ghg("sector", "Sector", "GreenHouseGasBySectors.csv"),
					ghg("nature-source", "Nature Source", "GreenHouseGasByNatureSources.csv"),
				},
			},
			{ID: "nutrient", Name: "Nutrient Input and Output"},
		},
		Indicators: []engine.Source{
			{ID: "energy", Name: "Agricultural Energy Consumption (Tonnes of oil equivalent)", Path: filepath.Join("Energy", "AgriculturalEnergyConsumption.csv")},
			{ID: "land", Name: "Agricultural Land Area (Hectares)", Path: filepath.Join("Land", "AgriculturalLand.csv")},
			{ID: "water", Name: "Agricultural Water Use (Cubic meters)", Path: filepath.Join("WaterAbstraction", "AgriculturalWaterAbstraction.csv")},
		},
		Population: filepath.Join("Population", "AnnualPopulationOECDCountry.csv"),
	}
}

// Load reads a YAML file over Default. Keys missing from the file keep
// their defaults; an empty path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit %v is negative", c.RateLimit))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl %v is negative", c.Cache.TTL))
	}
	if _, err := engine.ParseColorMode(c.Colors.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	topics := make(map[string]bool)
	for _, t := range c.Topics {
		if t.ID == "" || topics[t.ID] {
			errs = append(errs, fmt.Errorf("topic id %q is empty or duplicated", t.ID))
		}
		topics[t.ID] = true
		subs := make(map[string]bool)
		for _, s := range t.Subtopics {
			if s.ID == "" || subs[s.ID] {
				errs = append(errs, fmt.Errorf("topic %s: subtopic id %q is empty or duplicated", t.ID, s.ID))
			}
			subs[s.ID] = true
			if s.Path == "" {
				errs = append(errs, fmt.Errorf("topic %s: subtopic %s has no path", t.ID, s.ID))
			}
		}
	}
	indicators := make(map[string]bool)
	for _, s := range c.Indicators {
		if s.ID == "" || indicators[s.ID] {
			errs = append(errs, fmt.Errorf("indicator id %q is empty or duplicated", s.ID))
		}
		indicators[s.ID] = true
	}
	return errors.Join(errs...)
}

var levels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

// Level maps log_level to a gommon level. Empty means info.
func (c Config) Level() (log.Lvl, error) {
	if c.LogLevel == "" {
		return log.INFO, nil
	}
	l, ok := levels[strings.ToLower(c.LogLevel)]
	if !ok {
		return log.INFO, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return l, nil
}

// ColorMode is the parsed colors.mode.
func (c Config) ColorMode() engine.ColorMode {
	m, _ := engine.ParseColorMode(c.Colors.Mode)
	return m
}

// Catalog resolves every relative dataset path against DataDir.
func (c Config) Catalog() engine.Catalog {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || c.DataDir == "" {
			return p
		}
		return filepath.Join(c.DataDir, p)
	}
	cat := engine.Catalog{Population: resolve(c.Population)}
	for _, t := range c.Topics {
		topic := engine.Topic{ID: t.ID, Name: t.Name}
		for _, s := range t.Subtopics {
			s.Path = resolve(s.Path)
			topic.Subtopics = append(topic.Subtopics, s)
		}
		cat.Topics = append(cat.Topics, topic)
	}
	for _, s := range c.Indicators {
		s.Path = resolve(s.Path)
		cat.Indicators = append(cat.Indicators, s)
	}
	return cat
}
