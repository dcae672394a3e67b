// Package config provides configuration management for the unification pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoCities             = errors.New("at least one city is required")
	ErrCityMissingName      = errors.New("city name is required")
	ErrCityMissingRegion    = errors.New("city region is required")
	ErrDuplicateCity        = errors.New("duplicate city entry")
	ErrUnknownRegion        = errors.New("region is not a German state")
	ErrFloorUnknownCity     = errors.New("validity floor references unknown city")
	ErrInvalidFloorDate     = errors.New("validity floor is not a valid date")
	ErrInvalidEarliest      = errors.New("filters.earliest is not a valid date")
	ErrInvalidLatest        = errors.New("filters.latest is not a valid date")
	ErrEmptyDateWindow      = errors.New("filters.earliest must be before filters.latest")
	ErrMissingDateOverrides = errors.New("overrides.dates path is required")
	ErrMissingCountOverride = errors.New("overrides.participants path is required")
	ErrInvalidCacheStore    = errors.New("cache.store must be 'memory' or 'sqlite'")
	ErrMissingCachePath     = errors.New("cache.path is required for the sqlite store")
	ErrMissingOutputPath    = errors.New("pipeline.output_path is required")
	ErrInvalidWorkers       = errors.New("pipeline.workers must be non-negative")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
)

const dateLayout = "2006-01-02"

// Config represents the complete pipeline configuration.
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Overrides OverridesConfig `yaml:"overrides"`
	Cache     CacheConfig     `yaml:"cache"`
	Filters   FiltersConfig   `yaml:"filters"`
	Cities    []CityConfig    `yaml:"cities"`

	earliest time.Time
	latest   time.Time
	floors   map[string]time.Time
}

// PipelineConfig contains run-level settings.
type PipelineConfig struct {
	InputDir   string        `yaml:"input_dir"`
	OutputPath string        `yaml:"output_path"`
	Workers    int           `yaml:"workers"`
	Logging    LoggingConfig `yaml:"logging"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OverridesConfig points at the human-curated correction files.
type OverridesConfig struct {
	Dates        string `yaml:"dates"`
	Participants string `yaml:"participants"`
}

// CacheConfig selects the result-cache store.
type CacheConfig struct {
	Store string `yaml:"store"`
	Path  string `yaml:"path"`
}

// FiltersConfig holds the global date window and per-city validity floors.
// Latest is exclusive; CityFloors maps city name to the earliest date for
// which that source carries trustworthy structured detail.
type FiltersConfig struct {
	Earliest   string            `yaml:"earliest"`
	Latest     string            `yaml:"latest"`
	CityFloors map[string]string `yaml:"city_floors"`
}

// CityConfig declares a known source city.
type CityConfig struct {
	Name    string `yaml:"name"`
	Region  string `yaml:"region"`
	Capital bool   `yaml:"capital"`
}

// germanRegions lists the 16 states and their political capitals.
var germanRegions = map[string]string{
	"Baden-Württemberg":      "Stuttgart",
	"Bayern":                 "München",
	"Berlin":                 "Berlin",
	"Brandenburg":            "Potsdam",
	"Bremen":                 "Bremen",
	"Hamburg":                "Hamburg",
	"Hessen":                 "Wiesbaden",
	"Mecklenburg-Vorpommern": "Schwerin",
	"Niedersachsen":          "Hannover",
	"Nordrhein-Westfalen":    "Düsseldorf",
	"Rheinland-Pfalz":        "Mainz",
	"Saarland":               "Saarbrücken",
	"Sachsen":                "Dresden",
	"Sachsen-Anhalt":         "Magdeburg",
	"Schleswig-Holstein":     "Kiel",
	"Thüringen":              "Erfurt",
}

// LoadConfig loads and validates configuration from a YAML file.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with the dataset's standard window and an
// in-memory cache. Cities, override paths and the output path still have to
// be supplied.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Workers: 4,
			Logging: LoggingConfig{Level: "info"},
		},
		Cache: CacheConfig{Store: "memory"},
		Filters: FiltersConfig{
			Earliest: "2010-01-01",
			Latest:   "2023-01-01",
		},
	}
}

// Validate validates the configuration and resolves all date fields. It must
// be called (directly or via LoadConfig) before the accessor methods.
func (c *Config) Validate() error {
	if len(c.Cities) == 0 {
		return ErrNoCities
	}

	seen := make(map[string]bool, len(c.Cities))

	for i, city := range c.Cities {
		if city.Name == "" {
			return fmt.Errorf("%w: cities[%d]", ErrCityMissingName, i)
		}

		if city.Region == "" {
			return fmt.Errorf("%w: %s", ErrCityMissingRegion, city.Name)
		}

		if _, ok := germanRegions[city.Region]; !ok {
			return fmt.Errorf("%w: %s (%s)", ErrUnknownRegion, city.Region, city.Name)
		}

		if seen[city.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateCity, city.Name)
		}

		seen[city.Name] = true

		// the capital flag follows from the region table, not from YAML
		if IsCapital(city.Name, city.Region) {
			c.Cities[i].Capital = true
		}
	}

	var err error

	c.earliest, err = time.Parse(dateLayout, c.Filters.Earliest)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEarliest, c.Filters.Earliest)
	}

	c.latest, err = time.Parse(dateLayout, c.Filters.Latest)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLatest, c.Filters.Latest)
	}

	if !c.earliest.Before(c.latest) {
		return ErrEmptyDateWindow
	}

	c.floors = make(map[string]time.Time, len(c.Filters.CityFloors))

	for city, floor := range c.Filters.CityFloors {
		if !seen[city] {
			return fmt.Errorf("%w: %s", ErrFloorUnknownCity, city)
		}

		t, err := time.Parse(dateLayout, floor)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidFloorDate, city, floor)
		}

		c.floors[city] = t
	}

	if c.Overrides.Dates == "" {
		return ErrMissingDateOverrides
	}

	if c.Overrides.Participants == "" {
		return ErrMissingCountOverride
	}

	switch c.Cache.Store {
	case "memory":
	case "sqlite":
		if c.Cache.Path == "" {
			return ErrMissingCachePath
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCacheStore, c.Cache.Store)
	}

	if c.Pipeline.OutputPath == "" {
		return ErrMissingOutputPath
	}

	if c.Pipeline.Workers < 0 {
		return ErrInvalidWorkers
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Pipeline.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// Window returns the global sanity window. The upper bound is exclusive.
func (c *Config) Window() (earliest, latest time.Time) {
	return c.earliest, c.latest
}

// CityFloors returns the resolved per-city validity floors.
func (c *Config) CityFloors() map[string]time.Time {
	return c.floors
}

// IsCapital reports whether city is the political capital of region.
func IsCapital(city, region string) bool {
	return germanRegions[region] == city
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Cities: %d, Window: %s..%s, Cache: %s}",
		len(c.Cities),
		c.Filters.Earliest,
		c.Filters.Latest,
		c.Cache.Store,
	)
}
