package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Pipeline.OutputPath = "out/events.csv"
	cfg.Overrides.Dates = "overrides/dates.json"
	cfg.Overrides.Participants = "overrides/participants.json"
	cfg.Cities = []CityConfig{
		{Name: "Berlin", Region: "Berlin", Capital: true},
		{Name: "Köln", Region: "Nordrhein-Westfalen"},
	}
	cfg.Filters.CityFloors = map[string]string{"Köln": "2015-01-01"}

	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned unexpected error: %v", err)
	}

	earliest, latest := cfg.Window()
	if !earliest.Equal(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("earliest = %s, want 2010-01-01", earliest)
	}

	if !latest.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("latest = %s, want 2023-01-01", latest)
	}

	floors := cfg.CityFloors()
	if !floors["Köln"].Equal(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Köln floor = %s, want 2015-01-01", floors["Köln"])
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no cities", func(c *Config) { c.Cities = nil }, ErrNoCities},
		{"city missing name", func(c *Config) { c.Cities[0].Name = "" }, ErrCityMissingName},
		{"city missing region", func(c *Config) { c.Cities[0].Region = "" }, ErrCityMissingRegion},
		{"unknown region", func(c *Config) { c.Cities[0].Region = "Atlantis" }, ErrUnknownRegion},
		{"duplicate city", func(c *Config) { c.Cities[1] = c.Cities[0] }, ErrDuplicateCity},
		{"floor for unknown city", func(c *Config) { c.Filters.CityFloors["Bonn"] = "2020-01-01" }, ErrFloorUnknownCity},
		{"bad floor date", func(c *Config) { c.Filters.CityFloors["Köln"] = "soon" }, ErrInvalidFloorDate},
		{"bad earliest", func(c *Config) { c.Filters.Earliest = "not-a-date" }, ErrInvalidEarliest},
		{"bad latest", func(c *Config) { c.Filters.Latest = "31.12.2022" }, ErrInvalidLatest},
		{"empty window", func(c *Config) { c.Filters.Earliest = "2023-01-01" }, ErrEmptyDateWindow},
		{"missing date overrides", func(c *Config) { c.Overrides.Dates = "" }, ErrMissingDateOverrides},
		{"missing count overrides", func(c *Config) { c.Overrides.Participants = "" }, ErrMissingCountOverride},
		{"bad cache store", func(c *Config) { c.Cache.Store = "redis" }, ErrInvalidCacheStore},
		{"sqlite without path", func(c *Config) { c.Cache.Store = "sqlite" }, ErrMissingCachePath},
		{"missing output path", func(c *Config) { c.Pipeline.OutputPath = "" }, ErrMissingOutputPath},
		{"negative workers", func(c *Config) { c.Pipeline.Workers = -1 }, ErrInvalidWorkers},
		{"bad log level", func(c *Config) { c.Pipeline.Logging.Level = "loud" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate expected error but got nil")
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	yaml := `
pipeline:
  input_dir: data/interim/csv
  output_path: data/processed/events.csv
  workers: 8
  logging:
    level: debug
overrides:
  dates: overrides/dates.json
  participants: overrides/participants.json
cache:
  store: sqlite
  path: .cache/unify.db
filters:
  earliest: "2010-01-01"
  latest: "2023-01-01"
  city_floors:
    Wiesbaden: "2021-04-01"
cities:
  - name: Berlin
    region: Berlin
    capital: true
  - name: Wiesbaden
    region: Hessen
    capital: true
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Pipeline.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Pipeline.Workers)
	}

	if cfg.Cache.Store != "sqlite" || cfg.Cache.Path != ".cache/unify.db" {
		t.Errorf("cache config = %+v, want sqlite store", cfg.Cache)
	}

	if len(cfg.Cities) != 2 {
		t.Errorf("Cities = %d, want 2", len(cfg.Cities))
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadConfig expected error for missing file")
	}
}

func TestValidate_SetsCapitalFromRegionTable(t *testing.T) {
	cfg := validConfig()
	cfg.Cities = []CityConfig{
		{Name: "Wiesbaden", Region: "Hessen"},
		{Name: "Köln", Region: "Nordrhein-Westfalen"},
	}
	cfg.Filters.CityFloors = nil

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned unexpected error: %v", err)
	}

	if !cfg.Cities[0].Capital {
		t.Error("Wiesbaden not flagged as capital of Hessen")
	}

	if cfg.Cities[1].Capital {
		t.Error("Köln flagged as capital of Nordrhein-Westfalen")
	}
}

func TestIsCapital(t *testing.T) {
	tests := []struct {
		city   string
		region string
		want   bool
	}{
		{"Berlin", "Berlin", true},
		{"Wiesbaden", "Hessen", true},
		{"Köln", "Nordrhein-Westfalen", false},
		{"München", "Bayern", true},
	}

	for _, tt := range tests {
		if got := IsCapital(tt.city, tt.region); got != tt.want {
			t.Errorf("IsCapital(%s, %s) = %v, want %v", tt.city, tt.region, got, tt.want)
		}
	}
}
