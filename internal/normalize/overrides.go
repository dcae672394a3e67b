// Package normalize converts free-text dates and participant counts from the
// aggregated raw table into typed values.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Override errors.
var (
	ErrMissingOverrideFile = errors.New("override file does not exist")
	ErrInvalidOverrideDate = errors.New("override value is not a valid date")
)

// Overrides holds the human-curated correction tables, keyed by the exact
// original free text the parser could not resolve. The tables are read once
// at pipeline start and never written by the pipeline itself.
type Overrides struct {
	Dates  map[string]time.Time
	Counts map[string]float64
}

// LoadOverrides reads both override files. A missing file is fatal: the
// correction mechanism is load-bearing for data completeness, so its absence
// must not be masked by an empty table.
func LoadOverrides(datePath, countPath string) (*Overrides, error) {
	rawDates := map[string]string{}
	if err := readOverrideFile(datePath, &rawDates); err != nil {
		return nil, err
	}

	dates := make(map[string]time.Time, len(rawDates))

	for text, value := range rawDates {
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q -> %q in %s", ErrInvalidOverrideDate, text, value, datePath)
		}

		dates[text] = t
	}

	counts := map[string]float64{}
	if err := readOverrideFile(countPath, &counts); err != nil {
		return nil, err
	}

	return &Overrides{Dates: dates, Counts: counts}, nil
}

func readOverrideFile(path string, into any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingOverrideFile, path)
		}

		return fmt.Errorf("failed to read override file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse override file %s: %w", path, err)
	}

	return nil
}
