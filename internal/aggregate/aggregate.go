// Package aggregate concatenates source adapter outputs into one raw table.
package aggregate

import (
	"errors"
	"fmt"

	"protestunify/internal/models"
)

// ErrNoAdapters is returned when Collect is called with nothing to read.
var ErrNoAdapters = errors.New("at least one adapter is required")

// Adapter produces one city's rows mapped to the common field names.
// Adapters own all source-specific I/O; the pipeline never looks behind them.
type Adapter struct {
	City string
	Read func() ([]models.RawEventRecord, error)
}

// Collect invokes every adapter exactly once and concatenates the results,
// preserving adapter order and each adapter's own row order. The first
// adapter error aborts the run: adapters are independent and rerunnable, so
// there is no partial-failure mode.
func Collect(adapters []Adapter) ([]models.RawEventRecord, error) {
	if len(adapters) == 0 {
		return nil, ErrNoAdapters
	}

	var rows []models.RawEventRecord

	for _, a := range adapters {
		out, err := a.Read()
		if err != nil {
			return nil, fmt.Errorf("adapter %s failed: %w", a.City, err)
		}

		rows = append(rows, out...)
	}

	return rows, nil
}
