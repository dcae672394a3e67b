// Package export writes the canonical table as a delimited flat file.
package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"protestunify/internal/models"
)

// Columns is the output column order.
var Columns = []string{
	"region",
	"city",
	"is_regional_capital",
	"event_date",
	"organizer",
	"topic",
	"participants_registered",
	"participants_actual",
}

// WriteCSV writes rows in the canonical column order. Dates are ISO-8601,
// unknown counts are empty cells, and unparsable counts export the literal
// marker so parser gaps stay visible downstream.
func WriteCSV(path string, rows []models.NormalizedEventRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Region,
			row.City,
			strconv.FormatBool(row.IsRegionalCapital),
			row.EventDate.Format("2006-01-02"),
			row.Organizer,
			row.Topic,
			formatCount(row.ParticipantsRegistered),
			formatCount(row.ParticipantsActual),
		}

		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return nil
}

func formatCount(c models.ParticipantCount) string {
	if c.Class == models.ClassUnparsable {
		return "unparsable"
	}

	if c.Value == nil {
		return ""
	}

	v := *c.Value
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}
