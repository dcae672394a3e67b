// Package csvdir reads per-city directories of CSV exports that are already
// mapped to the common column names. Source-specific readers that do the
// mapping live outside this module; csvdir only covers their output shape.
package csvdir

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"protestunify/internal/aggregate"
	"protestunify/internal/config"
	"protestunify/internal/models"
)

// Adapter builds an aggregate.Adapter reading every CSV file under
// dir/<city>/ in file-name order. City, region and capital flag come from
// configuration, matching the invariant that adapters always set them.
func Adapter(dir string, city config.CityConfig) aggregate.Adapter {
	return aggregate.Adapter{
		City: city.Name,
		Read: func() ([]models.RawEventRecord, error) {
			return readCity(filepath.Join(dir, city.Name), city)
		},
	}
}

func readCity(dir string, city config.CityConfig) ([]models.RawEventRecord, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("no CSV files under %s", dir)
	}

	sort.Strings(matches)

	var rows []models.RawEventRecord

	for _, path := range matches {
		fileRows, err := readFile(path, city)
		if err != nil {
			return nil, err
		}

		rows = append(rows, fileRows...)
	}

	return rows, nil
}

func readFile(path string, city config.CityConfig) ([]models.RawEventRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)

	delim, err := sniffDelimiter(br)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(records) < 2 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	cell := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}

		return strings.TrimSpace(record[idx])
	}

	rows := make([]models.RawEventRecord, 0, len(records)-1)

	for _, record := range records[1:] {
		rows = append(rows, models.RawEventRecord{
			City:                   city.Name,
			Region:                 city.Region,
			IsRegionalCapital:      city.Capital,
			EventDate:              cell(record, "event_date"),
			Topic:                  cell(record, "topic"),
			Location:               cell(record, "location"),
			Organizer:              cell(record, "organizer"),
			ParticipantsRegistered: cell(record, "participants_registered"),
			ParticipantsActual:     cell(record, "participants_actual"),
		})
	}

	return rows, nil
}

// sniffDelimiter peeks at the header line. Tab wins over semicolon wins over
// comma, matching how the source exports actually mix them. A header with
// none of the three is a single-column file, which parses identically under
// any delimiter; comma is used.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	peek, err := br.Peek(4096)
	if err != nil && len(peek) == 0 {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	line := string(peek)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	switch {
	case strings.Contains(line, "\t"):
		return '\t', nil
	case strings.Contains(line, ";"):
		return ';', nil
	default:
		return ',', nil
	}
}
