package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"protestunify/internal/models"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.csv")

	rows := []models.NormalizedEventRecord{
		{
			City:                   "Berlin",
			Region:                 "Berlin",
			IsRegionalCapital:      true,
			EventDate:              time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			Topic:                  "Klima",
			Organizer:              "FFF",
			ParticipantsRegistered: models.Number(175, models.ClassSpan, "150-200"),
			ParticipantsActual:     models.ParticipantCount{Class: models.ClassUnknown, Raw: "-"},
		},
		{
			City:                   "Köln",
			Region:                 "Nordrhein-Westfalen",
			EventDate:              time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC),
			Topic:                  "Miete",
			ParticipantsRegistered: models.ParticipantCount{Class: models.ClassUnparsable, Raw: "einige hundert"},
			ParticipantsActual:     models.Number(300, models.ClassNumber, "300"),
		},
	}

	if err := WriteCSV(path, rows); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("output has %d records, want header + 2 rows", len(records))
	}

	if got := strings.Join(records[0], ","); got != strings.Join(Columns, ",") {
		t.Errorf("header = %s, want canonical column order", got)
	}

	want := [][]string{
		{"Berlin", "Berlin", "true", "2020-01-01", "FFF", "Klima", "175.0", ""},
		{"Nordrhein-Westfalen", "Köln", "false", "2021-06-15", "", "Miete", "unparsable", "300.0"},
	}

	for i, w := range want {
		for j := range w {
			if records[i+1][j] != w[j] {
				t.Errorf("row %d col %s = %q, want %q", i, Columns[j], records[i+1][j], w[j])
			}
		}
	}
}

func TestWriteCSV_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")

	if err := WriteCSV(path, nil); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	if !strings.HasPrefix(string(data), "region,city,") {
		t.Errorf("empty table output = %q, want header only", string(data))
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		name string
		c    models.ParticipantCount
		want string
	}{
		{"integral number", models.Number(150, models.ClassNumber, "150"), "150.0"},
		{"span midpoint", models.Number(175, models.ClassSpan, "150-200"), "175.0"},
		{"fractional", models.Number(12.5, models.ClassNumber, "12.5"), "12.5"},
		{"unknown", models.ParticipantCount{Class: models.ClassUnknown, Raw: "-"}, ""},
		{"unparsable", models.ParticipantCount{Class: models.ClassUnparsable, Raw: "viele"}, "unparsable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCount(tt.c); got != tt.want {
				t.Errorf("formatCount = %q, want %q", got, tt.want)
			}
		})
	}
}
