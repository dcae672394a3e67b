package normalize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	datePath := writeFile(t, dir, "dates.json", `{"Pfingsten": "2021-05-23"}`)
	countPath := writeFile(t, dir, "counts.json", `{"einige hundert": 300}`)

	ov, err := LoadOverrides(datePath, countPath)
	if err != nil {
		t.Fatalf("LoadOverrides returned error: %v", err)
	}

	want := time.Date(2021, 5, 23, 0, 0, 0, 0, time.UTC)
	if got := ov.Dates["Pfingsten"]; !got.Equal(want) {
		t.Errorf("date override = %s, want %s", got, want)
	}

	if got := ov.Counts["einige hundert"]; got != 300 {
		t.Errorf("count override = %g, want 300", got)
	}
}

func TestLoadOverrides_MissingFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	countPath := writeFile(t, dir, "counts.json", `{}`)

	_, err := LoadOverrides(filepath.Join(dir, "absent.json"), countPath)
	if err == nil {
		t.Fatal("LoadOverrides expected error for missing date file")
	}

	if !strings.Contains(err.Error(), "override file does not exist") {
		t.Errorf("error = %v, want missing-file error", err)
	}
}

func TestLoadOverrides_BadDateValue(t *testing.T) {
	dir := t.TempDir()
	datePath := writeFile(t, dir, "dates.json", `{"Pfingsten": "Whitsun"}`)
	countPath := writeFile(t, dir, "counts.json", `{}`)

	_, err := LoadOverrides(datePath, countPath)
	if err == nil {
		t.Fatal("LoadOverrides expected error for unparsable override date")
	}

	if !strings.Contains(err.Error(), "not a valid date") {
		t.Errorf("error = %v, want invalid-date error", err)
	}
}
