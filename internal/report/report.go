// Package report renders the end-of-run summary and the per-city data
// availability overview as aligned text tables.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"protestunify/internal/models"
)

// Summary renders the run summary: row accounting, duplicate signals and the
// unresolved residue the operator should fold into the override files.
func Summary(s models.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s\n\n", s.RunID)

	rows := [][]string{
		{"rows in", fmt.Sprintf("%d", s.RowsIn)},
		{"dropped: cancelled/summary", fmt.Sprintf("%d", s.DroppedCancelled)},
		{"dropped: unresolved date", fmt.Sprintf("%d", s.DroppedUnresolved)},
		{"dropped: below city floor", fmt.Sprintf("%d", s.DroppedBelowFloor)},
		{"dropped: outside window", fmt.Sprintf("%d", s.DroppedOutsideRange)},
		{"exact duplicates (kept)", fmt.Sprintf("%d", s.ExactDuplicates)},
		{"near duplicates (kept)", fmt.Sprintf("%d", s.NearDuplicates)},
		{"unparsable counts (kept)", fmt.Sprintf("%d", s.UnresolvedCountRows())},
		{"rows out", fmt.Sprintf("%d", s.RowsOut)},
	}

	b.WriteString(renderTable([]string{"stage", "rows"}, rows))

	if len(s.UnresolvedDates) > 0 {
		b.WriteString("\nUnresolved dates (add to the date override file):\n")

		for _, text := range s.UnresolvedDates {
			fmt.Fprintf(&b, "  %q\n", text)
		}
	}

	if len(s.UnresolvedCounts) > 0 {
		b.WriteString("\nUnresolved participant counts (add to the participant override file):\n")

		for _, text := range s.UnresolvedCounts {
			fmt.Fprintf(&b, "  %q\n", text)
		}
	}

	return b.String()
}

// cityStats accumulates per-city figures for the overview.
type cityStats struct {
	region  string
	city    string
	capital bool
	years   map[int]int

	registeredSum float64
	registeredN   int
	actualSum     float64
	actualN       int
}

// Overview renders event counts per city and year plus flags for whether the
// source carries registered counts, observed counts, and covers the regional
// capital.
func Overview(rows []models.NormalizedEventRecord) string {
	stats := make(map[string]*cityStats)
	yearSet := make(map[int]bool)

	for _, row := range rows {
		key := row.Region + "\x00" + row.City

		st, ok := stats[key]
		if !ok {
			st = &cityStats{
				region:  row.Region,
				city:    row.City,
				capital: row.IsRegionalCapital,
				years:   make(map[int]int),
			}
			stats[key] = st
		}

		year := row.EventDate.Year()
		st.years[year]++
		yearSet[year] = true

		if v := row.ParticipantsRegistered.Value; v != nil {
			st.registeredSum += *v
			st.registeredN++
		}

		if v := row.ParticipantsActual.Value; v != nil {
			st.actualSum += *v
			st.actualN++
		}
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}

	sort.Ints(years)

	ordered := make([]*cityStats, 0, len(stats))
	for _, st := range stats {
		ordered = append(ordered, st)
	}

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].region != ordered[j].region {
			return ordered[i].region < ordered[j].region
		}

		return ordered[i].city < ordered[j].city
	})

	headers := []string{"region", "city", "cap?", "#reg?", "#obs?"}
	for _, y := range years {
		headers = append(headers, fmt.Sprintf("%02d", y%100))
	}

	var table [][]string

	for _, st := range ordered {
		row := []string{
			st.region,
			st.city,
			check(st.capital),
			check(st.registeredN > 0 && st.registeredSum/float64(st.registeredN) > 10),
			check(st.actualN > 0 && st.actualSum/float64(st.actualN) > 10),
		}

		for _, y := range years {
			if n := st.years[y]; n > 0 {
				row = append(row, fmt.Sprintf("%d", n))
			} else {
				row = append(row, "")
			}
		}

		table = append(table, row)
	}

	return renderTable(headers, table)
}

func check(ok bool) string {
	if ok {
		return "✓"
	}

	return ""
}

// renderTable pads every column to its widest cell. Widths are measured with
// runewidth so umlauts and check marks align.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && runewidth.StringWidth(cell) > widths[i] {
				widths[i] = runewidth.StringWidth(cell)
			}
		}
	}

	var b strings.Builder

	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}

			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
		}

		b.WriteString("\n")
	}

	writeRow(headers)

	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}

	writeRow(sep)

	for _, row := range rows {
		writeRow(row)
	}

	return b.String()
}
