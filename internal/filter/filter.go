// Package filter applies validity windows and duplicate detection to the
// normalized table.
package filter

import (
	"fmt"
	"sort"
	"time"

	"protestunify/internal/models"
)

// Config holds the filter stage configuration. CityFloors maps a city to the
// earliest date for which its source carries trustworthy structured detail;
// Latest is exclusive.
type Config struct {
	CityFloors map[string]time.Time
	Earliest   time.Time
	Latest     time.Time
}

// Result is the filtered, sorted table plus data-quality counters.
// Duplicates are counted, never removed: legitimate repeat events share
// city, date and topic, so deletion would destroy real data.
type Result struct {
	Rows                []models.NormalizedEventRecord
	DroppedBelowFloor   int
	DroppedOutsideRange int
	ExactDuplicates     int
	NearDuplicates      int
}

// Apply drops rows below their city's validity floor or outside the global
// window, counts duplicates, and stable-sorts by (region, city, event_date)
// for deterministic, reviewable output.
func Apply(rows []models.NormalizedEventRecord, cfg Config) Result {
	var res Result

	res.Rows = make([]models.NormalizedEventRecord, 0, len(rows))

	exactSeen := make(map[string]bool)
	nearSeen := make(map[string]bool)

	for _, row := range rows {
		if floor, ok := cfg.CityFloors[row.City]; ok && row.EventDate.Before(floor) {
			res.DroppedBelowFloor++

			continue
		}

		if row.EventDate.Before(cfg.Earliest) || !row.EventDate.Before(cfg.Latest) {
			res.DroppedOutsideRange++

			continue
		}

		exact := exactKey(row)
		if exactSeen[exact] {
			res.ExactDuplicates++
		}

		exactSeen[exact] = true

		near := nearKey(row)
		if nearSeen[near] {
			res.NearDuplicates++
		}

		nearSeen[near] = true

		res.Rows = append(res.Rows, row)
	}

	sort.SliceStable(res.Rows, func(i, j int) bool {
		a, b := res.Rows[i], res.Rows[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}

		if a.City != b.City {
			return a.City < b.City
		}

		return a.EventDate.Before(b.EventDate)
	})

	return res
}

func exactKey(r models.NormalizedEventRecord) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%s\x00%s\x00%s\x00%s",
		r.Region, r.City, r.EventDate.Format("2006-01-02"),
		r.Topic, r.Location, r.Organizer,
		countKey(r.ParticipantsRegistered), countKey(r.ParticipantsActual))
}

func nearKey(r models.NormalizedEventRecord) string {
	return fmt.Sprintf("%s\x00%s\x00%s", r.City, r.EventDate.Format("2006-01-02"), r.Topic)
}

func countKey(c models.ParticipantCount) string {
	if c.Value == nil {
		return string(c.Class)
	}

	return fmt.Sprintf("%s:%g", c.Class, *c.Value)
}
