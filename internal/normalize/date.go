package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"

	"protestunify/internal/models"
)

// RewriteRule is one ordered rewrite applied to date text before parsing.
// Rules are kept as a tagged list so new source quirks can be appended and
// tested individually without disturbing the existing order.
type RewriteRule struct {
	Tag     string
	Pattern *regexp.Regexp
	Replace string
}

// separator alternatives seen between range bounds in the source exports.
const rangeSep = `\s*(?:-|–|—|bis)\s*`

// rangeRules collapses date-range expressions to their first date.
// Registrations describe a beginning, so a reported range starts there.
// Order matters: full ranges first, then ranges whose first component
// borrows month or year from the second.
var rangeRules = []RewriteRule{
	{
		Tag:     "range-full",
		Pattern: regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.\d{4})` + rangeSep + `\d{1,2}\.\d{1,2}\.\d{4}`),
		Replace: "${1}",
	},
	{
		Tag:     "range-shared-year",
		Pattern: regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.)` + rangeSep + `\d{1,2}\.\d{1,2}\.(\d{2,4})`),
		Replace: "${1}${2}",
	},
	{
		Tag:     "range-day-only",
		Pattern: regexp.MustCompile(`(\d{1,2})\.` + rangeSep + `\d{1,2}\.(\d{1,2}\.\d{2,4})`),
		Replace: "${1}.${2}",
	},
}

// cancelMarkers identify rows that are non-events: cancelled registrations
// and total/summary rows. These are discarded, never deferred to overrides.
var cancelMarkers = []string{
	"abgesagt",
	"abgemeldet",
	"storniert",
	"entfällt",
	"fällt aus",
	"cancelled",
	"canceled",
	"gesamt",
	"summe",
}

// dateLayouts is tried before the free-text fallback: the two canonical
// machine formats, then day-first German layouts. Two-digit years resolve
// via the parser's standard century pivot.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2.1.2006",
	"2.1.06",
}

// DatedRow is a raw record whose event date has been resolved.
type DatedRow struct {
	Raw     models.RawEventRecord `json:"raw"`
	Date    time.Time             `json:"date"`
	RawDate string                `json:"rawDate"`
}

// DateOutcome is the full result of the date stage. It carries the residue
// texts so a cached outcome reproduces the end-of-run summary exactly.
type DateOutcome struct {
	Rows              []DatedRow     `json:"rows"`
	DroppedCancelled  int            `json:"droppedCancelled"`
	DroppedUnresolved int            `json:"droppedUnresolved"`
	Unresolved        []string       `json:"unresolved"`
	RuleHits          map[string]int `json:"ruleHits"`
}

// DateNormalizer converts the event_date column into calendar dates.
type DateNormalizer struct {
	rules   []RewriteRule
	workers int
}

// NewDateNormalizer creates a date normalizer. workers bounds the pool used
// for per-row text cleanup; values below one run sequentially.
func NewDateNormalizer(workers int) *DateNormalizer {
	return &DateNormalizer{rules: rangeRules, workers: workers}
}

// cleanedDate is the per-row output of the parallel cleanup phase.
type cleanedDate struct {
	text      string
	cancelled bool
	ruleTags  []string
}

// Normalize resolves every row's date. Cancelled and summary rows are
// dropped outright; rows whose text survives all heuristics unparsed are
// looked up in the override table by original text and dropped (and counted)
// when no entry exists.
func (n *DateNormalizer) Normalize(rows []models.RawEventRecord, ov *Overrides) DateOutcome {
	out := DateOutcome{RuleHits: make(map[string]int)}

	cleaned := parallelMap(n.workers, rows, n.cleanRow)

	seenResidue := make(map[string]bool)

	for i, row := range rows {
		c := cleaned[i]
		if c.cancelled {
			out.DroppedCancelled++

			continue
		}

		for _, tag := range c.ruleTags {
			out.RuleHits[tag]++
		}

		date, ok := parseDate(c.text)
		if !ok {
			date, ok = ov.Dates[row.EventDate]
		}

		if !ok {
			out.DroppedUnresolved++

			if !seenResidue[row.EventDate] {
				seenResidue[row.EventDate] = true
				out.Unresolved = append(out.Unresolved, row.EventDate)
			}

			continue
		}

		out.Rows = append(out.Rows, DatedRow{
			Raw:     row,
			Date:    date,
			RawDate: row.EventDate,
		})
	}

	return out
}

// cleanRow normalizes one row's date text: NFC fold, line breaks to spaces,
// cancellation check, then the ordered range rewrites. Pure function, safe
// to run in parallel.
func (n *DateNormalizer) cleanRow(row models.RawEventRecord) cleanedDate {
	text := norm.NFC.String(row.EventDate)
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	text = strings.Join(strings.Fields(text), " ")

	lower := strings.ToLower(text)
	for _, marker := range cancelMarkers {
		if strings.Contains(lower, marker) {
			return cleanedDate{cancelled: true}
		}
	}

	var tags []string

	for _, rule := range n.rules {
		rewritten := rule.Pattern.ReplaceAllString(text, rule.Replace)
		if rewritten != text {
			text = rewritten
			tags = append(tags, rule.Tag)
		}
	}

	return cleanedDate{text: strings.TrimSpace(text), ruleTags: tags}
}

// parseDate runs the layout cascade, then the strict day-first free-text
// parser. Values that do not confidently match stay unparsed; guessing is
// what the override table is for.
func parseDate(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return toDay(t), true
		}
	}

	t, err := dateparse.ParseStrict(text, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}

	return toDay(t), true
}

// toDay truncates to the daily grain of the source material.
func toDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
