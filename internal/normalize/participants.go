package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"protestunify/internal/models"
)

// Cleanup patterns for participant-count text. These are intrinsic to the
// parser, not configuration: they encode how German registration offices
// write counts into spreadsheet cells.
var (
	// spreadsheet float artifacts: "150.0" for 150
	reFloatArtifact = regexp.MustCompile(`^(\d+)\.0$`)
	// thousands separators: "1.500", "1.234.567"
	reThousands = regexp.MustCompile(`(\d)\.(\d{3})\b`)
	// qualifier prefixes: "ca. 150", "max 200", "bis zu 500", "< 100", "+50"
	reQualifierPrefix = regexp.MustCompile(`^(?:circa|ca|maximal|max|mindestens|mind|bis zu|bis|unter|plus)\b[\s.:]*|^[<+~][\s.:]*`)
	// qualifier suffixes: "150+", "200 -"
	reQualifierSuffix = regexp.MustCompile(`[\s.+\-]+$`)
	// trailing unit nouns: "150 personen", "20 traktoren", "150-200 personen"
	reUnitSuffix = regexp.MustCompile(`\s*(?:personen|person|teilnehmerinnen|teilnehmern|teilnehmer|teilnehmende|tn|pers|leute|menschen|demonstranten|fahrzeugen|fahrzeuge|autos|auto|pkws|pkw|lkws|lkw|traktoren|schlepper|fahrräder|räder|radfahrer|motorräder|busse)\.?$`)
	// updated count: "500, neu: 800" — the update wins
	reUpdated = regexp.MustCompile(`neu:?\s*(\d+)`)
	// span of two bounds: "150-200", "150 – 200", "100/200", "100 bis 200"
	reSpan = regexp.MustCompile(`^(\d+)\s*(?:-|–|/|bis)\s*(\d+)$`)
	// bare integer
	reNumber = regexp.MustCompile(`^\d+$`)
	// dash runs and question marks standing in for "no figure"
	reEmptyish = regexp.MustCompile(`^[-–—\s?.]*$`)
)

// unkPhrases is the closed set of "unknown / not specified" phrases.
var unkPhrases = map[string]bool{
	"unbekannt":           true,
	"unbek":               true,
	"nicht bekannt":       true,
	"nicht angegeben":     true,
	"keine angabe":        true,
	"keine angaben":       true,
	"k.a":                 true,
	"k. a":                true,
	"ka":                  true,
	"n/a":                 true,
	"offen":               true,
	"unklar":              true,
	"div":                 true,
	"divers":              true,
	"siehe veranstaltung": true,
}

// ParticipantOutcome is the result of the participant-count stage.
type ParticipantOutcome struct {
	Rows       []models.NormalizedEventRecord `json:"rows"`
	Unresolved []string                       `json:"unresolved"`
}

// ParticipantNormalizer converts free-text participant counts into typed
// values. The identical algorithm runs independently over the registered and
// the actual field of every row.
type ParticipantNormalizer struct{}

// NewParticipantNormalizer creates a participant-count normalizer.
func NewParticipantNormalizer() *ParticipantNormalizer {
	return &ParticipantNormalizer{}
}

// Apply resolves both participant fields of every dated row. Rows with an
// unresolvable count are kept — a missing count is less disqualifying than a
// missing date — with the field marked UNPARSABLE and the original text
// collected for the override workflow.
func (n *ParticipantNormalizer) Apply(rows []DatedRow, ov *Overrides) ParticipantOutcome {
	out := ParticipantOutcome{Rows: make([]models.NormalizedEventRecord, 0, len(rows))}

	seenResidue := make(map[string]bool)

	collect := func(c models.ParticipantCount) {
		if c.Class == models.ClassUnparsable && !seenResidue[c.Raw] {
			seenResidue[c.Raw] = true
			out.Unresolved = append(out.Unresolved, c.Raw)
		}
	}

	for _, row := range rows {
		registered := n.Resolve(row.Raw.ParticipantsRegistered, ov)
		actual := n.Resolve(row.Raw.ParticipantsActual, ov)
		collect(registered)
		collect(actual)

		out.Rows = append(out.Rows, models.NormalizedEventRecord{
			City:                   row.Raw.City,
			Region:                 row.Raw.Region,
			IsRegionalCapital:      row.Raw.IsRegionalCapital,
			EventDate:              row.Date,
			RawDate:                row.RawDate,
			Topic:                  row.Raw.Topic,
			Location:               row.Raw.Location,
			Organizer:              row.Raw.Organizer,
			ParticipantsRegistered: registered,
			ParticipantsActual:     actual,
		})
	}

	return out
}

// Resolve classifies one count text and, where possible, extracts its value.
// Pure numbers pass through unchanged, so feeding already-normalized data
// back in is a no-op.
func (n *ParticipantNormalizer) Resolve(raw string, ov *Overrides) models.ParticipantCount {
	text := strings.ToLower(strings.TrimSpace(norm.NFC.String(raw)))

	// spreadsheet artifacts and separators first, qualifiers second
	text = reFloatArtifact.ReplaceAllString(text, "${1}")

	for {
		next := reThousands.ReplaceAllString(text, "${1}${2}")
		if next == text {
			break
		}

		text = next
	}

	for {
		next := reQualifierPrefix.ReplaceAllString(text, "")
		if next == text {
			break
		}

		text = next
	}

	if !reEmptyish.MatchString(text) {
		text = reQualifierSuffix.ReplaceAllString(text, "")
	}

	text = reUnitSuffix.ReplaceAllString(text, "")

	if m := reUpdated.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	if m := reSpan.FindStringSubmatch(text); m != nil {
		low, _ := strconv.ParseFloat(m[1], 64)
		high, _ := strconv.ParseFloat(m[2], 64)

		// a range is a plausible-count interval, resolved to its midpoint
		return models.Number(math.Floor((low+high)/2), models.ClassSpan, raw)
	}

	if reNumber.MatchString(text) {
		v, err := strconv.ParseFloat(text, 64)
		if err == nil {
			return models.Number(v, models.ClassNumber, raw)
		}
	}

	if unkPhrases[strings.TrimSuffix(text, ".")] || reEmptyish.MatchString(text) {
		return models.ParticipantCount{Class: models.ClassUnknown, Raw: raw}
	}

	if v, ok := ov.Counts[raw]; ok {
		return models.Number(v, models.ClassNumber, raw)
	}

	return models.ParticipantCount{Class: models.ClassUnparsable, Raw: raw}
}
