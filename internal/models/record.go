// Package models defines the record types shared by the unification pipeline.
package models

import "time"

// RawEventRecord is one protest registration as delivered by a source
// adapter: common field names, but dates and participant counts are still
// free text. City and Region are always populated by the adapter; every
// other field may be empty or malformed.
type RawEventRecord struct {
	City                   string `json:"city"`
	Region                 string `json:"region"`
	IsRegionalCapital      bool   `json:"isRegionalCapital"`
	EventDate              string `json:"eventDate"`
	Topic                  string `json:"topic,omitempty"`
	Location               string `json:"location,omitempty"`
	Organizer              string `json:"organizer,omitempty"`
	ParticipantsRegistered string `json:"participantsRegistered,omitempty"`
	ParticipantsActual     string `json:"participantsActual,omitempty"`
}

// CountClass tags how a participant-count text was resolved.
type CountClass string

// Participant-count classifications.
const (
	// ClassNumber means the text was (or reduced to) a bare integer.
	ClassNumber CountClass = "NUMBER"
	// ClassSpan means the text was a low-high range, resolved to its midpoint.
	ClassSpan CountClass = "SPAN"
	// ClassUnknown means the source explicitly carries no count.
	ClassUnknown CountClass = "UNK"
	// ClassUnparsable means no heuristic and no override matched.
	ClassUnparsable CountClass = "UNPARSABLE"
)

// ParticipantCount is a resolved participant figure. Value is nil for
// ClassUnknown and ClassUnparsable rows; Raw keeps the original text so
// unresolved values stay discoverable for the override workflow.
type ParticipantCount struct {
	Value *float64   `json:"value"`
	Class CountClass `json:"class"`
	Raw   string     `json:"raw,omitempty"`
}

// Number builds a resolved count.
func Number(v float64, class CountClass, raw string) ParticipantCount {
	return ParticipantCount{Value: &v, Class: class, Raw: raw}
}

// NormalizedEventRecord is the pipeline output row. EventDate is a calendar
// date at midnight UTC; the source grain is daily.
type NormalizedEventRecord struct {
	City                   string           `json:"city"`
	Region                 string           `json:"region"`
	IsRegionalCapital      bool             `json:"isRegionalCapital"`
	EventDate              time.Time        `json:"eventDate"`
	RawDate                string           `json:"rawDate,omitempty"`
	Topic                  string           `json:"topic,omitempty"`
	Location               string           `json:"location,omitempty"`
	Organizer              string           `json:"organizer,omitempty"`
	ParticipantsRegistered ParticipantCount `json:"participantsRegistered"`
	ParticipantsActual     ParticipantCount `json:"participantsActual"`
}
