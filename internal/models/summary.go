package models

// RunSummary aggregates the recoverable conditions of one pipeline run.
// Unresolved values are counts plus the distinct original texts, so the
// operator can copy them into the override files between runs.
type RunSummary struct {
	RunID string `json:"runId"`

	RowsIn  int `json:"rowsIn"`
	RowsOut int `json:"rowsOut"`

	DroppedCancelled    int `json:"droppedCancelled"`
	DroppedUnresolved   int `json:"droppedUnresolvedDates"`
	DroppedBelowFloor   int `json:"droppedBelowFloor"`
	DroppedOutsideRange int `json:"droppedOutsideRange"`

	UnresolvedDates  []string `json:"unresolvedDates,omitempty"`
	UnresolvedCounts []string `json:"unresolvedCounts,omitempty"`

	ExactDuplicates int `json:"exactDuplicates"`
	NearDuplicates  int `json:"nearDuplicates"`

	DateCacheHit        bool `json:"dateCacheHit"`
	ParticipantCacheHit bool `json:"participantCacheHit"`
}

// UnresolvedCountRows is the number of rows kept with an UNPARSABLE
// participant field (rows are kept, unlike unresolved dates).
func (s *RunSummary) UnresolvedCountRows() int {
	return len(s.UnresolvedCounts)
}
