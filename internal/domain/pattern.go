package domain

import "time"

// PatternFinding represents a detected cross-channel communication sequence
// for one contact within a bounded time window.
type PatternFinding struct {
	Contact         string    `json:"contact"`
	ChannelSequence []Channel `json:"channel_sequence"`
	EventIDs        []string  `json:"event_ids"`
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`

	// Severity grows with the number of distinct channels involved and
	// with the presence of a SUSPICIOUS-tagged event in the sequence.
	Severity   int  `json:"severity"`
	Suspicious bool `json:"suspicious"`
}
