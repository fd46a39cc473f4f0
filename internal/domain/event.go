package domain

import "time"

// Channel identifies the communication medium an event travelled over.
type Channel string

const (
	ChannelSMS   Channel = "SMS"
	ChannelCall  Channel = "CALL"
	ChannelEmail Channel = "EMAIL"
)

// Direction describes an event relative to the inferred user identity.
type Direction string

const (
	DirectionOutgoing   Direction = "OUTGOING"
	DirectionIncoming   Direction = "INCOMING"
	DirectionThirdParty Direction = "THIRD_PARTY"
)

// Tag is a forensic category label attached to an event by the classifier.
type Tag string

const (
	TagSuspicious    Tag = "SUSPICIOUS"
	TagFinancial     Tag = "FINANCIAL"
	TagUrgent        Tag = "URGENT"
	TagInternational Tag = "INTERNATIONAL"
	TagExtendedComm  Tag = "EXTENDED_COMM"
	TagSpam          Tag = "SPAM"
	TagRoutine       Tag = "ROUTINE"
)

// TagRank returns the display priority of a tag. Lower is more severe and
// matches the order the classifier evaluates rules in.
func TagRank(t Tag) int {
	switch t {
	case TagSuspicious:
		return 0
	case TagFinancial:
		return 1
	case TagUrgent:
		return 2
	case TagInternational:
		return 3
	case TagExtendedComm:
		return 4
	case TagSpam:
		return 5
	case TagRoutine:
		return 6
	default:
		return 7
	}
}

// Event represents one normalized communication record.
type Event struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Channel         Channel   `json:"channel"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	ContentSummary  string    `json:"content_summary"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	Tags            []Tag     `json:"tags"`
	Direction       Direction `json:"direction,omitempty"`

	// SourceIndex is the position of the record in ingestion order and
	// breaks timestamp ties when the timeline is built.
	SourceIndex int `json:"-"`
}

// HasTag reports whether the event carries the given tag.
func (e *Event) HasTag(t Tag) bool {
	for _, tag := range e.Tags {
		if tag == t {
			return true
		}
	}
	return false
}

// Identities returns the non-empty origin/destination identities of the
// event. An identity on both sides is returned once.
func (e *Event) Identities() []string {
	ids := make([]string, 0, 2)
	if e.Origin != "" {
		ids = append(ids, e.Origin)
	}
	if e.Destination != "" && e.Destination != e.Origin {
		ids = append(ids, e.Destination)
	}
	return ids
}

// Counterparty returns the identity on the other side of the event from the
// given user identity. Falls back to origin, then destination, when the user
// is on neither side.
func (e *Event) Counterparty(user string) string {
	if e.Origin == user && e.Destination != "" {
		return e.Destination
	}
	if e.Destination == user && e.Origin != "" {
		return e.Origin
	}
	if e.Origin != "" {
		return e.Origin
	}
	return e.Destination
}
