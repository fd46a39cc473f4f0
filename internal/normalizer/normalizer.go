// Package normalizer converts raw source records into domain events. Column
// names vary per export tool, so each logical field resolves through a
// ranked alias table; a record that cannot satisfy the minimum field set
// (timestamp plus at least one identity) fails with a SchemaError.
package normalizer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tracewell/comm-forensics-service/internal/domain"
	"github.com/tracewell/comm-forensics-service/internal/ingest"
)

// SchemaError reports a raw record that cannot be normalized. The record is
// skipped and tallied; the run continues.
type SchemaError struct {
	RecordIndex int
	Field       string
	Value       string
	Reason      string
}

func (e *SchemaError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("record %d: field %q: %s (value %q)", e.RecordIndex, e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("record %d: field %q: %s", e.RecordIndex, e.Field, e.Reason)
}

// eventNamespace seeds the UUIDv5 generated for records without an id
// column. Content-derived IDs keep re-runs byte-identical.
var eventNamespace = uuid.MustParse("7e0bd63e-8276-4a0b-9e2f-1f9f36cbb42a")

// Alias tables per logical field, in rank order. Matching is
// case-insensitive; an exact column-name match beats a substring match.
var (
	idAliases          = []string{"id", "event_id", "record_id"}
	timestampAliases   = []string{"timestamp", "date", "datetime", "time", "received", "sent"}
	originAliases      = []string{"from", "sender", "author", "origin"}
	destinationAliases = []string{"to", "recipient", "receiver", "destination"}
	contactAliases     = []string{"phone", "number", "contact", "address"}
	contentAliases     = []string{"message", "body", "content", "text"}
	subjectAliases     = []string{"subject", "title", "topic"}
	durationAliases    = []string{"duration", "seconds"}
	directionAliases   = []string{"direction", "type", "status"}
)

// CDR exports without a duration column carry per-period minute columns.
var cdrMinuteColumns = []string{"day mins", "eve mins", "night mins"}

// Normalizer converts raw records into events. It is stateless and pure:
// the same record always yields the same event.
type Normalizer struct{}

// New creates a new normalizer
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize produces an event from a raw record or fails with a SchemaError.
func (n *Normalizer) Normalize(rec ingest.RawRecord) (domain.Event, error) {
	fields := newFieldSet(rec.Fields)

	tsValue, ok := fields.resolve(timestampAliases)
	if !ok {
		return domain.Event{}, &SchemaError{
			RecordIndex: rec.Index,
			Field:       "timestamp",
			Reason:      "no column matched the timestamp aliases",
		}
	}
	timestamp, err := ParseTimestamp(tsValue)
	if err != nil {
		return domain.Event{}, &SchemaError{
			RecordIndex: rec.Index,
			Field:       "timestamp",
			Value:       tsValue,
			Reason:      "unparseable timestamp",
		}
	}

	origin, destination := n.resolveIdentities(rec.Channel, fields)
	if origin == "" && destination == "" {
		return domain.Event{}, &SchemaError{
			RecordIndex: rec.Index,
			Field:       "origin/destination",
			Reason:      "no column yielded an identity",
		}
	}

	content := n.resolveContent(rec.Channel, fields)

	duration := 0
	if rec.Channel == domain.ChannelCall {
		duration = n.resolveDuration(fields)
	}

	event := domain.Event{
		Timestamp:       timestamp,
		Channel:         rec.Channel,
		Origin:          origin,
		Destination:     destination,
		ContentSummary:  content,
		DurationSeconds: duration,
		SourceIndex:     rec.Index,
	}

	if id, ok := fields.resolve(idAliases); ok && id != "" {
		event.ID = id
	} else {
		event.ID = deterministicID(&event)
	}

	return event, nil
}

// resolveIdentities maps the direction-sensitive columns to origin and
// destination. SMS and call logs often carry a single contact column plus a
// direction flag; the contact lands on whichever side the direction implies.
// Call detail records list the remote party, treated as the caller.
func (n *Normalizer) resolveIdentities(channel domain.Channel, fields *fieldSet) (string, string) {
	origin, _ := fields.resolve(originAliases)
	destination, _ := fields.resolve(destinationAliases)
	origin = NormalizeIdentity(origin)
	destination = NormalizeIdentity(destination)

	if origin != "" || destination != "" {
		return origin, destination
	}

	contact, ok := fields.resolve(contactAliases)
	if !ok {
		return "", ""
	}
	contact = NormalizeIdentity(contact)
	if contact == "" {
		return "", ""
	}

	if direction, ok := fields.resolve(directionAliases); ok {
		lower := strings.ToLower(direction)
		switch {
		case strings.Contains(lower, "out") || strings.Contains(lower, "sent"):
			return "", contact
		case strings.Contains(lower, "in") || strings.Contains(lower, "recv") || strings.Contains(lower, "received"):
			return contact, ""
		}
	}
	return contact, ""
}

func (n *Normalizer) resolveContent(channel domain.Channel, fields *fieldSet) string {
	if channel == domain.ChannelEmail {
		subject, _ := fields.resolve(subjectAliases)
		body, _ := fields.resolve(contentAliases)
		switch {
		case subject != "" && body != "":
			return subject + " " + body
		case subject != "":
			return subject
		default:
			return body
		}
	}
	content, _ := fields.resolve(contentAliases)
	return content
}

func (n *Normalizer) resolveDuration(fields *fieldSet) int {
	if raw, ok := fields.resolve(durationAliases); ok {
		if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs >= 0 {
			return int(secs)
		}
	}

	// CDR fallback: sum the per-period minute columns.
	totalMins := 0.0
	found := false
	for _, col := range cdrMinuteColumns {
		if raw, ok := fields.lookupSubstring(col); ok {
			if mins, err := strconv.ParseFloat(raw, 64); err == nil {
				totalMins += mins
				found = true
			}
		}
	}
	if found {
		return int(totalMins * 60)
	}
	return 0
}

func deterministicID(e *domain.Event) string {
	data := fmt.Sprintf("%s|%d|%s|%s|%s|%d",
		e.Channel,
		e.Timestamp.Unix(),
		e.Origin,
		e.Destination,
		e.ContentSummary,
		e.SourceIndex,
	)
	return uuid.NewSHA1(eventNamespace, []byte(data)).String()
}

// fieldSet wraps a record's columns with case-insensitive, rank-ordered
// lookup. Column order is sorted once so resolution is deterministic.
type fieldSet struct {
	byLower map[string]string
	ordered []string
}

func newFieldSet(fields map[string]string) *fieldSet {
	fs := &fieldSet{byLower: make(map[string]string, len(fields))}
	for col, val := range fields {
		lower := strings.ToLower(strings.TrimSpace(col))
		if lower == "" {
			continue
		}
		fs.byLower[lower] = strings.TrimSpace(val)
		fs.ordered = append(fs.ordered, lower)
	}
	sort.Strings(fs.ordered)
	return fs
}

// resolve returns the value of the first alias that matches a column with a
// non-empty value. Exact matches across all aliases are preferred over
// substring matches.
func (fs *fieldSet) resolve(aliases []string) (string, bool) {
	for _, alias := range aliases {
		if val, ok := fs.byLower[alias]; ok && val != "" {
			return val, true
		}
	}
	for _, alias := range aliases {
		if val, ok := fs.lookupSubstring(alias); ok {
			return val, true
		}
	}
	return "", false
}

func (fs *fieldSet) lookupSubstring(alias string) (string, bool) {
	for _, col := range fs.ordered {
		if strings.Contains(col, alias) && fs.byLower[col] != "" {
			return fs.byLower[col], true
		}
	}
	return "", false
}
