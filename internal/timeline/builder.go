// Package timeline merges classified events into one chronological sequence
// and infers which identity is the device owner ("the user") from frequency:
// the identity on a strict majority of events, or the plurality identity
// with a low-confidence flag when nothing clears the bar.
package timeline

import (
	"sort"

	"go.uber.org/zap"

	"github.com/tracewell/comm-forensics-service/internal/domain"
)

// Timeline is the ordered event sequence with the user inference attached.
type Timeline struct {
	Events        []domain.Event
	UserIdentity  string
	LowConfidence bool
}

// Builder orders events and annotates direction.
type Builder struct {
	log *zap.Logger
}

// NewBuilder creates a new timeline builder
func NewBuilder(log *zap.Logger) *Builder {
	return &Builder{log: log}
}

// Build sorts events by timestamp ascending (ties by ingestion order),
// infers the user identity, and stamps per-event direction relative to it.
// The input slice is not modified.
func (b *Builder) Build(events []domain.Event) Timeline {
	ordered := make([]domain.Event, len(events))
	copy(ordered, events)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].SourceIndex < ordered[j].SourceIndex
		}
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	user, lowConfidence := inferUser(ordered)
	for i := range ordered {
		ordered[i].Direction = direction(&ordered[i], user)
	}

	if user != "" {
		b.log.Info("Inferred user identity",
			zap.String("identity", user),
			zap.Bool("low_confidence", lowConfidence))
	}
	if lowConfidence {
		b.log.Warn("User identity inference below majority threshold",
			zap.String("identity", user))
	}

	return Timeline{
		Events:        ordered,
		UserIdentity:  user,
		LowConfidence: lowConfidence,
	}
}

// inferUser picks the identity appearing on a strict majority of events.
// Without a majority it falls back to the plurality identity and flags the
// inference; ties break on the lexicographically smallest identity so the
// result is stable.
func inferUser(events []domain.Event) (string, bool) {
	if len(events) == 0 {
		return "", true
	}

	counts := make(map[string]int)
	for i := range events {
		for _, id := range events[i].Identities() {
			counts[id]++
		}
	}
	if len(counts) == 0 {
		return "", true
	}

	best := ""
	bestCount := -1
	for id, count := range counts {
		if count > bestCount || (count == bestCount && id < best) {
			best, bestCount = id, count
		}
	}

	majority := bestCount*2 > len(events)
	return best, !majority
}

func direction(e *domain.Event, user string) domain.Direction {
	switch {
	case user != "" && e.Origin == user:
		return domain.DirectionOutgoing
	case user != "" && e.Destination == user:
		return domain.DirectionIncoming
	default:
		return domain.DirectionThirdParty
	}
}
