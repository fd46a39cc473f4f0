package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tracewell/comm-forensics-service/internal/domain"
)

var testBase = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func event(id string, offset time.Duration, origin, destination string, sourceIndex int) domain.Event {
	return domain.Event{
		ID:          id,
		Timestamp:   testBase.Add(offset),
		Channel:     domain.ChannelSMS,
		Origin:      origin,
		Destination: destination,
		SourceIndex: sourceIndex,
	}
}

func TestBuilder_Build_OrdersByTimestamp(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	events := []domain.Event{
		event("late", 2*time.Hour, "A", "B", 0),
		event("early", 0, "A", "B", 1),
		event("middle", time.Hour, "A", "B", 2),
	}

	tl := b.Build(events)

	require.Len(t, tl.Events, 3)
	assert.Equal(t, "early", tl.Events[0].ID)
	assert.Equal(t, "middle", tl.Events[1].ID)
	assert.Equal(t, "late", tl.Events[2].ID)
	for i := 1; i < len(tl.Events); i++ {
		assert.False(t, tl.Events[i].Timestamp.Before(tl.Events[i-1].Timestamp))
	}
}

func TestBuilder_Build_TimestampTiesBreakOnIngestionOrder(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	events := []domain.Event{
		event("second", 0, "A", "B", 9),
		event("first", 0, "A", "B", 3),
	}

	tl := b.Build(events)

	assert.Equal(t, "first", tl.Events[0].ID)
	assert.Equal(t, "second", tl.Events[1].ID)
}

func TestBuilder_Build_InputSliceUntouched(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	events := []domain.Event{
		event("late", time.Hour, "A", "B", 0),
		event("early", 0, "A", "B", 1),
	}

	b.Build(events)

	assert.Equal(t, "late", events[0].ID)
	assert.Equal(t, "early", events[1].ID)
}

func TestBuilder_Build_MajorityUserInference(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	events := []domain.Event{
		event("e1", 0, "A", "B", 0),
		event("e2", time.Minute, "C", "A", 1),
		event("e3", 2*time.Minute, "A", "D", 2),
	}

	tl := b.Build(events)

	assert.Equal(t, "A", tl.UserIdentity)
	assert.False(t, tl.LowConfidence)
}

func TestBuilder_Build_PluralityFallbackIsLowConfidence(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	events := []domain.Event{
		event("e1", 0, "A", "B", 0),
		event("e2", time.Minute, "A", "C", 1),
		event("e3", 2*time.Minute, "D", "E", 2),
		event("e4", 3*time.Minute, "F", "G", 3),
	}

	tl := b.Build(events)

	// A appears on 2 of 4 events: a plurality but no strict majority.
	assert.Equal(t, "A", tl.UserIdentity)
	assert.True(t, tl.LowConfidence)
}

func TestBuilder_Build_DirectionsRelativeToUser(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	events := []domain.Event{
		event("out", 0, "A", "B", 0),
		event("in", time.Minute, "B", "A", 1),
		event("out2", 2*time.Minute, "A", "C", 2),
		event("third", 3*time.Minute, "B", "C", 3),
	}

	tl := b.Build(events)

	require.Equal(t, "A", tl.UserIdentity)
	byID := make(map[string]domain.Event)
	for _, e := range tl.Events {
		byID[e.ID] = e
	}
	assert.Equal(t, domain.DirectionOutgoing, byID["out"].Direction)
	assert.Equal(t, domain.DirectionIncoming, byID["in"].Direction)
	assert.Equal(t, domain.DirectionOutgoing, byID["out2"].Direction)
	assert.Equal(t, domain.DirectionThirdParty, byID["third"].Direction)
}

func TestBuilder_Build_EmptyInput(t *testing.T) {
	b := NewBuilder(zap.NewNop())

	tl := b.Build(nil)

	assert.Empty(t, tl.Events)
	assert.Empty(t, tl.UserIdentity)
	assert.True(t, tl.LowConfidence)
}
