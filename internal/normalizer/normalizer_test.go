package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewell/comm-forensics-service/internal/domain"
	"github.com/tracewell/comm-forensics-service/internal/ingest"
)

func rawRecord(channel domain.Channel, index int, fields map[string]string) ingest.RawRecord {
	return ingest.RawRecord{
		Channel: channel,
		Index:   index,
		File:    "test.csv",
		Fields:  fields,
	}
}

func TestNormalizer_Normalize_ResolvesAliasedColumns(t *testing.T) {
	n := New()

	event, err := n.Normalize(rawRecord(domain.ChannelSMS, 0, map[string]string{
		"Date":    "2024-03-01 14:30:00",
		"Sender":  "+15551234567",
		"To":      "+15559876543",
		"Message": "see you at noon",
	}))

	require.NoError(t, err)
	assert.Equal(t, domain.ChannelSMS, event.Channel)
	assert.Equal(t, time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC), event.Timestamp)
	assert.Equal(t, "+15551234567", event.Origin)
	assert.Equal(t, "+15559876543", event.Destination)
	assert.Equal(t, "see you at noon", event.ContentSummary)
	assert.NotEmpty(t, event.ID)
}

func TestNormalizer_Normalize_ContactColumnWithDirection(t *testing.T) {
	n := New()

	outgoing, err := n.Normalize(rawRecord(domain.ChannelSMS, 0, map[string]string{
		"timestamp": "2024-03-01 09:00:00",
		"phone":     "5551234567",
		"type":      "Outgoing",
		"body":      "on my way",
	}))
	require.NoError(t, err)
	assert.Empty(t, outgoing.Origin)
	assert.Equal(t, "+15551234567", outgoing.Destination)

	incoming, err := n.Normalize(rawRecord(domain.ChannelSMS, 1, map[string]string{
		"timestamp": "2024-03-01 09:05:00",
		"phone":     "5551234567",
		"type":      "Received",
		"body":      "ok",
	}))
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", incoming.Origin)
	assert.Empty(t, incoming.Destination)
}

func TestNormalizer_Normalize_EmailJoinsSubjectAndBody(t *testing.T) {
	n := New()

	event, err := n.Normalize(rawRecord(domain.ChannelEmail, 0, map[string]string{
		"date":    "2024-03-01",
		"from":    "Alice@Example.com",
		"to":      "bob@example.com",
		"subject": "Invoice",
		"body":    "please find attached",
	}))

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", event.Origin)
	assert.Equal(t, "Invoice please find attached", event.ContentSummary)
}

func TestNormalizer_Normalize_CallDurationFromMinuteColumns(t *testing.T) {
	n := New()

	event, err := n.Normalize(rawRecord(domain.ChannelCall, 0, map[string]string{
		"date":       "2024-03-01 20:00:00",
		"phone":      "5551234567",
		"day mins":   "2",
		"eve mins":   "1.5",
		"night mins": "0",
	}))

	require.NoError(t, err)
	assert.Equal(t, 210, event.DurationSeconds)
}

func TestNormalizer_Normalize_DurationColumnBeatsMinuteColumns(t *testing.T) {
	n := New()

	event, err := n.Normalize(rawRecord(domain.ChannelCall, 0, map[string]string{
		"date":     "2024-03-01 20:00:00",
		"phone":    "5551234567",
		"duration": "45",
		"day mins": "99",
	}))

	require.NoError(t, err)
	assert.Equal(t, 45, event.DurationSeconds)
}

func TestNormalizer_Normalize_MissingTimestampColumn(t *testing.T) {
	n := New()

	_, err := n.Normalize(rawRecord(domain.ChannelSMS, 7, map[string]string{
		"phone": "5551234567",
		"body":  "no clock here",
	}))

	require.Error(t, err)
	schemaErr, ok := err.(*SchemaError)
	require.True(t, ok)
	assert.Equal(t, 7, schemaErr.RecordIndex)
	assert.Equal(t, "timestamp", schemaErr.Field)
}

func TestNormalizer_Normalize_UnparseableTimestamp(t *testing.T) {
	n := New()

	_, err := n.Normalize(rawRecord(domain.ChannelSMS, 3, map[string]string{
		"timestamp": "not a date",
		"phone":     "5551234567",
	}))

	require.Error(t, err)
	schemaErr, ok := err.(*SchemaError)
	require.True(t, ok)
	assert.Equal(t, "timestamp", schemaErr.Field)
	assert.Equal(t, "not a date", schemaErr.Value)
}

func TestNormalizer_Normalize_NoIdentityColumns(t *testing.T) {
	n := New()

	_, err := n.Normalize(rawRecord(domain.ChannelSMS, 0, map[string]string{
		"timestamp": "2024-03-01 10:00:00",
		"body":      "anonymous",
	}))

	require.Error(t, err)
	schemaErr, ok := err.(*SchemaError)
	require.True(t, ok)
	assert.Equal(t, "origin/destination", schemaErr.Field)
}

func TestNormalizer_Normalize_DeterministicIDWithoutIDColumn(t *testing.T) {
	n := New()
	fields := map[string]string{
		"timestamp": "2024-03-01 10:00:00",
		"from":      "+15551234567",
		"to":        "+15559876543",
		"message":   "same record",
	}

	first, err := n.Normalize(rawRecord(domain.ChannelSMS, 5, fields))
	require.NoError(t, err)
	second, err := n.Normalize(rawRecord(domain.ChannelSMS, 5, fields))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NotEmpty(t, first.ID)
}

func TestNormalizer_Normalize_ExplicitIDColumnPreserved(t *testing.T) {
	n := New()

	event, err := n.Normalize(rawRecord(domain.ChannelSMS, 0, map[string]string{
		"id":        "rec-42",
		"timestamp": "2024-03-01 10:00:00",
		"from":      "+15551234567",
	}))

	require.NoError(t, err)
	assert.Equal(t, "rec-42", event.ID)
}
