package classifier

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewell/comm-forensics-service/internal/config"
	"github.com/tracewell/comm-forensics-service/internal/domain"
)

var testBase = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func smsEvent(id string, offset time.Duration, origin, destination, content string) domain.Event {
	return domain.Event{
		ID:             id,
		Timestamp:      testBase.Add(offset),
		Channel:        domain.ChannelSMS,
		Origin:         origin,
		Destination:    destination,
		ContentSummary: content,
	}
}

func callEvent(id string, offset time.Duration, origin, destination string, durationSec int) domain.Event {
	return domain.Event{
		ID:              id,
		Timestamp:       testBase.Add(offset),
		Channel:         domain.ChannelCall,
		Origin:          origin,
		Destination:     destination,
		DurationSeconds: durationSec,
	}
}

func TestClassifier_Classify_FinancialAndUrgent(t *testing.T) {
	cfg := config.Default().Classifier
	events := []domain.Event{
		smsEvent("e1", 0, "+15551234567", "+15559876543", "wire transfer $5000 urgent"),
	}
	ctx := BuildContext(events, cfg)

	tags := New(cfg).Classify(&events[0], ctx)

	assert.Equal(t, []domain.Tag{domain.TagFinancial, domain.TagUrgent}, tags)
}

func TestClassifier_Classify_RoutineFallback(t *testing.T) {
	cfg := config.Default().Classifier
	events := []domain.Event{
		smsEvent("e1", 0, "+15551234567", "+15559876543", "see you at dinner"),
		smsEvent("e2", time.Minute, "+15551234567", "+15559876543", "sounds good"),
		smsEvent("e3", 2*time.Minute, "+15551234567", "+15559876543", "ok"),
	}
	ctx := BuildContext(events, cfg)
	c := New(cfg)

	for i := range events {
		tags := c.Classify(&events[i], ctx)
		assert.Equal(t, []domain.Tag{domain.TagRoutine}, tags)
	}
}

func TestClassifier_Classify_MonetaryAmountPattern(t *testing.T) {
	cfg := config.Default().Classifier
	events := []domain.Event{
		smsEvent("e1", 0, "+15551234567", "+15559876543", "send me $1,250.50 by friday"),
	}
	ctx := BuildContext(events, cfg)

	tags := New(cfg).Classify(&events[0], ctx)

	assert.Contains(t, tags, domain.TagFinancial)
}

func TestClassifier_Classify_MonetaryAmountIgnoredOnCalls(t *testing.T) {
	cfg := config.Default().Classifier
	events := []domain.Event{
		callEvent("e1", 0, "+15551234567", "+15559876543", 60),
	}
	events[0].ContentSummary = "$500"
	ctx := BuildContext(events, cfg)

	tags := New(cfg).Classify(&events[0], ctx)

	assert.NotContains(t, tags, domain.TagFinancial)
}

func TestClassifier_Classify_InternationalPhone(t *testing.T) {
	cfg := config.Default().Classifier
	events := []domain.Event{
		smsEvent("e1", 0, "+447911123456", "+15559876543", "hello"),
	}
	ctx := BuildContext(events, cfg)

	tags := New(cfg).Classify(&events[0], ctx)

	assert.Contains(t, tags, domain.TagInternational)
}

func TestClassifier_Classify_ForeignEmailDomain(t *testing.T) {
	cfg := config.Default().Classifier
	event := domain.Event{
		ID:             "e1",
		Timestamp:      testBase,
		Channel:        domain.ChannelEmail,
		Origin:         "sender@mail.ru",
		Destination:    "user@example.com",
		ContentSummary: "greetings",
	}
	events := []domain.Event{event}
	ctx := BuildContext(events, cfg)

	tags := New(cfg).Classify(&events[0], ctx)

	assert.Contains(t, tags, domain.TagInternational)
}

func TestClassifier_Classify_ShortCallBurstIsUrgent(t *testing.T) {
	cfg := config.Default().Classifier
	events := []domain.Event{
		callEvent("c1", 0, "+15551234567", "+15559876543", 5),
		callEvent("c2", 3*time.Minute, "+15551234567", "+15559876543", 8),
		callEvent("c3", 2*time.Hour, "+15551234567", "+15559876543", 6),
	}
	ctx := BuildContext(events, cfg)
	c := New(cfg)

	assert.Contains(t, c.Classify(&events[0], ctx), domain.TagUrgent)
	assert.Contains(t, c.Classify(&events[1], ctx), domain.TagUrgent)
	// The isolated short call two hours later is not part of a burst.
	assert.NotContains(t, c.Classify(&events[2], ctx), domain.TagUrgent)
}

func TestClassifier_Classify_ExtendedCallDuration(t *testing.T) {
	cfg := config.Default().Classifier
	events := make([]domain.Event, 0, 21)
	for i := 0; i < 20; i++ {
		events = append(events, callEvent(
			fmt.Sprintf("c%d", i), time.Duration(i)*time.Hour,
			"+15551234567", "+15559876543", 60))
	}
	long := callEvent("long", 21*time.Hour, "+15551234567", "+15559876543", 3600)
	events = append(events, long)
	ctx := BuildContext(events, cfg)
	c := New(cfg)

	assert.Contains(t, c.Classify(&events[len(events)-1], ctx), domain.TagExtendedComm)
	assert.NotContains(t, c.Classify(&events[0], ctx), domain.TagExtendedComm)
}

func TestClassifier_Classify_SpamRequiresUnknownSender(t *testing.T) {
	cfg := config.Default().Classifier
	known := "+15551234567"
	events := []domain.Event{
		smsEvent("k1", 0, known, "+15559876543", "hi"),
		smsEvent("k2", time.Minute, known, "+15559876543", "hi again"),
		smsEvent("k3", 2*time.Minute, known, "+15559876543", "still me"),
		smsEvent("spam", 3*time.Minute, "+15550000001", "+15559876543", "congratulations you are a winner, click here"),
		smsEvent("notspam", 4*time.Minute, known, "+15559876543", "congratulations on the new job"),
	}
	ctx := BuildContext(events, cfg)
	c := New(cfg)

	assert.Contains(t, c.Classify(&events[3], ctx), domain.TagSpam)
	// The same language from a known contact is not spam.
	assert.NotContains(t, c.Classify(&events[4], ctx), domain.TagSpam)
}

func TestClassifier_ClassifyAll_EveryEventTagged(t *testing.T) {
	cfg := config.Default().Classifier
	events := []domain.Event{
		smsEvent("e1", 0, "+15551234567", "+15559876543", "delete this after reading"),
		smsEvent("e2", time.Minute, "+15551234567", "+15559876543", "lunch?"),
	}
	ctx := BuildContext(events, cfg)

	New(cfg).ClassifyAll(events, ctx)

	require.NotEmpty(t, events[0].Tags)
	assert.Contains(t, events[0].Tags, domain.TagSuspicious)
	assert.Equal(t, []domain.Tag{domain.TagRoutine}, events[1].Tags)
}
