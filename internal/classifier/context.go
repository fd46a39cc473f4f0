package classifier

import (
	"math"
	"sort"
	"time"

	"github.com/tracewell/comm-forensics-service/internal/config"
	"github.com/tracewell/comm-forensics-service/internal/domain"
)

// Context carries the per-run derived state the threshold rules read: the
// known-contacts set, the per-channel extended-communication cutoffs, and
// the short-call burst index. It is computed once before classification and
// treated as read-only for the rest of the run.
type Context struct {
	cfg config.ClassifierConfig

	knownContacts    map[string]bool
	callDurationP    float64
	contentLengthP   map[domain.Channel]float64
	shortCallBurstID map[string]bool
}

// BuildContext derives the classification context from the full event
// collection. Events need not be classified or ordered yet.
func BuildContext(events []domain.Event, cfg config.ClassifierConfig) *Context {
	ctx := &Context{
		cfg:              cfg,
		knownContacts:    make(map[string]bool),
		contentLengthP:   make(map[domain.Channel]float64),
		shortCallBurstID: make(map[string]bool),
	}

	identityCounts := make(map[string]int)
	var callDurations []float64
	contentLengths := make(map[domain.Channel][]float64)

	for i := range events {
		e := &events[i]
		for _, id := range e.Identities() {
			identityCounts[id]++
		}
		if e.Channel == domain.ChannelCall {
			callDurations = append(callDurations, float64(e.DurationSeconds))
		}
		if e.ContentSummary != "" {
			contentLengths[e.Channel] = append(contentLengths[e.Channel], float64(len(e.ContentSummary)))
		}
	}

	for id, count := range identityCounts {
		if count >= cfg.KnownContactMinEvents {
			ctx.knownContacts[id] = true
		}
	}

	ctx.callDurationP = percentile(callDurations, cfg.ExtendedPercentile)
	for channel, lengths := range contentLengths {
		ctx.contentLengthP[channel] = percentile(lengths, cfg.ExtendedPercentile)
	}

	ctx.indexShortCallBursts(events)
	return ctx
}

// indexShortCallBursts marks short calls that have another call involving
// the same identity within the repeat window, the escalation signal of
// repeated short calls.
func (c *Context) indexShortCallBursts(events []domain.Event) {
	window := time.Duration(c.cfg.RepeatCallWindowSec) * time.Second

	callsByIdentity := make(map[string][]*domain.Event)
	for i := range events {
		e := &events[i]
		if e.Channel != domain.ChannelCall {
			continue
		}
		for _, id := range e.Identities() {
			callsByIdentity[id] = append(callsByIdentity[id], e)
		}
	}

	for _, calls := range callsByIdentity {
		sort.Slice(calls, func(i, j int) bool {
			return calls[i].Timestamp.Before(calls[j].Timestamp)
		})
		for i, call := range calls {
			if call.DurationSeconds > c.cfg.ShortCallThresholdSec {
				continue
			}
			if i > 0 && call.Timestamp.Sub(calls[i-1].Timestamp) <= window {
				c.shortCallBurstID[call.ID] = true
			}
			if i < len(calls)-1 && calls[i+1].Timestamp.Sub(call.Timestamp) <= window {
				c.shortCallBurstID[call.ID] = true
			}
		}
	}
}

// KnownContact reports whether the identity is in the known-contacts set.
func (c *Context) KnownContact(identity string) bool {
	return c.knownContacts[identity]
}

// InShortCallBurst reports whether the event is an indexed short-call burst
// member.
func (c *Context) InShortCallBurst(eventID string) bool {
	return c.shortCallBurstID[eventID]
}

// ExtendedThreshold returns the extended-communication cutoff for the
// channel: call duration in seconds for CALL, content length otherwise.
// Returns +Inf when there is no distribution to compare against.
func (c *Context) ExtendedThreshold(channel domain.Channel) float64 {
	if channel == domain.ChannelCall {
		if c.callDurationP == 0 {
			return math.Inf(1)
		}
		return c.callDurationP
	}
	if cutoff, ok := c.contentLengthP[channel]; ok && cutoff > 0 {
		return cutoff
	}
	return math.Inf(1)
}

// percentile returns the p-quantile of values using the nearest-rank method.
// Returns 0 for an empty slice.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
