// Package pattern scans the ordered timeline for multi-channel sequences
// per contact. The detection window is chained: each event within the window
// of its predecessor extends the run from its own timestamp, so a dense
// sequence can span far longer than one window width. Events consumed by a
// finding are never reused for the same contact.
package pattern

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tracewell/comm-forensics-service/internal/domain"
	"github.com/tracewell/comm-forensics-service/internal/timeline"
)

// suspiciousSeverityBonus is added to a finding's severity when any
// contributing event carries the SUSPICIOUS tag.
const suspiciousSeverityBonus = 2

// Detector finds cross-channel communication sequences.
type Detector struct {
	log *zap.Logger
}

// NewDetector creates a new pattern detector
func NewDetector(log *zap.Logger) *Detector {
	return &Detector{log: log}
}

// state of the per-contact scan.
type scanState int

const (
	stateIdle scanState = iota
	stateAccumulating
)

// Detect scans the timeline and returns one finding per closed run that
// touched at least two distinct channels. Findings are ordered by window
// start, then contact, so output is stable.
func (d *Detector) Detect(tl timeline.Timeline, windowSeconds int) []domain.PatternFinding {
	window := time.Duration(windowSeconds) * time.Second

	byContact := make(map[string][]*domain.Event)
	var contacts []string
	for i := range tl.Events {
		e := &tl.Events[i]
		contact := e.Counterparty(tl.UserIdentity)
		if contact == "" || contact == tl.UserIdentity {
			continue
		}
		if _, seen := byContact[contact]; !seen {
			contacts = append(contacts, contact)
		}
		byContact[contact] = append(byContact[contact], e)
	}
	sort.Strings(contacts)

	var findings []domain.PatternFinding
	for _, contact := range contacts {
		findings = append(findings, d.scanContact(contact, byContact[contact], window)...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].WindowStart.Equal(findings[j].WindowStart) {
			return findings[i].Contact < findings[j].Contact
		}
		return findings[i].WindowStart.Before(findings[j].WindowStart)
	})

	if len(findings) > 0 {
		d.log.Info("Cross-channel patterns detected",
			zap.Int("findings", len(findings)))
	}
	return findings
}

// scanContact runs the idle/accumulating state machine over one contact's
// events. Timeline order is preserved, so runs close exactly when the gap to
// the previous event exceeds the window.
func (d *Detector) scanContact(contact string, events []*domain.Event, window time.Duration) []domain.PatternFinding {
	var findings []domain.PatternFinding
	var run []*domain.Event
	state := stateIdle

	flush := func() {
		if finding, ok := buildFinding(contact, run); ok {
			findings = append(findings, finding)
		}
		run = nil
	}

	for _, e := range events {
		switch state {
		case stateIdle:
			run = []*domain.Event{e}
			state = stateAccumulating
		case stateAccumulating:
			last := run[len(run)-1]
			if e.Timestamp.Sub(last.Timestamp) <= window {
				run = append(run, e)
			} else {
				flush()
				run = []*domain.Event{e}
			}
		}
	}
	if state == stateAccumulating {
		flush()
	}

	return findings
}

// buildFinding turns a closed run into a finding when it spans at least two
// distinct channels. The channel sequence lists distinct channels in order
// of first appearance.
func buildFinding(contact string, run []*domain.Event) (domain.PatternFinding, bool) {
	if len(run) < 2 {
		return domain.PatternFinding{}, false
	}

	var sequence []domain.Channel
	seen := make(map[domain.Channel]bool)
	suspicious := false
	eventIDs := make([]string, 0, len(run))

	for _, e := range run {
		if !seen[e.Channel] {
			seen[e.Channel] = true
			sequence = append(sequence, e.Channel)
		}
		if e.HasTag(domain.TagSuspicious) {
			suspicious = true
		}
		eventIDs = append(eventIDs, e.ID)
	}
	if len(sequence) < 2 {
		return domain.PatternFinding{}, false
	}

	severity := len(sequence) - 1
	if suspicious {
		severity += suspiciousSeverityBonus
	}

	return domain.PatternFinding{
		Contact:         contact,
		ChannelSequence: sequence,
		EventIDs:        eventIDs,
		WindowStart:     run[0].Timestamp,
		WindowEnd:       run[len(run)-1].Timestamp,
		Severity:        severity,
		Suspicious:      suspicious,
	}, true
}
