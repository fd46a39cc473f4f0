// Package report assembles the analysis outputs into contact aggregates and
// a stable-keyed summary, and writes the flat export artifacts: timeline
// CSV, contacts CSV, summary JSON (schema-checked), and a text report.
package report

import (
	"sort"
	"time"

	"github.com/tracewell/comm-forensics-service/internal/domain"
	"github.com/tracewell/comm-forensics-service/internal/timeline"
)

// Period bounds the analyzed data, taken from the data itself so identical
// inputs produce identical summaries.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// Summary is the machine-readable output of one analysis run. Key names are
// stable; the structure serializes deterministically for identical inputs.
type Summary struct {
	UserIdentity               string                  `json:"user_identity"`
	UserInferenceLowConfidence bool                    `json:"user_inference_low_confidence"`
	AnalysisPeriod             Period                  `json:"analysis_period"`
	TotalEvents                int                     `json:"total_events"`
	SkippedRecords             int                     `json:"skipped_records"`
	EventsByChannel            map[string]int          `json:"events_by_channel"`
	EventsByTag                map[string]int          `json:"events_by_tag"`
	Timeline                   []domain.Event          `json:"timeline"`
	Contacts                   []domain.Contact        `json:"contacts"`
	Findings                   []domain.PatternFinding `json:"findings"`
	GlobalRisk                 domain.RiskReport       `json:"global_risk"`
	ContactRisks               []domain.RiskReport     `json:"contact_risks"`
}

// BuildContacts aggregates the timeline into per-contact records, most
// active first. The inferred user is not a contact.
func BuildContacts(tl timeline.Timeline) []domain.Contact {
	byIdentity := make(map[string]*domain.Contact)
	for i := range tl.Events {
		e := &tl.Events[i]
		identity := e.Counterparty(tl.UserIdentity)
		if identity == "" || identity == tl.UserIdentity {
			continue
		}
		contact, ok := byIdentity[identity]
		if !ok {
			contact = &domain.Contact{Identity: identity}
			byIdentity[identity] = contact
		}
		contact.Observe(e)
	}

	contacts := make([]domain.Contact, 0, len(byIdentity))
	for _, contact := range byIdentity {
		contacts = append(contacts, *contact)
	}
	sort.Slice(contacts, func(i, j int) bool {
		if contacts[i].TotalEvents != contacts[j].TotalEvents {
			return contacts[i].TotalEvents > contacts[j].TotalEvents
		}
		return contacts[i].Identity < contacts[j].Identity
	})
	return contacts
}

// Assemble builds the summary from the pipeline outputs. Contact risk
// reports are sorted by scope identity.
func Assemble(
	tl timeline.Timeline,
	contacts []domain.Contact,
	findings []domain.PatternFinding,
	globalRisk domain.RiskReport,
	contactRisks []domain.RiskReport,
	skippedRecords int,
) *Summary {
	summary := &Summary{
		UserIdentity:               tl.UserIdentity,
		UserInferenceLowConfidence: tl.LowConfidence,
		TotalEvents:                len(tl.Events),
		SkippedRecords:             skippedRecords,
		EventsByChannel:            make(map[string]int),
		EventsByTag:                make(map[string]int),
		Timeline:                   nonNilEvents(tl.Events),
		Contacts:                   nonNilContacts(contacts),
		Findings:                   nonNilFindings(findings),
		GlobalRisk:                 nonNilFactors(globalRisk),
		ContactRisks:               contactRisks,
	}
	if summary.ContactRisks == nil {
		summary.ContactRisks = []domain.RiskReport{}
	}
	for i := range summary.ContactRisks {
		summary.ContactRisks[i] = nonNilFactors(summary.ContactRisks[i])
	}

	for i := range tl.Events {
		e := &tl.Events[i]
		summary.EventsByChannel[string(e.Channel)]++
		for _, tag := range e.Tags {
			summary.EventsByTag[string(tag)]++
		}
	}

	if len(tl.Events) > 0 {
		start := tl.Events[0].Timestamp
		end := tl.Events[len(tl.Events)-1].Timestamp
		summary.AnalysisPeriod = Period{
			Start: start,
			End:   end,
			Days:  int(end.Sub(start).Hours()/24) + 1,
		}
	}

	sort.Slice(summary.ContactRisks, func(i, j int) bool {
		return summary.ContactRisks[i].Scope < summary.ContactRisks[j].Scope
	})

	return summary
}

// The summary serializes nil slices as empty arrays so the artifact always
// matches its schema.

func nonNilEvents(events []domain.Event) []domain.Event {
	if events == nil {
		return []domain.Event{}
	}
	return events
}

func nonNilContacts(contacts []domain.Contact) []domain.Contact {
	if contacts == nil {
		return []domain.Contact{}
	}
	return contacts
}

func nonNilFindings(findings []domain.PatternFinding) []domain.PatternFinding {
	if findings == nil {
		return []domain.PatternFinding{}
	}
	return findings
}

func nonNilFactors(report domain.RiskReport) domain.RiskReport {
	if report.Factors == nil {
		report.Factors = []domain.RiskFactor{}
	}
	return report
}
