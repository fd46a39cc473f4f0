package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tracewell/comm-forensics-service/internal/classifier"
	"github.com/tracewell/comm-forensics-service/internal/config"
	"github.com/tracewell/comm-forensics-service/internal/domain"
	"github.com/tracewell/comm-forensics-service/internal/ingest"
	"github.com/tracewell/comm-forensics-service/internal/normalizer"
	"github.com/tracewell/comm-forensics-service/internal/pattern"
	"github.com/tracewell/comm-forensics-service/internal/report"
	"github.com/tracewell/comm-forensics-service/internal/risk"
	"github.com/tracewell/comm-forensics-service/internal/timeline"
)

// Result bundles everything one analysis run produces.
type Result struct {
	Timeline       timeline.Timeline
	Contacts       []domain.Contact
	Findings       []domain.PatternFinding
	GlobalRisk     domain.RiskReport
	ContactRisks   []domain.RiskReport
	SkippedRecords int
	Summary        *report.Summary
}

// AnalysisService represents the analysis pipeline: normalize, classify,
// order, detect patterns, score.
type AnalysisService struct {
	normalizer EventNormalizer
	classifier *classifier.Classifier
	builder    *timeline.Builder
	detector   *pattern.Detector
	scorer     *risk.Scorer
	profile    *config.Profile
	log        *zap.Logger
}

// NewAnalysisService creates a new analysis service. The profile must be
// validated before it reaches here.
func NewAnalysisService(norm EventNormalizer, profile *config.Profile, log *zap.Logger) *AnalysisService {
	return &AnalysisService{
		normalizer: norm,
		classifier: classifier.New(profile.Classifier),
		builder:    timeline.NewBuilder(log),
		detector:   pattern.NewDetector(log),
		scorer:     risk.NewScorer(profile.Risk),
		profile:    profile,
		log:        log,
	}
}

// Run executes the full pipeline over the raw records. Records that fail
// normalization are skipped and tallied; the run continues on partial data.
func (s *AnalysisService) Run(records []ingest.RawRecord) (*Result, error) {
	if err := s.profile.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to run: %w", err)
	}

	events, skipped := s.normalize(records)
	s.log.Info("Normalized records",
		zap.Int("events", len(events)),
		zap.Int("skipped", skipped))

	ctx := classifier.BuildContext(events, s.profile.Classifier)
	s.classifier.ClassifyAll(events, ctx)

	tl := s.builder.Build(events)
	findings := s.detector.Detect(tl, s.profile.Pattern.WindowSec)
	contacts := report.BuildContacts(tl)

	globalRisk := s.scorer.Score(risk.Input{
		Scope:          domain.ScopeGlobal,
		UserIdentity:   tl.UserIdentity,
		Events:         tl.Events,
		Findings:       findings,
		TotalRunEvents: len(tl.Events),
	})
	contactRisks := s.scoreContacts(tl, findings, contacts)

	result := &Result{
		Timeline:       tl,
		Contacts:       contacts,
		Findings:       findings,
		GlobalRisk:     globalRisk,
		ContactRisks:   contactRisks,
		SkippedRecords: skipped,
	}
	result.Summary = report.Assemble(tl, contacts, findings, globalRisk, contactRisks, skipped)

	s.log.Info("Analysis complete",
		zap.Int("events", len(tl.Events)),
		zap.Int("contacts", len(contacts)),
		zap.Int("findings", len(findings)),
		zap.Float64("risk_score", globalRisk.Score))

	return result, nil
}

func (s *AnalysisService) normalize(records []ingest.RawRecord) ([]domain.Event, int) {
	events := make([]domain.Event, 0, len(records))
	skipped := 0

	for _, rec := range records {
		event, err := s.normalizer.Normalize(rec)
		if err != nil {
			skipped++
			var schemaErr *normalizer.SchemaError
			if errors.As(err, &schemaErr) {
				s.log.Warn("Skipping record",
					zap.Int("record_index", schemaErr.RecordIndex),
					zap.String("field", schemaErr.Field),
					zap.String("reason", schemaErr.Reason),
					zap.String("file", rec.File))
			} else {
				s.log.Warn("Skipping record",
					zap.Int("record_index", rec.Index),
					zap.Error(err))
			}
			continue
		}
		events = append(events, event)
	}
	return events, skipped
}

func (s *AnalysisService) scoreContacts(tl timeline.Timeline, findings []domain.PatternFinding, contacts []domain.Contact) []domain.RiskReport {
	eventsByContact := make(map[string][]domain.Event)
	for i := range tl.Events {
		contact := tl.Events[i].Counterparty(tl.UserIdentity)
		if contact == "" || contact == tl.UserIdentity {
			continue
		}
		eventsByContact[contact] = append(eventsByContact[contact], tl.Events[i])
	}

	findingsByContact := make(map[string][]domain.PatternFinding)
	for i := range findings {
		findingsByContact[findings[i].Contact] = append(findingsByContact[findings[i].Contact], findings[i])
	}

	reports := make([]domain.RiskReport, 0, len(contacts))
	for i := range contacts {
		identity := contacts[i].Identity
		reports = append(reports, s.scorer.Score(risk.Input{
			Scope:          identity,
			UserIdentity:   tl.UserIdentity,
			Events:         eventsByContact[identity],
			Findings:       findingsByContact[identity],
			TotalRunEvents: len(tl.Events),
		}))
	}
	return reports
}
