// Package risk computes the weighted risk score for a scope (the whole run
// or one contact) from five independent factors: tagged-event volume,
// high-risk category presence, late-night activity, contact concentration,
// and cross-channel pattern findings. Each factor normalizes to [0,1]; the
// final score is the weight-normalized sum scaled to [0,100]. Scoring is
// deterministic: no randomness and no wall clock.
//
// Every factor is monotone under flagged additions: adding a
// SUSPICIOUS-tagged event to a scope never lowers any factor, so it never
// lowers the scope's score. The temporal and concentration factors are
// defined with that invariant in mind (see their doc comments).
package risk

import (
	"fmt"
	"math"

	"github.com/tracewell/comm-forensics-service/internal/config"
	"github.com/tracewell/comm-forensics-service/internal/domain"
)

// Category weights for the category factor: SUSPICIOUS and FINANCIAL count
// full, URGENT and INTERNATIONAL half.
const (
	highRiskTagWeight   = 1.0
	mediumRiskTagWeight = 0.5
)

// patternSaturation shapes the pattern factor: total severity s maps to
// s/(s+patternSaturation), approaching 1 as findings accumulate.
const patternSaturation = 5.0

// Input carries everything needed to score one scope.
type Input struct {
	Scope        string
	UserIdentity string
	Events       []domain.Event
	Findings     []domain.PatternFinding

	// TotalRunEvents is the run-wide event count; it equals len(Events)
	// for the global scope and feeds the concentration factor for a
	// contact scope.
	TotalRunEvents int
}

// Scorer computes risk reports.
type Scorer struct {
	cfg config.RiskConfig
}

// NewScorer creates a new risk scorer
func NewScorer(cfg config.RiskConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score produces the risk report for one scope. Factors appear in fixed
// order and only when nonzero.
func (s *Scorer) Score(in Input) domain.RiskReport {
	report := domain.RiskReport{Scope: in.Scope}
	if len(in.Events) == 0 {
		return report
	}

	weightSum := s.cfg.VolumeWeight + s.cfg.CategoryWeight + s.cfg.TemporalWeight +
		s.cfg.ConcentrationWeight + s.cfg.PatternWeight
	if weightSum == 0 {
		return report
	}

	type factor struct {
		name        string
		weight      float64
		score       float64
		explanation string
	}

	volume, volumeExpl := s.volumeFactor(in.Events)
	category, categoryExpl := s.categoryFactor(in.Events)
	temporal, temporalExpl := s.temporalFactor(in.Events)
	concentration, concentrationExpl := s.concentrationFactor(in)
	pattern, patternExpl := s.patternFactor(in.Findings)

	factors := []factor{
		{"volume_factor", s.cfg.VolumeWeight, volume, volumeExpl},
		{"category_factor", s.cfg.CategoryWeight, category, categoryExpl},
		{"temporal_factor", s.cfg.TemporalWeight, temporal, temporalExpl},
		{"concentration_factor", s.cfg.ConcentrationWeight, concentration, concentrationExpl},
		{"pattern_factor", s.cfg.PatternWeight, pattern, patternExpl},
	}

	total := 0.0
	for _, f := range factors {
		contribution := 100 * f.weight * f.score / weightSum
		total += contribution
		if contribution > 0 {
			report.Factors = append(report.Factors, domain.RiskFactor{
				Name:         f.name,
				Contribution: contribution,
				Explanation:  f.explanation,
			})
		}
	}

	report.Score = math.Min(math.Max(total, 0), 100)
	return report
}

// volumeFactor is the share of events tagged SUSPICIOUS or SPAM.
func (s *Scorer) volumeFactor(events []domain.Event) (float64, string) {
	count := 0
	for i := range events {
		if events[i].HasTag(domain.TagSuspicious) || events[i].HasTag(domain.TagSpam) {
			count++
		}
	}
	share := float64(count) / float64(len(events))
	return share, fmt.Sprintf("%d of %d events tagged SUSPICIOUS or SPAM (%.1f%%)",
		count, len(events), share*100)
}

// categoryFactor averages per-event tag weights: high-risk tags
// (SUSPICIOUS, FINANCIAL) weigh 1.0, medium-risk tags (URGENT,
// INTERNATIONAL) weigh 0.5; the strongest tag per event counts.
func (s *Scorer) categoryFactor(events []domain.Event) (float64, string) {
	sum := 0.0
	flagged := 0
	for i := range events {
		e := &events[i]
		switch {
		case e.HasTag(domain.TagSuspicious) || e.HasTag(domain.TagFinancial):
			sum += highRiskTagWeight
			flagged++
		case e.HasTag(domain.TagUrgent) || e.HasTag(domain.TagInternational):
			sum += mediumRiskTagWeight
			flagged++
		}
	}
	score := sum / float64(len(events))
	return score, fmt.Sprintf("%d of %d events carry high- or medium-risk category tags",
		flagged, len(events))
}

// temporalFactor is the share of events in the configured late-night window.
// A SUSPICIOUS-tagged event counts toward the window regardless of its hour,
// so flagged traffic can never shrink this share.
func (s *Scorer) temporalFactor(events []domain.Event) (float64, string) {
	count := 0
	for i := range events {
		if s.inLateNightWindow(events[i].Timestamp.Hour()) || events[i].HasTag(domain.TagSuspicious) {
			count++
		}
	}
	share := float64(count) / float64(len(events))
	return share, fmt.Sprintf("%d of %d events occur in the %02d:00-%02d:00 window or carry the SUSPICIOUS tag (%.1f%%)",
		count, len(events), s.cfg.LateNightStartHour, s.cfg.LateNightEndHour, share*100)
}

// inLateNightWindow treats the end hour as exclusive: a 0-5 window covers
// 00:00 through 04:59.
func (s *Scorer) inLateNightWindow(hour int) bool {
	start, end := s.cfg.LateNightStartHour, s.cfg.LateNightEndHour
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// concentrationFactor measures inverse contact diversity. Globally it is the
// Herfindahl index of per-contact shares of the non-SUSPICIOUS traffic;
// flagged events are scored by the volume and category factors and are left
// out here so they can never spread the index thinner. For a contact scope
// it is that contact's share of run-wide traffic.
func (s *Scorer) concentrationFactor(in Input) (float64, string) {
	if in.Scope != domain.ScopeGlobal {
		if in.TotalRunEvents == 0 {
			return 0, ""
		}
		share := float64(len(in.Events)) / float64(in.TotalRunEvents)
		return share, fmt.Sprintf("contact accounts for %.1f%% of all traffic (%d of %d events)",
			share*100, len(in.Events), in.TotalRunEvents)
	}

	counts := make(map[string]int)
	total := 0
	for i := range in.Events {
		if in.Events[i].HasTag(domain.TagSuspicious) {
			continue
		}
		contact := in.Events[i].Counterparty(in.UserIdentity)
		if contact == "" || contact == in.UserIdentity {
			continue
		}
		counts[contact]++
		total++
	}
	if total == 0 {
		return 0, ""
	}

	hhi := 0.0
	for _, count := range counts {
		share := float64(count) / float64(total)
		hhi += share * share
	}
	return hhi, fmt.Sprintf("non-suspicious traffic spread across %d contacts, concentration index %.2f",
		len(counts), hhi)
}

// patternFactor saturates with the total severity of findings in scope.
func (s *Scorer) patternFactor(findings []domain.PatternFinding) (float64, string) {
	if len(findings) == 0 {
		return 0, ""
	}
	severity := 0
	for i := range findings {
		severity += findings[i].Severity
	}
	score := float64(severity) / (float64(severity) + patternSaturation)
	return score, fmt.Sprintf("%d cross-channel findings with total severity %d",
		len(findings), severity)
}
