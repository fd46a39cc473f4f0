package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Profile holds the tunable analysis parameters: classification lexicons and
// thresholds, the pattern detection window, and the risk factor weights.
// Values not set in the profile file keep their defaults.
type Profile struct {
	Classifier ClassifierConfig `toml:"classifier"`
	Pattern    PatternConfig    `toml:"pattern"`
	Risk       RiskConfig       `toml:"risk"`
}

// ClassifierConfig holds the keyword lexicons and structural thresholds the
// classification rules evaluate against.
type ClassifierConfig struct {
	// SuspiciousKeywords mark threats, concealment, and coded-language terms.
	SuspiciousKeywords []string `toml:"suspicious_keywords"`

	// FinancialKeywords mark payment and banking language.
	FinancialKeywords []string `toml:"financial_keywords"`

	// UrgencyKeywords mark time-pressure language.
	UrgencyKeywords []string `toml:"urgency_keywords"`

	// SpamKeywords mark marketing and phishing language.
	SpamKeywords []string `toml:"spam_keywords"`

	// ForeignDomainSuffixes are email domain suffixes flagged as foreign.
	ForeignDomainSuffixes []string `toml:"foreign_domain_suffixes"`

	// DomesticCountryCode is the phone prefix not considered international.
	DomesticCountryCode string `toml:"domestic_country_code"`

	// ShortCallThresholdSec is the duration at or under which a call counts
	// as a short call for the escalation signal.
	ShortCallThresholdSec int `toml:"short_call_threshold_sec"`

	// RepeatCallWindowSec is how close two calls to the same contact must be
	// for a short call to count as part of an escalation burst.
	RepeatCallWindowSec int `toml:"repeat_call_window_sec"`

	// ExtendedPercentile is the per-channel duration/content-length quantile
	// above which an event counts as extended communication.
	ExtendedPercentile float64 `toml:"extended_percentile"`

	// KnownContactMinEvents is the repeat-communication count at which an
	// identity joins the known-contacts set.
	KnownContactMinEvents int `toml:"known_contact_min_events"`
}

// PatternConfig holds the cross-channel pattern detection parameters.
type PatternConfig struct {
	// WindowSec is the chained detection window width in seconds.
	WindowSec int `toml:"window_sec"`
}

// RiskConfig holds the late-night window and the factor weights of the risk
// scorer. Weights are relative; the final score is normalized by their sum.
type RiskConfig struct {
	// The late-night window runs from the start hour up to, but not
	// including, the end hour. The default 0-5 covers 00:00 to 05:00.
	LateNightStartHour int `toml:"late_night_start_hour"`
	LateNightEndHour   int `toml:"late_night_end_hour"`

	VolumeWeight        float64 `toml:"volume_weight"`
	CategoryWeight      float64 `toml:"category_weight"`
	TemporalWeight      float64 `toml:"temporal_weight"`
	ConcentrationWeight float64 `toml:"concentration_weight"`
	PatternWeight       float64 `toml:"pattern_weight"`
}

// Default returns the built-in analysis profile.
func Default() *Profile {
	return &Profile{
		Classifier: ClassifierConfig{
			SuspiciousKeywords: []string{
				"delete", "burner", "encrypt", "vpn", "tor", "secret",
				"confidential", "hide", "cover", "erase", "destroy", "threat",
			},
			FinancialKeywords: []string{
				"payment", "bank", "transfer", "money", "bitcoin", "crypto",
				"fund", "transaction", "cash", "deposit", "withdrawal",
				"invoice", "billing", "refund",
			},
			UrgencyKeywords: []string{
				"urgent", "emergency", "asap", "immediately", "right now",
				"rush", "stat",
			},
			SpamKeywords: []string{
				"win", "free", "prize", "offer", "discount", "click here",
				"congratulations", "selected", "winner", "limited time",
				"verify your account",
			},
			ForeignDomainSuffixes: []string{
				".ru", ".cn", ".tk", ".ml", ".ga", ".cf", ".xyz",
			},
			DomesticCountryCode:   "+1",
			ShortCallThresholdSec: 15,
			RepeatCallWindowSec:   600,
			ExtendedPercentile:    0.95,
			KnownContactMinEvents: 3,
		},
		Pattern: PatternConfig{
			WindowSec: 1800,
		},
		Risk: RiskConfig{
			LateNightStartHour:  0,
			LateNightEndHour:    5,
			VolumeWeight:        0.25,
			CategoryWeight:      0.25,
			TemporalWeight:      0.15,
			ConcentrationWeight: 0.15,
			PatternWeight:       0.20,
		},
	}
}

// LoadProfile returns the default profile overlaid with the TOML file at
// path. An empty path returns the defaults. The result is validated.
func LoadProfile(path string) (*Profile, error) {
	profile := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, profile); err != nil {
			return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
		}
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate checks every profile value and returns a ConfigError for the
// first invalid one.
func (p *Profile) Validate() error {
	c := p.Classifier
	if len(c.SuspiciousKeywords) == 0 {
		return &ConfigError{Field: "classifier.suspicious_keywords", Reason: "lexicon must not be empty"}
	}
	if len(c.FinancialKeywords) == 0 {
		return &ConfigError{Field: "classifier.financial_keywords", Reason: "lexicon must not be empty"}
	}
	if len(c.UrgencyKeywords) == 0 {
		return &ConfigError{Field: "classifier.urgency_keywords", Reason: "lexicon must not be empty"}
	}
	if len(c.SpamKeywords) == 0 {
		return &ConfigError{Field: "classifier.spam_keywords", Reason: "lexicon must not be empty"}
	}
	if c.ShortCallThresholdSec < 0 {
		return &ConfigError{Field: "classifier.short_call_threshold_sec", Reason: fmt.Sprintf("must not be negative, got %d", c.ShortCallThresholdSec)}
	}
	if c.RepeatCallWindowSec <= 0 {
		return &ConfigError{Field: "classifier.repeat_call_window_sec", Reason: fmt.Sprintf("must be positive, got %d", c.RepeatCallWindowSec)}
	}
	if c.ExtendedPercentile <= 0 || c.ExtendedPercentile >= 1 {
		return &ConfigError{Field: "classifier.extended_percentile", Reason: fmt.Sprintf("must be in (0,1), got %g", c.ExtendedPercentile)}
	}
	if c.KnownContactMinEvents < 1 {
		return &ConfigError{Field: "classifier.known_contact_min_events", Reason: fmt.Sprintf("must be at least 1, got %d", c.KnownContactMinEvents)}
	}

	if p.Pattern.WindowSec <= 0 {
		return &ConfigError{Field: "pattern.window_sec", Reason: fmt.Sprintf("window must be positive, got %d", p.Pattern.WindowSec)}
	}

	r := p.Risk
	if r.LateNightStartHour < 0 || r.LateNightStartHour > 23 {
		return &ConfigError{Field: "risk.late_night_start_hour", Reason: fmt.Sprintf("must be in [0,23], got %d", r.LateNightStartHour)}
	}
	if r.LateNightEndHour < 0 || r.LateNightEndHour > 23 {
		return &ConfigError{Field: "risk.late_night_end_hour", Reason: fmt.Sprintf("must be in [0,23], got %d", r.LateNightEndHour)}
	}
	weights := map[string]float64{
		"risk.volume_weight":        r.VolumeWeight,
		"risk.category_weight":      r.CategoryWeight,
		"risk.temporal_weight":      r.TemporalWeight,
		"risk.concentration_weight": r.ConcentrationWeight,
		"risk.pattern_weight":       r.PatternWeight,
	}
	sum := 0.0
	for field, w := range weights {
		if w < 0 {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("weight must not be negative, got %g", w)}
		}
		sum += w
	}
	if sum == 0 {
		return &ConfigError{Field: "risk", Reason: "at least one factor weight must be positive"}
	}

	return nil
}
