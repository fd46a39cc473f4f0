package classifier

import (
	"regexp"
	"strings"

	"github.com/tracewell/comm-forensics-service/internal/domain"
	"github.com/tracewell/comm-forensics-service/internal/normalizer"
)

// Rule is one classification predicate. Rules are independent: the
// classifier evaluates the whole table and collects every matching tag.
type Rule interface {
	Tag() domain.Tag
	Evaluate(e *domain.Event, ctx *Context) bool
}

// KeywordRule matches when the event content contains any keyword from its
// lexicon, case-insensitively.
type KeywordRule struct {
	RuleTag  domain.Tag
	Keywords []string
}

func (r *KeywordRule) Tag() domain.Tag { return r.RuleTag }

func (r *KeywordRule) Evaluate(e *domain.Event, _ *Context) bool {
	content := strings.ToLower(e.ContentSummary)
	if content == "" {
		return false
	}
	for _, keyword := range r.Keywords {
		if strings.Contains(content, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// PatternRule matches when the event content matches a regular expression,
// optionally restricted to a channel set.
type PatternRule struct {
	RuleTag  domain.Tag
	Pattern  *regexp.Regexp
	Channels []domain.Channel
}

func (r *PatternRule) Tag() domain.Tag { return r.RuleTag }

func (r *PatternRule) Evaluate(e *domain.Event, _ *Context) bool {
	if len(r.Channels) > 0 {
		applies := false
		for _, ch := range r.Channels {
			if e.Channel == ch {
				applies = true
				break
			}
		}
		if !applies {
			return false
		}
	}
	return e.ContentSummary != "" && r.Pattern.MatchString(e.ContentSummary)
}

// ThresholdRule matches when its predicate over the event and the per-run
// context holds. Used for the structural signals: short-call bursts,
// international identities, extended communication, unknown senders.
type ThresholdRule struct {
	RuleTag domain.Tag
	Exceeds func(e *domain.Event, ctx *Context) bool
}

func (r *ThresholdRule) Tag() domain.Tag { return r.RuleTag }

func (r *ThresholdRule) Evaluate(e *domain.Event, ctx *Context) bool {
	return r.Exceeds(e, ctx)
}

// anyOf matches when any member rule matches.
type anyOf struct {
	tag   domain.Tag
	rules []Rule
}

func (r *anyOf) Tag() domain.Tag { return r.tag }

func (r *anyOf) Evaluate(e *domain.Event, ctx *Context) bool {
	for _, rule := range r.rules {
		if rule.Evaluate(e, ctx) {
			return true
		}
	}
	return false
}

// allOf matches when every member rule matches.
type allOf struct {
	tag   domain.Tag
	rules []Rule
}

func (r *allOf) Tag() domain.Tag { return r.tag }

func (r *allOf) Evaluate(e *domain.Event, ctx *Context) bool {
	for _, rule := range r.rules {
		if !rule.Evaluate(e, ctx) {
			return false
		}
	}
	return true
}

var monetaryAmount = regexp.MustCompile(`\$\s?\d[\d,]*(\.\d+)?`)

func shortCallBurst(e *domain.Event, ctx *Context) bool {
	return e.Channel == domain.ChannelCall && ctx.InShortCallBurst(e.ID)
}

func internationalIdentity(e *domain.Event, ctx *Context) bool {
	for _, id := range []string{e.Origin, e.Destination} {
		if id == "" {
			continue
		}
		if strings.HasPrefix(id, "+") && !strings.HasPrefix(id, ctx.cfg.DomesticCountryCode) {
			return true
		}
		if domainPart := normalizer.EmailDomain(id); domainPart != "" {
			for _, suffix := range ctx.cfg.ForeignDomainSuffixes {
				if strings.HasSuffix(domainPart, suffix) {
					return true
				}
			}
		}
	}
	return false
}

func extendedComm(e *domain.Event, ctx *Context) bool {
	cutoff := ctx.ExtendedThreshold(e.Channel)
	if e.Channel == domain.ChannelCall {
		return float64(e.DurationSeconds) > cutoff
	}
	return float64(len(e.ContentSummary)) > cutoff
}

func unknownSender(e *domain.Event, ctx *Context) bool {
	if e.Origin == "" {
		return true
	}
	return !ctx.KnownContact(e.Origin)
}
