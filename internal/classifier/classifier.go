// Package classifier assigns forensic category tags to events through an
// ordered rule table. Rules one through six are independent and an event can
// collect several tags; ROUTINE is the exclusive fallback when nothing else
// fires. Rule order doubles as the display priority of tags in reports.
package classifier

import (
	"github.com/tracewell/comm-forensics-service/internal/config"
	"github.com/tracewell/comm-forensics-service/internal/domain"
)

// Classifier evaluates the rule table against events.
type Classifier struct {
	rules []Rule
}

// New builds the classifier's rule table from the profile lexicons.
// The table order is fixed: SUSPICIOUS, FINANCIAL, URGENT, INTERNATIONAL,
// EXTENDED_COMM, SPAM.
func New(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{
		rules: []Rule{
			&KeywordRule{RuleTag: domain.TagSuspicious, Keywords: cfg.SuspiciousKeywords},
			&anyOf{tag: domain.TagFinancial, rules: []Rule{
				&KeywordRule{RuleTag: domain.TagFinancial, Keywords: cfg.FinancialKeywords},
				&PatternRule{
					RuleTag:  domain.TagFinancial,
					Pattern:  monetaryAmount,
					Channels: []domain.Channel{domain.ChannelSMS, domain.ChannelEmail},
				},
			}},
			&anyOf{tag: domain.TagUrgent, rules: []Rule{
				&KeywordRule{RuleTag: domain.TagUrgent, Keywords: cfg.UrgencyKeywords},
				&ThresholdRule{RuleTag: domain.TagUrgent, Exceeds: shortCallBurst},
			}},
			&ThresholdRule{RuleTag: domain.TagInternational, Exceeds: internationalIdentity},
			&ThresholdRule{RuleTag: domain.TagExtendedComm, Exceeds: extendedComm},
			&allOf{tag: domain.TagSpam, rules: []Rule{
				&KeywordRule{RuleTag: domain.TagSpam, Keywords: cfg.SpamKeywords},
				&ThresholdRule{RuleTag: domain.TagSpam, Exceeds: unknownSender},
			}},
		},
	}
}

// Classify returns the tags for one event, in rule order. The result is
// never empty: ROUTINE is returned when no rule matched.
func (c *Classifier) Classify(e *domain.Event, ctx *Context) []domain.Tag {
	var tags []domain.Tag
	for _, rule := range c.rules {
		if rule.Evaluate(e, ctx) {
			tags = append(tags, rule.Tag())
		}
	}
	if len(tags) == 0 {
		tags = []domain.Tag{domain.TagRoutine}
	}
	return tags
}

// ClassifyAll tags every event in place.
func (c *Classifier) ClassifyAll(events []domain.Event, ctx *Context) {
	for i := range events {
		events[i].Tags = c.Classify(&events[i], ctx)
	}
}
