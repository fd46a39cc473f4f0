package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tracewell/comm-forensics-service/internal/domain"
)

const topContactLimit = 20

// WriteTextReport writes the human-readable investigation report. Content
// is derived from the summary only, so identical inputs produce identical
// report files.
func WriteTextReport(path string, summary *Summary) error {
	var b strings.Builder
	rule := strings.Repeat("=", 72)
	thin := strings.Repeat("-", 72)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "COMMUNICATION ANALYSIS REPORT")
	fmt.Fprintln(&b, rule)
	if summary.UserIdentity != "" {
		confidence := "majority"
		if summary.UserInferenceLowConfidence {
			confidence = "low confidence (plurality only)"
		}
		fmt.Fprintf(&b, "Inferred user identity: %s [%s]\n", summary.UserIdentity, confidence)
	}
	if summary.TotalEvents > 0 {
		fmt.Fprintf(&b, "Analysis period: %s to %s (%d days)\n",
			summary.AnalysisPeriod.Start.Format(timestampLayout),
			summary.AnalysisPeriod.End.Format(timestampLayout),
			summary.AnalysisPeriod.Days)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "DATA SOURCES")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Total events: %d (skipped records: %d)\n", summary.TotalEvents, summary.SkippedRecords)
	for _, channel := range []domain.Channel{domain.ChannelSMS, domain.ChannelCall, domain.ChannelEmail} {
		fmt.Fprintf(&b, "  %-6s %d\n", channel, summary.EventsByChannel[string(channel)])
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "FORENSIC CATEGORIES")
	fmt.Fprintln(&b, thin)
	writeTagCounts(&b, summary.EventsByTag)

	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "TOP CONTACTS (%d unique)\n", len(summary.Contacts))
	fmt.Fprintln(&b, thin)
	limit := len(summary.Contacts)
	if limit > topContactLimit {
		limit = topContactLimit
	}
	for i := 0; i < limit; i++ {
		c := &summary.Contacts[i]
		fmt.Fprintf(&b, "%3d. %-32s total=%-5d sms=%-4d calls=%-4d emails=%d\n",
			i+1, c.Identity, c.TotalEvents,
			c.EventsByChannel[domain.ChannelSMS],
			c.EventsByChannel[domain.ChannelCall],
			c.EventsByChannel[domain.ChannelEmail])
	}

	if len(summary.Findings) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "CROSS-CHANNEL PATTERN FINDINGS")
		fmt.Fprintln(&b, thin)
		for i := range summary.Findings {
			f := &summary.Findings[i]
			channels := make([]string, len(f.ChannelSequence))
			for j, ch := range f.ChannelSequence {
				channels[j] = string(ch)
			}
			marker := ""
			if f.Suspicious {
				marker = " [SUSPICIOUS]"
			}
			fmt.Fprintf(&b, "  %s: %s, %d events, %s to %s, severity %d%s\n",
				f.Contact, strings.Join(channels, ">"), len(f.EventIDs),
				f.WindowStart.Format(timestampLayout), f.WindowEnd.Format(timestampLayout),
				f.Severity, marker)
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "RISK ASSESSMENT")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Overall risk score: %.1f/100 (%s)\n", summary.GlobalRisk.Score, riskLevel(summary.GlobalRisk.Score))
	for _, factor := range summary.GlobalRisk.Factors {
		fmt.Fprintf(&b, "  %-22s +%5.1f  %s\n", factor.Name, factor.Contribution, factor.Explanation)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func writeTagCounts(b *strings.Builder, byTag map[string]int) {
	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return domain.TagRank(domain.Tag(tags[i])) < domain.TagRank(domain.Tag(tags[j]))
	})
	for _, tag := range tags {
		fmt.Fprintf(b, "  %-15s %d\n", tag, byTag[tag])
	}
}

func riskLevel(score float64) string {
	switch {
	case score < 20:
		return "LOW"
	case score < 50:
		return "MODERATE"
	case score < 75:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}
