package normalizer

import (
	"regexp"
	"strings"
)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\d{10,15}`),
}

var nonDialRunes = regexp.MustCompile(`[^\d+]`)

// NormalizeIdentity canonicalizes an identity string. Email addresses are
// lowercased; anything containing a recognizable phone number collapses to
// E.164-ish form with a +1 default country code for bare 10-digit numbers.
// Unrecognizable values pass through trimmed, never fabricated.
func NormalizeIdentity(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.ContainsRune(value, '@') {
		return strings.ToLower(value)
	}

	for _, pattern := range phonePatterns {
		match := pattern.FindString(value)
		if match == "" {
			continue
		}
		number := nonDialRunes.ReplaceAllString(match, "")
		digits := strings.TrimPrefix(number, "+")
		switch {
		case len(digits) == 10 && !strings.HasPrefix(number, "+"):
			return "+1" + digits
		case len(digits) == 11 && strings.HasPrefix(digits, "1"):
			return "+" + digits
		case strings.HasPrefix(number, "+"):
			return number
		default:
			return "+" + digits
		}
	}

	return value
}

// EmailDomain returns the lowercase domain part of an email identity, or ""
// for non-email identities.
func EmailDomain(identity string) string {
	at := strings.LastIndexByte(identity, '@')
	if at < 0 || at == len(identity)-1 {
		return ""
	}
	return strings.ToLower(identity[at+1:])
}
