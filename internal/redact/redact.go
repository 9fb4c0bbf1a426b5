// Package redact masks contact information and other sensitive patterns
// in extracted text before it is retained or surfaced.
package redact

import (
	"regexp"
)

// Replacement markers.
const (
	EmailMask = "[EMAIL_REDACTED]"
	PhoneMask = "[PHONE_REDACTED]"
	IPMask    = "[IP_REDACTED]"
	CardMask  = "[CARD_REDACTED]"
	SSNMask   = "[SSN_REDACTED]"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	// US/Canada then international phone formats. Order matters: the
	// longer patterns must run before the masks they would otherwise split.
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\+?1?[-.\s]?\(?[0-9]{3}\)?[-.\s][0-9]{3}[-.\s]?[0-9]{4}\b`),
		regexp.MustCompile(`\+[0-9]{2,3}[-.\s]?[0-9]{3,4}[-.\s]?[0-9]{3,4}[-.\s]?[0-9]{3,4}\b`),
	}

	ipRe   = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)
	cardRe = regexp.MustCompile(`\b(?:[0-9]{4}[-\s]){3}[0-9]{4}\b`)
	ssnRe  = regexp.MustCompile(`\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`)
)

// ContactInfo masks emails, phone numbers, IP addresses, card numbers and
// SSNs. Safe to apply repeatedly; masks are never re-masked.
func ContactInfo(text string) string {
	if text == "" {
		return text
	}

	text = emailRe.ReplaceAllString(text, EmailMask)
	text = ssnRe.ReplaceAllString(text, SSNMask)
	text = cardRe.ReplaceAllString(text, CardMask)
	text = ipRe.ReplaceAllString(text, IPMask)
	for _, re := range phoneRes {
		text = re.ReplaceAllString(text, PhoneMask)
	}
	return text
}

// ContainsContactInfo reports whether the text still holds unmasked
// contact patterns. Used by tests and the GDPR audit path.
func ContainsContactInfo(text string) bool {
	if emailRe.MatchString(text) || ssnRe.MatchString(text) || cardRe.MatchString(text) {
		return true
	}
	for _, re := range phoneRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
