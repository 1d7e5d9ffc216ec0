// Package classify recognizes shop order-notification subjects and
// parses raw address headers.
package classify

import (
	"regexp"
	"strings"
)

// subjectPatterns is the fixed set of recognized notification subjects.
// Each pattern is tested against the full normalized subject; matching
// any one of them means the message is an order notification we act on.
var subjectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Your order is confirmed - no further action needed!$`),
	regexp.MustCompile(`(?i)^Refund notification$`),
	regexp.MustCompile(`(?i)^A shipment from order C#\d{3,6} is out for delivery$`),
	regexp.MustCompile(`(?i)^A shipment from order C#\d{3,6} has been delivered$`),
	regexp.MustCompile(`(?i)^A shipment from order C#\d{3,6} is on the way$`),
	regexp.MustCompile(`(?i)^Order confirmed, no further action needed!$`),
	regexp.MustCompile(`(?i)^URGENT - COULD NOT PROCESS PAYMENT$`),
	regexp.MustCompile(`(?i)^Welcome to the Carismo family!$`),
	regexp.MustCompile(`(?i)^Your Carismo order is ready for pickup$`),
	regexp.MustCompile(`(?i)^Your order has been picked up$`),
	regexp.MustCompile(`(?i)^Carismo \$\d+(?:\.\d{2})? store credit$`),
	regexp.MustCompile(`(?i)^Order #\d{3,6} has been canceled$`),
}

var replyForwardPrefix = regexp.MustCompile(`(?i)^(?:re:|fwd?:)\s*`)

// Normalize strips any number of leading reply/forward markers, in any
// combination ("Fwd: Re: Fwd: X" -> "X"). Normalizing an already
// normalized subject is a no-op.
func Normalize(subject string) string {
	out := strings.TrimSpace(subject)
	for replyForwardPrefix.MatchString(out) {
		out = replyForwardPrefix.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}

// Match reports whether subject is a recognized order notification,
// returning the normalized subject alongside. Empty or whitespace-only
// subjects never match.
func Match(subject string) (string, bool) {
	norm := Normalize(subject)
	if norm == "" {
		return "", false
	}
	for _, re := range subjectPatterns {
		if re.MatchString(norm) {
			return norm, true
		}
	}
	return norm, false
}
