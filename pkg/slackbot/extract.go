package slackbot

import (
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

var subjectLinePrefix = regexp.MustCompile(`(?i)^subject:\s*`)

// extractSubject pulls the best subject guess out of a relayed email
// post. Precedence: an email-mode file's subject header, then its
// display title, then a legacy attachment title, then the first text
// line with any leading "Subject:" marker stripped.
func extractSubject(msg *slack.Msg) string {
	for _, f := range msg.Files {
		if f.Mode != "email" {
			continue
		}
		if f.Subject != "" {
			return strings.TrimSpace(f.Subject)
		}
		if f.Title != "" {
			return strings.TrimSpace(f.Title)
		}
	}
	for _, a := range msg.Attachments {
		if a.Title != "" {
			return strings.TrimSpace(a.Title)
		}
	}
	if msg.Text != "" {
		first := strings.TrimSpace(strings.SplitN(msg.Text, "\n", 2)[0])
		return strings.TrimSpace(subjectLinePrefix.ReplaceAllString(first, ""))
	}
	return ""
}
