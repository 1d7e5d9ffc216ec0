package mime

import (
	"fmt"
	"strings"

	"github.com/carismo/shopmail/pkg/interfaces"
)

// Placeholder is rendered wherever a source body could not be
// recovered. It is never stored on a MailMessage.
const Placeholder = "[original message not available]"

// EscapeToHTML converts operator-typed plain text into safe HTML, one
// paragraph per line with blank lines preserved.
func EscapeToHTML(text string) string {
	esc := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(text)
	lines := strings.Split(esc, "\n")
	var b strings.Builder
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			b.WriteString("<p><br></p>")
		} else {
			b.WriteString("<p>" + line + "</p>")
		}
	}
	return b.String()
}

// QuoteReplyHTML builds the HTML reply body: the operator's message
// followed by an attributed blockquote of the original.
func QuoteReplyHTML(body string, orig *interfaces.MailMessage) string {
	quoted := orig.BodyHTML
	if quoted == "" && orig.BodyText != "" {
		quoted = EscapeToHTML(orig.BodyText)
	}
	if quoted == "" {
		quoted = Placeholder
	}
	return EscapeToHTML(body) + "\n<br>\n" +
		fmt.Sprintf("<div>On %s, %s wrote:</div>", orig.Date, orig.From) +
		fmt.Sprintf(`<blockquote style="margin:0 0 0 .8ex;border-left:1px solid #ccc;padding-left:1ex">%s</blockquote>`, quoted)
}

// QuoteReplyText builds the plain-text reply body with the original
// quoted line by line.
func QuoteReplyText(body string, orig *interfaces.MailMessage) string {
	quoted := "> " + Placeholder
	if orig.BodyText != "" {
		lines := strings.Split(orig.BodyText, "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		quoted = strings.Join(lines, "\n")
	}
	return fmt.Sprintf("%s\n\nOn %s, %s wrote:\n%s", body, orig.Date, orig.From, quoted)
}

// ForwardHTML builds the HTML forward body: the conventional forwarded
// message header block followed by the original body.
func ForwardHTML(orig *interfaces.MailMessage) string {
	body := orig.BodyHTML
	if body == "" && orig.BodyText != "" {
		body = EscapeToHTML(orig.BodyText)
	}
	if body == "" {
		body = "<div>" + Placeholder + "</div>"
	}
	header := strings.Join([]string{
		"<div>---------- Forwarded message ----------</div>",
		fmt.Sprintf("<div>From: %s</div>", orig.From),
		fmt.Sprintf("<div>Date: %s</div>", orig.Date),
		fmt.Sprintf("<div>Subject: %s</div>", orig.Subject),
		fmt.Sprintf("<div>To: %s</div>", orig.To),
		"<br/>",
	}, "\n")
	return header + body
}

// ForwardText is the plain-text counterpart of ForwardHTML.
func ForwardText(orig *interfaces.MailMessage) string {
	body := orig.BodyText
	if body == "" {
		body = Placeholder
	}
	return fmt.Sprintf("---------- Forwarded message ----------\nFrom: %s\nDate: %s\nSubject: %s\nTo: %s\n\n%s",
		orig.From, orig.Date, orig.Subject, orig.To, body)
}

// EnsurePrefix prepends prefix (e.g. "Re:", "Fwd:") unless the subject
// already starts with it, compared case-insensitively.
func EnsurePrefix(subject, prefix string) string {
	if strings.HasPrefix(strings.ToLower(subject), strings.ToLower(prefix)) {
		return subject
	}
	return prefix + " " + subject
}
