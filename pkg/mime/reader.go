// Package mime flattens Gmail message part trees into body pairs and
// frames outgoing reply/forward envelopes as raw RFC-822 text.
package mime

import (
	"encoding/base64"
	"regexp"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/carismo/shopmail/pkg/interfaces"
)

// WalkParts visits every leaf of a message part tree depth-first,
// left-first. Multipart containers are descended into, never visited
// themselves. Both body extraction and attachment collection run on
// this one traversal so their ordering can never diverge.
func WalkParts(part *gmailv1.MessagePart, visit func(leaf *gmailv1.MessagePart)) {
	if part == nil {
		return
	}
	if strings.HasPrefix(part.MimeType, "multipart/") {
		for _, child := range part.Parts {
			WalkParts(child, visit)
		}
		return
	}
	visit(part)
}

// ExtractBodies walks the tree and keeps the first non-empty HTML and
// the first non-empty plain-text payload found. A later part never
// overwrites an earlier one; leaf types other than text/plain and
// text/html contribute nothing. Undecodable payloads are skipped, not
// surfaced as errors.
func ExtractBodies(root *gmailv1.MessagePart) (html, text string) {
	WalkParts(root, func(leaf *gmailv1.MessagePart) {
		if leaf.Body == nil || leaf.Body.Data == "" {
			return
		}
		data, err := DecodeBase64URL(leaf.Body.Data)
		if err != nil {
			return
		}
		switch leaf.MimeType {
		case "text/html":
			if html == "" {
				html = string(data)
			}
		case "text/plain":
			if text == "" {
				text = string(data)
			}
		}
	})
	return html, text
}

// FlattenMessage reduces a full Gmail message to the flat record the
// workflow operates on. When the source has no plain-text part, the
// text body is synthesized from the HTML as a last resort.
func FlattenMessage(msg *gmailv1.Message) *interfaces.MailMessage {
	headers := headerMap(msg.Payload)
	html, text := ExtractBodies(msg.Payload)
	if text == "" && html != "" {
		text = TextFromHTML(html)
	}
	return &interfaces.MailMessage{
		ID:        msg.Id,
		ThreadID:  msg.ThreadId,
		Subject:   headers["subject"],
		From:      headers["from"],
		To:        headers["to"],
		ReplyTo:   headers["reply-to"],
		Date:      headers["date"],
		MessageID: headers["message-id"],
		BodyHTML:  html,
		BodyText:  text,
	}
}

func headerMap(payload *gmailv1.MessagePart) map[string]string {
	headers := make(map[string]string)
	if payload == nil {
		return headers
	}
	for _, h := range payload.Headers {
		headers[strings.ToLower(h.Name)] = h.Value
	}
	return headers
}

var (
	paragraphClose = regexp.MustCompile(`(?i)</p>`)
	lineBreak      = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTag         = regexp.MustCompile(`<[^>]+>`)
)

// TextFromHTML collapses HTML markup to plain text: paragraph closes
// become blank lines, line breaks become newlines, remaining tags are
// stripped.
func TextFromHTML(html string) string {
	out := paragraphClose.ReplaceAllString(html, "\n\n")
	out = lineBreak.ReplaceAllString(out, "\n")
	out = anyTag.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// DecodeBase64URL decodes URL-safe base64 with or without padding;
// Gmail payloads arrive unpadded.
func DecodeBase64URL(s string) ([]byte, error) {
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return base64.URLEncoding.DecodeString(s)
}
