package mime

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carismo/shopmail/pkg/interfaces"
)

// Envelope carries everything needed to frame one outgoing message.
type Envelope struct {
	From        string
	To          string
	Subject     string
	TextBody    string
	HTMLBody    string
	InReplyTo   string
	References  string
	Attachments []interfaces.Attachment
}

// BuildReplyRaw frames a multipart/alternative envelope (plain text
// part first, then HTML) and returns it base64url-encoded for
// submission. In-Reply-To and References headers are included when the
// envelope carries them.
func BuildReplyRaw(env Envelope) string {
	boundary := newBoundary("b")
	headers := []string{
		"From: " + env.From,
		"To: " + env.To,
		"Subject: " + env.Subject,
		"MIME-Version: 1.0",
		fmt.Sprintf(`Content-Type: multipart/alternative; boundary="%s"`, boundary),
	}
	if env.InReplyTo != "" {
		headers = append(headers, "In-Reply-To: "+env.InReplyTo)
	}
	if env.References != "" {
		headers = append(headers, "References: "+env.References)
	}

	parts := alternativeParts(boundary, env.TextBody, env.HTMLBody)
	parts = append(parts, "--"+boundary+"--", "")
	return encodeRaw(headers, parts)
}

// BuildForwardRaw frames a multipart/mixed envelope: one alternative
// block followed by the attachments in collection order. Quote
// characters are stripped from filenames to keep them out of header
// values.
func BuildForwardRaw(env Envelope) string {
	mixed := newBoundary("mix")
	alt := newBoundary("alt")
	headers := []string{
		"From: " + env.From,
		"To: " + env.To,
		"Subject: " + env.Subject,
		"MIME-Version: 1.0",
		fmt.Sprintf(`Content-Type: multipart/mixed; boundary="%s"`, mixed),
	}

	parts := []string{
		"--" + mixed,
		fmt.Sprintf(`Content-Type: multipart/alternative; boundary="%s"`, alt),
		"",
	}
	parts = append(parts, alternativeParts(alt, env.TextBody, env.HTMLBody)...)
	parts = append(parts, "--"+alt+"--", "")

	for _, att := range env.Attachments {
		name := strings.ReplaceAll(att.Filename, `"`, "")
		parts = append(parts,
			"--"+mixed,
			fmt.Sprintf(`Content-Type: %s; name="%s"`, att.MimeType, name),
			"Content-Transfer-Encoding: base64",
			fmt.Sprintf(`Content-Disposition: attachment; filename="%s"`, name),
			"",
			att.Data,
			"",
		)
	}
	parts = append(parts, "--"+mixed+"--", "")
	return encodeRaw(headers, parts)
}

func alternativeParts(boundary, textBody, htmlBody string) []string {
	return []string{
		"--" + boundary,
		`Content-Type: text/plain; charset="UTF-8"`,
		"Content-Transfer-Encoding: 7bit",
		"",
		textBody,
		"--" + boundary,
		`Content-Type: text/html; charset="UTF-8"`,
		"Content-Transfer-Encoding: 7bit",
		"",
		htmlBody,
	}
}

// newBoundary returns a fresh boundary token. Randomness keeps nested
// boundaries from colliding with message content.
func newBoundary(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func encodeRaw(headers, parts []string) string {
	rfc822 := strings.Join(headers, "\r\n") + "\r\n\r\n" + strings.Join(parts, "\r\n")
	return base64.RawURLEncoding.EncodeToString([]byte(rfc822))
}
