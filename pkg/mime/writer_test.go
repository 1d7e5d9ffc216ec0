package mime

import (
	"encoding/base64"
	"io"
	stdmime "mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/carismo/shopmail/pkg/interfaces"
)

type parsedPart struct {
	mediaType string
	body      string
}

// decodeEnvelope decodes a base64url raw envelope back into its header
// and top-level MIME parts.
func decodeEnvelope(t *testing.T, raw string) (*mail.Message, string, []parsedPart) {
	t.Helper()
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("decode raw envelope: %v", err)
	}
	msg, err := mail.ReadMessage(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("parse envelope: %v", err)
	}
	mediaType, params, err := stdmime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	mr := multipart.NewReader(msg.Body, params["boundary"])
	var parts []parsedPart
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		partType, _, err := stdmime.ParseMediaType(p.Header.Get("Content-Type"))
		if err != nil {
			t.Fatalf("parse part content type: %v", err)
		}
		body, err := io.ReadAll(p)
		if err != nil {
			t.Fatalf("read part body: %v", err)
		}
		parts = append(parts, parsedPart{mediaType: partType, body: string(body)})
	}
	return msg, mediaType, parts
}

func TestBuildReplyRawRoundTrip(t *testing.T) {
	raw := BuildReplyRaw(Envelope{
		From:       "shop@carismodesign.com",
		To:         "jane@x.com",
		Subject:    "Re: Refund notification",
		TextBody:   "Hi",
		HTMLBody:   "<p>Hi</p>",
		InReplyTo:  "<abc@mail.example>",
		References: "<abc@mail.example>",
	})
	msg, mediaType, parts := decodeEnvelope(t, raw)

	if mediaType != "multipart/alternative" {
		t.Fatalf("media type = %q, want multipart/alternative", mediaType)
	}
	if got := msg.Header.Get("In-Reply-To"); got != "<abc@mail.example>" {
		t.Errorf("In-Reply-To = %q", got)
	}
	if got := msg.Header.Get("References"); got != "<abc@mail.example>" {
		t.Errorf("References = %q", got)
	}
	if len(parts) != 2 {
		t.Fatalf("part count = %d, want 2", len(parts))
	}
	if parts[0].mediaType != "text/plain" || strings.TrimRight(parts[0].body, "\r\n") != "Hi" {
		t.Errorf("first part = %q %q, want text/plain Hi", parts[0].mediaType, parts[0].body)
	}
	if parts[1].mediaType != "text/html" || strings.TrimRight(parts[1].body, "\r\n") != "<p>Hi</p>" {
		t.Errorf("second part = %q %q, want text/html <p>Hi</p>", parts[1].mediaType, parts[1].body)
	}
}

func TestBuildReplyRawOmitsThreadingHeadersWhenAbsent(t *testing.T) {
	raw := BuildReplyRaw(Envelope{
		From: "shop@carismodesign.com", To: "jane@x.com",
		Subject: "Re: Hello", TextBody: "x", HTMLBody: "<p>x</p>",
	})
	msg, _, _ := decodeEnvelope(t, raw)
	if got := msg.Header.Get("In-Reply-To"); got != "" {
		t.Errorf("In-Reply-To = %q, want absent", got)
	}
	if got := msg.Header.Get("References"); got != "" {
		t.Errorf("References = %q, want absent", got)
	}
}

func TestBuildForwardRawWithoutAttachments(t *testing.T) {
	raw := BuildForwardRaw(Envelope{
		From: "shop@carismodesign.com", To: "kenny@carismodesign.com",
		Subject: "Fwd: Refund notification", TextBody: "t", HTMLBody: "<p>t</p>",
	})
	_, mediaType, parts := decodeEnvelope(t, raw)
	if mediaType != "multipart/mixed" {
		t.Fatalf("media type = %q, want multipart/mixed", mediaType)
	}
	if len(parts) != 1 {
		t.Fatalf("part count = %d, want 1", len(parts))
	}
	if parts[0].mediaType != "multipart/alternative" {
		t.Errorf("single child = %q, want multipart/alternative", parts[0].mediaType)
	}
}

func TestBuildForwardRawWithAttachments(t *testing.T) {
	atts := []interfaces.Attachment{
		{Filename: `inv"oice.pdf`, MimeType: "application/pdf", Data: base64.StdEncoding.EncodeToString([]byte("%PDF"))},
		{Filename: "label.png", MimeType: "image/png", Data: base64.StdEncoding.EncodeToString([]byte("PNG"))},
	}
	raw := BuildForwardRaw(Envelope{
		From: "shop@carismodesign.com", To: "kenny@carismodesign.com",
		Subject: "Fwd: Refund notification", TextBody: "t", HTMLBody: "<p>t</p>",
		Attachments: atts,
	})
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Contains(string(decoded), `inv"oice.pdf`) {
		t.Error("quote characters not stripped from attachment filename")
	}

	_, mediaType, parts := decodeEnvelope(t, raw)
	if mediaType != "multipart/mixed" {
		t.Fatalf("media type = %q, want multipart/mixed", mediaType)
	}
	if len(parts) != 3 {
		t.Fatalf("part count = %d, want alternative block + 2 attachments", len(parts))
	}
	if parts[0].mediaType != "multipart/alternative" {
		t.Errorf("first part = %q, want multipart/alternative", parts[0].mediaType)
	}
	if parts[1].mediaType != "application/pdf" || parts[2].mediaType != "image/png" {
		t.Errorf("attachment order = %q, %q", parts[1].mediaType, parts[2].mediaType)
	}
}

func TestBoundariesAreFreshPerEnvelope(t *testing.T) {
	env := Envelope{From: "a@b.c", To: "d@e.f", Subject: "s", TextBody: "t", HTMLBody: "h"}
	first, _ := base64.RawURLEncoding.DecodeString(BuildReplyRaw(env))
	second, _ := base64.RawURLEncoding.DecodeString(BuildReplyRaw(env))
	if string(first) == string(second) {
		t.Error("two envelopes share the same boundary")
	}
}

func TestEnsurePrefix(t *testing.T) {
	tests := []struct {
		subject, prefix, want string
	}{
		{"Refund notification", "Re:", "Re: Refund notification"},
		{"Re: Refund notification", "Re:", "Re: Refund notification"},
		{"RE: Refund notification", "Re:", "RE: Refund notification"},
		{"Refund notification", "Fwd:", "Fwd: Refund notification"},
		{"fwd: Refund notification", "Fwd:", "fwd: Refund notification"},
	}
	for _, tt := range tests {
		if got := EnsurePrefix(tt.subject, tt.prefix); got != tt.want {
			t.Errorf("EnsurePrefix(%q, %q) = %q, want %q", tt.subject, tt.prefix, got, tt.want)
		}
	}
}
