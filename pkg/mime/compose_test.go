package mime

import (
	"strings"
	"testing"

	"github.com/carismo/shopmail/pkg/interfaces"
)

func TestEscapeToHTML(t *testing.T) {
	got := EscapeToHTML("a < b & c > d\n\nsecond")
	want := "<p>a &lt; b &amp; c &gt; d</p><p><br></p><p>second</p>"
	if got != want {
		t.Errorf("EscapeToHTML = %q, want %q", got, want)
	}
}

func TestQuoteReplyTextQuotesOriginalLines(t *testing.T) {
	orig := &interfaces.MailMessage{
		From:     "Jane <jane@x.com>",
		Date:     "Mon, 2 Jan 2006 15:04:05 -0700",
		BodyText: "line one\nline two",
	}
	got := QuoteReplyText("Thanks!", orig)
	if !strings.HasPrefix(got, "Thanks!\n\nOn Mon, 2 Jan 2006 15:04:05 -0700, Jane <jane@x.com> wrote:\n") {
		t.Errorf("missing attribution header: %q", got)
	}
	if !strings.Contains(got, "> line one\n> line two") {
		t.Errorf("original lines not quoted: %q", got)
	}
}

func TestQuoteReplyTextPlaceholderWhenBodyMissing(t *testing.T) {
	got := QuoteReplyText("Hi", &interfaces.MailMessage{From: "x@y.z", Date: "today"})
	if !strings.Contains(got, "> "+Placeholder) {
		t.Errorf("missing placeholder: %q", got)
	}
}

func TestQuoteReplyHTMLPrefersOriginalHTML(t *testing.T) {
	orig := &interfaces.MailMessage{
		From:     "jane@x.com",
		Date:     "today",
		BodyHTML: "<p>original</p>",
		BodyText: "original",
	}
	got := QuoteReplyHTML("Hello", orig)
	if !strings.Contains(got, "<blockquote") || !strings.Contains(got, "<p>original</p>") {
		t.Errorf("original html not quoted: %q", got)
	}
	if !strings.Contains(got, "<p>Hello</p>") {
		t.Errorf("operator text not rendered: %q", got)
	}
}

func TestQuoteReplyHTMLFallsBackToEscapedText(t *testing.T) {
	orig := &interfaces.MailMessage{From: "jane@x.com", Date: "today", BodyText: "1 < 2"}
	got := QuoteReplyHTML("Hello", orig)
	if !strings.Contains(got, "<p>1 &lt; 2</p>") {
		t.Errorf("text body not escaped into quote: %q", got)
	}
}

func TestForwardBodiesCarryHeaderBlock(t *testing.T) {
	orig := &interfaces.MailMessage{
		From:     "jane@x.com",
		To:       "shop@carismodesign.com",
		Date:     "today",
		Subject:  "Refund notification",
		BodyHTML: "<p>body</p>",
		BodyText: "body",
	}
	html := ForwardHTML(orig)
	text := ForwardText(orig)
	for _, want := range []string{"---------- Forwarded message ----------", "From: jane@x.com", "Subject: Refund notification", "To: shop@carismodesign.com"} {
		if !strings.Contains(html, want) {
			t.Errorf("forward html missing %q", want)
		}
		if !strings.Contains(text, want) {
			t.Errorf("forward text missing %q", want)
		}
	}
}

func TestForwardBodiesPlaceholderWhenEmpty(t *testing.T) {
	orig := &interfaces.MailMessage{From: "jane@x.com", Date: "today"}
	if got := ForwardHTML(orig); !strings.Contains(got, Placeholder) {
		t.Errorf("forward html missing placeholder: %q", got)
	}
	if got := ForwardText(orig); !strings.Contains(got, Placeholder) {
		t.Errorf("forward text missing placeholder: %q", got)
	}
}
