package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carismo/shopmail/pkg/classify"
	"github.com/carismo/shopmail/pkg/interfaces"
	"github.com/carismo/shopmail/pkg/mime"
)

var (
	// ErrNoThread means the best-effort subject search yielded nothing.
	ErrNoThread = errors.New("could not locate mail thread")
	// ErrNoRecipient means the resolved thread carried no usable
	// customer address.
	ErrNoRecipient = errors.New("could not determine customer address")
)

// Controller executes the terminal steps of reply and forward flows.
// It owns all outcome posting back into the originating chat thread;
// cancellation posts nothing.
type Controller struct {
	mailbox        interfaces.Mailbox
	conv           interfaces.Conversation
	log            interfaces.Logger
	forwardChoices []string
}

func NewController(mailbox interfaces.Mailbox, conv interfaces.Conversation, log interfaces.Logger, forwardChoices []string) *Controller {
	return &Controller{
		mailbox:        mailbox,
		conv:           conv,
		log:            log,
		forwardChoices: forwardChoices,
	}
}

// ForwardChoices is the fixed recipient list offered in the forward
// picker.
func (c *Controller) ForwardChoices() []string {
	return c.forwardChoices
}

// PrepareReply resolves everything a reply needs before any input form
// is shown: the customer thread, its latest inbound message, the
// recipient and the prefixed subject. On failure the flow terminates
// here with an operator-visible message; no degraded reply path is
// offered.
func (c *Controller) PrepareReply(ctx context.Context, st State) (State, error) {
	resolved, err := c.resolveReply(ctx, st)
	if err != nil {
		c.log.Error(fmt.Sprintf("reply resolution failed for subject %q: %v", st.SubjectGuess, err))
		c.post(ctx, st, "❌ Cannot determine customer email/subject/thread for reply. Please reply from Gmail.")
		return st, err
	}
	return resolved, nil
}

func (c *Controller) resolveReply(ctx context.Context, st State) (State, error) {
	threadID, err := c.mailbox.FindThreadBySubject(ctx, st.SubjectGuess)
	if err != nil {
		return st, err
	}
	if threadID == "" {
		return st, ErrNoThread
	}

	latest, err := c.mailbox.LatestInbound(ctx, threadID)
	if err != nil {
		return st, err
	}

	to := c.resolveRecipient(latest)
	if to == "" {
		return st, ErrNoRecipient
	}

	subject := latest.Subject
	if subject == "" {
		subject = st.SubjectGuess
	}

	st.ThreadID = threadID
	st.ResolvedTo = to
	st.ResolvedSubject = mime.EnsurePrefix(subject, "Re:")
	return st, nil
}

// resolveRecipient prefers the first Reply-To address that is not the
// shop's own, then the first such From address.
func (c *Controller) resolveRecipient(latest *interfaces.MailMessage) string {
	shop := c.mailbox.Address()
	for _, header := range []string{latest.ReplyTo, latest.From} {
		for _, addr := range classify.ParseAddressList(header) {
			if addr != shop {
				return addr
			}
		}
	}
	return ""
}

// CompleteReply re-fetches the message being replied to, frames the
// quoted reply envelope and sends it on the resolved thread. Terminal:
// either a confirmation or the verbatim failure reaches the operator.
func (c *Controller) CompleteReply(ctx context.Context, st State, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		c.post(ctx, st, "❌ Please enter a message.")
		return nil
	}

	latest, err := c.mailbox.LatestInbound(ctx, st.ThreadID)
	if err != nil {
		c.fail(ctx, st, "Reply failed", err)
		return err
	}

	subject := st.ResolvedSubject
	if subject == "" {
		subject = st.SubjectGuess
	}
	subject = mime.EnsurePrefix(subject, "Re:")

	raw := mime.BuildReplyRaw(mime.Envelope{
		From:       c.mailbox.Address(),
		To:         st.ResolvedTo,
		Subject:    subject,
		TextBody:   mime.QuoteReplyText(body, latest),
		HTMLBody:   mime.QuoteReplyHTML(body, latest),
		InReplyTo:  latest.MessageID,
		References: latest.MessageID,
	})
	if err := c.mailbox.Send(ctx, raw, st.ThreadID); err != nil {
		c.fail(ctx, st, "Reply failed", err)
		return err
	}

	c.post(ctx, st, fmt.Sprintf("✉️ Replied to customer (%s) from *%s*.\n_Subject:_ %s",
		st.ResolvedTo, c.mailbox.Address(), subject))
	return nil
}

// CompleteForward resolves the thread by subject guess, collects the
// original attachments and sends the forward as a fresh outbound
// message. Terminal like CompleteReply.
func (c *Controller) CompleteForward(ctx context.Context, st State, recipients []string) error {
	if len(recipients) == 0 {
		err := errors.New("no recipients selected")
		c.fail(ctx, st, "Forward failed", err)
		return err
	}

	threadID, err := c.mailbox.FindThreadBySubject(ctx, st.SubjectGuess)
	if err == nil && threadID == "" {
		err = ErrNoThread
	}
	if err != nil {
		c.fail(ctx, st, "Forward failed", err)
		return err
	}

	latest, err := c.mailbox.LatestInbound(ctx, threadID)
	if err != nil {
		c.fail(ctx, st, "Forward failed", err)
		return err
	}

	attachments, err := c.mailbox.CollectAttachments(ctx, latest.ID)
	if err != nil {
		c.fail(ctx, st, "Forward failed", err)
		return err
	}

	subject := st.SubjectGuess
	if subject == "" {
		subject = latest.Subject
	}
	subject = mime.EnsurePrefix(subject, "Fwd:")

	raw := mime.BuildForwardRaw(mime.Envelope{
		From:        c.mailbox.Address(),
		To:          strings.Join(recipients, ", "),
		Subject:     subject,
		TextBody:    mime.ForwardText(latest),
		HTMLBody:    mime.ForwardHTML(latest),
		Attachments: attachments,
	})
	if err := c.mailbox.Send(ctx, raw, ""); err != nil {
		c.fail(ctx, st, "Forward failed", err)
		return err
	}

	c.post(ctx, st, fmt.Sprintf("📤 Forwarded from *%s* to: %s",
		c.mailbox.Address(), strings.Join(recipients, ", ")))
	return nil
}

// Cancel ends an instance silently. No resources were reserved, so
// nothing is cleaned up and nothing is posted.
func (c *Controller) Cancel(st State) {
	c.log.Debug(fmt.Sprintf("workflow cancelled for subject %q", st.SubjectGuess))
}

func (c *Controller) fail(ctx context.Context, st State, label string, err error) {
	c.log.Error(fmt.Sprintf("%s: %v", label, err))
	c.post(ctx, st, fmt.Sprintf("❌ %s: %v", label, err))
}

func (c *Controller) post(ctx context.Context, st State, text string) {
	if err := c.conv.Post(ctx, st.Channel, st.ThreadTS, text); err != nil {
		c.log.Error(fmt.Sprintf("failed to post to %s: %v", st.Channel, err))
	}
}
