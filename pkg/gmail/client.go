// Package gmail implements the Mailbox port on top of the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/carismo/shopmail/pkg/classify"
	"github.com/carismo/shopmail/pkg/interfaces"
	"github.com/carismo/shopmail/pkg/mime"
)

// Credentials holds the OAuth2 client for the shop mailbox. The refresh
// token is long-lived; no interactive flow happens at runtime.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string
}

type Client struct {
	service *gmail.Service
	userID  string
	address string
	creds   Credentials
	log     interfaces.Logger
}

func NewClient(address string, creds Credentials, log interfaces.Logger) interfaces.Mailbox {
	return &Client{
		userID:  "me",
		address: strings.ToLower(address),
		creds:   creds,
		log:     log,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	if c.creds.ClientID == "" || c.creds.ClientSecret == "" || c.creds.RedirectURI == "" {
		return fmt.Errorf("missing Gmail OAuth client configuration")
	}
	if c.creds.RefreshToken == "" {
		return fmt.Errorf("missing Gmail refresh token")
	}

	config := &oauth2.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		RedirectURL:  c.creds.RedirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailModifyScope},
	}
	httpClient := config.Client(ctx, &oauth2.Token{RefreshToken: c.creds.RefreshToken})

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("unable to create Gmail service: %w", err)
	}
	c.service = srv
	return nil
}

func (c *Client) Address() string {
	return c.address
}

// FindThreadBySubject looks up the customer thread that most plausibly
// produced the notification. Best effort: the mailbox's first ranked
// hit wins, and threads sharing a subject are not disambiguated. An
// empty thread id means no match.
func (c *Client) FindThreadBySubject(ctx context.Context, subjectGuess string) (string, error) {
	if c.service == nil {
		return "", fmt.Errorf("gmail service not connected")
	}
	query := threadQuery(c.address, classify.Normalize(subjectGuess))
	resp, err := c.service.Users.Threads.List(c.userID).Q(query).MaxResults(10).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to search threads: %w", err)
	}
	return firstThreadID(resp.Threads), nil
}

// threadQuery constrains the search to inbound customer mail: addressed
// to the shop, not sent by the shop, at most 60 days old, exact subject
// phrase.
func threadQuery(shop, normalizedSubject string) string {
	escaped := strings.ReplaceAll(normalizedSubject, `"`, `\"`)
	return fmt.Sprintf(`to:%s newer_than:60d -from:%s subject:"%s"`, shop, shop, escaped)
}

func firstThreadID(threads []*gmail.Thread) string {
	if len(threads) == 0 {
		return ""
	}
	return threads[0].Id
}

// LatestInbound fetches the thread and returns its most recent message
// not authored by the shop, flattened for composition.
func (c *Client) LatestInbound(ctx context.Context, threadID string) (*interfaces.MailMessage, error) {
	if c.service == nil {
		return nil, fmt.Errorf("gmail service not connected")
	}
	thread, err := c.service.Users.Threads.Get(c.userID, threadID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch thread %s: %w", threadID, err)
	}
	if len(thread.Messages) == 0 {
		return nil, fmt.Errorf("thread %s has no messages", threadID)
	}
	return mime.FlattenMessage(latestInbound(thread.Messages, c.address)), nil
}

// latestInbound scans newest to oldest for the first message whose From
// is not the shop address. A thread consisting entirely of shop mail
// falls back to the newest message.
func latestInbound(messages []*gmail.Message, shop string) *gmail.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		from := strings.ToLower(headerValue(messages[i], "From"))
		if !strings.Contains(from, shop) {
			return messages[i]
		}
	}
	return messages[len(messages)-1]
}

func headerValue(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// CollectAttachments walks the message's part tree for leaf parts
// carrying a filename and an attachment id, fetching each payload
// individually and re-encoding it as standard base64 for re-embedding.
// Order matches the depth-first traversal of the source tree.
func (c *Client) CollectAttachments(ctx context.Context, messageID string) ([]interfaces.Attachment, error) {
	if c.service == nil {
		return nil, fmt.Errorf("gmail service not connected")
	}
	msg, err := c.service.Users.Messages.Get(c.userID, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch message %s: %w", messageID, err)
	}

	type descriptor struct {
		attachmentID string
		filename     string
		mimeType     string
	}
	var found []descriptor
	mime.WalkParts(msg.Payload, func(leaf *gmail.MessagePart) {
		if leaf.Filename == "" || leaf.Body == nil || leaf.Body.AttachmentId == "" {
			return
		}
		mimeType := leaf.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		found = append(found, descriptor{
			attachmentID: leaf.Body.AttachmentId,
			filename:     leaf.Filename,
			mimeType:     mimeType,
		})
	})

	var attachments []interfaces.Attachment
	for _, d := range found {
		body, err := c.service.Users.Messages.Attachments.Get(c.userID, messageID, d.attachmentID).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to fetch attachment %s: %w", d.filename, err)
		}
		data, err := mime.DecodeBase64URL(body.Data)
		if err != nil {
			return nil, fmt.Errorf("unable to decode attachment %s: %w", d.filename, err)
		}
		attachments = append(attachments, interfaces.Attachment{
			Filename: d.filename,
			MimeType: d.mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		})
	}
	return attachments, nil
}

// Send submits a raw base64url envelope, optionally tied to an existing
// thread. Not retried: a failure is terminal for the workflow instance.
func (c *Client) Send(ctx context.Context, raw string, threadID string) error {
	if c.service == nil {
		return fmt.Errorf("gmail service not connected")
	}
	msg := &gmail.Message{Raw: raw}
	if threadID != "" {
		msg.ThreadId = threadID
	}
	if _, err := c.service.Users.Messages.Send(c.userID, msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to send message: %w", err)
	}
	return nil
}
