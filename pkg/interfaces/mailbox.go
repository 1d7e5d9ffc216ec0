package interfaces

import "context"

// Attachment is a binary part lifted out of a mail message. Data is
// standard base64, ready for embedding into an outgoing MIME envelope.
type Attachment struct {
	Filename string
	MimeType string
	Data     string
}

// MailMessage is the flattened form of one message in a thread. BodyText
// is derived from BodyHTML when the source carried no plain-text part.
type MailMessage struct {
	ID        string
	ThreadID  string
	Subject   string
	From      string
	To        string
	ReplyTo   string
	Date      string
	MessageID string
	BodyHTML  string
	BodyText  string
}

// Mailbox is what the workflow needs from the mail provider: best-effort
// thread search, thread content, attachment payloads and raw submission.
type Mailbox interface {
	Connect(ctx context.Context) error
	Address() string
	FindThreadBySubject(ctx context.Context, subjectGuess string) (string, error)
	LatestInbound(ctx context.Context, threadID string) (*MailMessage, error)
	CollectAttachments(ctx context.Context, messageID string) ([]Attachment, error)
	Send(ctx context.Context, raw string, threadID string) error
}
