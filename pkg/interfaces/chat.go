package interfaces

import "context"

// Conversation posts outcome messages back into the chat thread that a
// workflow was started from.
type Conversation interface {
	Post(ctx context.Context, channel, threadTS, text string) error
}
