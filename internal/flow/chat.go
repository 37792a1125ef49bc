// Package flow drives the multi-step conversations behind every bot command:
// prompting, waiting for the user's next message, processing and replying.
package flow

import (
	"context"
	"io"
)

type Attachment struct {
	ID          string
	Filename    string
	URL         string
	ContentType string
	Size        int
}

// Message is a chat message reduced to what the flows need.
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	AuthorName  string
	Content     string
	Attachments []Attachment
}

// Transport is the chat platform as seen by the flows.
type Transport interface {
	// Send posts one message. Callers keep text within the platform limit.
	Send(ctx context.Context, channelID, text string) error
	// Open streams the bytes of an attachment.
	Open(ctx context.Context, att Attachment) (io.ReadCloser, error)
}
