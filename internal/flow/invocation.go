package flow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/yesminehe/CVHelperBot/internal/helper"
)

// Invocation is one run of a command for one user in one channel.
type Invocation struct {
	ID        string
	Command   string
	Args      string
	ChannelID string
	UserID    string
	Username  string

	transport Transport
	router    *Router
	logger    *slog.Logger
}

func (inv *Invocation) Logger() *slog.Logger {
	return inv.logger
}

// Say posts text to the invocation's channel, split into platform-sized chunks.
func (inv *Invocation) Say(ctx context.Context, text string) error {
	for _, chunk := range helper.SplitMessage(text, helper.MessageLimit) {
		if err := inv.transport.Send(ctx, inv.ChannelID, chunk); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	return nil
}

// Ask posts prompt and waits for the user's next message in this channel.
// The wait is registered before the prompt goes out so a fast reply is not lost.
func (inv *Invocation) Ask(ctx context.Context, prompt string, timeout time.Duration, accept Predicate) (Reply, error) {
	sub := inv.router.subscribe(inv.ChannelID, inv.UserID)
	if err := inv.Say(ctx, prompt); err != nil {
		inv.router.cancel(sub)
		return Reply{}, err
	}

	start := time.Now()
	reply := sub.wait(ctx, timeout, accept)
	inv.logger.Debug("wait finished",
		"status", reply.Status.String(),
		"duration_ms", time.Since(start).Milliseconds())
	return reply, nil
}

func (inv *Invocation) Open(ctx context.Context, att Attachment) (io.ReadCloser, error) {
	return inv.transport.Open(ctx, att)
}
