// Package bot connects the conversation flows to Discord.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/yesminehe/CVHelperBot/internal/flow"
)

const (
	reactionWorking = "⏳"
	reactionDone    = "✅"
	reactionFailed  = "❌"
)

// Dispatcher is the part of the flow controller the bot feeds.
type Dispatcher interface {
	OnMessage(ctx context.Context, msg flow.Message, obs flow.Observer)
}

type Bot struct {
	session    *discordgo.Session
	dispatcher Dispatcher
	ctx        context.Context
}

func New(token string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	bot := &Bot{
		session: session,
		ctx:     context.Background(),
	}
	session.AddHandler(bot.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	return bot, nil
}

// Start opens the gateway and begins feeding messages to d. Commands started
// after ctx ends see a cancelled context.
func (b *Bot) Start(ctx context.Context, d Dispatcher) error {
	b.ctx = ctx
	b.dispatcher = d
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening Discord session: %w", err)
	}
	slog.Info("Bot is running...", "component", "bot")
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) Send(ctx context.Context, channelID, text string) error {
	if _, err := b.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return nil
}

// Open downloads an attachment from the Discord CDN.
func (b *Bot) Open(ctx context.Context, att flow.Attachment) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := b.session.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", att.Filename, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download %s: status %d", att.Filename, resp.StatusCode)
	}
	return resp.Body, nil
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	if b.dispatcher == nil {
		return
	}

	b.dispatcher.OnMessage(b.ctx, toMessage(m.Message), b)
}

// CommandStarted marks the command message as in progress.
func (b *Bot) CommandStarted(msg flow.Message, cmd flow.Command) {
	slog.Info("Received command", "component", "bot", "command", cmd.Name, "author", msg.AuthorName)
	b.react(msg, reactionWorking)
}

// CommandFinished swaps the progress marker for the outcome.
func (b *Bot) CommandFinished(msg flow.Message, _ flow.Command, err error) {
	if rmErr := b.session.MessageReactionRemove(msg.ChannelID, msg.ID, reactionWorking, "@me"); rmErr != nil {
		slog.Debug("failed to remove reaction", "component", "bot", "error", rmErr)
	}
	if err != nil {
		b.react(msg, reactionFailed)
		return
	}
	b.react(msg, reactionDone)
}

func (b *Bot) react(msg flow.Message, emoji string) {
	if err := b.session.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
		slog.Debug("failed to add reaction", "component", "bot", "emoji", emoji, "error", err)
	}
}

func toMessage(m *discordgo.Message) flow.Message {
	msg := flow.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
	}
	for _, att := range m.Attachments {
		if att == nil {
			continue
		}
		msg.Attachments = append(msg.Attachments, flow.Attachment{
			ID:          att.ID,
			Filename:    att.Filename,
			URL:         att.URL,
			ContentType: att.ContentType,
			Size:        att.Size,
		})
	}
	return msg
}
