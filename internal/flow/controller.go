package flow

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/yesminehe/CVHelperBot/pkg/errors"
	"github.com/yesminehe/CVHelperBot/pkg/logger"
)

// Controller turns chat messages into command invocations and routes every
// other message to the invocation waiting for it.
type Controller struct {
	registry  *Registry
	router    *Router
	transport Transport
	prefix    string
}

func NewController(registry *Registry, router *Router, transport Transport, prefix string) *Controller {
	return &Controller{
		registry:  registry,
		router:    router,
		transport: transport,
		prefix:    prefix,
	}
}

// ParseCommand splits "!name args" into its parts when name is registered.
func (c *Controller) ParseCommand(content string) (Command, string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, c.prefix) {
		return Command{}, "", false
	}
	fields := strings.Fields(strings.TrimPrefix(content, c.prefix))
	if len(fields) == 0 {
		return Command{}, "", false
	}
	cmd, ok := c.registry.Lookup(strings.ToLower(fields[0]))
	if !ok {
		return Command{}, "", false
	}
	args := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(content, c.prefix), fields[0]))
	return cmd, args, true
}

// Observer hears about commands started by OnMessage. CommandStarted runs
// before the command goroutine starts; CommandFinished runs on it.
type Observer interface {
	CommandStarted(msg Message, cmd Command)
	CommandFinished(msg Message, cmd Command, err error)
}

// OnMessage is called for every user message. Commands start their own
// goroutine so the caller is never held up by a flow; anything else goes to
// the flow waiting on its author. obs may be nil.
func (c *Controller) OnMessage(ctx context.Context, msg Message, obs Observer) {
	cmd, _, ok := c.ParseCommand(msg.Content)
	if !ok {
		if c.Deliver(msg) {
			logger.FromContext(ctx).Debug("routed reply",
				"component", "flow",
				"user", msg.AuthorID,
				"attachments", len(msg.Attachments))
		}
		return
	}
	if obs != nil {
		obs.CommandStarted(msg, cmd)
	}
	go func() {
		err := c.Execute(ctx, msg)
		if obs != nil {
			obs.CommandFinished(msg, cmd, err)
		}
	}()
}

// Deliver hands a non-command message to whichever flow is waiting on its author.
func (c *Controller) Deliver(msg Message) bool {
	return c.router.Publish(msg)
}

// Execute runs the command in msg to completion on the calling goroutine. The
// user has already been told about any failure; the error is returned so the
// transport can mark the message.
func (c *Controller) Execute(ctx context.Context, msg Message) error {
	cmd, args, ok := c.ParseCommand(msg.Content)
	if !ok {
		return nil
	}

	flowID := uuid.NewString()
	ctx = logger.WithFlowID(ctx, flowID)
	log := logger.FromContext(ctx).With(
		"component", "flow",
		"command", cmd.Name,
		"user", msg.AuthorID,
	)
	inv := &Invocation{
		ID:        flowID,
		Command:   cmd.Name,
		Args:      args,
		ChannelID: msg.ChannelID,
		UserID:    msg.AuthorID,
		Username:  msg.AuthorName,
		transport: c.transport,
		router:    c.router,
		logger:    log,
	}

	if allowed, retryAfter := cmd.Cooldown.Allow(msg.AuthorID); !allowed {
		log.Info("command on cooldown", "retry_after_s", int(retryAfter.Seconds()))
		ue := apperrors.ErrCooldown(retryAfter)
		c.reply(ctx, inv, ue.Message)
		return ue
	}

	start := time.Now()
	log.Info("command started")

	err := c.run(ctx, cmd, inv)
	duration := time.Since(start).Milliseconds()
	if err == nil {
		log.Info("command finished", "duration_ms", duration)
		return nil
	}

	if ue, ok := apperrors.AsUser(err); ok {
		log.Info("command ended early", "kind", string(ue.Kind), "duration_ms", duration)
		c.reply(ctx, inv, ue.Message)
		return err
	}

	log.Error("command failed", "error", err, "duration_ms", duration)
	c.reply(ctx, inv, apperrors.GenericMessage)
	return err
}

func (c *Controller) run(ctx context.Context, cmd Command, inv *Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			inv.logger.Error("panic in command", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return cmd.Handler(ctx, inv)
}

func (c *Controller) reply(ctx context.Context, inv *Invocation, text string) {
	if err := inv.Say(ctx, text); err != nil {
		inv.logger.Error("failed to send reply", "error", err)
	}
}
