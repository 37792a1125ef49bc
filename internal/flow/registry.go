package flow

import (
	"context"
	"fmt"
)

// Handler runs one command invocation. Returning a *errors.UserError ends the
// flow with that message; any other error is reported generically.
type Handler func(ctx context.Context, inv *Invocation) error

type Command struct {
	Name     string
	Summary  string
	Handler  Handler
	Cooldown *Cooldown
}

// Registry maps command names to handlers, keeping registration order for help output.
type Registry struct {
	order    []string
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" || cmd.Handler == nil {
		return fmt.Errorf("command needs a name and a handler")
	}
	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command %q already registered", cmd.Name)
	}
	r.order = append(r.order, cmd.Name)
	r.commands[cmd.Name] = cmd
	return nil
}

func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}
