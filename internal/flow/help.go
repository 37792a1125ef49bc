package flow

import (
	"context"
	"fmt"
	"strings"
)

func (c *Commands) Help(ctx context.Context, inv *Invocation) error {
	var sb strings.Builder
	sb.WriteString("**CV Helper Bot Commands:**\n\n")
	for _, cmd := range c.registry.Commands() {
		sb.WriteString(fmt.Sprintf("`%s%s` — %s\n", c.settings.Prefix, cmd.Name, cmd.Summary))
	}
	return inv.Say(ctx, sb.String())
}
