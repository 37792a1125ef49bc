package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/yesminehe/CVHelperBot/internal/helper"
)

// maxListedIssues caps how many grammar issues are spelled out in the reply.
const maxListedIssues = 5

func (c *Commands) Grammar(ctx context.Context, inv *Invocation) error {
	att, err := c.awaitUpload(ctx, inv, "Please upload your CV PDF file to check grammar and spelling.", invalidUpload)
	if err != nil {
		return err
	}
	text, err := c.readCV(ctx, inv, att)
	if err != nil {
		return err
	}

	issues, err := c.grammarIssues(ctx, text)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return inv.Say(ctx, "No grammar or spelling issues found in the CV! 🎉")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d grammar/spelling issues in the CV.", len(issues)))
	for i, issue := range issues {
		if i == maxListedIssues {
			sb.WriteString(fmt.Sprintf("\n...and %d more.", len(issues)-maxListedIssues))
			break
		}
		sb.WriteString("\n• " + issue.Message)
		if issue.Context != "" {
			sb.WriteString(fmt.Sprintf(" (`%s`)", helper.Preview(issue.Context, 60)))
		}
		if len(issue.Replacements) > 0 {
			sb.WriteString(" → " + issue.Replacements[0])
		}
	}
	return inv.Say(ctx, sb.String())
}
