package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/yesminehe/CVHelperBot/internal/scoring"
)

func (c *Commands) FormatCheck(ctx context.Context, inv *Invocation) error {
	att, err := c.awaitUpload(ctx, inv, "Please upload your CV PDF file to check formatting.", invalidUpload)
	if err != nil {
		return err
	}
	text, err := c.readCV(ctx, inv, att)
	if err != nil {
		return err
	}

	a := scoring.Analyze(text, 0)

	sections := "None"
	if len(a.Sections) > 0 {
		names := make([]string, len(a.Sections))
		for i, s := range a.Sections {
			names[i] = string(s)
		}
		sections = strings.Join(names, ", ")
	}
	bullets := "No"
	if a.HasBullets {
		bullets = "Yes"
	}

	return inv.Say(ctx, fmt.Sprintf("**CV Format Check Results:**\nWord count: %d\nBullet points: %s\nSections found: %s\n",
		a.WordCount, bullets, sections))
}
