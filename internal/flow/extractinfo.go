package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/yesminehe/CVHelperBot/internal/scoring"
)

func (c *Commands) ExtractInfo(ctx context.Context, inv *Invocation) error {
	att, err := c.awaitUpload(ctx, inv, "Please upload the CV PDF file to extract contact info.", invalidUpload)
	if err != nil {
		return err
	}
	text, err := c.readCV(ctx, inv, att)
	if err != nil {
		return err
	}

	info := scoring.ExtractContactInfo(text)
	if info.IsEmpty() {
		return inv.Say(ctx, "No contact information found in the CV.")
	}

	lines := make([]string, 0, 3)
	for _, f := range info.Fields() {
		lines = append(lines, fmt.Sprintf("**%s**: %s", f.Label, f.Value))
	}
	return inv.Say(ctx, "Extracted Contact Information:\n"+strings.Join(lines, "\n"))
}
