package flow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yesminehe/CVHelperBot/internal/matching"
	"github.com/yesminehe/CVHelperBot/internal/scoring"
	"github.com/yesminehe/CVHelperBot/pkg/types"
)

type comparedCV struct {
	score  int
	skills types.SkillSet
}

func (c *Commands) Compare(ctx context.Context, inv *Invocation) error {
	first, err := c.awaitUpload(ctx, inv, "Please upload the **first** CV PDF file.",
		"Timeout or invalid upload for the first CV. Please try again.")
	if err != nil {
		return err
	}
	second, err := c.awaitUpload(ctx, inv, "Now, please upload the **second** CV PDF file.",
		"Timeout or invalid upload for the second CV. Please try again.")
	if err != nil {
		return err
	}

	if err := inv.Say(ctx, "Processing both CVs, please wait..."); err != nil {
		return err
	}

	var results [2]comparedCV
	g, gctx := errgroup.WithContext(ctx)
	for i, att := range []Attachment{first, second} {
		g.Go(func() error {
			res, err := c.analyzeForCompare(gctx, inv, att)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	cmp := matching.Compare(results[0].skills, results[1].skills)
	return inv.Say(ctx, fmt.Sprintf(
		"**CV 1 Score:** %d/100\n**CV 2 Score:** %d/100\n\n"+
			"**Common Skills:** %s\n**Unique to CV 1:** %s\n**Unique to CV 2:** %s",
		results[0].score, results[1].score,
		previewList(cmp.Common, 0), previewList(cmp.OnlyA, 0), previewList(cmp.OnlyB, 0)))
}

func (c *Commands) analyzeForCompare(ctx context.Context, inv *Invocation, att Attachment) (comparedCV, error) {
	text, err := c.readCV(ctx, inv, att)
	if err != nil {
		return comparedCV{}, err
	}
	set, err := c.extractSkills(ctx, c.svc.CompareSkills, text)
	if err != nil {
		return comparedCV{}, err
	}
	issues, err := c.grammarIssues(ctx, text)
	if err != nil {
		return comparedCV{}, err
	}
	return comparedCV{score: scoring.Score(text, len(issues)), skills: set}, nil
}
