package flow

import (
	"context"
	"fmt"

	"github.com/yesminehe/CVHelperBot/internal/matching"
	"github.com/yesminehe/CVHelperBot/internal/worker"
)

func (c *Commands) Match(ctx context.Context, inv *Invocation) error {
	jobDesc, err := c.awaitJobDescription(ctx, inv)
	if err != nil {
		return err
	}
	att, err := c.awaitUpload(ctx, inv, "Now, please upload the candidate's CV PDF file.",
		"Timeout or invalid upload for the CV. Please try again.")
	if err != nil {
		return err
	}

	if err := inv.Say(ctx, "Processing, please wait..."); err != nil {
		return err
	}
	cvText, err := c.readCV(ctx, inv, att)
	if err != nil {
		return err
	}

	jobKeywords, err := c.extractSkills(ctx, c.svc.MatchSkills, jobDesc)
	if err != nil {
		return err
	}
	cvKeywords, err := c.extractSkills(ctx, c.svc.MatchSkills, cvText)
	if err != nil {
		return err
	}

	cmp := matching.Compare(jobKeywords, cvKeywords)
	inv.Logger().Info("cv matched", "percentage", cmp.Percentage, "job_keywords", jobKeywords.Len())

	result := fmt.Sprintf("❌ The CV does not match the job description well. (Match: %.1f%%)", cmp.Percentage)
	if matching.Matches(cmp) {
		result = fmt.Sprintf("✅ The CV matches the job description! (Match: %.1f%%)", cmp.Percentage)
	}

	n := c.settings.PreviewItems
	msg := fmt.Sprintf("%s\n\n**Job Keywords:** %s\n**CV Keywords:** %s\n**Common Keywords:** %s\n**Missing Keywords:** %s",
		result,
		previewList(jobKeywords, n), previewList(cvKeywords, n),
		previewList(cmp.Common, n), previewList(cmp.OnlyA, n))

	if c.settings.SuggestCourses && c.svc.Generator != nil && cmp.OnlyA.Len() > 0 {
		courses, err := worker.Do(ctx, c.svc.Pool, func(ctx context.Context) (string, error) {
			return matching.SuggestCourses(ctx, c.svc.Generator, cmp.OnlyA, n)
		})
		switch {
		case err != nil:
			inv.Logger().Warn("course suggestions failed", "error", err)
		case courses != "":
			msg += "\n\n**Suggested Courses:**\n" + courses
		}
	}

	return inv.Say(ctx, msg)
}
