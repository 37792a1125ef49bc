package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/yesminehe/CVHelperBot/internal/llm"
	"github.com/yesminehe/CVHelperBot/internal/scoring"
	"github.com/yesminehe/CVHelperBot/internal/worker"
	apperrors "github.com/yesminehe/CVHelperBot/pkg/errors"
)

const invalidUpload = "Timeout or invalid upload, please try again."

func (c *Commands) Review(ctx context.Context, inv *Invocation) error {
	att, err := c.awaitUpload(ctx, inv, "Please upload your CV PDF file.", invalidUpload)
	if err != nil {
		return err
	}
	text, err := c.readCV(ctx, inv, att)
	if err != nil {
		return err
	}

	if err := inv.Say(ctx, "Analyzing your CV... Please wait."); err != nil {
		return err
	}
	feedback, err := worker.Do(ctx, c.svc.Pool, func(ctx context.Context) (string, error) {
		return llm.Feedback(ctx, c.svc.Generator, text)
	})
	if err != nil {
		return fmt.Errorf("failed to generate feedback: %w", err)
	}
	if strings.TrimSpace(feedback) == "" {
		return apperrors.ErrEmptyGeneration("Sorry, I couldn't generate feedback for your CV. " +
			"Please try again later or check your file.")
	}

	issues, err := c.grammarIssues(ctx, text)
	if err != nil {
		return err
	}
	report := scoring.Evaluate(text, len(issues))
	inv.Logger().Info("cv scored", "score", report.Score, "raw", report.Raw, "grammar_issues", len(issues))

	return inv.Say(ctx, fmt.Sprintf("Your CV Score: %d/100\n\nHere is your CV feedback:\n%s", report.Score, feedback))
}
