package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/yesminehe/CVHelperBot/internal/cleaner"
	"github.com/yesminehe/CVHelperBot/internal/helper"
)

const (
	feedbackMaxChars  = 1000
	feedbackMaxTokens = 150

	questionsMaxTokens = 200
	questionsMarker    = "Interview Questions:"
	minQuestionLength  = 10
)

var clean = cleaner.NewCleaner()

// Feedback summarises the opening of a CV and comments on it. An empty
// answer is returned as "" with no error.
func Feedback(ctx context.Context, gen Generator, cvText string) (string, error) {
	logger := slog.With(
		"component", "llm",
		"operation", "cv_feedback",
	)
	cvText = helper.Truncate(cvText, feedbackMaxChars)

	prompt := fmt.Sprintf(`Summarize the following CV in a few sentences and point out its main strengths and what could be improved.
Keep the answer short and concrete.

CV:
%s`, cvText)

	startTime := time.Now()
	out, err := gen.Generate(ctx, prompt, feedbackMaxTokens)
	if errors.Is(err, ErrEmptyResponse) {
		logger.Warn("model returned no feedback")
		return "", nil
	}
	if err != nil {
		logger.Error("feedback generation failed", "error", err, "duration_ms", time.Since(startTime).Milliseconds())
		return "", fmt.Errorf("feedback generation failed: %w", err)
	}
	logger.Info("feedback generated", "duration_ms", time.Since(startTime).Milliseconds(), "chars", len(out))
	return clean.CleanLlmResponse(out), nil
}

// QuestionsPrompt builds the interview question prompt. Inputs are cut to
// maxChars each so small models stay inside their context window.
func QuestionsPrompt(jobDesc, cvText string, maxChars int) string {
	if maxChars > 0 {
		jobDesc = helper.Truncate(jobDesc, maxChars)
		cvText = helper.Truncate(cvText, maxChars)
	}
	return "Given the following job description and candidate CV, generate 1-5 likely interview questions the candidate might face. " +
		"Focus on the required skills, experience, and any gaps.\n\n" +
		"Job Description:\n" + jobDesc + "\n\n" +
		"Candidate CV:\n" + cvText + "\n\n" +
		questionsMarker
}

// InterviewQuestions generates questions and keeps only lines that look like
// questions. An empty slice with no error means nothing usable came back.
func InterviewQuestions(ctx context.Context, gen Generator, jobDesc, cvText string, maxChars int) ([]string, error) {
	startTime := time.Now()
	out, err := gen.Generate(ctx, QuestionsPrompt(jobDesc, cvText, maxChars), questionsMaxTokens)
	if errors.Is(err, ErrEmptyResponse) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	questions := ParseQuestions(out)
	slog.Info("interview questions generated",
		"component", "llm",
		"duration_ms", time.Since(startTime).Milliseconds(),
		"questions", len(questions))
	return questions, nil
}

// ParseQuestions keeps lines after the last "Interview Questions:" marker that
// are longer than ten characters and either end in "?" or start with a digit.
func ParseQuestions(generated string) []string {
	if i := strings.LastIndex(generated, questionsMarker); i != -1 {
		generated = generated[i+len(questionsMarker):]
	}
	generated = clean.CleanLlmResponse(generated)

	var questions []string
	for _, line := range strings.Split(generated, "\n") {
		q := strings.Trim(strings.TrimSpace(line), "-* ")
		if len(q) <= minQuestionLength {
			continue
		}
		first := []rune(q)[0]
		if strings.HasSuffix(q, "?") || unicode.IsDigit(first) {
			questions = append(questions, q)
		}
	}
	return questions
}
