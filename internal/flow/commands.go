package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yesminehe/CVHelperBot/internal/extraction"
	"github.com/yesminehe/CVHelperBot/internal/grammar"
	"github.com/yesminehe/CVHelperBot/internal/jobfetch"
	"github.com/yesminehe/CVHelperBot/internal/llm"
	"github.com/yesminehe/CVHelperBot/internal/skills"
	"github.com/yesminehe/CVHelperBot/internal/worker"
	apperrors "github.com/yesminehe/CVHelperBot/pkg/errors"
	"github.com/yesminehe/CVHelperBot/pkg/types"
)

// Services are the collaborators shared by every command. They are built once
// at startup.
type Services struct {
	Extractor     extraction.Extractor
	Grammar       grammar.Checker
	Generator     llm.Generator
	Fetcher       jobfetch.Fetcher
	CompareSkills skills.Extractor
	MatchSkills   skills.Extractor
	Pool          *worker.Pool
}

type Settings struct {
	Prefix         string
	UploadTimeout  time.Duration
	TextTimeout    time.Duration
	ConsentTimeout time.Duration
	AnswerTimeout  time.Duration
	ReviewCooldown time.Duration
	PromptChars    int
	SuggestCourses bool
	PreviewItems   int
}

func DefaultSettings() Settings {
	return Settings{
		Prefix:         "!",
		UploadTimeout:  120 * time.Second,
		TextTimeout:    180 * time.Second,
		ConsentTimeout: 60 * time.Second,
		AnswerTimeout:  180 * time.Second,
		ReviewCooldown: 120 * time.Second,
		PromptChars:    500,
		PreviewItems:   10,
	}
}

// Commands holds the handlers for every bot command.
type Commands struct {
	svc      Services
	settings Settings
	registry *Registry
}

// NewCommands builds the handlers and registers them in a fresh registry.
func NewCommands(svc Services, settings Settings) (*Commands, error) {
	c := &Commands{svc: svc, settings: settings, registry: NewRegistry()}

	for _, cmd := range []Command{
		{Name: "reviewcv", Summary: "Analyze and summarize a CV, provide feedback, and score it.", Handler: c.Review, Cooldown: NewCooldown(settings.ReviewCooldown)},
		{Name: "extractinfo", Summary: "Extract contact information (email, phone, LinkedIn) from a CV.", Handler: c.ExtractInfo},
		{Name: "cvcompare", Summary: "Compare two CVs (PDFs) and highlight differences or strengths.", Handler: c.Compare},
		{Name: "cvgrammar", Summary: "Check grammar and spelling in the uploaded CV and report the number of issues found.", Handler: c.Grammar},
		{Name: "cvformatcheck", Summary: "Check a CV's length, bullet points and sections.", Handler: c.FormatCheck},
		{Name: "cvmatch", Summary: "Match a CV against a job description (text or link).", Handler: c.Match},
		{Name: "interviewprep", Summary: "Practice interview questions generated from a job description and a CV.", Handler: c.InterviewPrep},
		{Name: "cvhelp", Summary: "List all available commands and what they do.", Handler: c.Help},
	} {
		if err := c.registry.Register(cmd); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Commands) Registry() *Registry {
	return c.registry
}

// awaitUpload asks for a PDF and returns its attachment. Anything but a PDF,
// or silence, ends the flow with invalidMsg.
func (c *Commands) awaitUpload(ctx context.Context, inv *Invocation, prompt, invalidMsg string) (Attachment, error) {
	reply, err := inv.Ask(ctx, prompt, c.settings.UploadTimeout, IsPDFUpload)
	if err != nil {
		return Attachment{}, err
	}
	if !reply.OK() {
		return Attachment{}, apperrors.ErrTimeoutOrInvalid(invalidMsg)
	}
	return reply.Message.Attachments[0], nil
}

// readCV downloads and extracts an uploaded PDF on the worker pool.
func (c *Commands) readCV(ctx context.Context, inv *Invocation, att Attachment) (string, error) {
	text, err := worker.Do(ctx, c.svc.Pool, func(ctx context.Context) (string, error) {
		body, err := inv.Open(ctx, att)
		if err != nil {
			return "", fmt.Errorf("failed to download attachment %s: %w", att.Filename, err)
		}
		defer body.Close()
		return c.svc.Extractor.Extract(ctx, body)
	})
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", att.Filename, err)
	}
	if extraction.IsEmpty(text) {
		return "", apperrors.ErrEmptyExtraction()
	}
	return text, nil
}

func (c *Commands) grammarIssues(ctx context.Context, text string) ([]grammar.Issue, error) {
	issues, err := worker.Do(ctx, c.svc.Pool, func(ctx context.Context) ([]grammar.Issue, error) {
		return c.svc.Grammar.Check(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("grammar check failed: %w", err)
	}
	return issues, nil
}

func (c *Commands) extractSkills(ctx context.Context, ex skills.Extractor, text string) (types.SkillSet, error) {
	set, err := worker.Do(ctx, c.svc.Pool, func(ctx context.Context) (types.SkillSet, error) {
		return ex.Extract(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("skill extraction failed: %w", err)
	}
	return set, nil
}

// awaitJobDescription asks for a job description as text or a link and
// resolves links through the fetcher.
func (c *Commands) awaitJobDescription(ctx context.Context, inv *Invocation) (string, error) {
	reply, err := inv.Ask(ctx, "Please paste the job description (as text or a job board URL).",
		c.settings.TextTimeout, HasText)
	if err != nil {
		return "", err
	}
	if !reply.OK() {
		return "", apperrors.ErrTimeoutOrInvalid("Timeout or invalid job description. Please try again.")
	}

	input := strings.TrimSpace(reply.Message.Content)
	if !jobfetch.IsURL(input) {
		if err := inv.Say(ctx, "**Job Description received.**"); err != nil {
			return "", err
		}
		return input, nil
	}

	if err := inv.Say(ctx, "Fetching job description from the provided URL..."); err != nil {
		return "", err
	}
	text, err := worker.Do(ctx, c.svc.Pool, func(ctx context.Context) (string, error) {
		return c.svc.Fetcher.Fetch(ctx, input), nil
	})
	if err != nil {
		return "", err
	}
	if jobfetch.IsFailure(text) {
		return "", apperrors.ErrUpstreamFetch(text)
	}
	if err := inv.Say(ctx, fmt.Sprintf("**Job Link:** %s", input)); err != nil {
		return "", err
	}
	return text, nil
}

// previewList renders at most n sorted items, or "None".
func previewList(set types.SkillSet, n int) string {
	items := set.Sorted()
	if len(items) == 0 {
		return "None"
	}
	if n > 0 && len(items) > n {
		return strings.Join(items[:n], ", ") + " ..."
	}
	return strings.Join(items, ", ")
}
