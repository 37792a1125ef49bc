package skills

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/yesminehe/CVHelperBot/internal/cleaner"
	"github.com/yesminehe/CVHelperBot/internal/helper"
	"github.com/yesminehe/CVHelperBot/pkg/types"
)

// Generator is the slice of the model service this package needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

const (
	generativeMaxTokens = 150
	generativeMaxChars  = 4000
)

var answerLabel = regexp.MustCompile(`(?i)^\s*(skills|keywords)\s*:`)

var clean = cleaner.NewCleaner()

// Generative asks the model for a comma-separated skill list.
type Generative struct {
	gen Generator
}

func NewGenerative(gen Generator) *Generative {
	return &Generative{gen: gen}
}

func (g *Generative) Extract(ctx context.Context, text string) (types.SkillSet, error) {
	logger := slog.With(
		"component", "skills",
		"operation", "generative_extract",
	)
	text = helper.Truncate(text, generativeMaxChars)

	prompt := fmt.Sprintf(`Extract the main technical and professional skills from the following text.
Return them as a single comma-separated list and nothing else.

Text:
%s

Skills:`, text)

	startTime := time.Now()
	answer, err := g.gen.Generate(ctx, prompt, generativeMaxTokens)
	if err != nil {
		logger.Error("skill extraction failed", "error", err, "duration_ms", time.Since(startTime).Milliseconds())
		return nil, fmt.Errorf("skill extraction failed: %w", err)
	}

	set := ParseSkillList(answer)
	logger.Info("skill extraction completed",
		"duration_ms", time.Since(startTime).Milliseconds(),
		"skills_count", set.Len())
	return set, nil
}

// ParseSkillList splits a model answer such as "Skills: Python, SQL, Go" into
// trimmed tokens longer than one character.
func ParseSkillList(answer string) types.SkillSet {
	answer = clean.CleanLlmResponse(answer)
	answer = answerLabel.ReplaceAllString(answer, "")

	set := types.NewSkillSet()
	for _, part := range strings.Split(answer, ",") {
		if s := strings.TrimSpace(part); len(s) > 1 {
			set.Add(s)
		}
	}
	return set
}
