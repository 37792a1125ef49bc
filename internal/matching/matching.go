package matching

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yesminehe/CVHelperBot/internal/cleaner"
	"github.com/yesminehe/CVHelperBot/pkg/types"
)

// MatchThreshold is the percentage above which a CV counts as matching.
const MatchThreshold = 50.0

const suggestionMaxTokens = 300

var clean = cleaner.NewCleaner()

// Compare computes the overlap of a requirement or baseline set a with a
// candidate set b. Percentage is |a∩b| / max(1, |a|) * 100, so an empty a
// yields 0. No case folding happens here.
func Compare(a, b types.SkillSet) types.Comparison {
	c := types.Comparison{
		Common: types.NewSkillSet(),
		OnlyA:  types.NewSkillSet(),
		OnlyB:  types.NewSkillSet(),
	}
	for item := range a {
		if b.Contains(item) {
			c.Common.Add(item)
		} else {
			c.OnlyA.Add(item)
		}
	}
	for item := range b {
		if !a.Contains(item) {
			c.OnlyB.Add(item)
		}
	}
	c.Percentage = float64(c.Common.Len()) / float64(max(1, a.Len())) * 100
	return c
}

func Matches(c types.Comparison) bool {
	return c.Percentage > MatchThreshold
}

// Generator is the slice of the model service used for course suggestions.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// SuggestCourses asks the model for learning resources that cover the skills
// the candidate is missing. It returns "" when nothing is missing.
func SuggestCourses(ctx context.Context, gen Generator, missing types.SkillSet, limit int) (string, error) {
	if missing.Len() == 0 {
		return "", nil
	}
	skills := missing.Sorted()
	if limit > 0 && len(skills) > limit {
		skills = skills[:limit]
	}

	prompt := fmt.Sprintf(`A candidate is applying for a job but lacks these skills: %s.
Suggest one well-known online course or learning resource for each skill.
Answer as a short bulleted list, one line per skill, in the form "skill: resource".`, strings.Join(skills, ", "))

	startTime := time.Now()
	answer, err := gen.Generate(ctx, prompt, suggestionMaxTokens)
	if err != nil {
		return "", fmt.Errorf("course suggestion failed: %w", err)
	}
	slog.Info("course suggestions generated",
		"component", "matching",
		"skills", len(skills),
		"duration_ms", time.Since(startTime).Milliseconds())

	return clean.CleanLlmResponse(answer), nil
}
