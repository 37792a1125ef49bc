package skills

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yesminehe/CVHelperBot/internal/helper"
	"github.com/yesminehe/CVHelperBot/pkg/types"
)

const (
	word           = helper.WordClass
	minKeywordRune = 4
)

var (
	skillsSectionPattern = regexp.MustCompile(`(?i)skills[:\n]+([\s\S]+?)(\n[` + word + `]+:|$)`)
	skillSeparator       = regexp.MustCompile(`[,;\n]`)
	capitalizedPattern   = regexp.MustCompile(`[A-Z][a-zA-Z0-9+#-]*`)
	wordPattern          = regexp.MustCompile(`[` + word + `]+`)
)

var capitalizedStoplist = map[string]bool{
	"The": true, "And": true, "With": true, "For": true, "From": true, "This": true,
	"That": true, "Have": true, "Will": true, "Your": true, "You": true, "Are": true,
	"Was": true, "But": true, "Not": true, "All": true, "Any": true, "Can": true,
	"Has": true, "Had": true, "May": true, "One": true, "Two": true, "Three": true,
}

var keywordStoplist = map[string]bool{
	"with": true, "from": true, "this": true, "that": true, "have": true, "will": true,
	"your": true, "three": true,
}

// Heuristic reads a "Skills:" section when one exists and otherwise falls back
// to capitalized tokens, which catches most technology names.
type Heuristic struct{}

func (Heuristic) Extract(_ context.Context, text string) (types.SkillSet, error) {
	return HeuristicSkills(text), nil
}

func HeuristicSkills(text string) types.SkillSet {
	set := types.NewSkillSet()
	if m := skillsSectionPattern.FindStringSubmatch(text); m != nil {
		for _, part := range skillSeparator.Split(m[1], -1) {
			if s := strings.TrimSpace(part); s != "" {
				set.Add(s)
			}
		}
		return set
	}
	for _, tok := range capitalizedTokens(text) {
		if !capitalizedStoplist[tok] {
			set.Add(tok)
		}
	}
	return set
}

// capitalizedTokens finds tokens that start on a word boundary with an ASCII
// capital. A token whose end is not a boundary is shortened until it is, so
// "C++" yields "C" and the "D" of "Développeur" yields nothing.
func capitalizedTokens(text string) []string {
	var tokens []string
	for _, loc := range capitalizedPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if !helper.WordBoundary(text, start) {
			continue
		}
		// the pattern is ASCII so stepping back one byte stays on a rune
		for end > start && !helper.WordBoundary(text, end) {
			end--
		}
		if end > start {
			tokens = append(tokens, text[start:end])
		}
	}
	return tokens
}

// Keyword lower-cases the text and keeps every word of four or more
// characters that is not a stopword. It is coarse but symmetric, which suits
// job-description matching.
type Keyword struct{}

func (Keyword) Extract(_ context.Context, text string) (types.SkillSet, error) {
	return Keywords(text), nil
}

func Keywords(text string) types.SkillSet {
	set := types.NewSkillSet()
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(w) >= minKeywordRune && !keywordStoplist[w] {
			set.Add(w)
		}
	}
	return set
}
