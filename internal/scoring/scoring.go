package scoring

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	pointsPerSection = 20
	pointsLength     = 20
	pointsSignal     = 5

	minLength = 500
	maxLength = 3000

	MaxScore = 100
)

var (
	scoreEmailPattern = regexp.MustCompile(`[` + word + `]+@[` + word + `]+\.[` + word + `]+`)
	digitRunPattern   = regexp.MustCompile(`(?:^|[^` + word + `])\p{Nd}{10,}(?:$|[^` + word + `])`)

	summaryWords     = []string{"summary", "objective", "profile"}
	achievementWords = []string{"achievement", "award", "honor", "certification"}
)

// Rule names a scoring signal that fired and the points it contributed.
type Rule struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type Report struct {
	Score          int    `json:"score"`
	Raw            int    `json:"raw"`
	GrammarErrors  int    `json:"grammar_errors"`
	GrammarPenalty int    `json:"grammar_penalty"`
	Rules          []Rule `json:"rules"`
}

// Score returns the heuristic CV score in [0, 100].
func Score(text string, grammarErrors int) int {
	return Evaluate(text, grammarErrors).Score
}

// Evaluate applies every additive rule independently, subtracts the grammar
// penalty and clamps. The additive rules can sum past 100; clamping is what
// keeps a complete CV at 100.
func Evaluate(text string, grammarErrors int) Report {
	lower := strings.ToLower(text)
	var r Report

	add := func(name string, points int) {
		r.Rules = append(r.Rules, Rule{Name: name, Points: points})
		r.Raw += points
	}

	for _, section := range DetectSections(text) {
		add("section:"+string(section), pointsPerSection)
	}
	if n := utf8.RuneCountInString(text); n > minLength && n < maxLength {
		add("length", pointsLength)
	}
	if scoreEmailPattern.MatchString(lower) {
		add("email", pointsSignal)
	}
	if digitRunPattern.MatchString(lower) {
		add("phone", pointsSignal)
	}
	if strings.Contains(lower, "linkedin.com") {
		add("linkedin", pointsSignal)
	}
	if containsAny(lower, summaryWords) {
		add("summary", pointsSignal)
	}
	if containsAny(lower, achievementWords) {
		add("achievements", pointsSignal)
	}
	if HasBullets(lower) {
		add("bullets", pointsSignal)
	}

	r.GrammarErrors = grammarErrors
	r.GrammarPenalty = GrammarPenalty(grammarErrors)
	r.Score = clamp(r.Raw-r.GrammarPenalty, 0, MaxScore)
	return r
}

// GrammarPenalty is 10 points above 10 issues, 5 above 5, otherwise 0.
func GrammarPenalty(errors int) int {
	switch {
	case errors > 10:
		return 10
	case errors > 5:
		return 5
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
