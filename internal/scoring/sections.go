package scoring

import (
	"strings"

	"github.com/yesminehe/CVHelperBot/pkg/types"
)

var sectionSynonyms = map[types.Section][]string{
	types.SectionEducation:  {"education", "academic", "studies", "school", "university", "college"},
	types.SectionExperience: {"experience", "work history", "employment", "professional background", "career"},
	types.SectionSkills:     {"skills", "abilities", "competencies", "proficiencies", "expertise"},
	types.SectionProjects:   {"projects", "portfolio", "works", "case studies", "assignments"},
}

var bulletGlyphs = []string{"•", "- ", "* "}

// DetectSections reports which canonical sections are mentioned anywhere in
// the text. Matching is a case-insensitive substring test, not a layout parse.
func DetectSections(text string) []types.Section {
	lower := strings.ToLower(text)
	var found []types.Section
	for _, section := range types.Sections {
		if containsAny(lower, sectionSynonyms[section]) {
			found = append(found, section)
		}
	}
	return found
}

func HasBullets(text string) bool {
	return containsAny(text, bulletGlyphs)
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
