package scoring

import (
	"regexp"

	"github.com/yesminehe/CVHelperBot/internal/helper"
	"github.com/yesminehe/CVHelperBot/pkg/types"
)

const word = helper.WordClass

var (
	// The local part must open on a word rune so the leftmost match always
	// starts at a word boundary, accented letters included.
	emailPattern = regexp.MustCompile(`[` + word + `][` + word + `.-]*@[` + word + `.-]+\.[` + word + `]+`)

	// phonePattern is deliberately loose: any 6-8 digit run with optional
	// country and area prefixes matches, so dates or ID numbers can produce
	// false positives. It is a best-effort hint, not a validated parser.
	phonePattern = regexp.MustCompile(`\b(?:\+?\d{1,3}[\s-]?)?(?:\(?\d{2,4}\)?[\s-]?)?\d{3,4}[\s-]?\d{3,4}\b`)

	linkedInPattern = regexp.MustCompile(`(https?://)?(www\.)?linkedin\.com/in/[A-Za-z0-9_-]+`)
)

// ExtractContactInfo returns the first email, phone and LinkedIn URL found in
// text. Fields with no match are left empty.
func ExtractContactInfo(text string) types.ContactInfo {
	return types.ContactInfo{
		Email:    emailPattern.FindString(text),
		Phone:    findPhone(text),
		LinkedIn: linkedInPattern.FindString(text),
	}
}

// findPhone drops candidates glued to a non-ASCII letter, which the ASCII
// \b in phonePattern cannot see.
func findPhone(text string) string {
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		if helper.WordBoundary(text, loc[0]) && helper.WordBoundary(text, loc[1]) {
			return text[loc[0]:loc[1]]
		}
	}
	return ""
}
