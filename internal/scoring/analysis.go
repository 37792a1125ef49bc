package scoring

import (
	"strings"

	"github.com/yesminehe/CVHelperBot/pkg/types"
)

// Analysis is the full heuristic readout of one CV.
type Analysis struct {
	Report     Report            `json:"report"`
	Contact    types.ContactInfo `json:"contact"`
	Sections   []types.Section   `json:"sections"`
	HasBullets bool              `json:"has_bullets"`
	WordCount  int               `json:"word_count"`
}

func Analyze(text string, grammarErrors int) Analysis {
	return Analysis{
		Report:     Evaluate(text, grammarErrors),
		Contact:    ExtractContactInfo(text),
		Sections:   DetectSections(text),
		HasBullets: HasBullets(text),
		WordCount:  len(strings.Fields(text)),
	}
}
