package flow

import "strings"

// Predicate decides whether a reply is acceptable for the current step.
type Predicate func(Message) bool

func IsPDFUpload(m Message) bool {
	return len(m.Attachments) > 0 &&
		strings.HasSuffix(strings.ToLower(m.Attachments[0].Filename), ".pdf")
}

func HasText(m Message) bool {
	return strings.TrimSpace(m.Content) != ""
}

func IsYesNo(m Message) bool {
	switch normalizedAnswer(m) {
	case "yes", "no":
		return true
	}
	return false
}

func IsYes(m Message) bool {
	return normalizedAnswer(m) == "yes"
}

func Any(Message) bool {
	return true
}

func normalizedAnswer(m Message) string {
	return strings.ToLower(strings.TrimSpace(m.Content))
}
