package helper

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MessageLimit keeps replies safely under Discord's 2000 character cap.
const MessageLimit = 1900

// SplitMessage breaks text into chunks of at most limit runes, preferring to
// cut at a newline, then at a space.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	if utf8.RuneCountInString(text) <= limit {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := lastIndex(runes[:limit], '\n')
		if cut <= 0 {
			cut = lastIndex(runes[:limit], ' ')
		}
		if cut <= 0 {
			cut = limit
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = []rune(strings.TrimLeft(string(runes[cut:]), "\n "))
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func lastIndex(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

// Preview trims s to n runes for log lines and list displays.
func Preview(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}

// Truncate keeps at most n runes of s so a cut never splits a multi-byte
// character.
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// WordClass is the regexp class for word characters in any script. Plain \w
// only covers ASCII, which splits accented words.
const WordClass = `\p{L}\p{N}_`

func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// WordBoundary reports whether byte offset i in s sits between a word rune
// and a non-word rune, treating both ends of s as non-word.
func WordBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = IsWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = IsWordRune(r)
	}
	return before != after
}
