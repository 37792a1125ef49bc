package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minBlockLength is how much text a container needs before it is taken to be
// the job description itself rather than page chrome.
const minBlockLength = 200

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// JobText pulls the description out of a job board page. It returns the text
// of the first section, div or article holding more than minBlockLength
// characters and falls back to the text of the whole page.
func (c *Cleaner) JobText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stripTags(html)
	}
	doc.Find("script, style, noscript, iframe").Remove()

	for _, tag := range []string{"section", "div", "article"} {
		var found string
		doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := cleanText(s.Text())
			if len(text) > minBlockLength {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	return cleanText(doc.Text())
}

// CleanLlmResponse strips a surrounding markdown code fence and whitespace.
func (c *Cleaner) CleanLlmResponse(response string) string {
	if !strings.Contains(response, "```") {
		return strings.TrimSpace(response)
	}

	start := strings.Index(response, "```") + 3
	// drop a language tag such as ```text
	if nl := strings.Index(response[start:], "\n"); nl != -1 && !strings.ContainsAny(response[start:start+nl], " ,") {
		start += nl + 1
	}
	end := strings.LastIndex(response, "```")

	if end > start {
		return strings.TrimSpace(response[start:end])
	}

	return strings.TrimSpace(strings.ReplaceAll(response, "```", ""))
}

func stripTags(html string) string {
	return cleanText(tagPattern.ReplaceAllString(html, " "))
}

func cleanText(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
