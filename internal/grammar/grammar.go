// Package grammar checks text against a LanguageTool server.
package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultBaseURL  = "https://api.languagetool.org"
	DefaultLanguage = "en-US"
	DefaultTimeout  = 30 * time.Second

	// DefaultChunkChars keeps each request under the public server's 20KB
	// text limit even for two-byte characters.
	DefaultChunkChars = 10000
)

// Issue is one grammar or spelling finding.
type Issue struct {
	Message      string   `json:"message"`
	Rule         string   `json:"rule"`
	Context      string   `json:"context"`
	Offset       int      `json:"offset"`
	Length       int      `json:"length"`
	Replacements []string `json:"replacements,omitempty"`
}

type Checker interface {
	Check(ctx context.Context, text string) ([]Issue, error)
}

// LanguageTool talks to the /v2/check endpoint of a public or self-hosted
// LanguageTool instance.
type LanguageTool struct {
	baseURL    string
	language   string
	client     *http.Client
	chunkChars int
}

func NewLanguageTool(baseURL, language string, client *http.Client) *LanguageTool {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if language == "" {
		language = DefaultLanguage
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &LanguageTool{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		client:     client,
		chunkChars: DefaultChunkChars,
	}
}

type checkResponse struct {
	Matches []struct {
		Message string `json:"message"`
		Offset  int    `json:"offset"`
		Length  int    `json:"length"`
		Rule    struct {
			ID string `json:"id"`
		} `json:"rule"`
		Context struct {
			Text string `json:"text"`
		} `json:"context"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
	} `json:"matches"`
}

// Check sends long text in consecutive chunks and reports offsets relative
// to the whole text.
func (lt *LanguageTool) Check(ctx context.Context, text string) ([]Issue, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	startTime := time.Now()
	var issues []Issue
	chunks := splitText(text, lt.chunkChars)
	offset := 0
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) != "" {
			found, err := lt.checkChunk(ctx, chunk)
			if err != nil {
				return nil, err
			}
			for _, issue := range found {
				issue.Offset += offset
				issues = append(issues, issue)
			}
		}
		offset += utf8.RuneCountInString(chunk)
	}

	slog.Info("grammar check completed",
		"component", "grammar",
		"chars", len(text),
		"chunks", len(chunks),
		"issues", len(issues),
		"duration_ms", time.Since(startTime).Milliseconds())
	return issues, nil
}

func (lt *LanguageTool) checkChunk(ctx context.Context, text string) ([]Issue, error) {
	form := url.Values{}
	form.Set("language", lt.language)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lt.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create grammar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := lt.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grammar check request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("grammar check returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode grammar response: %w", err)
	}

	issues := make([]Issue, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		issue := Issue{
			Message: m.Message,
			Rule:    m.Rule.ID,
			Context: m.Context.Text,
			Offset:  m.Offset,
			Length:  m.Length,
		}
		for _, r := range m.Replacements {
			issue.Replacements = append(issue.Replacements, r.Value)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// splitText cuts text into pieces of at most limit runes, preferring to end a
// piece after a newline, then after a space. The pieces concatenate back to
// text so offsets can be carried across them.
func splitText(text string, limit int) []string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := lastBreak(runes[:limit], '\n')
		if cut == 0 {
			cut = lastBreak(runes[:limit], ' ')
		}
		if cut == 0 {
			cut = limit
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// lastBreak returns the length of the prefix ending with the last sep, or 0.
func lastBreak(runes []rune, sep rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == sep {
			return i + 1
		}
	}
	return 0
}
