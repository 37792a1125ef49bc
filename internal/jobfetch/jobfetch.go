// Package jobfetch downloads job postings and reduces them to plain text.
package jobfetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/yesminehe/CVHelperBot/internal/cleaner"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; CVHelperBot/1.0)"

	// ErrorPrefix starts every failure string returned by Fetch.
	ErrorPrefix = "[Error fetching job description:"

	maxBodyBytes = 5 << 20
)

var urlPattern = regexp.MustCompile(`^https?://`)

// Fetcher never returns an error value: failures come back as a string
// starting with ErrorPrefix, which is meant to be shown to the user as is.
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

// IsURL reports whether a job description message is a link to fetch.
func IsURL(input string) bool {
	return urlPattern.MatchString(input)
}

func IsFailure(text string) bool {
	return strings.HasPrefix(text, ErrorPrefix)
}

type HTTP struct {
	client    *http.Client
	userAgent string
	clean     *cleaner.Cleaner
}

func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTP{
		client:    client,
		userAgent: DefaultUserAgent,
		clean:     cleaner.NewCleaner(),
	}
}

func (h *HTTP) Fetch(ctx context.Context, url string) string {
	text, err := h.FetchText(ctx, url)
	if err != nil {
		slog.Warn("job description fetch failed", "component", "jobfetch", "url", url, "error", err)
		return fmt.Sprintf("%s %v]", ErrorPrefix, err)
	}
	return text
}

// FetchText is the error-returning form of Fetch.
func (h *HTTP) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	startTime := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	text := h.clean.JobText(string(body))
	slog.Info("fetched job description",
		"component", "jobfetch",
		"url", url,
		"html_bytes", len(body),
		"text_chars", len(text),
		"duration_ms", time.Since(startTime).Milliseconds())
	return text, nil
}
