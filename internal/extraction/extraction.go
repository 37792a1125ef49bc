// Package extraction turns uploaded PDF bytes into plain text.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxBytes caps how much of an upload is staged to disk.
const DefaultMaxBytes int64 = 10 << 20

var ErrTooLarge = errors.New("upload exceeds size limit")

// Extractor returns the text of a document. An empty result is not an error;
// callers decide how to report a document with no extractable text.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (string, error)
}

type PDF struct {
	tempDir  string
	maxBytes int64
}

// NewPDF stages uploads under tempDir ("" means the OS default).
func NewPDF(tempDir string, maxBytes int64) *PDF {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &PDF{tempDir: tempDir, maxBytes: maxBytes}
}

// Extract copies r into a temp file, parses it and removes the file on every
// exit path.
func (p *PDF) Extract(ctx context.Context, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(p.tempDir, "cv-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	n, err := io.Copy(tmp, io.LimitReader(r, p.maxBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to stage upload: %w", closeErr)
	}
	if n > p.maxBytes {
		return "", ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return p.ExtractFile(path)
}

// ExtractFile reads every page of the PDF at path. Pages without a text layer
// (scans, images) contribute nothing.
func (p *PDF) ExtractFile(path string) (text string, err error) {
	// the parser panics on some malformed files
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to parse PDF: %v", rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("skipping unreadable PDF page", "component", "extraction", "page", i, "error", err)
			continue
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
		}
	}

	slog.Debug("extracted PDF text", "component", "extraction", "pages", pages, "chars", b.Len())
	return b.String(), nil
}

// IsEmpty reports whether extracted text has no visible content.
func IsEmpty(text string) bool {
	return strings.TrimSpace(text) == ""
}
