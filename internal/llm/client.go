package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.0-flash"

const systemPrompt = "You are a helpful career assistant that reviews CVs and prepares candidates for interviews."

// ErrEmptyResponse means the model answered with no text.
var ErrEmptyResponse = errors.New("empty response from LLM")

// Generator is the text generation service shared by every command. It is
// created once at startup and injected where needed.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type LLM struct {
	client *genai.Client
	model  string
}

func New(apiKey, model string) (*LLM, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	return &LLM{
		client: client,
		model:  model,
	}, nil
}

func (l *LLM) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}

func (l *LLM) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	model := l.client.GenerativeModel(l.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}

	if resp.UsageMetadata != nil {
		slog.Info("LLM API call",
			"provider", "gemini",
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
