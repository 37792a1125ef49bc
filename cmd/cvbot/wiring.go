package main

import (
	"fmt"
	"io"

	"github.com/yesminehe/CVHelperBot/internal/config"
	"github.com/yesminehe/CVHelperBot/internal/extraction"
	"github.com/yesminehe/CVHelperBot/internal/flow"
	"github.com/yesminehe/CVHelperBot/internal/grammar"
	"github.com/yesminehe/CVHelperBot/internal/jobfetch"
	"github.com/yesminehe/CVHelperBot/internal/llm"
	"github.com/yesminehe/CVHelperBot/internal/skills"
	"github.com/yesminehe/CVHelperBot/internal/worker"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newGenerator builds the configured model client. The closer releases it.
func newGenerator(cfg *config.Config) (llm.Generator, io.Closer, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return llm.NewOpenAI(cfg.LLM.OpenAIAPIKey, cfg.LLM.Model), nopCloser{}, nil
	case "gemini":
		gen, err := llm.New(cfg.LLM.GeminiAPIKey, cfg.LLM.Model)
		if err != nil {
			return nil, nil, err
		}
		return gen, gen, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

func newServices(cfg *config.Config, gen llm.Generator) (flow.Services, error) {
	compare, err := skills.New(skills.Strategy(cfg.Flow.CompareStrategy), gen)
	if err != nil {
		return flow.Services{}, fmt.Errorf("compare skills: %w", err)
	}
	match, err := skills.New(skills.Strategy(cfg.Flow.MatchStrategy), gen)
	if err != nil {
		return flow.Services{}, fmt.Errorf("match skills: %w", err)
	}

	return flow.Services{
		Extractor:     extraction.NewPDF(cfg.Storage.TempDir, cfg.Storage.MaxUploadBytes),
		Grammar:       grammar.NewLanguageTool(cfg.Grammar.URL, cfg.Grammar.Language, nil),
		Generator:     gen,
		Fetcher:       jobfetch.NewHTTP(nil),
		CompareSkills: compare,
		MatchSkills:   match,
		Pool:          worker.NewPool(cfg.Worker.Concurrency),
	}, nil
}

func settingsFrom(cfg *config.Config) flow.Settings {
	s := flow.DefaultSettings()
	s.Prefix = cfg.Discord.Prefix
	s.UploadTimeout = cfg.Flow.UploadTimeout
	s.TextTimeout = cfg.Flow.TextTimeout
	s.ConsentTimeout = cfg.Flow.ConsentTimeout
	s.AnswerTimeout = cfg.Flow.AnswerTimeout
	s.ReviewCooldown = cfg.Flow.ReviewCooldown
	s.PromptChars = cfg.Flow.PromptMaxChars
	s.SuggestCourses = cfg.Flow.SuggestCourses
	return s
}
