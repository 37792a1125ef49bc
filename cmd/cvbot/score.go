package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yesminehe/CVHelperBot/internal/config"
	"github.com/yesminehe/CVHelperBot/internal/extraction"
	"github.com/yesminehe/CVHelperBot/internal/grammar"
	"github.com/yesminehe/CVHelperBot/internal/scoring"
	apperrors "github.com/yesminehe/CVHelperBot/pkg/errors"
	"github.com/yesminehe/CVHelperBot/pkg/logger"
)

var scoreCmd = &cobra.Command{
	Use:   "score <file.pdf>",
	Short: "Score a local CV PDF without starting the bot",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

var (
	scoreWithGrammar bool
	scoreJSON        bool
)

func init() {
	scoreCmd.Flags().BoolVar(&scoreWithGrammar, "grammar", false, "Apply the grammar penalty using the configured grammar service")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the analysis as JSON")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(cfg.Log.Level)
	if err := cfg.ValidateOffline(); err != nil {
		return err
	}

	text, err := extraction.NewPDF(cfg.Storage.TempDir, cfg.Storage.MaxUploadBytes).ExtractFile(args[0])
	if err != nil {
		return err
	}
	if extraction.IsEmpty(text) {
		return errors.New(apperrors.ErrEmptyExtraction().Message)
	}

	issues := 0
	if scoreWithGrammar {
		checker := grammar.NewLanguageTool(cfg.Grammar.URL, cfg.Grammar.Language, nil)
		found, err := checker.Check(cmdContext(cmd), text)
		if err != nil {
			return err
		}
		issues = len(found)
	}

	analysis := scoring.Analyze(text, issues)
	if scoreJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}
	return printAnalysis(cmd.OutOrStdout(), analysis)
}

func printAnalysis(w io.Writer, a scoring.Analysis) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %d/100 (raw %d, grammar penalty -%d)\n", a.Report.Score, a.Report.Raw, a.Report.GrammarPenalty)
	fmt.Fprintf(&sb, "Word count: %d\n", a.WordCount)

	sections := make([]string, len(a.Sections))
	for i, s := range a.Sections {
		sections[i] = string(s)
	}
	if len(sections) == 0 {
		sections = []string{"None"}
	}
	fmt.Fprintf(&sb, "Sections found: %s\n", strings.Join(sections, ", "))

	bullets := "No"
	if a.HasBullets {
		bullets = "Yes"
	}
	fmt.Fprintf(&sb, "Bullet points: %s\n", bullets)

	for _, f := range a.Contact.Fields() {
		fmt.Fprintf(&sb, "%s: %s\n", f.Label, f.Value)
	}
	sb.WriteString("Rules:\n")
	for _, r := range a.Report.Rules {
		fmt.Fprintf(&sb, "  %-20s +%d\n", r.Name, r.Points)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
