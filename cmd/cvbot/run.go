package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yesminehe/CVHelperBot/internal/api"
	"github.com/yesminehe/CVHelperBot/internal/bot"
	"github.com/yesminehe/CVHelperBot/internal/config"
	"github.com/yesminehe/CVHelperBot/internal/flow"
	"github.com/yesminehe/CVHelperBot/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Discord bot (and the HTTP API when HTTP_PORT is set)",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		return err
	}
	slog.Info("Starting bot...", "provider", cfg.LLM.Provider, "workers", cfg.Worker.Concurrency)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, closer, err := newGenerator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer closer.Close()

	svc, err := newServices(cfg, gen)
	if err != nil {
		return err
	}
	commands, err := flow.NewCommands(svc, settingsFrom(cfg))
	if err != nil {
		return err
	}

	b, err := bot.New(cfg.Discord.Token)
	if err != nil {
		return err
	}
	controller := flow.NewController(commands.Registry(), flow.NewRouter(), b, cfg.Discord.Prefix)
	if err := b.Start(ctx, controller); err != nil {
		return err
	}
	defer b.Close()

	if cfg.HTTP.Port > 0 {
		server := api.NewServer(cfg.HTTP.Port, api.Services{
			Extractor: svc.Extractor,
			Grammar:   svc.Grammar,
			Skills:    svc.CompareSkills,
			Pool:      svc.Pool,
			MaxBytes:  cfg.Storage.MaxUploadBytes,
		})
		go func() {
			if err := server.Start(); err != nil {
				slog.Error("Error starting API server", "error", err)
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("API server shutdown failed", "error", err)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("Shutting down...")
	return nil
}
