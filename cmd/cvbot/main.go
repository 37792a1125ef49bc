// Package main is the entry point for the CV helper bot and its tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "cvbot",
	Short:         "Discord bot that reviews, scores and matches CVs",
	Long:          "cvbot runs a Discord bot that extracts text from uploaded CV PDFs, scores them, compares them, checks grammar, matches them against job descriptions and runs interview practice.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
