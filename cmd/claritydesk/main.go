// Package main provides the entry point for the ClarityDesk research
// CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "claritydesk",
	Short: "ClarityDesk web research assistant",
	Long:  "ClarityDesk answers research questions by searching the web, extracting and ranking sources, and synthesizing a cited, fact-checked answer.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
