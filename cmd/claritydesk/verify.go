package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/claritydesk/claritydesk/internal/config"
	"github.com/claritydesk/claritydesk/internal/llm"
)

var verifyConfigPath string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify LLM provider connectivity and credentials",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyConfigPath, "config", "", "Path to a JSON config file")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(verifyConfigPath)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(cmd.Context(), llm.Config{
		Provider:     llm.Provider(cfg.LLMProvider),
		GeminiAPIKey: cfg.GeminiAPIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	start := time.Now()
	if err := client.Verify(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("LLM provider %s OK (%.1fs)\n", cfg.LLMProvider, time.Since(start).Seconds())
	return nil
}
