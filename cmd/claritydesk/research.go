package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claritydesk/claritydesk/internal/cache"
	"github.com/claritydesk/claritydesk/internal/config"
	"github.com/claritydesk/claritydesk/internal/expand"
	"github.com/claritydesk/claritydesk/internal/llm"
	"github.com/claritydesk/claritydesk/internal/observability"
	"github.com/claritydesk/claritydesk/internal/pipeline"
	"github.com/claritydesk/claritydesk/internal/rank"
	"github.com/claritydesk/claritydesk/internal/scrape"
	"github.com/claritydesk/claritydesk/internal/search"
	"github.com/claritydesk/claritydesk/internal/synth"
	"github.com/claritydesk/claritydesk/internal/types"
)

var (
	researchDepth       string
	researchMaxSources  int
	researchTimeout     int
	researchContactInfo bool
	researchConfigPath  string
	researchJSONOutput  bool
	researchVerbose     bool
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Research a question and produce a cited answer",
	Long:  `Run the full research pipeline for a query: expand it into search variants, retrieve and extract web sources, rank them, and synthesize a fact-checked answer with citations.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runResearch,
}

func init() {
	researchCmd.Flags().StringVar(&researchDepth, "depth", "standard", "Research depth: quick, standard, or deep")
	researchCmd.Flags().IntVar(&researchMaxSources, "max-sources", 0, "Maximum sources to use in the answer")
	researchCmd.Flags().IntVar(&researchTimeout, "timeout", 0, "Overall research timeout in seconds")
	researchCmd.Flags().BoolVar(&researchContactInfo, "include-contact-info", false, "Keep contact details in extracted content")
	researchCmd.Flags().StringVar(&researchConfigPath, "config", "", "Path to a JSON config file")
	researchCmd.Flags().BoolVar(&researchJSONOutput, "json", false, "Print the full result as JSON")
	researchCmd.Flags().BoolVar(&researchVerbose, "verbose", false, "Stream progress and debug logging")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	cfg, err := config.Load(researchConfigPath)
	if err != nil {
		return err
	}
	if researchVerbose {
		cfg.Verbose = true
	}

	logger, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, client, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	req := types.ResearchRequest{
		Query: query,
		Options: types.ResearchOptions{
			Depth:              types.Depth(researchDepth),
			MaxSources:         researchMaxSources,
			IncludeContactInfo: researchContactInfo,
			TimeoutSeconds:     researchTimeout,
		},
	}

	var progress pipeline.ProgressFunc
	if cfg.Verbose && !researchJSONOutput {
		progress = func(ev types.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %-12s %s\n", ev.Progress, ev.Status, ev.Message)
		}
	}

	logger.Info("starting research", observability.QueryField(query, cfg.GDPRMode))

	result, err := p.Run(ctx, req, progress)
	if err != nil {
		return err
	}

	if researchJSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

func buildPipeline(ctx context.Context, cfg config.Config, logger *zap.Logger) (*pipeline.Pipeline, llm.Client, error) {
	var backend search.Backend
	switch cfg.SearchProvider {
	case "google":
		svc, err := search.NewGoogle(ctx, cfg.GoogleAPIKey, cfg.GoogleCX)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create google search backend: %w", err)
		}
		backend = svc
	default:
		backend = search.NewSearxNG(cfg.SearxURL)
	}

	client, err := llm.NewClient(ctx, llm.Config{
		Provider:     llm.Provider(cfg.LLMProvider),
		GeminiAPIKey: cfg.GeminiAPIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	p := pipeline.New(
		expand.New(logger),
		search.NewRetriever(backend, cfg.SearchConcurrency, logger),
		scrape.New(logger,
			scrape.WithConcurrency(cfg.FetchConcurrency),
			scrape.WithMinContentLength(cfg.MinContentLength),
			scrape.WithBrowserFallback(cfg.UseBrowser),
		),
		rank.New(logger),
		synth.New(client, logger),
		client,
		logger,
		pipeline.WithResultCache(cache.New(cfg.CacheSize, cfg.CacheTTL())),
		pipeline.WithRerank(cfg.EnableRerank),
		pipeline.WithGDPRMode(cfg.GDPRMode),
		pipeline.WithCandidateCap(cfg.CandidateCap),
	)
	return p, client, nil
}

func printResult(result *types.ResearchResult) {
	fmt.Println(result.Answer)
	fmt.Println()
	fmt.Println("Sources:")
	for _, src := range result.Sources {
		marker := " "
		if src.BackgroundOnly {
			marker = "-"
		}
		fmt.Printf("  [%d]%s %s\n       %s\n", src.ID, marker, src.Title, src.URL)
	}
	if len(result.FollowUpSuggestions) > 0 {
		fmt.Println()
		fmt.Println("Follow-up questions:")
		for _, q := range result.FollowUpSuggestions {
			fmt.Printf("  - %s\n", q)
		}
	}
	fmt.Printf("\nConfidence: %.2f | Factcheck: %s | %.1fs\n",
		result.Metadata.ConfidenceScore,
		result.Metadata.FactcheckStatus,
		result.Metadata.ResearchTimeSeconds)
}
