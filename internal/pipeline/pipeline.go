// Package pipeline orchestrates the research stages: expansion,
// retrieval, scraping, ranking and synthesis, under a single deadline
// with streamed progress.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claritydesk/claritydesk/internal/cache"
	"github.com/claritydesk/claritydesk/internal/expand"
	"github.com/claritydesk/claritydesk/internal/llm"
	"github.com/claritydesk/claritydesk/internal/rank"
	"github.com/claritydesk/claritydesk/internal/scrape"
	"github.com/claritydesk/claritydesk/internal/search"
	"github.com/claritydesk/claritydesk/internal/synth"
	"github.com/claritydesk/claritydesk/internal/types"
)

// Stage timeout budgets as fractions of the request deadline. A stage
// finishing early hands its slack to later stages implicitly, since
// budgets anchor at stage start under the shared parent deadline.
const (
	budgetExpand = 0.05
	budgetSearch = 0.15
	budgetScrape = 0.35
	budgetRank   = 0.10
	budgetSynth  = 0.30
)

// ProgressFunc receives streamed progress events. Implementations must
// be fast; the pipeline calls them inline.
type ProgressFunc func(types.ProgressEvent)

// Pipeline wires the research stages together.
type Pipeline struct {
	expander     *expand.Expander
	retriever    *search.Retriever
	scraper      *scrape.Scraper
	ranker       *rank.Ranker
	synthesizer  *synth.Synthesizer
	llmClient    llm.Client
	results      *cache.Cache
	candidateCap float64
	enableRerank bool
	gdprMode     bool
	logger       *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithResultCache enables result caching. Ignored in GDPR mode.
func WithResultCache(c *cache.Cache) Option {
	return func(p *Pipeline) { p.results = c }
}

// WithRerank toggles the best-effort LLM rerank pass.
func WithRerank(enabled bool) Option {
	return func(p *Pipeline) { p.enableRerank = enabled }
}

// WithGDPRMode disables caching and redacts queries from logs.
func WithGDPRMode(enabled bool) Option {
	return func(p *Pipeline) { p.gdprMode = enabled }
}

// WithCandidateCap sets the ratio of fetch candidates to requested
// sources.
func WithCandidateCap(ratio float64) Option {
	return func(p *Pipeline) {
		if ratio >= 1 {
			p.candidateCap = ratio
		}
	}
}

// New assembles a Pipeline from its stage implementations.
func New(
	expander *expand.Expander,
	retriever *search.Retriever,
	scraper *scrape.Scraper,
	ranker *rank.Ranker,
	synthesizer *synth.Synthesizer,
	llmClient llm.Client,
	logger *zap.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		expander:     expander,
		retriever:    retriever,
		scraper:      scraper,
		ranker:       ranker,
		synthesizer:  synthesizer,
		llmClient:    llmClient,
		candidateCap: 3.0,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one research request end to end. The returned result is
// complete or the error is typed; there are no partial results. The
// progress callback, when non-nil, sees a monotonic status sequence
// ending in complete or error.
func (p *Pipeline) Run(ctx context.Context, req types.ResearchRequest, progress ProgressFunc) (*types.ResearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, NewError(KindInvalidRequest, "validate", "invalid research request", err)
	}
	opts := req.Options.WithDefaults()

	requestID := uuid.NewString()
	emit := func(status types.Status, message string, pct float64) {
		if progress != nil {
			progress(types.ProgressEvent{
				RequestID: requestID,
				Status:    status,
				Message:   message,
				Progress:  pct,
			})
		}
	}

	total := time.Duration(opts.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, total)
	defer cancel()

	started := time.Now()
	emit(types.StatusStarting, "starting research", 0)

	var cacheKey string
	if p.results != nil && !p.gdprMode {
		cacheKey = cache.Key(req.Query, opts)
		if cached, ok := p.results.Get(cacheKey); ok {
			p.logger.Info("serving cached result", zap.String("request_id", requestID))
			emit(types.StatusComplete, "research complete (cached)", 100)
			return &cached, nil
		}
	}

	result, err := p.run(ctx, requestID, req.Query, opts, total, started, emit)
	if err != nil {
		emit(types.StatusError, err.Error(), 0)
		return nil, err
	}

	if cacheKey != "" {
		p.results.Put(cacheKey, *result)
	}
	emit(types.StatusComplete, "research complete", 100)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, requestID, query string, opts types.ResearchOptions, total time.Duration, started time.Time, emit func(types.Status, string, float64)) (*types.ResearchResult, error) {
	queryType := expand.ClassifyQuery(query)

	// Expansion.
	emit(types.StatusExpanding, "expanding query", 5)
	ectx, cancel := stageCtx(ctx, total, budgetExpand)
	subQueries := p.expander.Expand(ectx, query, opts.Depth)
	cancel()
	if err := stageErr(ctx, "expand"); err != nil {
		return nil, err
	}

	// Retrieval.
	emit(types.StatusSearching, fmt.Sprintf("searching %d queries", len(subQueries)), 15)
	maxCandidates := int(p.candidateCap * float64(opts.MaxSources))
	sctx, cancel := stageCtx(ctx, total, budgetSearch)
	candidates, searchFailures, err := p.retriever.Retrieve(sctx, subQueries, maxCandidates)
	cancel()
	if err != nil {
		if terr := stageErr(ctx, "search"); terr != nil {
			return nil, terr
		}
		return nil, NewError(KindUpstreamUnavailable, "search", "retrieval failed", err)
	}
	if len(candidates) == 0 {
		if searchFailures > 0 {
			return nil, NewError(KindUpstreamUnavailable, "search", "all search backends failed", nil)
		}
		return nil, NewError(KindNoViableSources, "search", "no results found for any query variant", nil)
	}

	// Scraping.
	emit(types.StatusScraping, fmt.Sprintf("fetching %d pages", len(candidates)), 35)
	fctx, cancel := stageCtx(ctx, total, budgetScrape)
	docs, fetchFailures := p.scraper.Process(fctx, candidates, opts.IncludeContactInfo)
	cancel()
	if terr := stageErr(ctx, "scrape"); terr != nil {
		return nil, terr
	}
	if len(docs) == 0 {
		return nil, NewError(KindNoViableSources, "scrape",
			fmt.Sprintf("none of %d candidate pages yielded usable content", len(candidates)), nil)
	}

	// Ranking.
	emit(types.StatusRanking, fmt.Sprintf("ranking %d documents", len(docs)), 55)
	ranked := p.ranker.Rank(query, docs, opts.MaxSources)
	if p.enableRerank {
		rctx, cancel := stageCtx(ctx, total, budgetRank)
		ranked = p.ranker.Rerank(rctx, p.llmClient, query, ranked)
		cancel()
	}
	if err := stageErr(ctx, "rank"); err != nil {
		return nil, err
	}

	// Synthesis.
	emit(types.StatusSynthesizing, fmt.Sprintf("synthesizing from %d sources", len(ranked)), 70)
	yctx, cancel := stageCtx(ctx, total, budgetSynth)
	output, err := p.synthesizer.Synthesize(yctx, query, ranked)
	if err != nil {
		cancel()
		if terr := stageErr(ctx, "synthesize"); terr != nil {
			return nil, terr
		}
		return nil, NewError(KindSynthesisFailure, "synthesize", "answer synthesis failed", err)
	}
	followUps := p.synthesizer.FollowUps(yctx, query, output.Answer, queryType)
	cancel()

	emit(types.StatusSynthesizing, "assembling result", 90)
	// Assembly and follow-ups run after the last stage deadline, so the
	// wall-clock span is clamped to keep the reported time within the
	// requested timeout.
	result := p.assemble(assembleInput{
		query:          query,
		queryType:      queryType,
		subQueries:     subQueries,
		candidates:     candidates,
		ranked:         ranked,
		output:         output,
		followUps:      followUps,
		searchFailures: searchFailures,
		fetchFailures:  fetchFailures,
		elapsed:        min(time.Since(started), total),
	})

	p.logger.Info("research complete",
		zap.String("request_id", requestID),
		zap.Int("sources", len(result.Sources)),
		zap.Float64("confidence", result.Metadata.ConfidenceScore),
		zap.Duration("elapsed", time.Since(started)))

	return result, nil
}

// stageCtx derives a stage context whose timeout is a fraction of the
// total budget, still capped by the parent deadline.
func stageCtx(ctx context.Context, total time.Duration, fraction float64) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(float64(total)*fraction))
}

// stageErr translates parent-context expiry into the typed timeout
// error. Stage-local timeouts are not request failures.
func stageErr(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewError(KindTimeout, stage, "research deadline exceeded", err)
		}
		return NewError(KindTimeout, stage, "research canceled", err)
	}
	return nil
}
