// Package scrape turns candidate links into extracted documents by
// fetching pages concurrently and running readability extraction.
package scrape

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/claritydesk/claritydesk/internal/fetch"
	"github.com/claritydesk/claritydesk/internal/redact"
	"github.com/claritydesk/claritydesk/internal/types"
)

// perURLTimeout bounds a single page fetch so one slow host cannot
// consume the whole scraping budget.
const perURLTimeout = 20 * time.Second

// browserTimeout bounds a headless-browser render fallback.
const browserTimeout = 30 * time.Second

// Scraper fetches and extracts a batch of candidate links.
type Scraper struct {
	concurrency      int
	minContentLength int
	useBrowser       bool
	fetchOpts        *fetch.Options
	logger           *zap.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithConcurrency sets the number of parallel fetches.
func WithConcurrency(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMinContentLength sets the minimum body length below which an
// extracted page is discarded as an error page or paywall stub.
func WithMinContentLength(n int) Option {
	return func(s *Scraper) { s.minContentLength = n }
}

// WithBrowserFallback enables headless-browser rendering for pages that
// return too little text over plain HTTP.
func WithBrowserFallback(enabled bool) Option {
	return func(s *Scraper) { s.useBrowser = enabled }
}

// WithFetchOptions overrides the HTTP fetch options, mainly for tests.
func WithFetchOptions(opts *fetch.Options) Option {
	return func(s *Scraper) { s.fetchOpts = opts }
}

// New builds a Scraper.
func New(logger *zap.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		concurrency:      5,
		minContentLength: 100,
		fetchOpts:        fetch.DefaultOptions(),
		logger:           logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process fetches every candidate concurrently and returns the documents
// that produced usable text, preserving candidate order. Every per-URL
// failure is absorbed and counted, including context expiry mid-batch;
// the documents gathered before the deadline are still returned. When
// includeContactInfo is false, extracted text has contact details
// masked before it enters any downstream stage.
func (s *Scraper) Process(ctx context.Context, candidates []types.CandidateLink, includeContactInfo bool) ([]types.Document, int) {
	if len(candidates) == 0 {
		return nil, 0
	}

	results := make([]*types.Document, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, cand := range candidates {
		g.Go(func() error {
			doc, err := s.scrapeOne(gctx, cand, includeContactInfo)
			if err != nil {
				if gctx.Err() == nil {
					s.logger.Warn("scrape failed",
						zap.String("url", cand.URL),
						zap.Error(err))
				}
				return nil
			}
			results[i] = doc
			return nil
		})
	}
	_ = g.Wait()

	docs := make([]types.Document, 0, len(candidates))
	for _, doc := range results {
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs, len(candidates) - len(docs)
}

func (s *Scraper) scrapeOne(ctx context.Context, cand types.CandidateLink, includeContactInfo bool) (*types.Document, error) {
	fctx, cancel := context.WithTimeout(ctx, perURLTimeout)
	defer cancel()

	start := time.Now()
	res, err := fetch.URL(fctx, cand.URL, s.fetchOpts)
	if err != nil {
		return nil, err
	}

	extracted, err := fetch.Article(res.HTML)
	if err != nil {
		return nil, err
	}

	if s.useBrowser && fetch.NeedsBrowser(extracted.Text) {
		if html, berr := fetch.Rendered(ctx, cand.URL, browserTimeout); berr == nil {
			if rendered, rerr := fetch.Article(html); rerr == nil && len(rendered.Text) > len(extracted.Text) {
				extracted = rendered
			}
		} else {
			s.logger.Debug("browser fallback failed",
				zap.String("url", cand.URL),
				zap.Error(berr))
		}
	}

	body := extracted.Text
	if len(body) < s.minContentLength {
		return nil, &fetch.Error{URL: cand.URL, Message: "extracted content too short"}
	}

	if !includeContactInfo {
		body = redact.ContactInfo(body)
	}

	title := extracted.Title
	if title == "" {
		title = cand.Title
	}

	return &types.Document{
		CandidateLink:  cand,
		ExtractedTitle: title,
		Body:           body,
		ContentLength:  len(body),
		PublishedGuess: extracted.PublishedDate,
		FetchLatency:   time.Since(start),
	}, nil
}
