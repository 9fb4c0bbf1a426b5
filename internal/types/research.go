// Package types defines the data model shared across the research pipeline.
package types

import (
	"time"
)

// Depth controls how aggressively a query is expanded and retrieved.
type Depth string

// Depth levels supported by the pipeline.
const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// QueryType classifies the intent of a research query.
type QueryType string

// Query types recognized by the expander.
const (
	QueryFactual    QueryType = "factual"
	QueryList       QueryType = "list"
	QueryComparison QueryType = "comparison"
	QueryHowTo      QueryType = "how_to"
	QueryAnalysis   QueryType = "analysis"
)

// ResearchOptions configures a single research run.
type ResearchOptions struct {
	Depth              Depth `json:"depth" validate:"omitempty,oneof=quick standard deep"`
	MaxSources         int   `json:"max_sources" validate:"omitempty,gt=0,lte=50"`
	IncludeContactInfo bool  `json:"include_contact_info"`
	TimeoutSeconds     int   `json:"research_timeout" validate:"omitempty,gt=0,lte=1800"`
}

// ResearchRequest is the immutable entry contract for the pipeline.
type ResearchRequest struct {
	Query   string          `json:"query" validate:"required"`
	Options ResearchOptions `json:"options"`
}

// ExpansionStrategy tags how a sub-query was derived from the original.
type ExpansionStrategy string

// Expansion strategies.
const (
	StrategyOriginal ExpansionStrategy = "original"
	StrategyTemporal ExpansionStrategy = "temporal"
	StrategyDomain   ExpansionStrategy = "domain"
	StrategyContext  ExpansionStrategy = "context"
)

// SubQuery is one search-ready variant of the original query.
type SubQuery struct {
	Text     string            `json:"text"`
	Strategy ExpansionStrategy `json:"strategy"`
}

// CandidateLink is a deduplicated search hit awaiting fetch.
type CandidateLink struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Domain   string `json:"domain"`
	SubQuery string `json:"sub_query"`
	// Position in the merged retrieval order, used as the final ranking
	// tie-break so output never depends on network timing.
	RetrievalOrder int `json:"retrieval_order"`
}

// Document is a successfully fetched and extracted page.
type Document struct {
	CandidateLink
	ExtractedTitle string        `json:"extracted_title"`
	Body           string        `json:"body"`
	ContentLength  int           `json:"content_length"`
	PublishedGuess string        `json:"published_at_guess,omitempty"`
	FetchLatency   time.Duration `json:"-"`
}

// ScoredDocument is a Document that survived ranking.
type ScoredDocument struct {
	Document
	RelevanceScore float64 `json:"relevance_score"`
	QualityScore   float64 `json:"quality_score"`
	KeyFindings    string  `json:"key_findings"`
}

// CombinedScore is the ordering key used for final selection.
func (d ScoredDocument) CombinedScore() float64 {
	return d.RelevanceScore*0.7 + d.QualityScore*0.3
}

// EvidenceClaim links one answer claim to the sources supporting it.
type EvidenceClaim struct {
	Claim           string `json:"claim"`
	SupportingQuote string `json:"supporting_quote,omitempty"`
	// SourceID is 1-based and indexes into ResearchResult.Sources.
	SourceID   int    `json:"source_id"`
	Confidence string `json:"confidence"` // high, medium, low
}

// SourceInfo is the projection of a ScoredDocument surfaced to callers.
type SourceInfo struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Domain         string   `json:"domain"`
	PublishedDate  string   `json:"published_date"`
	RelevanceScore float64  `json:"relevance_score"`
	QualityScore   float64  `json:"quality_score"`
	KeyFindings    string   `json:"key_findings"`
	PullQuotes     []string `json:"pull_quotes,omitempty"`
	// BackgroundOnly marks a source that survived ranking but is never
	// cited in the finalized answer.
	BackgroundOnly bool `json:"background_only"`
}

// ResearchMetadata summarizes how a result was produced.
type ResearchMetadata struct {
	SourcesSearched     int       `json:"sources_searched"`
	SourcesProcessed    int       `json:"sources_processed"`
	ResearchTimeSeconds float64   `json:"research_time_seconds"`
	ConfidenceScore     float64   `json:"confidence_score"`
	QueryType           QueryType `json:"query_type"`
	SubQuestions        []string  `json:"sub_questions"`
	ExpandedQueries     []string  `json:"expanded_queries"`
	FactcheckStatus     string    `json:"factcheck_status"` // passed, revised, exhausted
	FetchFailures       int       `json:"fetch_failures"`
	SearchFailures      int       `json:"search_failures"`
}

// ResearchResult is the terminal, immutable output of a pipeline run.
type ResearchResult struct {
	Query               string           `json:"query"`
	Answer              string           `json:"answer"`
	Metadata            ResearchMetadata `json:"research_metadata"`
	Sources             []SourceInfo     `json:"sources"`
	EvidenceMatrix      []EvidenceClaim  `json:"evidence_matrix"`
	FollowUpSuggestions []string         `json:"follow_up_suggestions"`
}

// Status identifies the pipeline stage a progress event belongs to.
type Status string

// Progress statuses, emitted in monotonic order per request.
const (
	StatusStarting     Status = "starting"
	StatusExpanding    Status = "expanding"
	StatusSearching    Status = "searching"
	StatusScraping     Status = "scraping"
	StatusRanking      Status = "ranking"
	StatusSynthesizing Status = "synthesizing"
	StatusComplete     Status = "complete"
	StatusError        Status = "error"
)

// ProgressEvent is one step of a streaming research response.
type ProgressEvent struct {
	RequestID string  `json:"request_id"`
	Status    Status  `json:"status"`
	Message   string  `json:"message"`
	Progress  float64 `json:"progress,omitempty"` // 0-100
}
