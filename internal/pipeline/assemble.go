package pipeline

import (
	"time"

	"github.com/claritydesk/claritydesk/internal/expand"
	"github.com/claritydesk/claritydesk/internal/synth"
	"github.com/claritydesk/claritydesk/internal/types"
)

// maxKeyEntities bounds entity extraction for sub-question generation.
const maxKeyEntities = 10

type assembleInput struct {
	query          string
	queryType      types.QueryType
	subQueries     []types.SubQuery
	candidates     []types.CandidateLink
	ranked         []types.ScoredDocument
	output         *synth.Output
	followUps      []string
	searchFailures int
	fetchFailures  int
	elapsed        time.Duration
}

// assemble builds the immutable result. Source IDs are assigned here
// and match the citation numbers in the answer one to one.
func (p *Pipeline) assemble(in assembleInput) *types.ResearchResult {
	matrix := synth.BuildEvidenceMatrix(in.output.Answer, in.ranked)

	cited := make(map[int]bool)
	for _, id := range synth.Citations(in.output.Answer) {
		cited[id] = true
	}

	sources := make([]types.SourceInfo, 0, len(in.ranked))
	for i, doc := range in.ranked {
		id := i + 1
		sources = append(sources, types.SourceInfo{
			ID:             id,
			Title:          doc.ExtractedTitle,
			URL:            doc.URL,
			Domain:         doc.Domain,
			PublishedDate:  doc.PublishedGuess,
			RelevanceScore: doc.RelevanceScore,
			QualityScore:   doc.QualityScore,
			KeyFindings:    doc.KeyFindings,
			PullQuotes:     synth.PullQuotes(in.query, doc.Body),
			BackgroundOnly: !cited[id],
		})
	}

	expandedQueries := make([]string, 0, len(in.subQueries))
	for _, sq := range in.subQueries {
		expandedQueries = append(expandedQueries, sq.Text)
	}
	subQuestions := expand.SubQuestions(in.query, in.queryType, expand.KeyEntities(in.query, maxKeyEntities))

	return &types.ResearchResult{
		Query:  in.query,
		Answer: in.output.Answer,
		Metadata: types.ResearchMetadata{
			SourcesSearched:     len(in.candidates),
			SourcesProcessed:    len(in.ranked),
			ResearchTimeSeconds: in.elapsed.Seconds(),
			ConfidenceScore:     confidenceScore(in.ranked, cited, in.output.FactcheckStatus),
			QueryType:           in.queryType,
			SubQuestions:        subQuestions,
			ExpandedQueries:     expandedQueries,
			FactcheckStatus:     in.output.FactcheckStatus,
			FetchFailures:       in.fetchFailures,
			SearchFailures:      in.searchFailures,
		},
		Sources:             sources,
		EvidenceMatrix:      matrix,
		FollowUpSuggestions: in.followUps,
	}
}

// confidenceScore blends citation coverage, the relevance of the cited
// sources, and the factcheck outcome into a 0..1 score.
func confidenceScore(ranked []types.ScoredDocument, cited map[int]bool, factcheckStatus string) float64 {
	if len(ranked) == 0 {
		return 0
	}

	citedFraction := float64(len(cited)) / float64(len(ranked))

	var relevanceSum float64
	for id := range cited {
		if id >= 1 && id <= len(ranked) {
			relevanceSum += ranked[id-1].RelevanceScore
		}
	}
	var avgRelevance float64
	if len(cited) > 0 {
		avgRelevance = relevanceSum / float64(len(cited))
	}

	var factcheckTerm float64
	switch factcheckStatus {
	case synth.FactcheckPassed:
		factcheckTerm = 1.0
	case synth.FactcheckRevised:
		factcheckTerm = 0.5
	}

	return 0.5*citedFraction + 0.4*avgRelevance + 0.1*factcheckTerm
}
