package search

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// googleMaxResults is the Custom Search API per-call ceiling.
const googleMaxResults = 10

// Google queries the Google Custom Search API.
type Google struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogle creates a Google Custom Search backend.
func NewGoogle(ctx context.Context, apiKey, cx string) (*Google, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &Google{svc: svc, cx: cx}, nil
}

// Search implements Backend.
func (g *Google) Search(ctx context.Context, query string) ([]Result, error) {
	resp, err := g.svc.Cse.List().Context(ctx).Cx(g.cx).Q(query).Num(googleMaxResults).Do()
	if err != nil {
		return nil, fmt.Errorf("google search failed: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
