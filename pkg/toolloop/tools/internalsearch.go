package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codeready-toolchain/verifyd/pkg/agent"
)

// InternalSearchResult is one matched record returned by the internal
// corpus search, enriched with the most recent Update's verdict per
// spec.md §4.C5's internal-search contract.
type InternalSearchResult struct {
	ArticleID     string `json:"article_id"`
	Title         string `json:"title"`
	ClaimID       string `json:"claim_id,omitempty"`
	Claim         string `json:"claim,omitempty"`
	LatestVerdict string `json:"latest_verdict,omitempty"`
}

// InternalSearchBackend performs the case-insensitive text match across the
// Article and Claim stores' indexed text fields, with an optional date
// range, and the most-recent-Update enrichment.
type InternalSearchBackend interface {
	Search(ctx context.Context, query string, from, to *time.Time) ([]InternalSearchResult, error)
}

// InternalSearch adapts InternalSearchBackend as a toolloop.Tool.
type InternalSearch struct {
	backend InternalSearchBackend
}

func NewInternalSearch(backend InternalSearchBackend) *InternalSearch {
	return &InternalSearch{backend: backend}
}

func (t *InternalSearch) Name() string { return "internal_search" }

func (t *InternalSearch) Definition() agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        t.Name(),
		Description: "Search previously ingested articles and claims for related coverage, including any verified verdict.",
		ParametersSchema: `{"type":"object","properties":{"query":{"type":"string"},"from_date":{"type":"string"},"to_date":{"type":"string"}},"required":["query"]}`,
	}
}

type internalSearchArgs struct {
	Query    string `json:"query"`
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`
}

func (t *InternalSearch) Execute(ctx context.Context, argumentsJSON string) (string, string, bool, error) {
	var args internalSearchArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return "", "", false, fmt.Errorf("internal_search: invalid arguments: %w", err)
	}

	var from, to *time.Time
	if args.FromDate != "" {
		if t, err := time.Parse("2006-01-02", args.FromDate); err == nil {
			from = &t
		}
	}
	if args.ToDate != "" {
		if t, err := time.Parse("2006-01-02", args.ToDate); err == nil {
			to = &t
		}
	}

	results, err := t.backend.Search(ctx, args.Query, from, to)
	if err != nil {
		return "", "", false, err
	}

	out, err := json.Marshal(results)
	if err != nil {
		return "", "", false, err
	}
	// Internal search results are not page fetches; they do not count
	// toward the deduplicated sources list.
	return string(out), "", false, nil
}
