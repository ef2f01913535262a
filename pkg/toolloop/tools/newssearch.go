package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codeready-toolchain/verifyd/pkg/agent"
)

// NewsSearch is the news-indexed counterpart to WebSearch (same shape, per
// spec.md §4.C5: "same shape, news-indexed backend").
type NewsSearch struct {
	backend SearchBackend
}

func NewNewsSearch(backend SearchBackend) *NewsSearch { return &NewsSearch{backend: backend} }

func (t *NewsSearch) Name() string { return "news_search" }

func (t *NewsSearch) Definition() agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        t.Name(),
		Description: "Search recent news coverage relevant to a query.",
		ParametersSchema: `{"type":"object","properties":{"query":{"type":"string"},"max_results":{"type":"integer"}},"required":["query","max_results"]}`,
	}
}

func (t *NewsSearch) Execute(ctx context.Context, argumentsJSON string) (string, string, bool, error) {
	var args searchArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return "", "", false, fmt.Errorf("news_search: invalid arguments: %w", err)
	}
	if args.MaxResults <= 0 {
		args.MaxResults = 5
	}

	results, err := t.backend.Search(ctx, WithBlacklist(args.Query), args.MaxResults)
	if err != nil {
		return "", "", false, err
	}

	out, err := json.Marshal(results)
	if err != nil {
		return "", "", false, err
	}
	return string(out), "", false, nil
}
