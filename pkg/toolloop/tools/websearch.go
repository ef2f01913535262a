// Package tools adapts spec.md §4.C5/§6's four tool contracts to the
// toolloop.Tool interface: web search, news search, page fetch, and
// internal corpus search. Each is a thin wrapper — argument decode, call an
// injected backend, shape the result — in the style of
// pkg/agent/controller tool dispatch, but over spec.md's own contracts
// rather than tarsy's MCP servers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/verifyd/pkg/agent"
)

// BlockedDomains is the fixed low-quality-domain blacklist spec.md §4.C5/§6
// appends to every outbound search query as -site: modifiers. Spec.md
// describes the mechanism exactly but leaves the concrete list
// implementation-defined ("e.g., low-quality news domains"); no such list
// exists in the recovered original_source/, so these are a representative
// fixed set rather than a grounded one.
var BlockedDomains = []string{
	"pinterest.com",
	"quora.com",
	"content-farm.example",
}

// SearchResult is one row of a web/news search result.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchBackend performs a web or news query and returns raw results.
type SearchBackend interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

type searchArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// WithBlacklist appends -site:<domain> modifiers for every entry in
// BlockedDomains, preserving any -site:/quoted/filetype: modifiers already
// present in the caller's query (spec.md §9 "Search tool contract").
func WithBlacklist(query string) string {
	var b strings.Builder
	b.WriteString(query)
	for _, domain := range BlockedDomains {
		b.WriteString(" -site:")
		b.WriteString(domain)
	}
	return b.String()
}

// WebSearch wraps a SearchBackend as a toolloop.Tool.
type WebSearch struct {
	backend SearchBackend
}

func NewWebSearch(backend SearchBackend) *WebSearch { return &WebSearch{backend: backend} }

func (t *WebSearch) Name() string { return "web_search" }

func (t *WebSearch) Definition() agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        t.Name(),
		Description: "Search the public web for pages relevant to a query.",
		ParametersSchema: `{"type":"object","properties":{"query":{"type":"string"},"max_results":{"type":"integer"}},"required":["query","max_results"]}`,
	}
}

func (t *WebSearch) Execute(ctx context.Context, argumentsJSON string) (string, string, bool, error) {
	var args searchArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return "", "", false, fmt.Errorf("web_search: invalid arguments: %w", err)
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
	// Search-only results do not count as sources, per spec.md §4.C5 step 3.
	return string(out), "", false, nil
}
