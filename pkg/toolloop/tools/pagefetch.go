package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/codeready-toolchain/verifyd/pkg/agent"
)

// scriptStyleNoscript strips entire <script>/<style>/<noscript> elements,
// tagRe strips remaining tags, and whitespaceRe collapses runs of
// whitespace — the "HTML stripped of scripts/styles/noscript and
// whitespace-normalized" transform named in spec.md §4.C5's page-fetch
// contract. No full example repo in the retrieved pack imports an HTML
// parsing library directly (only go.mod manifests under
// _examples/other_examples/ reference goquery/x/net/html, with no source to
// ground actual usage on), so this uses the standard library's regexp
// rather than an ungrounded third-party parser.
var (
	scriptStyleNoscriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe                 = regexp.MustCompile(`(?s)<[^>]+>`)
	whitespaceRe          = regexp.MustCompile(`\s+`)
)

// StripHTML converts raw HTML to whitespace-normalized plain text.
func StripHTML(html string) string {
	text := scriptStyleNoscriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Fetcher retrieves raw bytes for a URL; HTTPFetcher is the net/http-backed
// implementation.
type Fetcher interface {
	Get(ctx context.Context, url string) (body string, err error)
}

// HTTPFetcher is the default Fetcher, backed by net/http.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient}
}

func (f *HTTPFetcher) Get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("page fetch: %s returned status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// PageFetch adapts Fetcher as a toolloop.Tool. Its results count toward the
// deduplicated sources list (spec.md §4.C5 step 3).
type PageFetch struct {
	fetcher Fetcher
}

func NewPageFetch(fetcher Fetcher) *PageFetch { return &PageFetch{fetcher: fetcher} }

func (t *PageFetch) Name() string { return "page_fetch" }

func (t *PageFetch) Definition() agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        t.Name(),
		Description: "Fetch a URL and return its text content, stripped of markup.",
		ParametersSchema: `{"type":"object","properties":{"url":{"type":"string"},"max_chars":{"type":"integer"}},"required":["url","max_chars"]}`,
	}
}

type pageFetchArgs struct {
	URL      string `json:"url"`
	MaxChars int    `json:"max_chars"`
}

type pageFetchResult struct {
	URL   string `json:"url"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

func (t *PageFetch) Execute(ctx context.Context, argumentsJSON string) (string, string, bool, error) {
	var args pageFetchArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return "", "", false, fmt.Errorf("page_fetch: invalid arguments: %w", err)
	}
	if args.MaxChars <= 0 {
		args.MaxChars = 8000
	}

	body, err := t.fetcher.Get(ctx, args.URL)
	if err != nil {
		out, _ := json.Marshal(pageFetchResult{URL: args.URL, Error: err.Error()})
		return string(out), args.URL, true, nil
	}

	text := StripHTML(body)
	if len(text) > args.MaxChars {
		text = text[:args.MaxChars]
	}

	out, err := json.Marshal(pageFetchResult{URL: args.URL, Text: text})
	if err != nil {
		return "", "", false, err
	}
	return string(out), args.URL, true, nil
}
