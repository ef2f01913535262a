package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DuckDuckGoSearch implements SearchBackend by scraping DuckDuckGo's
// no-JS HTML endpoints, ported from
// _examples/original_source/service/util/llm_web.py's _ddg_search_html:
// same primary-then-lite endpoint fallback, same result-anchor selector
// intent, re-expressed with regexp since no HTML parsing library appears
// anywhere in the retrieved example pack (matching pkg/enrich/markdown.go's
// precedent for the same constraint).
type DuckDuckGoSearch struct {
	httpClient *http.Client
}

// NewDuckDuckGoSearch builds a DuckDuckGoSearch backend shared by both the
// web_search and news_search tools. news_search sends the same
// blacklist-suffixed query as web_search; it adds no "news" qualifier.
func NewDuckDuckGoSearch(httpClient *http.Client) *DuckDuckGoSearch {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &DuckDuckGoSearch{httpClient: httpClient}
}

var ddgResultAnchorRe = regexp.MustCompile(`(?is)<a[^>]*class="[^"]*result__a[^"]*"[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
var ddgSnippetRe = regexp.MustCompile(`(?is)<a[^>]*class="[^"]*result__snippet[^"]*"[^>]*>(.*?)</a>`)
var ddgTagRe = regexp.MustCompile(`<[^>]*>`)

// Search implements SearchBackend.
func (d *DuckDuckGoSearch) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	results, err := d.searchEndpoint(ctx, "https://duckduckgo.com/html/?q=", query, maxResults)
	if err == nil && len(results) >= maxResults {
		return results, nil
	}

	liteResults, liteErr := d.searchEndpoint(ctx, "https://lite.duckduckgo.com/lite/?q=", query, maxResults-len(results))
	if liteErr == nil {
		results = append(results, liteResults...)
	}
	if len(results) == 0 && err != nil {
		return nil, err
	}
	return results, nil
}

func (d *DuckDuckGoSearch) searchEndpoint(ctx context.Context, endpoint, query string, max int) ([]SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ddg search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ddg search returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	anchors := ddgResultAnchorRe.FindAllStringSubmatch(string(body), -1)
	snippets := ddgSnippetRe.FindAllStringSubmatch(string(body), -1)

	results := make([]SearchResult, 0, max)
	for i, a := range anchors {
		if len(results) >= max {
			break
		}
		link := stripTags(a[1])
		title := stripTags(a[2])
		if link == "" {
			continue
		}
		snippet := ""
		if i < len(snippets) {
			snippet = stripTags(snippets[i][1])
		}
		results = append(results, SearchResult{Title: title, URL: link, Snippet: snippet})
	}
	return results, nil
}

func stripTags(s string) string {
	return strings.TrimSpace(ddgTagRe.ReplaceAllString(s, ""))
}
