package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddgHTMLFixture = `<html><body>
<div class="result">
  <a class="result__a" href="https://example.gov/press/1">First <b>Result</b></a>
  <a class="result__snippet">First snippet text</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.gov/press/2">Second Result</a>
  <a class="result__snippet">Second snippet text</a>
</div>
</body></html>`

func newDDGTestServer(t *testing.T, html string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDuckDuckGoSearchParsesAnchorsAndSnippets(t *testing.T) {
	server := newDDGTestServer(t, ddgHTMLFixture)
	ddg := NewDuckDuckGoSearch(server.Client())

	results, err := ddg.searchEndpoint(context.Background(), server.URL+"/?q=", "bridge funding", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://example.gov/press/1", results[0].URL)
	assert.Equal(t, "First Result", results[0].Title)
	assert.Equal(t, "First snippet text", results[0].Snippet)

	assert.Equal(t, "https://example.gov/press/2", results[1].URL)
	assert.Equal(t, "Second Result", results[1].Title)
}

func TestDuckDuckGoSearchRespectsMaxResults(t *testing.T) {
	server := newDDGTestServer(t, ddgHTMLFixture)
	ddg := NewDuckDuckGoSearch(server.Client())

	results, err := ddg.searchEndpoint(context.Background(), server.URL+"/?q=", "bridge funding", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDuckDuckGoSearchNonOKStatusReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)
	ddg := NewDuckDuckGoSearch(server.Client())

	_, err := ddg.searchEndpoint(context.Background(), server.URL+"/?q=", "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "hello world", stripTags("  <b>hello</b> <i>world</i>  "))
	assert.Equal(t, "", stripTags(strings.Repeat(" ", 3)))
}
