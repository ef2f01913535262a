package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBatchTestServer(t *testing.T) (*httptest.Server, *OpenAIBatchSubmitter) {
	mux := http.NewServeMux()

	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(10<<20))
		assert.Equal(t, "batch", r.FormValue("purpose"))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "file-input-1"})
	})

	mux.HandleFunc("/batches", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "file-input-1", body["input_file_id"])
		assert.Equal(t, "/v1/chat/completions", body["endpoint"])
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "batch-1"})
	})

	mux.HandleFunc("/batches/batch-1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":         "completed",
			"output_file_id": "file-output-1",
			"request_counts": map[string]int{"total": 2, "completed": 2},
		})
	})

	mux.HandleFunc("/batches/batch-1/cancel", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/files/file-output-1/content", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		lines := []string{
			`{"custom_id":"req-1","response":{"body":{"choices":[{"message":{"content":"{\"ok\":true}"}}]}}}`,
			`{"custom_id":"req-2","error":{"message":"model overloaded"}}`,
		}
		_, _ = w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	submitter := NewOpenAIBatchSubmitter(server.Client(), server.URL, "TEST_OPENAI_API_KEY", "gpt-5")
	return server, submitter
}

func TestOpenAIBatchSubmitterSubmit(t *testing.T) {
	_, submitter := newBatchTestServer(t)

	batchID, err := submitter.Submit(context.Background(), []Request{
		{CustomID: "req-1", SystemPrompt: "sys", UserPrompt: "user 1"},
		{CustomID: "req-2", SystemPrompt: "sys", UserPrompt: "user 2", Schema: map[string]interface{}{"type": "object"}, SchemaName: "Answer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "batch-1", batchID)
}

func TestOpenAIBatchSubmitterStatus(t *testing.T) {
	_, submitter := newBatchTestServer(t)

	progress, err := submitter.Status(context.Background(), "batch-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", progress.Status)
	assert.Equal(t, 2, progress.TotalCount)
	assert.Equal(t, 2, progress.CompletedCount)
	assert.Equal(t, "file-output-1", progress.ResultFileID)
}

func TestOpenAIBatchSubmitterCancel(t *testing.T) {
	_, submitter := newBatchTestServer(t)
	err := submitter.Cancel(context.Background(), "batch-1")
	assert.NoError(t, err)
}

func TestOpenAIBatchSubmitterFetchResultsParsesSuccessAndError(t *testing.T) {
	_, submitter := newBatchTestServer(t)

	results, err := submitter.FetchResults(context.Background(), BatchProgress{ResultFileID: "file-output-1"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "req-1", results[0].CustomID)
	assert.Equal(t, `{"ok":true}`, results[0].Output)
	assert.NoError(t, results[0].Err)

	assert.Equal(t, "req-2", results[1].CustomID)
	assert.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "model overloaded")
}

func TestOpenAIBatchSubmitterFetchResultsNoFileIDReturnsNil(t *testing.T) {
	_, submitter := newBatchTestServer(t)
	results, err := submitter.FetchResults(context.Background(), BatchProgress{})
	require.NoError(t, err)
	assert.Nil(t, results)
}
