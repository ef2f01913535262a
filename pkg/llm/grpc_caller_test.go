package llm

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/verifyd/pkg/agent"
	"github.com/codeready-toolchain/verifyd/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLMClient struct {
	chunks []agent.Chunk
	err    error
	input  *agent.GenerateInput
}

func (f *fakeLLMClient) Generate(ctx context.Context, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan agent.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (f *fakeLLMClient) Close() error { return nil }

func TestGRPCCallerConcatenatesTextChunks(t *testing.T) {
	client := &fakeLLMClient{chunks: []agent.Chunk{
		&agent.TextChunk{Content: "hello "},
		&agent.TextChunk{Content: "world"},
	}}
	caller := NewGRPCCaller(client, &config.LLMProviderConfig{Model: "gpt-5"})

	output, lmLogID, err := caller.Call(context.Background(), Request{
		CustomID:     "req-1",
		SystemPrompt: "sys",
		UserPrompt:   "say hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", output)
	assert.Equal(t, "req-1", lmLogID)

	require.NotNil(t, client.input)
	require.Len(t, client.input.Messages, 2)
	assert.Equal(t, agent.RoleSystem, client.input.Messages[0].Role)
	assert.Equal(t, agent.RoleUser, client.input.Messages[1].Role)
	assert.Equal(t, "say hi", client.input.Messages[1].Content)
}

func TestGRPCCallerAppendsSchemaHintToSystemPrompt(t *testing.T) {
	client := &fakeLLMClient{chunks: []agent.Chunk{&agent.TextChunk{Content: "{}"}}}
	caller := NewGRPCCaller(client, &config.LLMProviderConfig{Model: "gpt-5"})

	_, _, err := caller.Call(context.Background(), Request{
		CustomID:     "req-1",
		SystemPrompt: "sys",
		UserPrompt:   "say hi",
		Schema:       map[string]interface{}{"properties": map[string]interface{}{"answer": map[string]interface{}{"type": "string"}}},
	})
	require.NoError(t, err)
	assert.Contains(t, client.input.Messages[0].Content, "answer")
}

func TestGRPCCallerReturnsErrorChunkAsError(t *testing.T) {
	client := &fakeLLMClient{chunks: []agent.Chunk{&agent.ErrorChunk{Message: "rate limited"}}}
	caller := NewGRPCCaller(client, &config.LLMProviderConfig{Model: "gpt-5"})

	_, _, err := caller.Call(context.Background(), Request{CustomID: "req-1", SystemPrompt: "sys", UserPrompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGRPCCallerPropagatesGenerateError(t *testing.T) {
	client := &fakeLLMClient{err: assert.AnError}
	caller := NewGRPCCaller(client, &config.LLMProviderConfig{Model: "gpt-5"})

	_, _, err := caller.Call(context.Background(), Request{CustomID: "req-1", SystemPrompt: "sys", UserPrompt: "hi"})
	require.Error(t, err)
}
