package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/verifyd/pkg/agent"
	"github.com/codeready-toolchain/verifyd/pkg/config"
)

// GRPCCaller adapts agent.LLMClient (the streaming gRPC connection to the
// Python LLM service) into Mode B's Caller interface: one request in, one
// structured-output string out. It drains the chunk channel a single turn
// produces and concatenates every TextChunk, matching how the non-streaming
// callers elsewhere in the corpus collapse a stream into a final answer.
type GRPCCaller struct {
	client agent.LLMClient
	config *config.LLMProviderConfig
}

// NewGRPCCaller builds a Caller bound to a single provider config. cfg
// selects the model and backend the Python service dispatches to; the
// schema's top-level property names are appended to the system prompt as
// a hint, since GenerateInput has no dedicated schema field.
func NewGRPCCaller(client agent.LLMClient, cfg *config.LLMProviderConfig) *GRPCCaller {
	return &GRPCCaller{client: client, config: cfg}
}

// Call implements Caller.
func (c *GRPCCaller) Call(ctx context.Context, req Request) (output string, lmLogID string, err error) {
	system := req.SystemPrompt
	if len(req.Schema) > 0 {
		system += "\n\nRespond with JSON matching this schema exactly, and nothing else:\n" + schemaToPromptHint(req.Schema)
	}

	chunks, err := c.client.Generate(ctx, &agent.GenerateInput{
		ExecutionID: req.CustomID,
		Messages: []agent.ConversationMessage{
			{Role: agent.RoleSystem, Content: system},
			{Role: agent.RoleUser, Content: req.UserPrompt},
		},
		Config: c.config,
	})
	if err != nil {
		return "", "", fmt.Errorf("starting generate stream: %w", err)
	}

	var text strings.Builder
	for chunk := range chunks {
		switch v := chunk.(type) {
		case *agent.TextChunk:
			text.WriteString(v.Content)
		case *agent.ErrorChunk:
			return "", "", fmt.Errorf("llm provider error: %s", v.Message)
		}
	}
	return text.String(), req.CustomID, nil
}

// schemaToPromptHint renders a JSON Schema as a compact human-readable hint
// for providers reached through the Python service's chat-style path,
// which (unlike Mode A's direct structured-output endpoint) has no native
// schema parameter on GenerateInput.
func schemaToPromptHint(schema map[string]interface{}) string {
	props, _ := schema["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	return fmt.Sprintf("fields: %s", strings.Join(names, ", "))
}
