// Package toolloop implements SPEC_FULL.md §4.C5's agentic tool loop: a
// bounded multi-turn conversation in which the model may call a fixed set
// of tools before producing a final answer. The iteration shape — a turn
// counter, tool dispatch by call_id, forced-conclusion fallback when the
// loop ends without text — is grounded on
// pkg/agent/controller/react.go's ReActController.Run, adapted from its
// MCP-server tool surface to the four tool contracts spec.md §4.C5/§6
// names directly: web search, news search, page fetch, internal search.
// The loop sets no per-turn timeout of its own; each turn runs under the
// caller's ctx.
package toolloop

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/verifyd/pkg/agent"
	"github.com/codeready-toolchain/verifyd/pkg/config"
)

// State is the FSM state named in spec.md §9: "Thinking → ToolCall* →
// Finalizing → Parsing" — kept explicit so retries and cancellation have an
// unambiguous point to resume or abort from, rather than being implicit in
// loop-variable state.
type State int

const (
	StateThinking State = iota
	StateToolCall
	StateFinalizing
	StateParsing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateThinking:
		return "thinking"
	case StateToolCall:
		return "tool_call"
	case StateFinalizing:
		return "finalizing"
	case StateParsing:
		return "parsing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// DefaultMaxTurns is spec.md §4.C5's "bounded, e.g., 8".
const DefaultMaxTurns = 8

// MaxEmptyAnswerRetries is the whole-loop retry bound on an empty final
// answer (spec.md §4.C5 step 7 / "Outputs" paragraph).
const MaxEmptyAnswerRetries = 3

// Tool executes one named tool call and returns its textual observation.
// Execute's isSource result reports whether this call's result should be counted toward the
// deduplicated sources list (page fetches are sources; searches are not,
// per spec.md §4.C5 step 3).
type Tool interface {
	Name() string
	Definition() agent.ToolDefinition
	Execute(ctx context.Context, argumentsJSON string) (result string, sourceURL string, isSource bool, err error)
}

// Result is C5's output contract: {text, parsed?, sources, conversation, lm_log}.
type Result struct {
	Text         string
	Parsed       string // raw JSON of the structured parse-only pass, if requested
	Sources      []string
	Conversation []agent.ConversationMessage
	LMLogIDs     []string
}

// Loop runs one bounded agentic tool-loop invocation.
type Loop struct {
	client   agent.LLMClient
	tools    map[string]Tool
	maxTurns int
}

// New builds a Loop over the given tool set.
func New(client agent.LLMClient, tools []Tool, maxTurns int) *Loop {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	return &Loop{client: client, tools: byName, maxTurns: maxTurns}
}

// Run drives the Thinking -> ToolCall* -> Finalizing sequence, then — if
// schema is non-nil — a Parsing pass that binds the accumulated
// conversation to a structured type. When a run fails or its final text
// comes back empty it runs the entire loop again, at most
// MaxEmptyAnswerRetries runs in all.
func (l *Loop) Run(ctx context.Context, cfg *config.LLMProviderConfig, systemPrompt, userPrompt string, schema map[string]interface{}) (Result, error) {
	var last Result
	var lastErr error

	for attempt := 0; attempt < MaxEmptyAnswerRetries; attempt++ {
		res, err := l.runOnce(ctx, cfg, systemPrompt, userPrompt, schema)
		if err != nil {
			lastErr = err
			continue
		}
		if res.Text != "" {
			return res, nil
		}
		last = res
		lastErr = fmt.Errorf("toolloop: empty final answer on attempt %d", attempt+1)
	}
	return last, lastErr
}

func (l *Loop) runOnce(ctx context.Context, cfg *config.LLMProviderConfig, systemPrompt, userPrompt string, schema map[string]interface{}) (Result, error) {
	messages := []agent.ConversationMessage{}
	if systemPrompt != "" {
		messages = append(messages, agent.ConversationMessage{Role: agent.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: userPrompt})

	defs := make([]agent.ToolDefinition, 0, len(l.tools))
	for _, t := range l.tools {
		defs = append(defs, t.Definition())
	}

	sources := map[string]struct{}{}
	var lmLogs []string
	state := StateThinking

	for turn := 0; turn < l.maxTurns; turn++ {
		state = StateThinking
		resp, lmLogID, err := l.generate(ctx, cfg, messages, defs)
		if err != nil {
			return Result{}, fmt.Errorf("toolloop turn %d: %w", turn, err)
		}
		if lmLogID != "" {
			lmLogs = append(lmLogs, lmLogID)
		}
		messages = append(messages, resp)

		if len(resp.ToolCalls) == 0 {
			state = StateFinalizing
			break
		}

		state = StateToolCall
		for _, call := range resp.ToolCalls {
			observation, srcURL, isSource, execErr := l.dispatch(ctx, call)
			if execErr != nil {
				observation = fmt.Sprintf("error: %s", execErr)
			}
			if isSource && srcURL != "" {
				sources[srcURL] = struct{}{}
			}
			messages = append(messages, agent.ConversationMessage{
				Role:       agent.RoleTool,
				Content:    observation,
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}
	}

	finalText := lastAssistantText(messages)
	if finalText == "" {
		finalText = l.forceFinalize(ctx, cfg, &messages, &lmLogs)
	}

	result := Result{
		Text:         finalText,
		Sources:      sortedKeys(sources),
		Conversation: messages,
		LMLogIDs:     lmLogs,
	}

	if schema != nil {
		state = StateParsing
		parsed, lmLogID, err := l.parseOnly(ctx, cfg, messages, schema)
		if err != nil {
			return result, err
		}
		if lmLogID != "" {
			result.LMLogIDs = append(result.LMLogIDs, lmLogID)
		}
		result.Parsed = parsed
	}

	_ = state // state is not read after this point; StateDone is never assigned here
	return result, nil
}

func (l *Loop) dispatch(ctx context.Context, call agent.ToolCall) (observation, sourceURL string, isSource bool, err error) {
	tool, ok := l.tools[call.Name]
	if !ok {
		return "", "", false, fmt.Errorf("unknown tool %q", call.Name)
	}
	result, srcURL, isSrc, execErr := tool.Execute(ctx, call.Arguments)
	return result, srcURL, isSrc, execErr
}

func (l *Loop) forceFinalize(ctx context.Context, cfg *config.LLMProviderConfig, messages *[]agent.ConversationMessage, lmLogs *[]string) string {
	*messages = append(*messages, agent.ConversationMessage{
		Role:    agent.RoleUser,
		Content: "Finalize your answer as plain text now. Do not call any tools.",
	})
	resp, lmLogID, err := l.generate(ctx, cfg, *messages, nil)
	if err != nil {
		return ""
	}
	if lmLogID != "" {
		*lmLogs = append(*lmLogs, lmLogID)
	}
	*messages = append(*messages, resp)
	return resp.Content
}

func (l *Loop) parseOnly(ctx context.Context, cfg *config.LLMProviderConfig, messages []agent.ConversationMessage, schema map[string]interface{}) (string, string, error) {
	parseMessages := append(append([]agent.ConversationMessage{}, messages...), agent.ConversationMessage{
		Role:    agent.RoleUser,
		Content: "Return the final answer as JSON matching the required schema. Do not call any tools.",
	})
	resp, lmLogID, err := l.generate(ctx, cfg, parseMessages, nil)
	if err != nil {
		return "", "", err
	}
	return resp.Content, lmLogID, nil
}

func (l *Loop) generate(ctx context.Context, cfg *config.LLMProviderConfig, messages []agent.ConversationMessage, tools []agent.ToolDefinition) (agent.ConversationMessage, string, error) {
	chunks, err := l.client.Generate(ctx, &agent.GenerateInput{
		Messages: messages,
		Config:   cfg,
		Tools:    tools,
	})
	if err != nil {
		return agent.ConversationMessage{}, "", err
	}

	msg := agent.ConversationMessage{Role: agent.RoleAssistant}
	var lmLogID string
	for chunk := range chunks {
		switch c := chunk.(type) {
		case *agent.TextChunk:
			msg.Content += c.Content
		case *agent.ToolCallChunk:
			msg.ToolCalls = append(msg.ToolCalls, agent.ToolCall{ID: c.CallID, Name: c.Name, Arguments: c.Arguments})
		case *agent.UsageChunk:
			// accounted by the caller via LMLog insert; id surfaced separately
		case *agent.ErrorChunk:
			return msg, lmLogID, fmt.Errorf("llm error: %s", c.Message)
		}
	}
	return msg, lmLogID, nil
}

func lastAssistantText(messages []agent.ConversationMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == agent.RoleAssistant && messages[i].Content != "" {
			return messages[i].Content
		}
	}
	return ""
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
