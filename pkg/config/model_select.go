package config

import (
	"context"
	"encoding/json"
	"sync"
)

// TaskType distinguishes the two model-selection axes the original pipeline
// tunes independently: "agent" (C5's tool loop) and "process" (a one-shot
// structured request, e.g. C9's roundup body).
type TaskType string

const (
	TaskAgent   TaskType = "agent"
	TaskProcess TaskType = "process"
)

// Quality is the selector's three-tier output.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// ModelSelection is one (task_type, quality) table entry: which registered
// LLM provider to dispatch to and what reasoning effort to request.
type ModelSelection struct {
	Provider string
	Effort   string
}

// ModelSelectionTable stores the task/quality -> (provider, effort) mapping
// in memory with thread-safe access, mirroring LLMProviderRegistry's
// copy-on-read, mutex-guarded map. Grounded on
// original_source/service/util/model_select.py's MODEL_TABLE, with model
// names replaced by registered LLMProviderRegistry keys so the table
// selects a *provider*, never a raw model string, keeping provider
// credentials and endpoints centralized in LLMProviderRegistry.
type ModelSelectionTable struct {
	mu      sync.RWMutex
	entries map[TaskType]map[Quality]ModelSelection
}

// NewModelSelectionTable builds a table from an explicit mapping.
func NewModelSelectionTable(entries map[TaskType]map[Quality]ModelSelection) *ModelSelectionTable {
	copied := make(map[TaskType]map[Quality]ModelSelection, len(entries))
	for task, byQuality := range entries {
		inner := make(map[Quality]ModelSelection, len(byQuality))
		for q, sel := range byQuality {
			inner[q] = sel
		}
		copied[task] = inner
	}
	return &ModelSelectionTable{entries: copied}
}

// Lookup returns the (provider, effort) pair for (task, quality), falling
// back to medium then low if the exact quality isn't configured for task,
// per the original's "fallback to medium if parsing fails" rule.
func (t *ModelSelectionTable) Lookup(task TaskType, quality Quality) (ModelSelection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byQuality, ok := t.entries[task]
	if !ok {
		return ModelSelection{}, false
	}
	for _, q := range []Quality{quality, QualityMedium, QualityLow} {
		if sel, ok := byQuality[q]; ok {
			return sel, true
		}
	}
	return ModelSelection{}, false
}

// HighestEffort returns task's "high" quality selection directly, for
// callers (C9's yearly roundup) that always want the best available model
// rather than asking the selector.
func (t *ModelSelectionTable) HighestEffort(task TaskType) (ModelSelection, bool) {
	return t.Lookup(task, QualityHigh)
}

// qualityResponse is the structured shape the selector LLM call returns.
type qualityResponse struct {
	Quality Quality `json:"quality"`
}

// QualityCaller is the minimal LLM-calling contract Select needs — a
// one-shot structured call, satisfied by a pkg/llm.Caller wrapped at the
// call site (cmd/verifyd's qualityCallerAdapter).
type QualityCaller interface {
	Call(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Select asks the selector model to classify a task's difficulty from its
// prompt, then resolves the provider/effort for (task, quality) from the
// table. Falls back to medium on any call or parse failure, matching
// model_select.py's select_model.
func (t *ModelSelectionTable) Select(ctx context.Context, caller QualityCaller, task TaskType, prompt string) (ModelSelection, bool) {
	system := "You are a model selection assistant. Given a task description, select the " +
		"appropriate model quality level for the task: high, medium, or low. Respond with only one of these options."
	user := "Task description: " + prompt + "\n\nBased on the above task description, select the appropriate model quality level (high, medium, low) for a " + string(task) + " task."

	quality := QualityMedium
	if caller != nil {
		if out, err := caller.Call(ctx, system, user); err == nil {
			var parsed qualityResponse
			if json.Unmarshal([]byte(out), &parsed) == nil && parsed.Quality != "" {
				quality = parsed.Quality
			}
		}
	}
	return t.Lookup(task, quality)
}
