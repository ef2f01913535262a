package store

import (
	"context"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/lmlog"
	"github.com/google/uuid"
)

// LogRepo exposes typed operations over the LMLog collection: call-level
// provenance for every LLM invocation.
type LogRepo struct {
	client *ent.Client
}

// NewLogInput is the ready-to-insert form of a provenance record.
type NewLogInput struct {
	APIType          string
	CallID           string
	Model            string
	PromptTokens     int
	CompletionTokens int
	CallingSite      string
}

// Insert creates an LMLog row, returning its id for downstream linkage.
func (r *LogRepo) Insert(ctx context.Context, in NewLogInput) (string, error) {
	id := uuid.NewString()
	_, err := r.client.LMLog.Create().
		SetID(id).
		SetApiType(in.APIType).
		SetCallID(in.CallID).
		SetModel(in.Model).
		SetPromptTokens(in.PromptTokens).
		SetCompletionTokens(in.CompletionTokens).
		SetCallingSite(in.CallingSite).
		Save(ctx)
	if err != nil {
		return "", err
	}
	return id, nil
}

// DailySummary aggregates token usage grouped by calling_site for the
// calendar day [start,end) — the store's "aggregation pipeline with
// grouping" capability named in spec.md §6.
type DailySummary struct {
	CallingSite      string
	Calls            int
	PromptTokens     int
	CompletionTokens int
}

// Summarize groups LMLog rows by calling_site within [start, end).
func (r *LogRepo) Summarize(ctx context.Context, start, end time.Time) ([]DailySummary, error) {
	var rows []struct {
		CallingSite      string `json:"calling_site"`
		Calls            int    `json:"calls"`
		PromptTokens     int    `json:"prompt_tokens"`
		CompletionTokens int    `json:"completion_tokens"`
	}
	err := r.client.LMLog.Query().
		Where(lmlog.CreatedAtGTE(Normalize(start)), lmlog.CreatedAtLT(Normalize(end))).
		GroupBy(lmlog.FieldCallingSite).
		Aggregate(
			ent.As(ent.Count(), "calls"),
			ent.As(ent.Sum(lmlog.FieldPromptTokens), "prompt_tokens"),
			ent.As(ent.Sum(lmlog.FieldCompletionTokens), "completion_tokens"),
		).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	out := make([]DailySummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, DailySummary{
			CallingSite:      row.CallingSite,
			Calls:            row.Calls,
			PromptTokens:     row.PromptTokens,
			CompletionTokens: row.CompletionTokens,
		})
	}
	return out, nil
}
