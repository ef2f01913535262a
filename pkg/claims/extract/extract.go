// Package extract implements C7: builds a strict-schema ClaimProcessingResult
// request from an enriched Article's markdown, normalizes each returned
// step per spec.md §3, and inserts the resulting Claims.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/claim"
	"github.com/codeready-toolchain/verifyd/pkg/dateutil"
	"github.com/codeready-toolchain/verifyd/pkg/lifecycle"
	"github.com/codeready-toolchain/verifyd/pkg/llm"
	"github.com/codeready-toolchain/verifyd/pkg/store"
)

const systemPrompt = "You are a claim-extraction assistant for government press releases. " +
	"Read the article and extract every goal, promise, and factual statement worth " +
	"tracking, with a completion condition and, for promises, a completion deadline."

// Stage runs C7: requests each eligible Article's ClaimProcessingResult,
// normalizes and inserts each step as a Claim, and marks the Article
// claim_processed.
type Stage struct {
	store      *store.Store
	dispatcher *llm.Dispatcher
	clock      dateutil.Clock
}

// New builds a Stage.
func New(s *store.Store, dispatcher *llm.Dispatcher, clock dateutil.Clock) *Stage {
	return &Stage{store: s, dispatcher: dispatcher, clock: clock}
}

// Run processes up to limit Articles needing claim extraction.
func (s *Stage) Run(ctx context.Context, limit int) error {
	articles, err := s.store.Articles().NeedingClaimExtraction(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing articles needing claim extraction: %w", err)
	}
	if len(articles) == 0 {
		return nil
	}

	today := dateutil.PipelineToday(s.clock)

	articlesByID := make(map[string]*ent.Article, len(articles))
	requests := make([]llm.Request, 0, len(articles))
	for _, a := range articles {
		articlesByID[a.ID] = a
		markdown := a.RawContent
		if a.CleanMarkdown != nil {
			markdown = *a.CleanMarkdown
		}
		requests = append(requests, llm.Request{
			CustomID:     a.ID,
			SystemPrompt: systemPrompt,
			UserPrompt:   fmt.Sprintf("title: %s\ndate: %s\nlink: %s\n\n%s", a.Title, a.Date.Format("2006-01-02"), a.Link, markdown),
			Schema:       resultSchema,
			SchemaName:   "ClaimProcessingResult",
		})
	}

	results, err := s.dispatcher.Dispatch(ctx, requests, llm.DispatchOptions{})
	if err != nil {
		return fmt.Errorf("dispatching claim extraction requests: %w", err)
	}

	for _, res := range results {
		a, ok := articlesByID[res.CustomID]
		if !ok {
			continue
		}
		if res.Err != nil {
			slog.Warn("claim extraction request failed", "article_id", a.ID, "error", res.Err)
			continue
		}

		var parsed llm.ClaimProcessingResult
		if err := json.Unmarshal([]byte(res.Output), &parsed); err != nil {
			slog.Warn("claim extraction output parse failed", "article_id", a.ID, "error", err)
			continue
		}

		for _, step := range parsed.Steps {
			if err := s.insertStep(ctx, a, step, today); err != nil {
				slog.Warn("inserting extracted claim failed", "article_id", a.ID, "error", err)
			}
		}

		if err := s.store.Articles().MarkClaimProcessed(ctx, a.ID); err != nil {
			slog.Warn("marking article claim_processed failed", "article_id", a.ID, "error", err)
		}
	}
	return nil
}

func (s *Stage) insertStep(ctx context.Context, a *ent.Article, step llm.ClaimProcessingStep, today time.Time) error {
	articleDate := dateutil.Normalize(a.Date)

	completionDate := resolveDateLike(step.CompletionConditionDate, articleDate)
	eventDate := resolveDateLike(step.EventDate, articleDate)

	normalized := lifecycle.Normalize(
		lifecycle.ClaimType(step.Type),
		completionDate,
		eventDate,
		step.FollowUpWorthy,
		lifecycle.Priority(step.Priority),
		today,
	)

	var mechanism *string
	if step.Mechanism != "" {
		mechanism = &step.Mechanism
	}

	_, err := s.store.Claims().Insert(ctx, store.NewClaimInput{
		ArticleID:               a.ID,
		ArticleLink:             a.Link,
		ArticleDate:             articleDate,
		Claim:                   step.Claim,
		VerbatimClaim:           step.VerbatimClaim,
		Type:                    claim.Type(normalized.Type),
		CompletionCondition:     step.CompletionCondition,
		CompletionConditionDate: normalized.CompletionConditionDate,
		EventDate:               normalized.EventDate,
		FollowUpWorthy:          normalized.FollowUpWorthy,
		Priority:                claim.Priority(normalized.Priority),
		Mechanism:               mechanism,
		DatePast:                normalized.DatePast,
	})
	return err
}

// resolveDateLike parses the tagged date-like union a ClaimProcessingStep's
// date field carries: a plain JSON string (absolute date or ISO datetime),
// or a delta struct resolved relative to anchor. Returns nil if raw is
// empty/null or doesn't parse as either shape.
func resolveDateLike(raw json.RawMessage, anchor time.Time) *time.Time {
	if len(raw) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, ok := dateutil.ParseDateLike(s); ok {
			return &t
		}
		return nil
	}

	var delta llm.DateDelta
	if err := json.Unmarshal(raw, &delta); err == nil {
		if t, ok := delta.Resolve(anchor); ok {
			return &t
		}
	}
	return nil
}
