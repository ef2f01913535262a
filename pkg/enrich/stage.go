package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/pkg/dateutil"
	"github.com/codeready-toolchain/verifyd/pkg/lease"
	"github.com/codeready-toolchain/verifyd/pkg/llm"
	"github.com/codeready-toolchain/verifyd/pkg/store"
)

const systemPrompt = "You are a government press-release enrichment assistant. " +
	"Convert the article to clean markdown, write a summary paragraph, extract key " +
	"takeaways, assign a priority from 1 (Active Emergency) to 5 (Operational Updates), " +
	"and propose follow-up questions grouped for efficient batch answering."

// Stage runs C6: for every Article missing enrichment, lease it, build a
// strict-schema request from its raw content, and apply the parsed
// ArticleEnrichment back onto the row.
type Stage struct {
	store      *store.Store
	dispatcher *llm.Dispatcher
	leases     *lease.Manager
	clock      dateutil.Clock
}

// New builds a Stage. owner identifies this worker for the enrich lease.
func New(s *store.Store, dispatcher *llm.Dispatcher, owner string, clock dateutil.Clock) *Stage {
	return &Stage{
		store:      s,
		dispatcher: dispatcher,
		leases:     lease.New(s.Articles().EnrichLease(), owner, lease.DefaultTTL),
		clock:      clock,
	}
}

// Run processes up to limit Articles needing enrichment.
func (s *Stage) Run(ctx context.Context, limit int) error {
	articles, err := s.store.Articles().NeedingEnrichment(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing articles needing enrichment: %w", err)
	}
	if len(articles) == 0 {
		return nil
	}

	now := s.clock.Now()
	leased := make(map[string]*ent.Article, len(articles))
	var requests []llm.Request

	for _, a := range articles {
		if err := s.leases.Acquire(ctx, a.ID, now); err != nil {
			slog.Warn("skipping article, enrich lease contended", "article_id", a.ID, "error", err)
			continue
		}
		leased[a.ID] = a
		requests = append(requests, llm.Request{
			CustomID:     a.ID,
			SystemPrompt: systemPrompt,
			UserPrompt:   buildUserPrompt(a),
			Schema:       enrichmentSchema,
			SchemaName:   "ArticleEnrichment",
		})
	}
	if len(requests) == 0 {
		return nil
	}

	results, err := s.dispatcher.Dispatch(ctx, requests, llm.DispatchOptions{})
	if err != nil {
		for id := range leased {
			s.leases.Release(ctx, id)
		}
		return fmt.Errorf("dispatching enrichment requests: %w", err)
	}

	for _, res := range results {
		a, ok := leased[res.CustomID]
		if !ok {
			continue
		}
		if res.Err != nil {
			slog.Warn("enrichment request failed", "article_id", a.ID, "error", res.Err)
			s.leases.Release(ctx, a.ID)
			continue
		}

		var parsed llm.ArticleEnrichment
		cleanMarkdown := ToMarkdown(a.RawContent)
		if err := json.Unmarshal([]byte(res.Output), &parsed); err != nil {
			slog.Warn("enrichment output parse failed, applying fallback markdown only", "article_id", a.ID, "error", err)
			parsed = llm.ArticleEnrichment{CleanMarkdown: cleanMarkdown, Priority: 5}
		}
		// C6 invariant: clean_markdown is always overwritten by some
		// deterministic value regardless of model output.
		parsed.CleanMarkdown = cleanMarkdown

		if err := s.store.Articles().ApplyEnrichment(
			ctx, a.ID, parsed.CleanMarkdown, parsed.SummaryParagraph,
			parsed.KeyTakeaways, parsed.Priority, parsed.FollowUpQuestions, parsed.FollowUpQuestionGroups,
		); err != nil {
			slog.Warn("applying enrichment failed", "article_id", a.ID, "error", err)
		}
		s.leases.Release(ctx, a.ID)
	}
	return nil
}

func buildUserPrompt(a *ent.Article) string {
	return fmt.Sprintf(
		"title: %s\ndate: %s\nlink: %s\ntags: %v\n\nraw_content:\n%s",
		a.Title, a.Date.Format(time.RFC3339), a.Link, a.Tags, a.RawContent,
	)
}
