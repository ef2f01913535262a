package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/claim"
	"github.com/codeready-toolchain/verifyd/pkg/dateutil"
	"github.com/codeready-toolchain/verifyd/pkg/llm"
	"github.com/codeready-toolchain/verifyd/pkg/store"
)

// Scheduler runs one daily pass of C8: chump-check demotion, autoplan
// materialization, request construction across the three eligible
// populations plus due Follow-ups, dispatch, and result application.
type Scheduler struct {
	store      *store.Store
	dispatcher *llm.Dispatcher
	clock      dateutil.Clock
	runHour    int
}

// New builds a Scheduler. runHour is the local hour (0-23) this invocation
// is running at; due Follow-ups only drain when runHour >= 23, per spec.md
// §4.C8's gating rule.
func New(s *store.Store, dispatcher *llm.Dispatcher, clock dateutil.Clock, runHour int) *Scheduler {
	return &Scheduler{store: s, dispatcher: dispatcher, clock: clock, runHour: runHour}
}

// Run executes one full C8 pass.
func (s *Scheduler) Run(ctx context.Context) error {
	today := dateutil.PipelineToday(s.clock)

	if err := s.runChumpCheck(ctx, today); err != nil {
		return fmt.Errorf("chump check: %w", err)
	}

	if err := s.autoplan(ctx, today); err != nil {
		return fmt.Errorf("autoplan: %w", err)
	}

	requests, contexts, err := s.buildRequests(ctx, today)
	if err != nil {
		return fmt.Errorf("building requests: %w", err)
	}
	if len(requests) == 0 {
		return nil
	}

	results, err := s.dispatcher.Dispatch(ctx, requests, llm.DispatchOptions{})
	if err != nil {
		return fmt.Errorf("dispatching: %w", err)
	}

	return s.applyResults(ctx, results, contexts, today)
}

// runChumpCheck re-runs the promise->goal demotion at the start of every
// run (SPEC_FULL.md, recovered from original_source/): a promise whose
// completion_condition_date has gone missing or already lapsed relative to
// its article_date is demoted, same as at construction time.
func (s *Scheduler) runChumpCheck(ctx context.Context, today time.Time) error {
	promises, err := s.store.Claims().EligiblePromises(ctx)
	if err != nil {
		return err
	}
	for _, c := range promises {
		if IsChump(c.CompletionConditionDate, c.ArticleDate) {
			if err := s.store.Claims().DemoteToGoal(ctx, c.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// autoplan materializes the full future Follow-up schedule for every
// eligible promise that doesn't already have one, per spec.md §4.C8
// "Autoplan".
func (s *Scheduler) autoplan(ctx context.Context, today time.Time) error {
	promises, err := s.store.Claims().EligiblePromises(ctx)
	if err != nil {
		return err
	}

	for _, c := range promises {
		if c.CompletionConditionDate == nil {
			continue // demoted to goal by the chump check above
		}
		end := *c.CompletionConditionDate

		exists, err := s.store.Followups().FutureExists(ctx, c.ID, today)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if today.After(end) {
			continue
		}

		for _, date := range Schedule(c.ArticleDate, end) {
			if date.Before(today) {
				continue
			}
			note := "Scheduled proactively on " + today.Format("2006-01-02") + " for next planned update"
			if _, _, err := s.store.Followups().InsertIfAbsent(ctx, c.ID, date, &note); err != nil {
				return err
			}
		}
	}
	return nil
}

type requestMeta struct {
	claimID     string
	articleID   string
	claimType   claim.Type
	followupID  string
	isEndpoint  bool
	isStatement bool
}

func (s *Scheduler) buildRequests(ctx context.Context, today time.Time) ([]llm.Request, map[string]requestMeta, error) {
	var requests []llm.Request
	contexts := map[string]requestMeta{}

	promises, err := s.store.Claims().EligiblePromises(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range promises {
		if c.CompletionConditionDate == nil {
			continue
		}
		classification := Classify(c.ArticleDate, *c.CompletionConditionDate, today)
		if classification == NoUpdate {
			continue
		}
		template := TemplateRegularCheckin
		if classification == Endpoint {
			template = TemplateEndpointCheckin
		}
		id := CustomID(c.ID, "")
		requests = append(requests, llm.Request{
			CustomID:   id,
			UserPrompt: BuildPrompt(claimContextFrom(c, today, template, false)),
			Schema:     SchemaFor(false),
			SchemaName: "ModelResponseOutput",
		})
		contexts[id] = requestMeta{claimID: c.ID, articleID: c.ArticleID, claimType: claim.TypePromise, isEndpoint: classification == Endpoint}
	}

	goals, err := s.store.Claims().EligibleGoals(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range goals {
		id := CustomID(c.ID, "")
		requests = append(requests, llm.Request{
			CustomID:   id,
			UserPrompt: BuildPrompt(claimContextFrom(c, today, TemplateRegularCheckin, false)),
			Schema:     SchemaFor(false),
			SchemaName: "ModelResponseOutput",
		})
		contexts[id] = requestMeta{claimID: c.ID, articleID: c.ArticleID, claimType: claim.TypeGoal}
	}

	statements, err := s.store.Claims().EligibleStatements(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range statements {
		id := CustomID(c.ID, "")
		requests = append(requests, llm.Request{
			CustomID:   id,
			UserPrompt: BuildPrompt(claimContextFrom(c, today, TemplateFactCheck, true)),
			Schema:     SchemaFor(true),
			SchemaName: "FactCheckResponseOutput",
		})
		contexts[id] = requestMeta{claimID: c.ID, articleID: c.ArticleID, claimType: claim.TypeStatement, isStatement: true}
	}

	if s.runHour >= 23 {
		due, err := s.store.Followups().Due(ctx, today)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range due {
			c, err := s.store.Claims().Get(ctx, f.ClaimID)
			if err != nil {
				slog.Warn("due follow-up references missing claim", "claim_id", f.ClaimID, "followup_id", f.ID)
				continue
			}
			isStatement := c.Type == claim.TypeStatement
			id := CustomID(c.ID, f.ID)
			schemaName := "ModelResponseOutput"
			if isStatement {
				schemaName = "FactCheckResponseOutput"
			}
			requests = append(requests, llm.Request{
				CustomID:   id,
				UserPrompt: BuildPrompt(claimContextFrom(c, today, TemplateEndpointCheckin, isStatement)),
				Schema:     SchemaFor(isStatement),
				SchemaName: schemaName,
			})
			contexts[id] = requestMeta{claimID: c.ID, articleID: c.ArticleID, claimType: c.Type, followupID: f.ID, isStatement: isStatement}
		}
	}

	return requests, contexts, nil
}

func claimContextFrom(c *ent.Claim, today time.Time, template string, isStatement bool) ClaimContext {
	return ClaimContext{
		ClaimID:             c.ID,
		ArticleLink:         c.ArticleLink,
		ArticleDate:         c.ArticleDate,
		Claim:               c.Claim,
		VerbatimClaim:       c.VerbatimClaim,
		CompletionCondition: c.CompletionCondition,
		ProjectedDate:       c.CompletionConditionDate,
		EventDate:           c.EventDate,
		Today:               today,
		Template:            template,
		IsStatement:         isStatement,
	}
}

func (s *Scheduler) applyResults(ctx context.Context, results []llm.Result, contexts map[string]requestMeta, today time.Time) error {
	for _, res := range results {
		meta, ok := contexts[res.CustomID]
		if !ok {
			slog.Warn("result for unknown custom_id", "custom_id", res.CustomID)
			continue
		}
		if res.Err != nil {
			slog.Warn("llm result failed, skipping", "custom_id", res.CustomID, "error", res.Err)
			continue
		}

		verdict, text, sources, followUpDateRaw, modelOutput := parseOutput(res.Output, meta.isStatement)

		var lmLogID *string
		if res.LMLogID != "" {
			lmLogID = &res.LMLogID
		}

		update, err := s.store.Updates().Insert(ctx, store.NewUpdateInput{
			ClaimID:     meta.claimID,
			ArticleID:   meta.articleID,
			Verdict:     string(verdict),
			Text:        text,
			Sources:     sources,
			ModelOutput: modelOutput,
			LMLogID:     lmLogID,
		})
		if err != nil {
			slog.Warn("inserting update failed, skipping", "custom_id", res.CustomID, "error", err)
			continue
		}

		if followUpDateRaw != "" {
			if date, ok := dateutil.ParseDateLike(followUpDateRaw); ok {
				if _, _, err := s.store.Followups().InsertIfAbsent(ctx, meta.claimID, date, nil); err != nil {
					slog.Warn("inserting follow-up failed", "claim_id", meta.claimID, "error", err)
				}
			}
		}

		becameTerminal := meta.claimType == claim.TypePromise && (meta.isEndpoint || IsTerminal(verdict))
		if becameTerminal {
			if err := s.store.Claims().MarkTerminal(ctx, meta.claimID); err != nil {
				slog.Warn("marking claim terminal failed", "claim_id", meta.claimID, "error", err)
			}
		}

		if meta.followupID != "" {
			if err := s.store.Followups().MarkProcessed(ctx, meta.followupID, update.ID, today); err != nil {
				slog.Warn("marking follow-up processed failed", "followup_id", meta.followupID, "error", err)
			}
		}

		slog.Info("claim update applied",
			"claim_id", meta.claimID, "verdict", verdict,
			"state", StateOf(becameTerminal, meta.followupID != ""))
	}
	return nil
}

func parseOutput(raw string, isStatement bool) (verdict Verdict, text string, sources []string, followUpDate string, modelOutput map[string]interface{}) {
	if isStatement {
		var parsed llm.FactCheckResponseOutput
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil && parsed.Verdict != "" {
			verdict = Verdict(parsed.Verdict)
			text = parsed.Text
			sources = parsed.Sources
			followUpDate = parsed.FollowUpDate
			modelOutput = map[string]interface{}{"verdict": parsed.Verdict, "text": parsed.Text, "sources": parsed.Sources}
			return
		}
	} else {
		var parsed llm.ModelResponseOutput
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil && parsed.Verdict != "" {
			verdict = Verdict(parsed.Verdict)
			text = parsed.Text
			sources = parsed.Sources
			followUpDate = parsed.FollowUpDate
			modelOutput = map[string]interface{}{"verdict": parsed.Verdict, "text": parsed.Text, "sources": parsed.Sources}
			return
		}
	}

	// Structured parse failed: fall back to the narrative keyword
	// heuristic over the raw text (spec.md §4.C8 Result application step 1).
	verdict = ClassifyNarrative(raw)
	text = raw
	modelOutput = map[string]interface{}{"raw": raw}
	return
}
