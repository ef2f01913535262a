package roundup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/codeready-toolchain/verifyd/ent/roundup"
	"github.com/codeready-toolchain/verifyd/pkg/config"
	"github.com/codeready-toolchain/verifyd/pkg/dateutil"
	"github.com/codeready-toolchain/verifyd/pkg/llm"
	"github.com/codeready-toolchain/verifyd/pkg/store"
	"github.com/codeready-toolchain/verifyd/pkg/toolloop"
)

// resultSchema is RoundupResponseOutput's strict JSON schema.
var resultSchema = llm.SanitizeForStrict(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"title":   map[string]interface{}{"type": "string"},
		"text":    map[string]interface{}{"type": "string"},
		"sources": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
	},
})

// Generator runs C9: for every pending period, nest lower-tier roundups,
// rank the remaining articles, invoke the agentic tool loop, and persist
// the result.
type Generator struct {
	store     *store.Store
	loop      *toolloop.Loop
	providers *config.LLMProviderRegistry
	models    *config.ModelSelectionTable
	quality   config.QualityCaller
	clock     dateutil.Clock
}

// New builds a Generator. providers resolves a ModelSelection's Provider
// name to a usable *config.LLMProviderConfig.
func New(s *store.Store, loop *toolloop.Loop, providers *config.LLMProviderRegistry, models *config.ModelSelectionTable, quality config.QualityCaller, clock dateutil.Clock) *Generator {
	return &Generator{store: s, loop: loop, providers: providers, models: models, quality: quality, clock: clock}
}

// Run generates every missing period's Roundup.
func (g *Generator) Run(ctx context.Context) error {
	today := dateutil.PipelineToday(g.clock)
	for _, period := range PendingPeriods(today) {
		exists, err := g.store.Roundups().Exists(ctx, period.Kind, period.Start, period.End)
		if err != nil {
			return fmt.Errorf("checking roundup existence: %w", err)
		}
		if exists {
			continue
		}
		if err := g.generateOne(ctx, period); err != nil {
			slog.Warn("generating roundup failed", "kind", period.Kind, "start", period.Start, "end", period.End, "error", err)
		}
	}
	return nil
}

func (g *Generator) generateOne(ctx context.Context, period Period) error {
	seeds, omittedCount, err := g.collectSeeds(ctx, period)
	if err != nil {
		return fmt.Errorf("collecting seeds: %w", err)
	}

	prompt := buildPrompt(period, seeds)

	var sel config.ModelSelection
	var ok bool
	if period.Kind == roundup.KindYearly {
		sel, ok = g.models.HighestEffort(config.TaskProcess)
	} else {
		sel, ok = g.models.Select(ctx, g.quality, config.TaskProcess, prompt)
	}
	if !ok {
		return fmt.Errorf("no model selection available for %s roundup", period.Kind)
	}
	cfg, err := g.providers.Get(sel.Provider)
	if err != nil {
		return fmt.Errorf("resolving selected provider %q: %w", sel.Provider, err)
	}

	result, err := g.loop.Run(ctx, cfg, roundupSystemPrompt, prompt, resultSchema)
	if err != nil {
		return fmt.Errorf("running roundup tool loop: %w", err)
	}

	var parsed llm.RoundupResponseOutput
	title, body, sources := "", result.Text, result.Sources
	if err := json.Unmarshal([]byte(result.Parsed), &parsed); err == nil && parsed.Title != "" {
		title, body = parsed.Title, parsed.Text
		if len(parsed.Sources) > 0 {
			sources = parsed.Sources
		}
	} else {
		title = fmt.Sprintf("%s roundup: %s to %s", period.Kind, period.Start.Format("2006-01-02"), period.End.Format("2006-01-02"))
	}

	seedJSON := make([]interface{}, len(seeds))
	for i, s := range seeds {
		seedJSON[i] = s
	}

	_, err = g.store.Roundups().Insert(ctx, store.NewRoundupInput{
		Kind:         period.Kind,
		PeriodStart:  period.Start,
		PeriodEnd:    period.End,
		Title:        title,
		Body:         body,
		Sources:      sources,
		SeedArticles: seedJSON,
		OmittedCount: omittedCount,
	})
	return err
}

// collectSeeds implements spec.md §4.C9 steps 1-3: nested lower-tier
// roundups first, then ranked articles filling the remaining slots up to
// MaxSeedSlots, plus the omitted-article count.
func (g *Generator) collectSeeds(ctx context.Context, period Period) ([]Seed, int, error) {
	var seeds []Seed

	if lowerKind, cap, ok := NestedCap(period.Kind); ok {
		nested, err := g.store.Roundups().RecentByKind(ctx, lowerKind, period.Start, period.End, cap)
		if err != nil {
			return nil, 0, err
		}
		for _, r := range nested {
			seeds = append(seeds, nestedSeed(r))
		}
	}

	articles, err := g.store.Articles().InRange(ctx, period.Start, period.End)
	if err != nil {
		return nil, 0, err
	}

	ranked, err := rankArticles(ctx, g.store, articles)
	if err != nil {
		return nil, 0, err
	}

	remaining := MaxSeedSlots - len(seeds)
	if remaining < 0 {
		remaining = 0
	}
	omitted := 0
	if remaining < len(ranked) {
		omitted = len(ranked) - remaining
		ranked = ranked[:remaining]
	}
	seeds = append(seeds, ranked...)
	return seeds, omitted, nil
}

const roundupSystemPrompt = "You are a roundup-writing assistant for a government claim-tracking " +
	"service. Using the seed articles and nested roundups provided, research and write a markdown " +
	"roundup covering the period, citing sources via the available tools."

func buildPrompt(period Period, seeds []Seed) string {
	return fmt.Sprintf(
		"kind: %s\nperiod_start: %s\nperiod_end: %s\nseed_count: %d\n",
		period.Kind, period.Start.Format("2006-01-02"), period.End.Format("2006-01-02"), len(seeds),
	)
}
