package store

import (
	"context"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/article"
	"github.com/codeready-toolchain/verifyd/ent/claim"
	"github.com/codeready-toolchain/verifyd/pkg/toolloop/tools"
)

// Search is the store-backed implementation of tools.InternalSearchBackend:
// a case-insensitive text match across the Article and Claim stores'
// indexed text fields, with an optional date range, enriching each matched
// claim with its most recent Update's verdict — the internal-search
// contract of spec.md §4.C5.
type Search struct {
	client *ent.Client
}

var _ tools.InternalSearchBackend = (*Search)(nil)

func (s *Search) Search(ctx context.Context, query string, from, to *time.Time) ([]tools.InternalSearchResult, error) {
	articleQuery := s.client.Article.Query().Where(
		article.Or(
			article.TitleContainsFold(query),
			article.SummaryParagraphContainsFold(query),
			article.RawContentContainsFold(query),
		),
	)
	if from != nil {
		articleQuery = articleQuery.Where(article.DateGTE(Normalize(*from)))
	}
	if to != nil {
		articleQuery = articleQuery.Where(article.DateLTE(Normalize(*to)))
	}
	articles, err := articleQuery.Limit(25).All(ctx)
	if err != nil {
		return nil, err
	}

	claimQuery := s.client.Claim.Query().Where(
		claim.Or(
			claim.ClaimContainsFold(query),
			claim.VerbatimClaimContainsFold(query),
		),
	)
	if from != nil {
		claimQuery = claimQuery.Where(claim.ArticleDateGTE(Normalize(*from)))
	}
	if to != nil {
		claimQuery = claimQuery.Where(claim.ArticleDateLTE(Normalize(*to)))
	}
	claims, err := claimQuery.WithArticle().Limit(25).All(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]tools.InternalSearchResult, 0, len(articles)+len(claims))
	for _, a := range articles {
		results = append(results, tools.InternalSearchResult{ArticleID: a.ID, Title: a.Title})
	}
	updates := &UpdateRepo{client: s.client}
	for _, c := range claims {
		result := tools.InternalSearchResult{ClaimID: c.ID, Claim: c.Claim}
		if c.Edges.Article != nil {
			result.ArticleID = c.Edges.Article.ID
			result.Title = c.Edges.Article.Title
		}
		if latest, err := updates.Latest(ctx, c.ID); err == nil && latest != nil {
			result.LatestVerdict = latest.Verdict
		}
		results = append(results, result)
	}
	return results, nil
}
