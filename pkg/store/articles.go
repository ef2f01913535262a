package store

import (
	"context"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/article"
	"github.com/google/uuid"
)

// ArticleRepo exposes typed operations over the Article collection.
type ArticleRepo struct {
	client *ent.Client
}

// Insert creates a new Article with a generated ID.
func (r *ArticleRepo) Insert(ctx context.Context, a *ent.Article) (*ent.Article, error) {
	return r.client.Article.Create().
		SetID(uuid.NewString()).
		SetTitle(a.Title).
		SetDate(Normalize(a.Date)).
		SetLink(a.Link).
		SetTags(a.Tags).
		SetRawContent(a.RawContent).
		Save(ctx)
}

// Get returns a single Article by id.
func (r *ArticleRepo) Get(ctx context.Context, id string) (*ent.Article, error) {
	return r.client.Article.Get(ctx, id)
}

// InRange returns Articles whose date falls in [start,end], ordered by
// date — C9's per-period seed population.
func (r *ArticleRepo) InRange(ctx context.Context, start, end time.Time) ([]*ent.Article, error) {
	return r.client.Article.Query().
		Where(article.DateGTE(Normalize(start)), article.DateLTE(Normalize(end))).
		Order(ent.Asc(article.FieldDate)).
		All(ctx)
}

// NeedingEnrichment returns Articles missing enrichment, ordered by
// ingestion time, for C6.
func (r *ArticleRepo) NeedingEnrichment(ctx context.Context, limit int) ([]*ent.Article, error) {
	return r.client.Article.Query().
		Where(article.CleanMarkdownIsNil()).
		Order(ent.Asc(article.FieldIngestedAt)).
		Limit(limit).
		All(ctx)
}

// NeedingClaimExtraction returns enriched Articles with claim_processed !=
// true, for C7.
func (r *ArticleRepo) NeedingClaimExtraction(ctx context.Context, limit int) ([]*ent.Article, error) {
	return r.client.Article.Query().
		Where(
			article.CleanMarkdownNotNil(),
			article.Or(article.ClaimProcessedIsNil(), article.ClaimProcessedEQ(false)),
		).
		Order(ent.Asc(article.FieldIngestedAt)).
		Limit(limit).
		All(ctx)
}

// ApplyEnrichment persists C6's output and releases enrich_lock.
func (r *ArticleRepo) ApplyEnrichment(ctx context.Context, id, cleanMarkdown, summary string, takeaways []string, priority int, questions []string, groups interface{}) error {
	return r.client.Article.UpdateOneID(id).
		SetCleanMarkdown(cleanMarkdown).
		SetSummaryParagraph(summary).
		SetKeyTakeaways(takeaways).
		SetPriority(priority).
		SetFollowUpQuestions(questions).
		SetFollowUpQuestionGroups(groups).
		ClearEnrichLockedAt().
		ClearEnrichLockOwner().
		Exec(ctx)
}

// MarkClaimProcessed sets claim_processed=true and releases claimproc_lock.
func (r *ArticleRepo) MarkClaimProcessed(ctx context.Context, id string) error {
	return r.client.Article.UpdateOneID(id).
		SetClaimProcessed(true).
		ClearClaimprocLockedAt().
		ClearClaimprocLockOwner().
		Exec(ctx)
}

// EnrichLease, ClaimprocLease and FollowupAnswerLease adapt the three
// per-Article lock columns to the generic lease.CAS contract (pkg/lease).
func (r *ArticleRepo) EnrichLease() *articleLease {
	return &articleLease{client: r.client, field: leaseFieldEnrich}
}

func (r *ArticleRepo) ClaimprocLease() *articleLease {
	return &articleLease{client: r.client, field: leaseFieldClaimproc}
}

func (r *ArticleRepo) FollowupAnswerLease() *articleLease {
	return &articleLease{client: r.client, field: leaseFieldFollowupAnswer}
}
