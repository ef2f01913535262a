package store

import (
	"context"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/claim"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestStore starts a throwaway PostgreSQL container, auto-migrates the
// ent schema, and returns a ready Store. Mirrors
// pkg/database/client_test.go's newTestClient, minus the GIN-index step
// (ArticleRepo/ClaimRepo/Search use ContainsFold, not full-text search).
func newTestStore(t *testing.T) *Store {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	drv, err := sql.Open(dialect.Postgres, connStr)
	require.NoError(t, err)
	db := drv.DB()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	entClient := ent.NewClient(ent.Driver(drv))
	require.NoError(t, entClient.Schema.Create(ctx))

	s := NewFromEnt(entClient, db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestArticleRepoInRangeOrdersByDateAndExcludesOutOfRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Articles()

	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jan15 := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb1 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	late, err := repo.Insert(ctx, &ent.Article{Title: "late", Date: feb1, Link: "https://example.com/late", Tags: []string{}})
	require.NoError(t, err)
	mid, err := repo.Insert(ctx, &ent.Article{Title: "mid", Date: jan15, Link: "https://example.com/mid", Tags: []string{}})
	require.NoError(t, err)
	early, err := repo.Insert(ctx, &ent.Article{Title: "early", Date: jan1, Link: "https://example.com/early", Tags: []string{}})
	require.NoError(t, err)

	got, err := repo.InRange(ctx, jan1, jan15)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, early.ID, got[0].ID)
	require.Equal(t, mid.ID, got[1].ID)

	for _, a := range got {
		require.NotEqual(t, late.ID, a.ID)
	}
}

func TestArticleRepoInRangeEmptyWhenNoneMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Articles()

	_, err := repo.Insert(ctx, &ent.Article{
		Title: "out of window",
		Date:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Link:  "https://example.com/out",
		Tags:  []string{},
	})
	require.NoError(t, err)

	got, err := repo.InRange(ctx,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestClaimRepoCountByArticle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	articles := s.Articles()
	claims := s.Claims()

	a, err := articles.Insert(ctx, &ent.Article{
		Title: "press release",
		Date:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Link:  "https://example.com/pr",
		Tags:  []string{},
	})
	require.NoError(t, err)
	other, err := articles.Insert(ctx, &ent.Article{
		Title: "other",
		Date:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Link:  "https://example.com/other",
		Tags:  []string{},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := claims.Insert(ctx, NewClaimInput{
			ArticleID:     a.ID,
			ArticleLink:   a.Link,
			ArticleDate:   a.Date,
			Claim:         "claim",
			VerbatimClaim: "claim",
			Type:          claim.TypeStatement,
			Priority:      claim.PriorityMedium,
		})
		require.NoError(t, err)
	}
	_, err = claims.Insert(ctx, NewClaimInput{
		ArticleID:     other.ID,
		ArticleLink:   other.Link,
		ArticleDate:   other.Date,
		Claim:         "unrelated claim",
		VerbatimClaim: "unrelated claim",
		Type:          claim.TypeStatement,
		Priority:      claim.PriorityMedium,
	})
	require.NoError(t, err)

	count, err := claims.CountByArticle(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	count, err = claims.CountByArticle(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestUpdateRepoInsertDenormalizesArticleID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	articles := s.Articles()
	claims := s.Claims()
	updates := s.Updates()

	a, err := articles.Insert(ctx, &ent.Article{
		Title: "press release",
		Date:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Link:  "https://example.com/pr",
		Tags:  []string{},
	})
	require.NoError(t, err)

	c, err := claims.Insert(ctx, NewClaimInput{
		ArticleID:     a.ID,
		ArticleLink:   a.Link,
		ArticleDate:   a.Date,
		Claim:         "claim",
		VerbatimClaim: "claim",
		Type:          claim.TypeStatement,
		Priority:      claim.PriorityMedium,
	})
	require.NoError(t, err)

	u, err := updates.Insert(ctx, NewUpdateInput{
		ClaimID:     c.ID,
		ArticleID:   a.ID,
		Verdict:     "true",
		Text:        "confirmed",
		Sources:     []string{"https://example.com/source"},
		ModelOutput: map[string]interface{}{"verdict": "true"},
	})
	require.NoError(t, err)
	require.Equal(t, a.ID, u.ArticleID)

	latest, err := updates.Latest(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, latest.ArticleID)
}
