package roundup

import (
	"context"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/pkg/store"
)

// Seed is one entry in a Roundup's seed_articles JSON column: either a
// nested lower-tier Roundup or a ranked Article, per ent/schema/roundup.go's
// field comment.
type Seed struct {
	ArticleID     string   `json:"article_id,omitempty"`
	RoundupID     string   `json:"roundup_id,omitempty"`
	Title         string   `json:"title"`
	Link          string   `json:"link,omitempty"`
	Score         int      `json:"score"`
	KeyTakeaways  []string `json:"key_takeaways,omitempty"`
	Claims        int      `json:"claims"`
}

// rankArticles scores and sorts the period's articles descending by
// (#key_takeaways + #claims referencing it + priority-as-integer), per
// spec.md §4.C9 step 2. Unenriched articles (priority unset) score lowest.
func rankArticles(ctx context.Context, s *store.Store, articles []*ent.Article) ([]Seed, error) {
	seeds := make([]Seed, 0, len(articles))
	for _, a := range articles {
		claimCount, err := s.Claims().CountByArticle(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		priority := 0
		if a.Priority != nil {
			priority = *a.Priority
		}
		score := len(a.KeyTakeaways) + claimCount + priority
		seeds = append(seeds, Seed{
			ArticleID:    a.ID,
			Title:        a.Title,
			Link:         a.Link,
			Score:        score,
			KeyTakeaways: a.KeyTakeaways,
			Claims:       claimCount,
		})
	}

	for i := 1; i < len(seeds); i++ {
		for j := i; j > 0 && seeds[j].Score > seeds[j-1].Score; j-- {
			seeds[j], seeds[j-1] = seeds[j-1], seeds[j]
		}
	}
	return seeds, nil
}

func nestedSeed(r *ent.Roundup) Seed {
	return Seed{RoundupID: r.ID, Title: r.Title, Score: 0}
}
