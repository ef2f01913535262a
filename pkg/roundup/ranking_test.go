package roundup

import (
	"testing"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/stretchr/testify/assert"
)

func TestNestedSeed(t *testing.T) {
	r := &ent.Roundup{ID: "roundup-1", Title: "Week of Jan 5"}
	seed := nestedSeed(r)

	assert.Equal(t, "roundup-1", seed.RoundupID)
	assert.Equal(t, "Week of Jan 5", seed.Title)
	assert.Equal(t, 0, seed.Score)
	assert.Empty(t, seed.ArticleID)
}
