package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(VerdictComplete))
	assert.True(t, IsTerminal(VerdictFailed))
	assert.True(t, IsTerminal(VerdictTrue))
	assert.True(t, IsTerminal(VerdictFalse))
	assert.False(t, IsTerminal(VerdictInProgress))
	assert.False(t, IsTerminal(VerdictUnclear))
}

func TestClassifyNarrative(t *testing.T) {
	assert.Equal(t, VerdictFailed, ClassifyNarrative("The project's goal was not met."))
	assert.Equal(t, VerdictComplete, ClassifyNarrative("The bridge is now complete."))
	assert.Equal(t, VerdictInProgress, ClassifyNarrative("Work remains ongoing."))
	assert.Equal(t, VerdictInProgress, ClassifyNarrative("Nothing definitive to report yet."))
}
