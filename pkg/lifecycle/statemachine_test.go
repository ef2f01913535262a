package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateTerminal, StateOf(true, false))
	assert.Equal(t, StateTerminal, StateOf(true, true))
	assert.Equal(t, StateInFlight, StateOf(false, true))
	assert.Equal(t, StateScheduled, StateOf(false, false))
}
