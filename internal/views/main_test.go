package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameGateDropsOlderFrames(t *testing.T) {
	var gate frameGate

	assert.True(t, gate.admit(0), "initial empty frame")
	assert.True(t, gate.admit(3))
	assert.False(t, gate.admit(2), "undo finished after a later redo")
	assert.True(t, gate.admit(3), "same generation redrawn")
	assert.True(t, gate.admit(5))
	assert.False(t, gate.admit(4))
	assert.Equal(t, uint64(5), gate.newest)
}
