package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferFunctionClampsWidth(t *testing.T) {
	tf := NewTransferFunction(100, 0)
	assert.Equal(t, float32(MinWindowWidth), tf.Width)

	tf.SetWidth(-50)
	assert.Equal(t, float32(MinWindowWidth), tf.Width)

	tf.SetWidth(400)
	assert.Equal(t, float32(400), tf.Width)
}

func TestTransferFunctionRamp(t *testing.T) {
	tf := NewTransferFunction(0, 200)

	assert.Equal(t, float32(0), tf.Apply(-100))
	assert.Equal(t, float32(0), tf.Apply(-150))
	assert.Equal(t, float32(1), tf.Apply(100))
	assert.Equal(t, float32(1), tf.Apply(5000))
	assert.InDelta(t, 0.5, tf.Apply(0), 1e-6)
	assert.InDelta(t, 0.25, tf.Apply(-50), 1e-6)
}

func TestTransferFunctionNarrowWindowIsStep(t *testing.T) {
	tf := NewTransferFunction(40, 0)
	assert.Equal(t, float32(0), tf.Apply(39))
	assert.Equal(t, float32(1), tf.Apply(41))
}

func TestOverlapsOnlyLowEdgeMatters(t *testing.T) {
	tf := NewTransferFunction(0, 200)

	// Entirely below the window: skippable.
	assert.False(t, tf.Overlaps(-500, -101))
	// Range crossing the low edge contributes.
	assert.True(t, tf.Overlaps(-500, -50))
	// Entirely above the window still contributes (saturated opacity).
	assert.True(t, tf.Overlaps(200, 300))
}
