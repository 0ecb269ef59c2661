package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultString(t *testing.T) {
	assert.Equal(t, "continue", Continue.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "failure", Failure.String())
	assert.Equal(t, "unknown", Result(99).String())
}

func TestIterateAfterQuitRequestReturnsSuccess(t *testing.T) {
	// The quit check runs before any GPU access, so no device is needed.
	a := New(nil, DefaultConfig(), NewNopLogger())

	a.RequestQuit()
	assert.Equal(t, Success, a.Iterate())
	// The signal is sticky: later iterations stay at Success.
	assert.Equal(t, Success, a.Iterate())
}

func TestOverlayOriginCentersText(t *testing.T) {
	x, y := overlayOrigin(200, 640)
	assert.Equal(t, float32(220), x)
	assert.Equal(t, float32(overlayMargin), y)
}

func TestOverlayOriginPinsWideTextToMargin(t *testing.T) {
	x, y := overlayOrigin(700, 640)
	assert.Equal(t, float32(overlayMargin), x)
	assert.Equal(t, float32(overlayMargin), y)
}

func TestNewDefaultsToNopLogger(t *testing.T) {
	a := New(nil, DefaultConfig(), nil)
	assert.NotNil(t, a.log)
}
