package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/tvremote/internal/protocol"
)

func TestPinchClamps(t *testing.T) {
	tr := New(540, 960)
	tr.Pinch(10)
	assert.Equal(t, MaxScale, tr.View().Scale)
	tr.Pinch(1.5)
	assert.Equal(t, MaxScale, tr.View().Scale)

	tr.Pinch(0.001)
	assert.Equal(t, MinScale, tr.View().Scale)

	tr.Pinch(2)
	tr.Pinch(0)
	tr.Pinch(-1)
	assert.Equal(t, 2.0, tr.View().Scale, "non-positive deltas are ignored")
}

func TestPinchBackToOneResetsPan(t *testing.T) {
	tr := New(540, 960)
	tr.Pinch(2)
	tr.Down(100, 100)
	tr.Move(130, 80)
	_, ok := tr.Up(140, 70)
	assert.False(t, ok, "no command while zoomed")
	assert.Equal(t, View{Scale: 2, PanX: 40, PanY: -30}, tr.View())

	tr.Pinch(0.75)
	assert.Equal(t, 40.0, tr.View().PanX, "pan kept while still zoomed")
	tr.Pinch(0.5)
	assert.Equal(t, View{Scale: 1}, tr.View())
}

func TestPanAccumulatesAcrossDrags(t *testing.T) {
	tr := New(540, 960)
	tr.Pinch(3)
	tr.Down(0, 0)
	tr.Move(10, 10)
	tr.Up(10, 10)
	tr.Down(50, 50)
	tr.Move(45, 60)
	assert.Equal(t, View{Scale: 3, PanX: 5, PanY: 20}, tr.View())
}

func TestReleaseAppliesFinalPan(t *testing.T) {
	tr := New(540, 960)
	tr.Pinch(2)
	tr.Down(10, 10)
	tr.Move(20, 20)
	_, ok := tr.Up(40, 40)
	assert.False(t, ok)
	assert.Equal(t, View{Scale: 2, PanX: 30, PanY: 30}, tr.View())

	tr.Move(100, 100)
	assert.Equal(t, View{Scale: 2, PanX: 30, PanY: 30}, tr.View(), "no pan after release")
}

func TestMoveAtScaleOneDoesNotPan(t *testing.T) {
	tr := New(540, 960)
	tr.Down(10, 10)
	tr.Move(200, 300)
	assert.Equal(t, View{Scale: 1}, tr.View())
}

func TestTap(t *testing.T) {
	tr := New(540, 960)
	tr.Down(270, 480)
	cmd, ok := tr.Up(279, 471)
	require.True(t, ok)
	assert.Equal(t, protocol.ClickAt(279.0/540, 471.0/960), cmd)
}

func TestSwipe(t *testing.T) {
	tr := New(540, 960)
	tr.Down(54, 96)
	cmd, ok := tr.Up(54, 106)
	require.True(t, ok, "a 10px move on one axis is a swipe")
	assert.Equal(t, protocol.Swipe(0.1, 0.1, 0.1, 106.0/960), cmd)

	tr.Down(0, 480)
	cmd, ok = tr.Up(540, 480)
	require.True(t, ok)
	assert.Equal(t, protocol.Swipe(0, 0.5, 1, 0.5), cmd)
}

func TestReleaseOutsideSurfaceIsClamped(t *testing.T) {
	tr := New(100, 100)
	tr.Down(50, 50)
	cmd, ok := tr.Up(150, -20)
	require.True(t, ok)
	assert.Equal(t, protocol.Swipe(0.5, 0.5, 1, 0), cmd)
}

func TestUpWithoutDown(t *testing.T) {
	tr := New(100, 100)
	_, ok := tr.Up(1, 1)
	assert.False(t, ok)

	tr.Down(1, 1)
	tr.Cancel()
	_, ok = tr.Up(1, 1)
	assert.False(t, ok)
}

func TestEmptySurfaceEmitsNothing(t *testing.T) {
	tr := New(0, 0)
	tr.Down(1, 1)
	_, ok := tr.Up(1, 1)
	assert.False(t, ok)

	tr.SetSurface(10, 10)
	tr.Down(5, 5)
	cmd, ok := tr.Up(5, 5)
	require.True(t, ok)
	assert.Equal(t, protocol.ClickAt(0.5, 0.5), cmd)
}
