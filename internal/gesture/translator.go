// Package gesture turns pointer and pinch input into control commands.
//
// Coordinates passed to a Translator are in surface pixels, where the
// surface is the on-screen rectangle the host frame is drawn into at scale
// 1. Zoom and pan are local to the viewer and never sent to the host.
package gesture

import (
	"math"

	"github.com/junsooki/tvremote/internal/protocol"
)

const (
	// ClickThreshold is the per-axis movement, in surface pixels, below
	// which a press and release count as a tap.
	ClickThreshold = 10.0
	MinScale       = 1.0
	MaxScale       = 5.0
)

// View is the local view transform applied when drawing frames.
type View struct {
	Scale float64
	PanX  float64
	PanY  float64
}

// Translator tracks one pointer interaction plus the persistent zoom. It is
// not safe for concurrent use; the display loop owns it.
type Translator struct {
	width, height float64

	scale      float64
	panX, panY float64

	down         bool
	downX, downY float64
	startPanX    float64
	startPanY    float64
}

// New creates a translator for a width x height surface.
func New(width, height float64) *Translator {
	return &Translator{width: width, height: height, scale: MinScale}
}

// SetSurface updates the surface size used to normalise coordinates.
func (t *Translator) SetSurface(width, height float64) {
	t.width, t.height = width, height
}

// View returns the current zoom and pan.
func (t *Translator) View() View {
	return View{Scale: t.scale, PanX: t.panX, PanY: t.panY}
}

// Pinch multiplies the zoom by delta and clamps it to [MinScale, MaxScale].
// Returning to MinScale recentres the view.
func (t *Translator) Pinch(delta float64) {
	if delta <= 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return
	}
	t.scale = math.Min(MaxScale, math.Max(MinScale, t.scale*delta))
	if t.scale == MinScale {
		t.panX, t.panY = 0, 0
	}
}

// Zoomed reports whether the view is magnified.
func (t *Translator) Zoomed() bool {
	return t.scale > MinScale
}

// Down starts a pointer interaction at (x, y).
func (t *Translator) Down(x, y float64) {
	t.down = true
	t.downX, t.downY = x, y
	t.startPanX, t.startPanY = t.panX, t.panY
}

// Move pans the view while zoomed. It never emits a command.
func (t *Translator) Move(x, y float64) {
	if !t.down || !t.Zoomed() {
		return
	}
	t.panX = t.startPanX + (x - t.downX)
	t.panY = t.startPanY + (y - t.downY)
}

// Up ends the interaction at (x, y). At scale 1 it returns a CLICK_AT at
// the release point when both axes moved less than ClickThreshold, and a
// SWIPE from the press to the release point otherwise. While zoomed, or
// when no press is in progress, nothing is emitted.
func (t *Translator) Up(x, y float64) (protocol.Command, bool) {
	if !t.down {
		return protocol.Command{}, false
	}
	if t.Zoomed() {
		t.Move(x, y)
		t.down = false
		return protocol.Command{}, false
	}
	t.down = false
	if t.width <= 0 || t.height <= 0 {
		return protocol.Command{}, false
	}

	if math.Abs(x-t.downX) < ClickThreshold && math.Abs(y-t.downY) < ClickThreshold {
		return protocol.ClickAt(t.fracX(x), t.fracY(y)), true
	}
	return protocol.Swipe(t.fracX(t.downX), t.fracY(t.downY), t.fracX(x), t.fracY(y)), true
}

// Cancel abandons the interaction in progress without emitting anything.
func (t *Translator) Cancel() {
	t.down = false
}

func (t *Translator) fracX(x float64) float64 { return clamp01(x / t.width) }
func (t *Translator) fracY(y float64) float64 { return clamp01(y / t.height) }

func clamp01(f float64) float64 {
	return math.Min(1, math.Max(0, f))
}
