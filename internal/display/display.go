// Package display renders the host screen and turns local input into
// control commands.
package display

import (
	"log/slog"
	"math"

	"github.com/junsooki/tvremote/internal/gesture"
	"github.com/junsooki/tvremote/internal/protocol"
)

// CommandSender delivers commands to the host.
type CommandSender interface {
	Send(cmd protocol.Command) error
	Connected() bool
}

// Transform maps frame pixels to window pixels: window = frame*Scale + (OffsetX, OffsetY).
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// aspectFit returns the transform that fits a frame into the view with
// letterboxing.
func aspectFit(viewW, viewH, frameW, frameH float64) Transform {
	if frameW <= 0 || frameH <= 0 {
		return Transform{Scale: 1}
	}
	scale := math.Min(viewW/frameW, viewH/frameH)
	return Transform{
		Scale:   scale,
		OffsetX: (viewW - frameW*scale) / 2,
		OffsetY: (viewH - frameH*scale) / 2,
	}
}

// Input feeds window-space pointer, pinch and key events through a
// gesture.Translator and forwards the resulting commands. It belongs to the
// render loop and is not safe for concurrent use.
type Input struct {
	tr     *gesture.Translator
	sender CommandSender
	logger *slog.Logger

	viewW, viewH float64
	fit          Transform
}

// NewInput creates an Input sending to sender.
func NewInput(sender CommandSender, logger *slog.Logger) *Input {
	if logger == nil {
		logger = slog.Default()
	}
	return &Input{tr: gesture.New(0, 0), sender: sender, logger: logger, fit: Transform{Scale: 1}}
}

// Resize records the window and frame sizes. The gesture surface is the
// letterboxed rectangle the frame occupies at zoom 1.
func (in *Input) Resize(viewW, viewH, frameW, frameH float64) {
	in.viewW, in.viewH = viewW, viewH
	in.fit = aspectFit(viewW, viewH, frameW, frameH)
	in.tr.SetSurface(frameW*in.fit.Scale, frameH*in.fit.Scale)
}

func (in *Input) surface(x, y float64) (float64, float64) {
	return x - in.fit.OffsetX, y - in.fit.OffsetY
}

// PointerDown starts a press at window position (x, y).
func (in *Input) PointerDown(x, y float64) {
	in.tr.Down(in.surface(x, y))
}

// PointerMove updates the press in progress.
func (in *Input) PointerMove(x, y float64) {
	in.tr.Move(in.surface(x, y))
}

// PointerUp ends the press and sends the tap or swipe, if any.
func (in *Input) PointerUp(x, y float64) {
	if cmd, ok := in.tr.Up(in.surface(x, y)); ok {
		in.send(cmd)
	}
}

// PointerCancel drops the press in progress.
func (in *Input) PointerCancel() {
	in.tr.Cancel()
}

// Pinch zooms the local view by delta.
func (in *Input) Pinch(delta float64) {
	in.tr.Pinch(delta)
}

// Key sends a navigation or volume command.
func (in *Input) Key(cmd protocol.Command) {
	in.send(cmd)
}

// View returns the local zoom and pan.
func (in *Input) View() gesture.View {
	return in.tr.View()
}

// DrawTransform composes the aspect fit with the local zoom, scaled about
// the window centre and then offset by the pan.
func (in *Input) DrawTransform() Transform {
	v := in.tr.View()
	cx, cy := in.viewW/2, in.viewH/2
	return Transform{
		Scale:   in.fit.Scale * v.Scale,
		OffsetX: (in.fit.OffsetX-cx)*v.Scale + cx + v.PanX,
		OffsetY: (in.fit.OffsetY-cy)*v.Scale + cy + v.PanY,
	}
}

func (in *Input) send(cmd protocol.Command) {
	if in.sender == nil || !in.sender.Connected() {
		return
	}
	if err := in.sender.Send(cmd); err != nil {
		in.logger.Warn("send command", "cmd", cmd.String(), "err", err)
	}
}
