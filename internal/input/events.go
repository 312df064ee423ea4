package input

import (
	"fmt"
	"time"

	"github.com/junsooki/tvremote/internal/protocol"
)

// Stroke durations for injected gestures.
const (
	TapDuration   = 50 * time.Millisecond
	SwipeDuration = 300 * time.Millisecond
)

// Action is a command resolved against the live screen size. Coordinates
// are in screen pixels; Tap uses X1/Y1 only.
type Action struct {
	Kind protocol.Kind
	X1   float64
	Y1   float64
	X2   float64
	Y2   float64
}

// Resolve scales the fractional coordinates of cmd by width and height.
func Resolve(cmd protocol.Command, width, height int) Action {
	w, h := float64(width), float64(height)
	a := Action{Kind: cmd.Kind}
	switch cmd.Kind {
	case protocol.KindClickAt:
		a.X1, a.Y1 = cmd.X1*w, cmd.Y1*h
	case protocol.KindSwipe:
		a.X1, a.Y1 = cmd.X1*w, cmd.Y1*h
		a.X2, a.Y2 = cmd.X2*w, cmd.Y2*h
	}
	return a
}

func (a Action) String() string {
	switch a.Kind {
	case protocol.KindClickAt:
		return fmt.Sprintf("tap (%.0f,%.0f)", a.X1, a.Y1)
	case protocol.KindSwipe:
		return fmt.Sprintf("swipe (%.0f,%.0f)->(%.0f,%.0f)", a.X1, a.Y1, a.X2, a.Y2)
	default:
		return string(a.Kind)
	}
}
