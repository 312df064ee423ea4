//go:build darwin && cgo

package input

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>

static void postMouse(CGEventType type, double x, double y) {
    CGEventRef event = CGEventCreateMouseEvent(NULL, type, CGPointMake(x, y), kCGMouseButtonLeft);
    CGEventPost(kCGHIDEventTap, event);
    CFRelease(event);
}

void leftDown(double x, double y) { postMouse(kCGEventLeftMouseDown, x, y); }
void leftDrag(double x, double y) { postMouse(kCGEventLeftMouseDragged, x, y); }
void leftUp(double x, double y)   { postMouse(kCGEventLeftMouseUp, x, y); }

void pressKey(CGKeyCode keyCode) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, keyCode, true);
    CGEventPost(kCGHIDEventTap, down);
    CFRelease(down);
    CGEventRef up = CGEventCreateKeyboardEvent(NULL, keyCode, false);
    CGEventPost(kCGHIDEventTap, up);
    CFRelease(up);
}

void mainDisplaySize(double* w, double* h) {
    CGRect b = CGDisplayBounds(CGMainDisplayID());
    *w = b.size.width;
    *h = b.size.height;
}
*/
import "C"

import (
	"os/exec"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/junsooki/tvremote/internal/protocol"
)

// macOS virtual key codes used for the navigation commands.
const (
	keyEscape = 0x35
	keyHome   = 0x73
)

// swipeSteps is the number of drag events between swipe endpoints.
const swipeSteps = 20

// volumeStep is the output-volume change per VOL_UP/VOL_DOWN (0-100 scale).
const volumeStep = 6

// CGEventInjector injects input via CoreGraphics CGEvent APIs. Coordinates
// are in display points of the main display.
type CGEventInjector struct{}

func NewCGEventInjector() *CGEventInjector {
	return &CGEventInjector{}
}

func (inj *CGEventInjector) ScreenSize() (int, int) {
	var w, h C.double
	C.mainDisplaySize(&w, &h)
	return int(w), int(h)
}

func (inj *CGEventInjector) Perform(a Action) error {
	switch a.Kind {
	case protocol.KindClickAt:
		C.leftDown(C.double(a.X1), C.double(a.Y1))
		time.Sleep(TapDuration)
		C.leftUp(C.double(a.X1), C.double(a.Y1))
	case protocol.KindSwipe:
		C.leftDown(C.double(a.X1), C.double(a.Y1))
		step := SwipeDuration / swipeSteps
		for i := 1; i <= swipeSteps; i++ {
			t := float64(i) / swipeSteps
			C.leftDrag(C.double(a.X1+(a.X2-a.X1)*t), C.double(a.Y1+(a.Y2-a.Y1)*t))
			time.Sleep(step)
		}
		C.leftUp(C.double(a.X2), C.double(a.Y2))
	case protocol.KindBack:
		C.pressKey(keyEscape)
	case protocol.KindHome:
		C.pressKey(keyHome)
	case protocol.KindVolumeUp:
		return adjustVolume(volumeStep)
	case protocol.KindVolumeDown:
		return adjustVolume(-volumeStep)
	default:
		return errors.Wrapf(ErrUnsupported, "%s", a.Kind)
	}
	return nil
}

func adjustVolume(delta int) error {
	script := "set volume output volume ((output volume of (get volume settings)) + " +
		strconv.Itoa(delta) + ")"
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return errors.Wrapf(err, "osascript: %s", out)
	}
	return nil
}
