//go:build darwin && cgo

package permissions

/*
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CoreGraphics.h>
*/
import "C"

// HasScreenRecording reports whether the process may capture the display.
func HasScreenRecording() bool {
	return bool(C.CGPreflightScreenCaptureAccess())
}

// RequestScreenRecording shows the system prompt. A grant only takes effect
// after the process restarts.
func RequestScreenRecording() bool {
	return bool(C.CGRequestScreenCaptureAccess())
}
