// Package permissions checks the OS grants the host needs for capture and
// input injection.
package permissions

import "github.com/pkg/errors"

var (
	ErrScreenRecording = errors.New("screen recording permission not granted; grant it in System Settings and restart")
	ErrAccessibility   = errors.New("accessibility permission not granted; grant it in System Settings and restart")
)

// Require checks the requested grants, prompting for any that are
// missing. It returns the first missing grant as an error.
func Require(screen, accessibility bool) error {
	if screen && !HasScreenRecording() {
		RequestScreenRecording()
		return ErrScreenRecording
	}
	if accessibility && !HasAccessibility() {
		RequestAccessibility()
		return ErrAccessibility
	}
	return nil
}
