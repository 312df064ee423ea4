//go:build !darwin || !cgo

package capture

// Screen is unavailable on this platform; NewScreen always fails.
type Screen struct {
	Pattern
}

func NewScreen(displayIndex, fps int) (*Screen, error) {
	return nil, ErrNoScreen
}
