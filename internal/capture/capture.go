package capture

import (
	"image"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrNoScreen is returned where native display capture is not built in.
var ErrNoScreen = errors.New("native screen capture not available on this platform")

// ErrRunning is returned by Start on a source that is already capturing.
var ErrRunning = errors.New("capture already running")

// Frame represents a captured screen frame.
type Frame struct {
	Image     *image.RGBA
	Width     int
	Height    int
	Timestamp time.Time
}

// FrameSource hands out the most recent frame, if one is ready.
type FrameSource interface {
	Latest() (*Frame, bool)
}

// Runner is implemented by sources that own a capture goroutine.
type Runner interface {
	Start() error
	Stop()
}

// Latest is a single-frame slot. Put replaces whatever is waiting, so a
// slow consumer only ever sees the newest frame.
type Latest struct {
	mu      sync.Mutex
	frame   *Frame
	dropped uint64
}

// Put stores f, discarding any frame not yet taken.
func (l *Latest) Put(f *Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frame != nil {
		l.dropped++
	}
	l.frame = f
}

// Latest takes the waiting frame and empties the slot.
func (l *Latest) Latest() (*Frame, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f := l.frame
	l.frame = nil
	return f, f != nil
}

// Dropped returns how many frames were overwritten before being taken.
func (l *Latest) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// NewFrame wraps img with its dimensions and a capture timestamp.
func NewFrame(img *image.RGBA) *Frame {
	b := img.Bounds()
	return &Frame{
		Image:     img,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Timestamp: time.Now(),
	}
}
