package capture

import (
	"image"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Pattern produces synthetic frames on a ticker. It stands in for a real
// screen when the platform has no native capturer.
type Pattern struct {
	width  int
	height int
	fps    int

	slot Latest

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
	tick    int
}

// NewPattern creates a test-pattern source of the given size and rate.
func NewPattern(width, height, fps int) (*Pattern, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid pattern size %dx%d", width, height)
	}
	if fps <= 0 || fps > 60 {
		return nil, errors.Errorf("fps must be 1-60, got %d", fps)
	}
	return &Pattern{width: width, height: height, fps: fps}, nil
}

func (p *Pattern) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrRunning
	}
	p.running = true
	p.stopCh = make(chan struct{})
	go p.loop(p.stopCh)
	return nil
}

func (p *Pattern) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stopCh)
}

func (p *Pattern) Latest() (*Frame, bool) {
	return p.slot.Latest()
}

// Dropped returns the number of frames replaced before the consumer took them.
func (p *Pattern) Dropped() uint64 {
	return p.slot.Dropped()
}

func (p *Pattern) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(p.fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.slot.Put(NewFrame(p.render(p.tick)))
			p.tick++
		}
	}
}

// render draws a gradient with a grid and a bar that walks down the frame.
func (p *Pattern) render(tick int) *image.RGBA {
	w, h := p.width, p.height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	pix := img.Pix
	stride := img.Stride

	barY := (tick * 8) % h
	for y := 0; y < h; y++ {
		off := y * stride
		g := uint8(50 + y*100/h)
		onBar := y >= barY && y < barY+24
		for x := 0; x < w; x++ {
			i := off + x*4
			switch {
			case onBar:
				pix[i], pix[i+1], pix[i+2] = 230, 230, 230
			case x%60 == 0 || y%60 == 0:
				pix[i], pix[i+1], pix[i+2] = 255, 255, 255
			default:
				pix[i] = uint8(50 + x*100/w)
				pix[i+1] = g
				pix[i+2] = 100
			}
			pix[i+3] = 255
		}
	}
	return img
}
