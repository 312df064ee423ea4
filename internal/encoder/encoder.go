package encoder

import "image"

// Encoder compresses a frame into a transmittable byte buffer.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
}

// DefaultQuality favours latency over fidelity.
const DefaultQuality = 20

// Default stream dimensions. The stream never changes size mid-session.
const (
	DefaultWidth  = 540
	DefaultHeight = 960
)
