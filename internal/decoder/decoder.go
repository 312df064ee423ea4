package decoder

import "image"

// Decoder turns an encoded frame payload into a renderable image.
type Decoder interface {
	Decode(payload []byte) (*image.RGBA, error)
}
