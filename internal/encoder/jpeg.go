package encoder

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// JPEGEncoder encodes frames as JPEG at a fixed quality and output size.
type JPEGEncoder struct {
	quality int
	width   int
	height  int
}

// NewJPEGEncoder creates a JPEG encoder. quality is clamped to 1-100.
// Frames whose bounds differ from width x height are scaled first; a zero
// width or height keeps the source size.
func NewJPEGEncoder(quality, width, height int) *JPEGEncoder {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return &JPEGEncoder{quality: quality, width: width, height: height}
}

// Quality returns the JPEG quality in use.
func (e *JPEGEncoder) Quality() int {
	return e.quality
}

func (e *JPEGEncoder) Encode(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("encode: nil image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.Errorf("encode: empty image %v", b)
	}

	src := img
	if e.width > 0 && e.height > 0 && (b.Dx() != e.width || b.Dy() != e.height) {
		dst := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		src = dst
	}

	var buf bytes.Buffer
	buf.Grow(64 * 1024)
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	return buf.Bytes(), nil
}
