package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestNewJPEGEncoderClampsQuality(t *testing.T) {
	assert.Equal(t, 1, NewJPEGEncoder(-5, 0, 0).Quality())
	assert.Equal(t, 100, NewJPEGEncoder(500, 0, 0).Quality())
	assert.Equal(t, DefaultQuality, NewJPEGEncoder(DefaultQuality, 0, 0).Quality())
}

func TestEncodeScalesToStreamSize(t *testing.T) {
	enc := NewJPEGEncoder(DefaultQuality, DefaultWidth, DefaultHeight)
	data, err := enc.Encode(solid(1080, 1920, color.RGBA{200, 10, 10, 255}))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, cfg.Width)
	assert.Equal(t, DefaultHeight, cfg.Height)
}

func TestEncodeKeepsSourceSizeWhenUnset(t *testing.T) {
	data, err := NewJPEGEncoder(50, 0, 0).Encode(solid(32, 16, color.RGBA{0, 0, 255, 255}))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 16, cfg.Height)
}

func TestEncodeIsDeterministic(t *testing.T) {
	enc := NewJPEGEncoder(DefaultQuality, 64, 64)
	img := solid(128, 128, color.RGBA{10, 120, 30, 255})
	a, err := enc.Encode(img)
	require.NoError(t, err)
	b, err := enc.Encode(img)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeRejectsEmpty(t *testing.T) {
	enc := NewJPEGEncoder(DefaultQuality, 0, 0)
	_, err := enc.Encode(nil)
	assert.Error(t, err)
	_, err = enc.Encode(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)
}
