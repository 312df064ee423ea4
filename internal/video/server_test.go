package video

import (
	"bytes"
	"context"
	"image"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/tvremote/internal/capture"
	"github.com/junsooki/tvremote/internal/decoder"
	"github.com/junsooki/tvremote/internal/encoder"
	"github.com/junsooki/tvremote/internal/metrics"
	"github.com/junsooki/tvremote/internal/protocol"
	"github.com/junsooki/tvremote/internal/transport"
)

// scriptedEncoder returns canned payloads in order, then repeats the last.
type scriptedEncoder struct {
	mu      sync.Mutex
	results []result
}

type result struct {
	data []byte
	err  error
}

func (e *scriptedEncoder) Encode(image.Image) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.results[0]
	if len(e.results) > 1 {
		e.results = e.results[1:]
	}
	return r.data, r.err
}

// feed puts a fresh frame into the slot on every call to Latest.
type feed struct {
	calls int
	mu    sync.Mutex
}

func (f *feed) Latest() (*capture.Frame, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return capture.NewFrame(image.NewRGBA(image.Rect(0, 0, 2, 2))), true
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStreamSkipsBadFrames(t *testing.T) {
	enc := &scriptedEncoder{results: []result{
		{err: errors.New("boom")},
		{data: make([]byte, protocol.MaxFrameSize)},
		{data: []byte("first")},
		{data: []byte("second")},
	}}
	m := metrics.New()
	srv := NewServer(&feed{}, enc, Options{Metrics: m, Logger: quietLogger()})

	host, viewer := net.Pipe()
	defer viewer.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Stream(ctx, host) }()

	got, err := transport.ReadFrame(viewer)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
	got, err = transport.ReadFrame(viewer)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	cancel()
	// Unblock a pending write so Stream observes the cancellation.
	go io.Copy(io.Discard, viewer)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
	host.Close()
}

func TestStreamEndsOnWriteFailure(t *testing.T) {
	srv := NewServer(&feed{}, &scriptedEncoder{results: []result{{data: []byte("x")}}}, Options{Logger: quietLogger()})
	host, viewer := net.Pipe()
	viewer.Close()
	err := srv.Stream(context.Background(), host)
	require.Error(t, err)
	assert.True(t, transport.IsClosed(err), "got %v", err)
}

func TestStreamWaitsWhenIdle(t *testing.T) {
	var slot capture.Latest
	srv := NewServer(&slot, &scriptedEncoder{results: []result{{data: []byte("late")}}}, Options{Logger: quietLogger()})
	host, viewer := net.Pipe()
	defer viewer.Close()
	defer host.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Stream(ctx, host)

	time.AfterFunc(3*PollInterval/2, func() {
		slot.Put(capture.NewFrame(image.NewRGBA(image.Rect(0, 0, 1, 1))))
	})
	start := time.Now()
	got, err := transport.ReadFrame(viewer)
	require.NoError(t, err)
	assert.Equal(t, []byte("late"), got)
	assert.GreaterOrEqual(t, time.Since(start), PollInterval)
}

func TestServeRealJPEG(t *testing.T) {
	pattern, err := capture.NewPattern(54, 96, 30)
	require.NoError(t, err)
	require.NoError(t, pattern.Start())
	defer pattern.Stop()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := NewServer(pattern, encoder.NewJPEGEncoder(encoder.DefaultQuality, 27, 48), Options{
		Logger:       quietLogger(),
		WriteTimeout: time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	read := func() *image.RGBA {
		conn, err := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		payload, err := transport.ReadFrame(conn)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(payload, []byte{0xFF, 0xD8}), "JPEG SOI marker")
		img, err := decoder.NewJPEGDecoder().Decode(payload)
		require.NoError(t, err)
		return img
	}

	img := read()
	assert.Equal(t, image.Rect(0, 0, 27, 48), img.Bounds())
	// A second viewer is served once the first goes away.
	img = read()
	assert.Equal(t, 27, img.Bounds().Dx())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
