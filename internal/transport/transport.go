package transport

import (
	"io"
	"net"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// FrameSender sends encoded video frames.
type FrameSender interface {
	SendFrame(data []byte) error
}

// FrameWriter sends frames over a stream using the length-prefixed codec.
type FrameWriter struct {
	w io.Writer
}

// NewFrameWriter wraps w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

func (f *FrameWriter) SendFrame(data []byte) error {
	return WriteFrame(f.w, data)
}

// IsClosed reports whether err means the peer went away or the
// connection was closed locally. Callers treat it as a normal end.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// IsTimeout reports whether err is a deadline expiry.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Deadliner applies an idle timeout to a connection before each blocking
// call. A zero Timeout disables deadlines.
type Deadliner struct {
	Conn    net.Conn
	Timeout time.Duration
}

// Read arms the read deadline.
func (d Deadliner) Read() error {
	if d.Timeout <= 0 {
		return nil
	}
	return d.Conn.SetReadDeadline(time.Now().Add(d.Timeout))
}

// Write arms the write deadline.
func (d Deadliner) Write() error {
	if d.Timeout <= 0 {
		return nil
	}
	return d.Conn.SetWriteDeadline(time.Now().Add(d.Timeout))
}

// Reader returns an io.Reader over Conn that arms the read deadline
// before every Read.
func (d Deadliner) Reader() io.Reader {
	return deadlineReader{d}
}

type deadlineReader struct {
	d Deadliner
}

func (r deadlineReader) Read(p []byte) (int, error) {
	if err := r.d.Read(); err != nil {
		return 0, err
	}
	return r.d.Conn.Read(p)
}
