package transport

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/junsooki/tvremote/internal/protocol"
)

// ErrFrameSize reports a frame length outside (0, protocol.MaxFrameSize).
var ErrFrameSize = errors.New("frame length out of range")

// validFrameSize reports whether n is an acceptable encoded frame length.
func validFrameSize(n int) bool {
	return n > 0 && n < protocol.MaxFrameSize
}

// WriteFrame writes a 4-byte big-endian length followed by payload.
// Nothing is written when the payload length is out of range. If w is a
// *bufio.Writer it is flushed.
func WriteFrame(w io.Writer, payload []byte) error {
	if !validFrameSize(len(payload)) {
		return errors.Wrapf(ErrFrameSize, "write %d bytes", len(payload))
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return errors.Wrap(err, "write frame length")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "write frame payload")
	}
	if bw, ok := w.(*bufio.Writer); ok {
		if err := bw.Flush(); err != nil {
			return errors.Wrap(err, "flush frame")
		}
	}
	return nil
}

// ReadFrame reads one length-prefixed frame. A length of zero or at least
// protocol.MaxFrameSize yields ErrFrameSize before any payload is read.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n == 0 || n >= protocol.MaxFrameSize {
		return nil, errors.Wrapf(ErrFrameSize, "read length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "read frame payload")
	}
	return buf, nil
}
