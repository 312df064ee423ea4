package transport

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// MaxLineSize bounds a single control line, terminator included.
const MaxLineSize = 4096

// ErrLineTooLong reports a control line longer than MaxLineSize. The rest
// of that line has been discarded and reading may continue.
var ErrLineTooLong = errors.New("line too long")

// LineReader reads newline-terminated lines. A trailing "\r" is dropped.
type LineReader struct {
	br *bufio.Reader
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{br: bufio.NewReaderSize(r, MaxLineSize)}
}

// ReadLine returns the next line without its terminator. It returns io.EOF
// once the stream has ended. A final unterminated line is still returned.
// An oversize line is skipped up to its newline and reported as
// ErrLineTooLong; the following line is read normally.
func (lr *LineReader) ReadLine() (string, error) {
	b, err := lr.br.ReadSlice('\n')
	switch {
	case err == nil:
		return trimLine(b), nil
	case errors.Is(err, bufio.ErrBufferFull):
		return "", lr.discard()
	case errors.Is(err, io.EOF) && len(b) > 0:
		return trimLine(b), nil
	default:
		return "", err
	}
}

func (lr *LineReader) discard() error {
	for {
		_, err := lr.br.ReadSlice('\n')
		switch {
		case err == nil, errors.Is(err, io.EOF):
			return ErrLineTooLong
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return err
		}
	}
}

func trimLine(b []byte) string {
	s := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(s, "\r")
}

// WriteLine writes s followed by "\n", flushing w if it is a *bufio.Writer.
func WriteLine(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s+"\n"); err != nil {
		return err
	}
	if bw, ok := w.(*bufio.Writer); ok {
		return bw.Flush()
	}
	return nil
}
