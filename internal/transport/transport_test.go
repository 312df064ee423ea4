package transport

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/tvremote/internal/protocol"
)

func TestWriteFramePrefixMatchesLength(t *testing.T) {
	var buf bytes.Buffer
	frames := [][]byte{{0xFF}, bytes.Repeat([]byte{0xAB}, 300), bytes.Repeat([]byte{1}, 70000)}
	for _, f := range frames {
		require.NoError(t, WriteFrame(&buf, f))
	}

	r := bytes.NewReader(buf.Bytes())
	for _, want := range frames {
		var header [4]byte
		_, err := io.ReadFull(r, header[:])
		require.NoError(t, err)
		assert.Equal(t, uint32(len(want)), binary.BigEndian.Uint32(header[:]))

		got := make([]byte, len(want))
		_, err = io.ReadFull(r, got)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Zero(t, r.Len())
}

func TestWriteFrameRejectsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, nil)
	assert.True(t, errors.Is(err, ErrFrameSize))

	err = WriteFrame(&buf, make([]byte, protocol.MaxFrameSize))
	assert.True(t, errors.Is(err, ErrFrameSize))
	assert.Zero(t, buf.Len(), "nothing may be written for a rejected frame")
}

func TestWriteFrameFlushesBufferedWriter(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	require.NoError(t, WriteFrame(bw, []byte("jpeg")))
	assert.Equal(t, 8, buf.Len())
}

func TestReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFrameWriter(&buf).SendFrame([]byte("hello")))
	require.NoError(t, WriteFrame(&buf, []byte("world!")))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	got, err = ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, "world!", string(got))

	_, err = ReadFrame(&buf)
	assert.Equal(t, io.EOF, err)
}

// countingReader records how many bytes were consumed.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestReadFrameRejectsBadPrefixWithoutReadingPayload(t *testing.T) {
	for _, n := range []uint32{0, protocol.MaxFrameSize, protocol.MaxFrameSize + 1, 0xFFFFFFFF} {
		var header [4]byte
		binary.BigEndian.PutUint32(header[:], n)
		cr := &countingReader{r: io.MultiReader(bytes.NewReader(header[:]), strings.NewReader("payload"))}

		_, err := ReadFrame(cr)
		assert.True(t, errors.Is(err, ErrFrameSize), "length %d", n)
		assert.Equal(t, 4, cr.n, "length %d: only the prefix may be consumed", n)
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], 10)
	_, err := ReadFrame(io.MultiReader(bytes.NewReader(header[:]), strings.NewReader("abc")))
	require.Error(t, err)
	assert.True(t, IsClosed(err))
}

func TestLineReader(t *testing.T) {
	lr := NewLineReader(strings.NewReader("AUTH:1234\r\nBACK\n\nlast"))
	for _, want := range []string{"AUTH:1234", "BACK", "", "last"} {
		got, err := lr.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := lr.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestLineReaderTooLong(t *testing.T) {
	in := strings.Repeat("x", 3*MaxLineSize) + "\nHOME\n" + strings.Repeat("y", MaxLineSize+1)
	lr := NewLineReader(strings.NewReader(in))

	_, err := lr.ReadLine()
	assert.Equal(t, ErrLineTooLong, err)

	line, err := lr.ReadLine()
	require.NoError(t, err, "reading resumes after the oversize line")
	assert.Equal(t, "HOME", line)

	_, err = lr.ReadLine()
	assert.Equal(t, ErrLineTooLong, err, "unterminated oversize tail")
	_, err = lr.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestLineReaderAtLimit(t *testing.T) {
	long := strings.Repeat("z", MaxLineSize-1)
	lr := NewLineReader(strings.NewReader(long + "\n"))
	line, err := lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, long, line)
}

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	require.NoError(t, WriteLine(bw, "OK"))
	assert.Equal(t, "OK\n", buf.String())
}

func TestIsClosed(t *testing.T) {
	assert.False(t, IsClosed(nil))
	assert.True(t, IsClosed(io.EOF))
	assert.True(t, IsClosed(errors.Wrap(io.ErrUnexpectedEOF, "read")))
	assert.True(t, IsClosed(net.ErrClosed))
	assert.False(t, IsClosed(ErrFrameSize))

	a, b := net.Pipe()
	b.Close()
	_, err := a.Write([]byte("x"))
	assert.True(t, IsClosed(err))
	a.Close()
}

func TestDeadlinerReader(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	r := Deadliner{Conn: a, Timeout: 50 * time.Millisecond}.Reader()
	go b.Write([]byte("HOME\n"))
	line, err := NewLineReader(r).ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "HOME", line)

	_, err = r.Read(make([]byte, 1))
	assert.True(t, IsTimeout(err), "got %v", err)
	assert.False(t, IsClosed(err))
}

func TestDeadlinerDisabled(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	d := Deadliner{Conn: a}
	require.NoError(t, d.Read())
	require.NoError(t, d.Write())
}
