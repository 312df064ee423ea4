package session

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/tvremote/internal/transport"
)

func TestGeneratePIN(t *testing.T) {
	for i := 0; i < 200; i++ {
		pin, err := GeneratePIN()
		require.NoError(t, err)
		require.Len(t, pin, 4)
		n, err := strconv.Atoi(pin)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "ok", OK.String())
	assert.Equal(t, "wrong_pin", WrongPIN.String())
	assert.Equal(t, "disconnected", Disconnected.String())
}

func TestCheck(t *testing.T) {
	a := NewAuthenticator("4821")
	assert.True(t, a.Check("AUTH:4821"))
	assert.True(t, a.Check("  AUTH:4821\r"))
	assert.False(t, a.Check("AUTH:1234"))
	assert.False(t, a.Check("auth:4821"))
	assert.False(t, a.Check("AUTH:48210"))
	assert.False(t, a.Check(""))
}

func handshake(t *testing.T, a *Authenticator, s *Session, in string) (Verdict, string, error) {
	t.Helper()
	var out bytes.Buffer
	v, err := a.Handshake(s, transport.NewLineReader(strings.NewReader(in)), &out)
	return v, out.String(), err
}

func TestHandshakeOK(t *testing.T) {
	a := NewAuthenticator("4821")
	s := New("peer")
	v, reply, err := handshake(t, a, s, "AUTH:4821\nBACK\n")
	require.NoError(t, err)
	assert.Equal(t, OK, v)
	assert.Equal(t, "OK\n", reply)
	assert.True(t, s.Authenticated)
	assert.Same(t, s, a.Active())

	a.End(s)
	assert.False(t, s.Authenticated)
	assert.Nil(t, a.Active())
}

func TestHandshakeWrongPIN(t *testing.T) {
	a := NewAuthenticator("4821")
	s := New("peer")
	v, reply, err := handshake(t, a, s, "AUTH:1111\n")
	assert.True(t, errors.Is(err, ErrWrongPIN))
	assert.Equal(t, WrongPIN, v)
	assert.Equal(t, "WRONG_PIN\n", reply)
	assert.False(t, s.Authenticated)
	assert.Nil(t, a.Active())
}

func TestHandshakeDisconnected(t *testing.T) {
	a := NewAuthenticator("4821")
	v, reply, err := handshake(t, a, New("peer"), "")
	require.NoError(t, err)
	assert.Equal(t, Disconnected, v)
	assert.Empty(t, reply)
}

func TestHandshakeBusy(t *testing.T) {
	a := NewAuthenticator("4821")
	first := New("one")
	v, _, err := handshake(t, a, first, "AUTH:4821\n")
	require.NoError(t, err)
	require.Equal(t, OK, v)

	second := New("two")
	v, reply, err := handshake(t, a, second, "AUTH:4821\n")
	assert.True(t, errors.Is(err, ErrSessionBusy))
	assert.Equal(t, WrongPIN, v)
	assert.Equal(t, "WRONG_PIN\n", reply)

	a.End(first)
	v, _, err = handshake(t, a, second, "AUTH:4821\n")
	require.NoError(t, err)
	assert.Equal(t, OK, v)
}

func TestSessionIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, New("a").ID, New("a").ID)
}
