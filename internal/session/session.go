// Package session implements PIN authentication for the control channel.
//
// A Session is created per accepted control connection and is owned by the
// goroutine serving it. At most one Session is authenticated at a time; the
// Slot enforces that across connections.
package session

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/junsooki/tvremote/internal/protocol"
	"github.com/junsooki/tvremote/internal/transport"
)

var (
	// ErrWrongPIN is returned when the credential does not match.
	ErrWrongPIN = errors.New("wrong pin")
	// ErrSessionBusy is returned when another session is authenticated.
	ErrSessionBusy = errors.New("another session is authenticated")
)

// Verdict is the outcome of a handshake.
type Verdict int

const (
	Disconnected Verdict = iota
	OK
	WrongPIN
)

func (v Verdict) String() string {
	switch v {
	case OK:
		return "ok"
	case WrongPIN:
		return "wrong_pin"
	default:
		return "disconnected"
	}
}

// GeneratePIN returns a uniformly random four digit PIN in [1000, 9999].
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", errors.Wrap(err, "generate pin")
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}

// Session tracks one control connection.
type Session struct {
	ID            uuid.UUID
	Peer          string
	Authenticated bool
	Started       time.Time
}

// New creates an unauthenticated session for peer.
func New(peer string) *Session {
	return &Session{
		ID:      uuid.New(),
		Peer:    peer,
		Started: time.Now(),
	}
}

// Slot holds the single authenticated session.
type Slot struct {
	mu     sync.Mutex
	holder *Session
}

// Acquire marks s as the authenticated session.
func (sl *Slot) Acquire(s *Session) error {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.holder != nil && sl.holder != s {
		return ErrSessionBusy
	}
	sl.holder = s
	s.Authenticated = true
	return nil
}

// Release frees the slot if s holds it.
func (sl *Slot) Release(s *Session) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.holder == s {
		sl.holder = nil
	}
}

// Holder returns the authenticated session, if any.
func (sl *Slot) Holder() *Session {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.holder
}

// Authenticator checks credentials against the process PIN. The PIN is
// fixed at construction and safe for concurrent reads.
type Authenticator struct {
	pin      string
	expected []byte
	slot     Slot
}

// NewAuthenticator creates an authenticator for pin.
func NewAuthenticator(pin string) *Authenticator {
	return &Authenticator{
		pin:      pin,
		expected: []byte(protocol.AuthLine(pin)),
	}
}

// PIN returns the configured PIN.
func (a *Authenticator) PIN() string {
	return a.pin
}

// Check compares a trimmed AUTH line with the expected credential.
func (a *Authenticator) Check(line string) bool {
	got := []byte(strings.TrimSpace(line))
	return subtle.ConstantTimeCompare(got, a.expected) == 1
}

// Authenticate decides the verdict for the first line of s and, on a match,
// claims the authenticated slot. It reports ErrSessionBusy if another
// session holds the slot.
func (a *Authenticator) Authenticate(s *Session, line string) (Verdict, error) {
	if !a.Check(line) {
		return WrongPIN, nil
	}
	if err := a.slot.Acquire(s); err != nil {
		return WrongPIN, err
	}
	return OK, nil
}

// Handshake reads the first line from r, decides the verdict and writes the
// reply to w. End of stream before any line yields Disconnected with no
// reply. The overlay and connection teardown are left to the caller.
func (a *Authenticator) Handshake(s *Session, r *transport.LineReader, w io.Writer) (Verdict, error) {
	line, err := r.ReadLine()
	if err != nil {
		if transport.IsClosed(err) {
			return Disconnected, nil
		}
		return Disconnected, errors.Wrap(err, "read auth line")
	}

	verdict, authErr := a.Authenticate(s, line)
	reply := protocol.ReplyOK
	if verdict != OK {
		reply = protocol.ReplyWrongPIN
	}
	if err := transport.WriteLine(w, reply); err != nil {
		if verdict == OK {
			a.End(s)
		}
		return Disconnected, errors.Wrap(err, "write auth reply")
	}
	if verdict != OK && authErr == nil {
		authErr = ErrWrongPIN
	}
	return verdict, authErr
}

// End releases the slot held by s and marks it unauthenticated.
func (a *Authenticator) End(s *Session) {
	a.slot.Release(s)
	s.Authenticated = false
}

// Active returns the currently authenticated session, if any.
func (a *Authenticator) Active() *Session {
	return a.slot.Holder()
}
