package protocol

// Default ports for the two host listeners.
const (
	ControlPort = 8888
	VideoPort   = 8889
)

// Control channel handshake tokens.
const (
	AuthPrefix    = "AUTH:"
	ReplyOK       = "OK"
	ReplyWrongPIN = "WRONG_PIN"
)

// MaxFrameSize is the exclusive upper bound on an encoded frame length.
// Anything at or above it is treated as a corrupt length prefix.
const MaxFrameSize = 5_000_000

// AuthLine returns the first line a viewer sends on the control channel.
func AuthLine(pin string) string {
	return AuthPrefix + pin
}
