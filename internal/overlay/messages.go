package overlay

// Overlay feed message types.
const (
	TypeShow = "show"
	TypeHide = "hide"
	TypePing = "ping"
	TypePong = "pong"
)

// Message is the JSON envelope sent to overlay watchers.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
