package overlay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Handler callbacks for overlay updates received by a Watcher.
type Handler struct {
	OnShow func(text string)
	OnHide func()
}

// Watcher follows a host's overlay feed over a websocket.
type Watcher struct {
	url     string
	handler Handler

	conn   *websocket.Conn
	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewWatcher creates a watcher for the feed at url (ws://host:port/overlay).
func NewWatcher(url string, handler Handler) *Watcher {
	return &Watcher{
		url:     url,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Connect dials the feed and starts reading updates.
func (w *Watcher) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(w.url, nil)
	if err != nil {
		return errors.Wrap(err, "overlay dial")
	}
	w.conn = conn
	go w.readLoop()
	go w.pingLoop()
	return nil
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Close shuts down the connection.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.done)
	if w.conn != nil {
		w.conn.Close()
	}
}

func (w *Watcher) send(msg Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil || w.closed {
		return errors.New("not connected")
	}
	return w.conn.WriteJSON(msg)
}

func (w *Watcher) readLoop() {
	defer w.Close()
	for {
		var msg Message
		if err := w.conn.ReadJSON(&msg); err != nil {
			return
		}
		w.dispatch(msg)
	}
}

func (w *Watcher) dispatch(msg Message) {
	switch msg.Type {
	case TypeShow:
		if w.handler.OnShow != nil {
			w.handler.OnShow(msg.Text)
		}
	case TypeHide:
		if w.handler.OnHide != nil {
			w.handler.OnHide()
		}
	case TypePong:
		// heartbeat response, nothing to do
	}
}

func (w *Watcher) pingLoop() {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			_ = w.send(Message{Type: TypePing})
		}
	}
}
