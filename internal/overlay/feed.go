package overlay

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	feedWriteWait = 5 * time.Second
	feedQueueSize = 4
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Feed publishes overlay updates to websocket watchers. New watchers get
// the current state immediately.
type Feed struct {
	logger *slog.Logger

	mu      sync.Mutex
	current Message
	clients map[*feedClient]struct{}
	closed  bool
}

type feedClient struct {
	conn *websocket.Conn
	send chan Message
	done chan struct{}
	once sync.Once
}

// NewFeed creates a feed whose initial state is hidden.
func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		logger:  logger,
		current: Message{Type: TypeHide},
		clients: make(map[*feedClient]struct{}),
	}
}

func (f *Feed) Show(text string) {
	f.publish(Message{Type: TypeShow, Text: text})
}

func (f *Feed) Hide() {
	f.publish(Message{Type: TypeHide})
}

// Watchers returns the number of connected watchers.
func (f *Feed) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *Feed) publish(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = msg
	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
			// A watcher that cannot keep up misses intermediate states;
			// the latest one is replayed on reconnect.
			f.logger.Warn("overlay watcher queue full, dropping update")
		}
	}
}

// ServeHTTP upgrades the request and streams overlay updates.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("overlay upgrade failed", "err", err)
		return
	}

	c := &feedClient{
		conn: conn,
		send: make(chan Message, feedQueueSize),
		done: make(chan struct{}),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return
	}
	c.send <- f.current
	f.clients[c] = struct{}{}
	f.mu.Unlock()

	f.logger.Info("overlay watcher connected", "remote", r.RemoteAddr)
	go f.writeLoop(c)
	f.readLoop(c)
	f.logger.Info("overlay watcher disconnected", "remote", r.RemoteAddr)
}

// Close disconnects all watchers and refuses new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	clients := make([]*feedClient, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	f.mu.Unlock()
	for _, c := range clients {
		f.drop(c)
	}
}

func (f *Feed) drop(c *feedClient) {
	c.once.Do(func() {
		f.mu.Lock()
		delete(f.clients, c)
		f.mu.Unlock()
		close(c.done)
		c.conn.Close()
	})
}

func (f *Feed) readLoop(c *feedClient) {
	defer f.drop(c)
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Debug("overlay watcher read error", "err", err)
			}
			return
		}
		if msg.Type == TypePing {
			select {
			case c.send <- Message{Type: TypePong}:
			default:
			}
		}
	}
}

func (f *Feed) writeLoop(c *feedClient) {
	defer f.drop(c)
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
