// Package control serves the authenticated command channel.
package control

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/junsooki/tvremote/internal/input"
	"github.com/junsooki/tvremote/internal/metrics"
	"github.com/junsooki/tvremote/internal/overlay"
	"github.com/junsooki/tvremote/internal/session"
	"github.com/junsooki/tvremote/internal/transport"
)

// Options configures a Server. Zero values are usable.
type Options struct {
	Overlay overlay.StatusOverlay
	// Banner is shown while no viewer is authenticated.
	Banner  string
	Metrics *metrics.Host
	Logger  *slog.Logger
	// IdleTimeout closes a connection with no input for this long. Zero
	// disables it.
	IdleTimeout time.Duration
}

// Server accepts control connections one at a time.
type Server struct {
	auth       *session.Authenticator
	dispatcher *Dispatcher
	overlay    overlay.StatusOverlay
	banner     string
	metrics    *metrics.Host
	logger     *slog.Logger
	idle       time.Duration

	mu     sync.Mutex
	active net.Conn
}

// NewServer creates a control server.
func NewServer(auth *session.Authenticator, injector input.Injector, opts Options) *Server {
	if opts.Overlay == nil {
		opts.Overlay = overlay.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		auth:       auth,
		dispatcher: NewDispatcher(injector, opts.Metrics, opts.Logger),
		overlay:    opts.Overlay,
		banner:     opts.Banner,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		idle:       opts.IdleTimeout,
	}
}

// Serve accepts connections on ln until ctx is cancelled, handling each to
// completion before accepting the next. Cancelling ctx closes ln and the
// active connection. It returns nil on cancellation.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.overlay.Show(s.banner)

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		s.closeActive()
	})
	defer stop()

	s.logger.Info("control listening", "addr", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "control accept")
		}
		s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	s.setActive(conn)
	defer s.setActive(nil)
	defer conn.Close()
	if ctx.Err() != nil {
		return
	}

	sess := session.New(conn.RemoteAddr().String())
	logger := s.logger.With("session", sess.ID.String(), "peer", sess.Peer)
	dl := transport.Deadliner{Conn: conn, Timeout: s.idle}
	lines := transport.NewLineReader(dl.Reader())

	verdict, err := s.auth.Handshake(sess, lines, conn)
	s.metrics.Auth(verdict.String())
	switch verdict {
	case session.Disconnected:
		if err != nil {
			logger.Warn("handshake failed", "err", err)
		} else {
			logger.Debug("disconnected before auth")
		}
		return
	case session.WrongPIN:
		logger.Warn("auth rejected", "err", err)
		return
	}

	logger.Info("viewer authenticated")
	s.overlay.Hide()
	s.metrics.SessionActive(true)
	defer func() {
		s.auth.End(sess)
		s.metrics.SessionActive(false)
		s.overlay.Show(s.banner)
		logger.Info("session ended", "duration", time.Since(sess.Started).Round(time.Millisecond))
	}()

	if err := s.dispatcher.Run(ctx, lines); err != nil {
		switch {
		case ctx.Err() != nil, transport.IsClosed(err):
		case transport.IsTimeout(err):
			logger.Info("idle timeout")
		default:
			logger.Warn("control read", "err", err)
		}
	}
}

func (s *Server) setActive(c net.Conn) {
	s.mu.Lock()
	s.active = c
	s.mu.Unlock()
}

func (s *Server) closeActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.active.Close()
	}
}
