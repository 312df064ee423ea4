// Package video streams encoded frames to a single viewer.
package video

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/junsooki/tvremote/internal/capture"
	"github.com/junsooki/tvremote/internal/encoder"
	"github.com/junsooki/tvremote/internal/metrics"
	"github.com/junsooki/tvremote/internal/transport"
)

// PollInterval is how long the stream waits when no new frame is ready.
const PollInterval = 100 * time.Millisecond

// Options configures a Server.
type Options struct {
	Metrics *metrics.Host
	Logger  *slog.Logger
	// WriteTimeout bounds each frame write. Zero disables it.
	WriteTimeout time.Duration
}

// Server sends the latest captured frame to one connected viewer at a time.
type Server struct {
	source  capture.FrameSource
	enc     encoder.Encoder
	metrics *metrics.Host
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	active net.Conn
}

// NewServer creates a video server reading frames from source.
func NewServer(source capture.FrameSource, enc encoder.Encoder, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		source:  source,
		enc:     enc,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		timeout: opts.WriteTimeout,
	}
}

// Serve accepts viewers on ln until ctx is cancelled. Each viewer is
// streamed to until its connection fails, then the next one is accepted.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		s.closeActive()
	})
	defer stop()

	s.logger.Info("video listening", "addr", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "video accept")
		}
		s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	s.setActive(conn)
	defer s.setActive(nil)
	defer conn.Close()

	logger := s.logger.With("peer", conn.RemoteAddr().String())
	logger.Info("viewer connected")
	s.metrics.ViewerConnected(true)
	defer s.metrics.ViewerConnected(false)

	err := s.Stream(ctx, conn)
	switch {
	case err == nil, ctx.Err() != nil, transport.IsClosed(err):
		logger.Info("viewer disconnected")
	default:
		logger.Warn("viewer dropped", "err", err)
	}
}

// Stream writes frames to conn until ctx is done or a write fails. Frames
// that fail to encode or exceed the size limit are skipped.
func (s *Server) Stream(ctx context.Context, conn net.Conn) error {
	bw := bufio.NewWriterSize(conn, 64<<10)
	dl := transport.Deadliner{Conn: conn, Timeout: s.timeout}

	for {
		if ctx.Err() != nil {
			return nil
		}
		frame, ok := s.source.Latest()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(PollInterval):
			}
			continue
		}

		data, err := s.enc.Encode(frame.Image)
		if err != nil {
			s.metrics.FrameSkipped("encode")
			s.logger.Debug("skip frame", "err", err)
			continue
		}
		if err := dl.Write(); err != nil {
			return errors.Wrap(err, "set write deadline")
		}
		if err := transport.WriteFrame(bw, data); err != nil {
			if errors.Is(err, transport.ErrFrameSize) {
				s.metrics.FrameSkipped("size")
				s.logger.Warn("skip frame", "err", err)
				continue
			}
			return err
		}
		s.metrics.FrameSent(len(data))
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
