// Package viewer is the client side of the control and video channels.
package viewer

import (
	"bufio"
	"context"
	"image"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/junsooki/tvremote/internal/decoder"
	"github.com/junsooki/tvremote/internal/protocol"
	"github.com/junsooki/tvremote/internal/transport"
)

var (
	ErrWrongPIN        = errors.New("host rejected pin")
	ErrUnexpectedReply = errors.New("unexpected auth reply")
	ErrNotConnected    = errors.New("not connected")
	// ErrControlClosed ends a session when the host drops the control channel.
	ErrControlClosed = errors.New("control channel closed")
)

// FrameSink receives decoded frames. Each frame is freshly allocated.
type FrameSink interface {
	SetFrame(img *image.RGBA)
}

// Options configures a Client.
type Options struct {
	Decoder     decoder.Decoder
	Logger      *slog.Logger
	DialTimeout time.Duration
}

// Client connects to one host.
type Client struct {
	controlAddr string
	videoAddr   string
	pin         string
	dec         decoder.Decoder
	logger      *slog.Logger
	dialer      net.Dialer
	timeout     time.Duration

	mu    sync.Mutex
	conn  net.Conn
	bw    *bufio.Writer
	lines *transport.LineReader
}

// New creates a client for the given control and video addresses.
func New(controlAddr, videoAddr, pin string, opts Options) *Client {
	if opts.Decoder == nil {
		opts.Decoder = decoder.NewJPEGDecoder()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		controlAddr: controlAddr,
		videoAddr:   videoAddr,
		pin:         pin,
		dec:         opts.Decoder,
		logger:      opts.Logger,
		dialer:      net.Dialer{Timeout: opts.DialTimeout},
		timeout:     opts.DialTimeout,
	}
}

// Dial opens the control channel and authenticates. On success the client
// is connected and Send may be used.
func (c *Client) Dial(ctx context.Context) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.controlAddr)
	if err != nil {
		return errors.Wrapf(err, "dial control %s", c.controlAddr)
	}
	if c.timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			conn.Close()
			return errors.Wrap(err, "set auth deadline")
		}
	}

	if err := transport.WriteLine(conn, protocol.AuthLine(c.pin)); err != nil {
		conn.Close()
		return errors.Wrap(err, "send auth")
	}
	lines := transport.NewLineReader(conn)
	reply, err := lines.ReadLine()
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "read auth reply")
	}

	switch strings.TrimSpace(reply) {
	case protocol.ReplyOK:
	case protocol.ReplyWrongPIN:
		conn.Close()
		return ErrWrongPIN
	default:
		conn.Close()
		return errors.Wrapf(ErrUnexpectedReply, "%q", reply)
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return errors.Wrap(err, "clear auth deadline")
	}

	c.mu.Lock()
	c.conn = conn
	c.bw = bufio.NewWriter(conn)
	c.lines = lines
	c.mu.Unlock()
	c.logger.Info("authenticated", "host", c.controlAddr)
	return nil
}

// Connected reports whether the control channel is authenticated and open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Send writes cmd as one control line. It is safe for concurrent use.
func (c *Client) Send(cmd protocol.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	if err := transport.WriteLine(c.bw, cmd.String()); err != nil {
		return errors.Wrapf(err, "send %s", cmd.Kind)
	}
	return nil
}

// Close drops the control channel.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.bw, c.lines = nil, nil, nil
	return err
}

// Receive reads frames from r and hands each decoded image to sink until
// the stream ends or ctx is done. A bad length prefix aborts with
// ErrFrameSize. Frames that fail to decode are skipped.
func (c *Client) Receive(ctx context.Context, r io.Reader, sink FrameSink) error {
	for {
		payload, err := transport.ReadFrame(r)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		img, err := c.dec.Decode(payload)
		if err != nil {
			c.logger.Debug("skip frame", "err", err)
			continue
		}
		sink.SetFrame(img)
	}
}

// Run streams video into sink and watches the control channel until ctx is
// done or the host drops the control channel. Dial must have succeeded.
// Losing the video channel is logged but does not end the session.
func (c *Client) Run(ctx context.Context, sink FrameSink) error {
	c.mu.Lock()
	conn, lines := c.conn, c.lines
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	defer c.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stop := context.AfterFunc(gctx, func() { conn.Close() })
		defer stop()
		for {
			if _, err := lines.ReadLine(); err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return errors.Wrap(ErrControlClosed, err.Error())
			}
		}
	})
	g.Go(func() error {
		c.runVideo(gctx, sink)
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Client) runVideo(ctx context.Context, sink FrameSink) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.videoAddr)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("dial video", "addr", c.videoAddr, "err", err)
		}
		return
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	c.logger.Info("video connected", "host", c.videoAddr)
	if err := c.Receive(ctx, conn, sink); err != nil {
		c.logger.Warn("video stream ended", "err", err)
		return
	}
	c.logger.Info("video stream ended")
}
