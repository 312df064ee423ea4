package control

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/junsooki/tvremote/internal/input"
	"github.com/junsooki/tvremote/internal/metrics"
	"github.com/junsooki/tvremote/internal/protocol"
	"github.com/junsooki/tvremote/internal/transport"
)

// Dispatcher turns control lines into injected actions.
type Dispatcher struct {
	injector input.Injector
	metrics  *metrics.Host
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher writing to injector. m may be nil.
func NewDispatcher(injector input.Injector, m *metrics.Host, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{injector: injector, metrics: m, logger: logger}
}

// Dispatch parses line and performs it. Each valid line results in exactly
// one injector call. Coordinates are resolved against the screen size at
// the time of the call.
func (d *Dispatcher) Dispatch(line string) error {
	cmd, err := protocol.Parse(line)
	if err != nil {
		d.metrics.BadCommand()
		return err
	}

	w, h := d.injector.ScreenSize()
	action := input.Resolve(cmd, w, h)
	if err := d.injector.Perform(action); err != nil {
		d.metrics.InjectFailed()
		return errors.Wrapf(err, "perform %s", action)
	}
	d.metrics.Command(string(cmd.Kind))
	d.logger.Debug("dispatched", "action", action.String())
	return nil
}

// Run dispatches lines from r until the stream ends or ctx is done. Bad
// lines and failed injections are logged and skipped. A clean end of
// stream returns nil.
func (d *Dispatcher) Run(ctx context.Context, r *transport.LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := r.ReadLine()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil
			case errors.Is(err, transport.ErrLineTooLong):
				d.metrics.BadCommand()
				d.logger.Warn("skip command", "err", err)
				continue
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := d.Dispatch(line); err != nil {
			d.logger.Warn("skip command", "line", line, "err", err)
		}
	}
}
