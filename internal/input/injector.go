package input

import (
	"log/slog"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by an injector that cannot perform an action.
var ErrUnsupported = errors.New("action not supported")

// Injector injects resolved actions into the host system.
type Injector interface {
	// ScreenSize returns the current display size used to resolve
	// fractional coordinates.
	ScreenSize() (width, height int)
	Perform(a Action) error
}

// LogInjector records actions instead of injecting them. It reports a
// fixed virtual screen size.
type LogInjector struct {
	width  int
	height int
	logger *slog.Logger
}

// NewLogInjector creates a LogInjector for a width x height screen.
func NewLogInjector(width, height int, logger *slog.Logger) *LogInjector {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogInjector{width: width, height: height, logger: logger}
}

func (l *LogInjector) ScreenSize() (int, int) {
	return l.width, l.height
}

func (l *LogInjector) Perform(a Action) error {
	l.logger.Info("inject", "action", a.String())
	return nil
}
