package protocol

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies a control command. The value is the wire keyword.
type Kind string

const (
	KindBack       Kind = "BACK"
	KindHome       Kind = "HOME"
	KindVolumeUp   Kind = "VOL_UP"
	KindVolumeDown Kind = "VOL_DOWN"
	KindClickAt    Kind = "CLICK_AT"
	KindSwipe      Kind = "SWIPE"
)

var (
	// ErrMalformed reports a recognised command with a bad parameter list.
	ErrMalformed = errors.New("malformed command")
	// ErrUnknownCommand reports a line that names no known command.
	ErrUnknownCommand = errors.New("unknown command")
)

// Command is one parsed control line. Coordinates are fractions of the
// host display in [0,1]; ClickAt uses X1/Y1 only.
type Command struct {
	Kind Kind
	X1   float64
	Y1   float64
	X2   float64
	Y2   float64
}

// Back returns a BACK command.
func Back() Command { return Command{Kind: KindBack} }

// Home returns a HOME command.
func Home() Command { return Command{Kind: KindHome} }

// VolumeUp returns a VOL_UP command.
func VolumeUp() Command { return Command{Kind: KindVolumeUp} }

// VolumeDown returns a VOL_DOWN command.
func VolumeDown() Command { return Command{Kind: KindVolumeDown} }

// ClickAt returns a tap at the fractional position (x, y).
func ClickAt(x, y float64) Command {
	return Command{Kind: KindClickAt, X1: x, Y1: y}
}

// Swipe returns a swipe from (x1, y1) to (x2, y2), all fractional.
func Swipe(x1, y1, x2, y2 float64) Command {
	return Command{Kind: KindSwipe, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Parse converts one control line into a Command.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)

	switch {
	case strings.EqualFold(line, string(KindBack)):
		return Back(), nil
	case strings.EqualFold(line, string(KindHome)):
		return Home(), nil
	case line == string(KindVolumeUp):
		return VolumeUp(), nil
	case line == string(KindVolumeDown):
		return VolumeDown(), nil
	}

	if args, ok := strings.CutPrefix(line, string(KindClickAt)+":"); ok {
		v, err := parseFractions(args, 2)
		if err != nil {
			return Command{}, errors.Wrapf(err, "%s %q", KindClickAt, args)
		}
		return ClickAt(v[0], v[1]), nil
	}
	if args, ok := strings.CutPrefix(line, string(KindSwipe)+":"); ok {
		v, err := parseFractions(args, 4)
		if err != nil {
			return Command{}, errors.Wrapf(err, "%s %q", KindSwipe, args)
		}
		return Swipe(v[0], v[1], v[2], v[3]), nil
	}

	return Command{}, errors.Wrapf(ErrUnknownCommand, "%q", line)
}

func parseFractions(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.Wrapf(ErrMalformed, "want %d values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "value %d: %v", i, err)
		}
		if math.IsNaN(f) || f < 0 || f > 1 {
			return nil, errors.Wrapf(ErrMalformed, "value %d out of range: %v", i, f)
		}
		out[i] = f
	}
	return out, nil
}

// String renders the command as a control line without the newline.
func (c Command) String() string {
	switch c.Kind {
	case KindClickAt:
		return string(c.Kind) + ":" + formatFloat(c.X1) + "," + formatFloat(c.Y1)
	case KindSwipe:
		return string(c.Kind) + ":" + formatFloat(c.X1) + "," + formatFloat(c.Y1) + "," +
			formatFloat(c.X2) + "," + formatFloat(c.Y2)
	default:
		return string(c.Kind)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
