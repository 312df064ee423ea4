package overlay

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Console prints the overlay to a terminal, green as on the device.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	shown string
	pen   *color.Color
	faint *color.Color
}

// NewConsole writes to out, or stdout when out is nil.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{
		out:   out,
		pen:   color.New(color.FgGreen, color.Bold),
		faint: color.New(color.Faint),
	}
}

func (c *Console) Show(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if text == c.shown {
		return
	}
	c.shown = text
	for _, line := range strings.Split(text, "\n") {
		c.pen.Fprintln(c.out, "  "+line)
	}
}

func (c *Console) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shown == "" {
		return
	}
	c.shown = ""
	c.faint.Fprintln(c.out, "  viewer connected, PIN hidden")
}
