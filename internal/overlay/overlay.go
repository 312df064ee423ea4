package overlay

import (
	"fmt"
	"net"
	"sync"
)

// StatusOverlay is the host-side status display showing the address and
// PIN while no viewer is authenticated.
type StatusOverlay interface {
	Show(text string)
	Hide()
}

// Banner formats the overlay text for addr and pin.
func Banner(addr, pin string) string {
	return fmt.Sprintf("IP: %s\nPIN: %s", addr, pin)
}

// Nop discards overlay updates.
type Nop struct{}

func (Nop) Show(string) {}
func (Nop) Hide()       {}

// Multi forwards every update to each overlay in order.
type Multi []StatusOverlay

func (m Multi) Show(text string) {
	for _, o := range m {
		o.Show(text)
	}
}

func (m Multi) Hide() {
	for _, o := range m {
		o.Hide()
	}
}

// Recorder remembers the last state. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	text    string
	visible bool
	shows   int
	hides   int
}

func (r *Recorder) Show(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text, r.visible = text, true
	r.shows++
}

func (r *Recorder) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = false
	r.hides++
}

// State returns the current text, visibility and update counts.
func (r *Recorder) State() (text string, visible bool, shows, hides int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text, r.visible, r.shows, r.hides
}

// LocalIP returns the first non-loopback IPv4 address of this machine, or
// "127.0.0.1" when none is found.
func LocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "127.0.0.1"
}
