package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Host holds the host-side counters. A nil *Host is valid and records
// nothing, so components can run without metrics.
type Host struct {
	registry *prometheus.Registry

	framesSent     prometheus.Counter
	frameBytes     prometheus.Counter
	framesSkipped  *prometheus.CounterVec
	videoViewers   prometheus.Gauge
	authAttempts   *prometheus.CounterVec
	commands       *prometheus.CounterVec
	badCommands    prometheus.Counter
	injectFailures prometheus.Counter
	sessions       prometheus.Gauge
}

// New creates a Host with its own registry.
func New() *Host {
	m := &Host{
		registry: prometheus.NewRegistry(),
		framesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tvremote_video_frames_sent_total",
			Help: "Encoded frames written to the video channel",
		}),
		frameBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tvremote_video_frame_bytes_total",
			Help: "Encoded frame payload bytes written to the video channel",
		}),
		framesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tvremote_video_frames_skipped_total",
			Help: "Frames not sent, by reason",
		}, []string{"reason"}),
		videoViewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tvremote_video_viewers",
			Help: "Connected video viewers (0 or 1)",
		}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tvremote_control_auth_total",
			Help: "Control channel authentication outcomes",
		}, []string{"verdict"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tvremote_control_commands_total",
			Help: "Dispatched control commands, by kind",
		}, []string{"kind"}),
		badCommands: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tvremote_control_bad_lines_total",
			Help: "Control lines discarded as malformed or unknown",
		}),
		injectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tvremote_control_inject_failures_total",
			Help: "Commands the injector failed to perform",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tvremote_control_sessions",
			Help: "Authenticated control sessions (0 or 1)",
		}),
	}
	m.registry.MustRegister(
		m.framesSent, m.frameBytes, m.framesSkipped, m.videoViewers,
		m.authAttempts, m.commands, m.badCommands, m.injectFailures, m.sessions,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Host) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler.
func (m *Host) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Host) FrameSent(n int) {
	if m == nil {
		return
	}
	m.framesSent.Inc()
	m.frameBytes.Add(float64(n))
}

// FrameSkipped counts a frame dropped for reason (encode, size).
func (m *Host) FrameSkipped(reason string) {
	if m == nil {
		return
	}
	m.framesSkipped.WithLabelValues(reason).Inc()
}

func (m *Host) ViewerConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.videoViewers.Inc()
	} else {
		m.videoViewers.Dec()
	}
}

func (m *Host) Auth(verdict string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(verdict).Inc()
}

func (m *Host) Command(kind string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(kind).Inc()
}

func (m *Host) BadCommand() {
	if m == nil {
		return
	}
	m.badCommands.Inc()
}

func (m *Host) InjectFailed() {
	if m == nil {
		return
	}
	m.injectFailures.Inc()
}

func (m *Host) SessionActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.sessions.Inc()
	} else {
		m.sessions.Dec()
	}
}
