package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilHostIsSafe(t *testing.T) {
	var m *Host
	m.FrameSent(10)
	m.FrameSkipped("encode")
	m.ViewerConnected(true)
	m.Auth("ok")
	m.Command("BACK")
	m.BadCommand()
	m.InjectFailed()
	m.SessionActive(true)
}

func TestCounters(t *testing.T) {
	m := New()
	m.FrameSent(100)
	m.FrameSent(50)
	m.FrameSkipped("encode")
	m.Auth("ok")
	m.Auth("wrong_pin")
	m.Auth("wrong_pin")
	m.Command("CLICK_AT")
	m.SessionActive(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesSent))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.frameBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesSkipped.WithLabelValues("encode")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("wrong_pin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("CLICK_AT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))

	m.SessionActive(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessions))
}

func TestHandler(t *testing.T) {
	m := New()
	m.FrameSent(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tvremote_video_frames_sent_total 1")
}
