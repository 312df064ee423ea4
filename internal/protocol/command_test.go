package protocol

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"BACK", Back()},
		{"back", Back()},
		{"  Home \r", Home()},
		{"VOL_UP", VolumeUp()},
		{"VOL_DOWN", VolumeDown()},
		{"CLICK_AT:0.5,0.5", ClickAt(0.5, 0.5)},
		{"CLICK_AT: 0 , 1 ", ClickAt(0, 1)},
		{"SWIPE:0.1,0.5,0.9,0.5", Swipe(0.1, 0.5, 0.9, 0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	lines := []string{
		"CLICK_AT:abc,def",
		"CLICK_AT:0.5",
		"CLICK_AT:0.5,0.5,0.5",
		"CLICK_AT:",
		"CLICK_AT:1.5,0.5",
		"CLICK_AT:-0.1,0.5",
		"CLICK_AT:NaN,0.5",
		"SWIPE:0.1,0.2,0.3",
		"SWIPE:0.1,0.2,0.3,x",
		"SWIPE:0.1,0.2,0.3,Inf",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, err := Parse(line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestParseUnknown(t *testing.T) {
	// Volume and prefixed commands are case-sensitive.
	for _, line := range []string{"", "vol_up", "Vol_Down", "click_at:0.5,0.5", "MENU", "AUTH:1234"} {
		_, err := Parse(line)
		assert.True(t, errors.Is(err, ErrUnknownCommand), "line %q: got %v", line, err)
	}
}

func TestCommandStringRoundTrip(t *testing.T) {
	assert.Equal(t, "CLICK_AT:0.5,0.5", ClickAt(0.5, 0.5).String())
	assert.Equal(t, "SWIPE:0.1,0.25,0.9,1", Swipe(0.1, 0.25, 0.9, 1).String())
	assert.Equal(t, "HOME", Home().String())

	cmd := Swipe(0.123456789, 0.2, 0.3, 0.4)
	got, err := Parse(cmd.String())
	require.NoError(t, err)
	assert.Equal(t, cmd, got)
}

func TestAuthLine(t *testing.T) {
	assert.Equal(t, "AUTH:4821", AuthLine("4821"))
}
