package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/junsooki/tvremote/internal/encoder"
	"github.com/junsooki/tvremote/internal/protocol"
)

// EnvPrefix prefixes every environment override, e.g. TVREMOTE_PIN.
const EnvPrefix = "TVREMOTE"

// Host holds configuration for the host binary.
type Host struct {
	ControlAddr string
	VideoAddr   string
	Width       int
	Height      int
	DPI         int
	Quality     int
	FPS         int
	Display     int
	Source      string
	Injector    string
	PIN         string
	IdleTimeout time.Duration
	MetricsAddr string
	OverlayAddr string
	LogLevel    string
	LogFormat   string
}

// Viewer holds configuration for the viewer binary.
type Viewer struct {
	Host         string
	PIN          string
	ControlPort  int
	VideoPort    int
	WindowWidth  int
	WindowHeight int
	DialTimeout  time.Duration
	LogLevel     string
	LogFormat    string
}

// Source and injector selectors.
const (
	SourceAuto    = "auto"
	SourceScreen  = "screen"
	SourcePattern = "pattern"

	InjectorAuto   = "auto"
	InjectorNative = "native"
	InjectorLog    = "log"
)

// AddHostFlags registers host flags with their defaults.
func AddHostFlags(fs *pflag.FlagSet) {
	fs.String("control-addr", fmt.Sprintf(":%d", protocol.ControlPort), "Control channel listen address")
	fs.String("video-addr", fmt.Sprintf(":%d", protocol.VideoPort), "Video channel listen address")
	fs.Int("width", encoder.DefaultWidth, "Stream frame width")
	fs.Int("height", encoder.DefaultHeight, "Stream frame height")
	fs.Int("dpi", 240, "Stream density, reported to viewers in logs only")
	fs.Int("quality", encoder.DefaultQuality, "JPEG quality (1-100)")
	fs.Int("fps", 15, "Capture frames per second")
	fs.Int("display", 0, "Display index to capture (0 = primary)")
	fs.String("source", SourceAuto, "Frame source: auto, screen or pattern")
	fs.String("injector", InjectorAuto, "Input injector: auto, native or log")
	fs.String("pin", "", "Fixed PIN (4-8 digits); random 4 digits if empty")
	fs.Duration("idle-timeout", 0, "Close connections idle for this long (0 = never)")
	fs.String("metrics-addr", "", "Prometheus metrics listen address (empty = disabled)")
	fs.String("overlay-addr", "", "Overlay websocket feed listen address (empty = disabled)")
	addLogFlags(fs)
}

// AddViewerFlags registers viewer flags with their defaults.
func AddViewerFlags(fs *pflag.FlagSet) {
	fs.String("host", "", "Host address to connect to (required)")
	fs.String("pin", "", "PIN shown on the host (required)")
	fs.Int("control-port", protocol.ControlPort, "Host control port")
	fs.Int("video-port", protocol.VideoPort, "Host video port")
	fs.Int("window-width", encoder.DefaultWidth, "Initial window width")
	fs.Int("window-height", encoder.DefaultHeight, "Initial window height")
	fs.Duration("dial-timeout", 5*time.Second, "Connection timeout")
	addLogFlags(fs)
}

func addLogFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-format", "text", "Log format: text or json")
}

// NewViper layers flags over TVREMOTE_* environment variables over an
// optional YAML file. configFile overrides the search path. A missing
// config file is not an error.
func NewViper(fs *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", configFile)
		}
		return v, nil
	}

	v.SetConfigName("tvremote")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".tvremote"))
	}
	v.AddConfigPath("/etc/tvremote")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}
	return v, nil
}

// LoadHost reads and validates the host configuration.
func LoadHost(v *viper.Viper) (*Host, error) {
	cfg := &Host{
		ControlAddr: v.GetString("control-addr"),
		VideoAddr:   v.GetString("video-addr"),
		Width:       v.GetInt("width"),
		Height:      v.GetInt("height"),
		DPI:         v.GetInt("dpi"),
		Quality:     v.GetInt("quality"),
		FPS:         v.GetInt("fps"),
		Display:     v.GetInt("display"),
		Source:      v.GetString("source"),
		Injector:    v.GetString("injector"),
		PIN:         v.GetString("pin"),
		IdleTimeout: v.GetDuration("idle-timeout"),
		MetricsAddr: v.GetString("metrics-addr"),
		OverlayAddr: v.GetString("overlay-addr"),
		LogLevel:    v.GetString("log-level"),
		LogFormat:   v.GetString("log-format"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadViewer reads and validates the viewer configuration.
func LoadViewer(v *viper.Viper) (*Viewer, error) {
	cfg := &Viewer{
		Host:         v.GetString("host"),
		PIN:          v.GetString("pin"),
		ControlPort:  v.GetInt("control-port"),
		VideoPort:    v.GetInt("video-port"),
		WindowWidth:  v.GetInt("window-width"),
		WindowHeight: v.GetInt("window-height"),
		DialTimeout:  v.GetDuration("dial-timeout"),
		LogLevel:     v.GetString("log-level"),
		LogFormat:    v.GetString("log-format"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Host) Validate() error {
	switch {
	case c.ControlAddr == "" || c.VideoAddr == "":
		return errors.New("control and video addresses are required")
	case c.ControlAddr == c.VideoAddr:
		return errors.New("control and video addresses must differ")
	case c.Width <= 0 || c.Height <= 0:
		return errors.Errorf("invalid frame size %dx%d", c.Width, c.Height)
	case c.Quality < 1 || c.Quality > 100:
		return errors.Errorf("quality must be 1-100, got %d", c.Quality)
	case c.FPS < 1 || c.FPS > 60:
		return errors.Errorf("fps must be 1-60, got %d", c.FPS)
	case c.Display < 0:
		return errors.Errorf("invalid display index %d", c.Display)
	case c.IdleTimeout < 0:
		return errors.New("idle timeout must not be negative")
	}
	if err := ValidPIN(c.PIN, true); err != nil {
		return err
	}
	if !oneOf(c.Source, SourceAuto, SourceScreen, SourcePattern) {
		return errors.Errorf("unknown source %q", c.Source)
	}
	if !oneOf(c.Injector, InjectorAuto, InjectorNative, InjectorLog) {
		return errors.Errorf("unknown injector %q", c.Injector)
	}
	return nil
}

// Validate checks required fields and port ranges.
func (c *Viewer) Validate() error {
	switch {
	case c.Host == "":
		return errors.New("host is required")
	case c.ControlPort < 1 || c.ControlPort > 65535:
		return errors.Errorf("invalid control port %d", c.ControlPort)
	case c.VideoPort < 1 || c.VideoPort > 65535:
		return errors.Errorf("invalid video port %d", c.VideoPort)
	case c.WindowWidth <= 0 || c.WindowHeight <= 0:
		return errors.Errorf("invalid window size %dx%d", c.WindowWidth, c.WindowHeight)
	}
	return ValidPIN(c.PIN, false)
}

// ValidPIN accepts 4 to 8 decimal digits. An empty PIN passes only when
// allowEmpty is set.
func ValidPIN(pin string, allowEmpty bool) error {
	if pin == "" {
		if allowEmpty {
			return nil
		}
		return errors.New("pin is required")
	}
	if len(pin) < 4 || len(pin) > 8 {
		return errors.Errorf("pin must be 4-8 digits, got %d characters", len(pin))
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return errors.New("pin must contain digits only")
		}
	}
	return nil
}

// ControlAddr returns host:port for the viewer's control connection.
func (c *Viewer) ControlAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.ControlPort))
}

// VideoAddr returns host:port for the viewer's video connection.
func (c *Viewer) VideoAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.VideoPort))
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
