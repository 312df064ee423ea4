package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/junsooki/tvremote/internal/capture"
	"github.com/junsooki/tvremote/internal/config"
	"github.com/junsooki/tvremote/internal/control"
	"github.com/junsooki/tvremote/internal/encoder"
	"github.com/junsooki/tvremote/internal/input"
	"github.com/junsooki/tvremote/internal/logging"
	"github.com/junsooki/tvremote/internal/metrics"
	"github.com/junsooki/tvremote/internal/overlay"
	"github.com/junsooki/tvremote/internal/permissions"
	"github.com/junsooki/tvremote/internal/session"
	"github.com/junsooki/tvremote/internal/video"
)

type frameSource interface {
	capture.FrameSource
	capture.Runner
}

func run(ctx context.Context, cfg *config.Host) error {
	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pin := cfg.PIN
	if pin == "" {
		if pin, err = session.GeneratePIN(); err != nil {
			return err
		}
	}

	source, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	injector, err := openInjector(cfg, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	feed := overlay.NewFeed(logging.For("overlay"))
	defer feed.Close()
	status := overlay.Multi{overlay.NewConsole(os.Stdout), feed}

	controlLn, err := net.Listen("tcp", cfg.ControlAddr)
	if err != nil {
		return errors.Wrap(err, "listen control")
	}
	videoLn, err := net.Listen("tcp", cfg.VideoAddr)
	if err != nil {
		controlLn.Close()
		return errors.Wrap(err, "listen video")
	}

	logger.Info("tvremote host starting",
		"version", version,
		"control", controlLn.Addr().String(),
		"video", videoLn.Addr().String(),
		"size", [2]int{cfg.Width, cfg.Height},
		"dpi", cfg.DPI,
		"quality", cfg.Quality,
		"fps", cfg.FPS,
	)

	if err := source.Start(); err != nil {
		controlLn.Close()
		videoLn.Close()
		return errors.Wrap(err, "start capture")
	}
	defer source.Stop()

	controlSrv := control.NewServer(session.NewAuthenticator(pin), injector, control.Options{
		Overlay:     status,
		Banner:      overlay.Banner(overlay.LocalIP(), pin),
		Metrics:     m,
		Logger:      logging.For("control"),
		IdleTimeout: cfg.IdleTimeout,
	})
	videoSrv := video.NewServer(source, encoder.NewJPEGEncoder(cfg.Quality, cfg.Width, cfg.Height), video.Options{
		Metrics:      m,
		Logger:       logging.For("video"),
		WriteTimeout: cfg.IdleTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return controlSrv.Serve(gctx, controlLn) })
	g.Go(func() error { return videoSrv.Serve(gctx, videoLn) })
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		g.Go(func() error { return serveHTTP(gctx, cfg.MetricsAddr, mux, logger) })
	}
	if cfg.OverlayAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/overlay", feed)
		g.Go(func() error { return serveHTTP(gctx, cfg.OverlayAddr, mux, logger) })
	}

	err = g.Wait()
	logger.Info("tvremote host stopped")
	return err
}

func openSource(cfg *config.Host, logger *slog.Logger) (frameSource, error) {
	if cfg.Source == config.SourcePattern {
		return capture.NewPattern(cfg.Width, cfg.Height, cfg.FPS)
	}
	screen, err := openScreen(cfg)
	if err == nil {
		return screen, nil
	}
	if cfg.Source == config.SourceScreen {
		return nil, err
	}
	logger.Warn("screen capture unavailable, using test pattern", "err", err)
	return capture.NewPattern(cfg.Width, cfg.Height, cfg.FPS)
}

func openScreen(cfg *config.Host) (*capture.Screen, error) {
	if err := permissions.Require(true, false); err != nil {
		return nil, err
	}
	screen, err := capture.NewScreen(cfg.Display, cfg.FPS)
	if err != nil {
		return nil, errors.Wrap(err, "open screen")
	}
	return screen, nil
}

func openInjector(cfg *config.Host, logger *slog.Logger) (input.Injector, error) {
	if cfg.Injector == config.InjectorLog {
		return input.NewLogInjector(cfg.Width, cfg.Height, logging.For("input")), nil
	}
	err := permissions.Require(false, true)
	if err == nil {
		var inj input.Injector
		if inj, err = input.Native(); err == nil {
			return inj, nil
		}
	}
	if cfg.Injector == config.InjectorNative {
		return nil, errors.Wrap(err, "open injector")
	}
	logger.Warn("native input unavailable, logging commands instead", "err", err)
	return input.NewLogInjector(cfg.Width, cfg.Height, logging.For("input")), nil
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("http listening", "addr", addr)

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "http %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
