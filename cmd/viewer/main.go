// Command tvremote-viewer shows a tvremote host's screen and sends input
// back to it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/junsooki/tvremote/internal/config"
	"github.com/junsooki/tvremote/internal/decoder"
	"github.com/junsooki/tvremote/internal/display"
	"github.com/junsooki/tvremote/internal/logging"
	"github.com/junsooki/tvremote/internal/viewer"
)

var version = "dev"

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "tvremote-viewer --host <addr> --pin <pin>",
		Short:         "View and control a tvremote host",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			cfg, err := config.LoadViewer(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: tvremote.yaml in ., ~/.tvremote, /etc/tvremote)")
	config.AddViewerFlags(root.Flags())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

// run must stay on the main goroutine; the window owns it.
func run(ctx context.Context, cfg *config.Viewer) error {
	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := viewer.New(cfg.ControlAddr(), cfg.VideoAddr(), cfg.PIN, viewer.Options{
		Decoder:     decoder.NewJPEGDecoder(),
		Logger:      logging.For("viewer"),
		DialTimeout: cfg.DialTimeout,
	})
	in := display.NewInput(client, logging.For("display"))
	win := display.NewWindow("tvremote "+cfg.Host, cfg.WindowWidth, cfg.WindowHeight, in, client)

	go func() {
		if err := client.Dial(ctx); err != nil {
			win.Stop(err)
			return
		}
		win.Stop(client.Run(ctx, win))
	}()
	go func() {
		<-ctx.Done()
		win.Stop(nil)
	}()

	logger.Info("tvremote viewer starting", "version", version, "host", cfg.Host)
	err = win.Run()
	cancel()
	client.Close()
	return err
}
