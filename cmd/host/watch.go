package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/junsooki/tvremote/internal/overlay"
)

// watchCmd mirrors a running host's overlay in this terminal.
func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <ws://host:port/overlay>",
		Short: "Follow a host's status overlay feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			console := overlay.NewConsole(cmd.OutOrStdout())
			w := overlay.NewWatcher(args[0], overlay.Handler{
				OnShow: console.Show,
				OnHide: console.Hide,
			})
			if err := w.Connect(); err != nil {
				return err
			}
			defer w.Close()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sig)
			select {
			case <-sig:
			case <-w.Done():
			}
			return nil
		},
	}
}
