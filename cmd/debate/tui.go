package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/debate/internal/config"
	"github.com/joss/debate/internal/logging"
	"github.com/joss/debate/internal/notify"
	"github.com/joss/debate/internal/runtime"
	"github.com/joss/debate/internal/tui"
)

// tuiCmd launches the interactive TUI
func tuiCmd() *cobra.Command {
	var images string

	cmd := newCommand(CommandConfig{
		Use:    "tui",
		Short:  "Launch interactive terminal UI",
		Long:   "Browse debates, watch the countdown, argue and vote in a Bubble Tea interface.",
		Action: "tui",
		Args:   cobra.NoArgs,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			// Log lines would corrupt the screen; send them to a file.
			if err := config.EnsureDir(config.GetPaths().Home); err != nil {
				return err
			}
			logPath := config.Path("debate.log")
			f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			logging.SetOutput(f)
			defer logging.SetOutput(os.Stderr)

			mgr := runtime.NewShutdownManager(runtime.DefaultShutdownTimeout)
			mgr.RegisterSimple("log_file", func() { _ = f.Close() })

			err = tui.Run(tui.Deps{
				Context:   mgr.Context(),
				API:       cli.client,
				Sessions:  cli.sessions,
				Notices:   notify.NewCenter(),
				PageSize:  cli.env.PageSize,
				ImageRoot: images,
			})
			if serr := mgr.Shutdown(); err == nil {
				err = serr
			}
			return err
		},
	})

	cmd.Flags().StringVar(&images, "images", ".", "Directory searched by the cover image picker")
	return cmd
}
