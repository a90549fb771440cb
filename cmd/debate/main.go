// Package main provides the debate CLI entrypoint.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joss/debate/internal/config"
	"github.com/joss/debate/internal/logging"
)

var (
	version = "0.1.0"
	pretty  = true
	asJSON  bool
	cli     *app
)

func main() {
	defer logging.Recover("main")

	rootCmd := &cobra.Command{
		Use:   "debate",
		Short: "Terminal client for the debate platform",
		Long: `debate: browse debates, take a side, argue and vote from the terminal.

Usage modes:
  debate tui         Interactive browser with a live countdown
  debate <command>   Scripted access (see below)

Sign in once with 'debate login'; the session is kept until it expires
or you run 'debate logout'.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env := config.Env()
			logging.SetLevel(logging.ParseLevel(env.LogLevel))

			if !cmd.Flags().Changed("pretty") {
				pretty = term.IsTerminal(int(os.Stdout.Fd()))
			}
			color.NoColor = env.NoColor || !pretty

			var err error
			cli, err = newApp(env)
			if err != nil {
				exitOnError(nil, err)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cli != nil {
				cli.Close()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Pretty print output (default when stdout is a terminal)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "account", Title: "Account:"},
		&cobra.Group{ID: "debates", Title: "Debates:"},
	)

	for _, c := range []*cobra.Command{loginCmd(), logoutCmd(), whoamiCmd()} {
		c.GroupID = "account"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{debatesCmd(), joinCmd(), argueCmd(), voteCmd(), scoreboardCmd()} {
		c.GroupID = "debates"
		rootCmd.AddCommand(c)
	}

	// Ungrouped
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show debate version",
		// No session store needed.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("debate version %s\n", version)
		},
	}
}
