package main

import (
	"github.com/spf13/cobra"

	"github.com/joss/debate/internal/logging"
)

// CommandFunc defines the function signature for command execution.
type CommandFunc func(cmd *cobra.Command, args []string) error

// CommandConfig holds configuration for creating standardized commands.
type CommandConfig struct {
	Use     string
	Short   string
	Long    string
	Args    cobra.PositionalArgs
	Action  string
	RunFunc CommandFunc
	Example string
	Aliases []string
}

var opLog = logging.New("command")

// newCommand creates a cobra command whose run is tracked as an operation
// and whose error ends the process through exitOnError.
func newCommand(cfg CommandConfig) *cobra.Command {
	return &cobra.Command{
		Use:     cfg.Use,
		Short:   cfg.Short,
		Long:    cfg.Long,
		Args:    cfg.Args,
		Example: cfg.Example,
		Aliases: cfg.Aliases,
		Run: func(cmd *cobra.Command, args []string) {
			op := opLog.Start(cfg.Action)

			if err := cfg.RunFunc(cmd, args); err != nil {
				exitOnError(op, err)
				return
			}

			op.Success()
		},
	}
}
