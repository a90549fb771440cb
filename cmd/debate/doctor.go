package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/debate/internal/render"
	"github.com/joss/debate/internal/selftest"
)

func doctorCmd() *cobra.Command {
	return newCommand(CommandConfig{
		Use:    "doctor",
		Short:  "Check API reachability and the local session",
		Action: "doctor",
		Args:   cobra.NoArgs,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			status := selftest.CheckHealth(cmd.Context(), cli.env.HTTPTimeout,
				selftest.APICheck(cli.client),
				selftest.StoreCheck(cli.local),
				selftest.SessionCheck(cli.sessions),
			)

			if asJSON {
				if err := printJSON(status); err != nil {
					return err
				}
			} else {
				printHealth(status)
			}

			if !status.Healthy() {
				cli.Close()
				os.Exit(1)
			}
			return nil
		},
	})
}

func printHealth(status *selftest.HealthStatus) {
	w := cli.out
	w.Header("debate doctor (%s)", cli.env.APIURL)
	for _, name := range status.Names() {
		c := status.Components[name]
		icon := render.LevelIcon(c.Status)
		if c.Error != "" {
			w.Item("%s %-14s %4dms  %s", icon, name, c.Latency, c.Error)
			continue
		}
		w.Item("%s %-14s %4dms", icon, name, c.Latency)
	}
	w.Line()
	w.Println("Status: %s", status.Status)
}
