package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joss/debate/internal/domain"
)

func joinCmd() *cobra.Command {
	var side string

	cmd := newCommand(CommandConfig{
		Use:     "join <debateId>",
		Short:   "Join one side of a debate",
		Action:  "join",
		Args:    cobra.ExactArgs(1),
		Example: "  debate join 665f1c --side oppose",
		RunFunc: func(cmd *cobra.Command, args []string) error {
			s, err := domain.ParseSide(side)
			if err != nil {
				return domain.Invalid("side", fmt.Sprintf("%q must be support or oppose", side))
			}
			ctrl, err := openDebate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return ctrl.Join(cmd.Context(), s)
		},
	})

	cmd.Flags().StringVarP(&side, "side", "s", "", "support or oppose")
	_ = cmd.MarkFlagRequired("side")
	return cmd
}

func argueCmd() *cobra.Command {
	var side, content string

	cmd := newCommand(CommandConfig{
		Use:     "argue <debateId>",
		Short:   "Post an argument to one side of a debate",
		Action:  "argue",
		Args:    cobra.ExactArgs(1),
		Example: `  debate argue 665f1c --side support --content "Cleaner air downtown"`,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			s, err := domain.ParseSide(side)
			if err != nil {
				return domain.Invalid("side", fmt.Sprintf("%q must be support or oppose", side))
			}
			if strings.TrimSpace(content) == "" {
				return domain.Invalid("content", "is required")
			}
			ctrl, err := openDebate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return ctrl.PostArgument(cmd.Context(), s, content)
		},
	})

	cmd.Flags().StringVarP(&side, "side", "s", "", "support or oppose")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Argument text")
	_ = cmd.MarkFlagRequired("side")

	cmd.AddCommand(argueEditCmd(), argueDeleteCmd())
	return cmd
}

func argueEditCmd() *cobra.Command {
	var content string

	cmd := newCommand(CommandConfig{
		Use:    "edit <argumentId>",
		Short:  "Replace the text of one of your arguments",
		Action: "argue.edit",
		Args:   cobra.ExactArgs(1),
		RunFunc: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(content) == "" {
				return domain.Invalid("content", "is required")
			}
			token, err := cli.token(cmd.Context())
			if err != nil {
				return err
			}
			if err := cli.client.UpdateArgument(cmd.Context(), token, args[0], content); err != nil {
				return err
			}
			cli.out.Println("Argument updated")
			return nil
		},
	})

	cmd.Flags().StringVarP(&content, "content", "c", "", "New argument text")
	return cmd
}

func argueDeleteCmd() *cobra.Command {
	return newCommand(CommandConfig{
		Use:     "delete <argumentId>",
		Aliases: []string{"rm"},
		Short:   "Delete one of your arguments",
		Action:  "argue.delete",
		Args:    cobra.ExactArgs(1),
		RunFunc: func(cmd *cobra.Command, args []string) error {
			token, err := cli.token(cmd.Context())
			if err != nil {
				return err
			}
			if err := cli.client.DeleteArgument(cmd.Context(), token, args[0]); err != nil {
				return err
			}
			cli.out.Println("Argument deleted")
			return nil
		},
	})
}

func voteCmd() *cobra.Command {
	return newCommand(CommandConfig{
		Use:     "vote <debateId> <argumentId>",
		Short:   "Vote for an argument",
		Long:    "Vote for an argument. Votes are rejected once the debate has closed, and a second vote on the same argument is refused.",
		Action:  "vote",
		Args:    cobra.ExactArgs(2),
		Example: "  debate vote 665f1c 665f2a",
		RunFunc: func(cmd *cobra.Command, args []string) error {
			ctrl, err := openDebate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := ctrl.Vote(cmd.Context(), args[1]); err != nil {
				return err
			}
			cli.out.Println("Vote recorded")
			return nil
		},
	})
}

func scoreboardCmd() *cobra.Command {
	var filter string

	cmd := newCommand(CommandConfig{
		Use:     "scoreboard",
		Aliases: []string{"scores"},
		Short:   "Show the top debaters",
		Action:  "scoreboard",
		Args:    cobra.NoArgs,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			window, err := domain.ParseScoreWindow(filter)
			if err != nil {
				return domain.Invalid("filter", fmt.Sprintf("%q must be weekly, monthly or all", filter))
			}
			token, err := cli.token(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := cli.client.Scoreboard(cmd.Context(), token, window)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(entries)
			}
			cli.out.Raw(cli.render.Scoreboard(entries, window))
			return nil
		},
	})

	cmd.Flags().StringVarP(&filter, "filter", "f", string(domain.ScoreWeekly), "weekly, monthly or all")
	return cmd
}
