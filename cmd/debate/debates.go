package main

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/joss/debate/internal/countdown"
	"github.com/joss/debate/internal/detail"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/listing"
	"github.com/joss/debate/internal/runtime"
)

func debatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "debates",
		Aliases: []string{"d"},
		Short:   "Browse and create debates",
	}
	cmd.AddCommand(
		debatesListCmd(),
		debatesTagsCmd(),
		debatesCategoriesCmd(),
		debatesShowCmd(),
		debatesWatchCmd(),
		debatesCreateCmd(),
	)
	return cmd
}

func debatesListCmd() *cobra.Command {
	var (
		q       listing.Query
		sortKey string
		limit   int
		page    int
	)

	cmd := newCommand(CommandConfig{
		Use:    "list",
		Short:  "List debates with filters, sorting and paging",
		Action: "debates.list",
		Args:   cobra.NoArgs,
		Example: `  debate debates list --tag climate --sort ending-soon
  debate debates list --title cars --limit 3 --page 2`,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return domain.Invalid("limit", "must be positive")
			}
			if page <= 0 {
				return domain.Invalid("page", "must be positive")
			}
			key, err := listing.ParseSortKey(sortKey)
			if err != nil {
				return domain.Invalid("sort", fmt.Sprintf("%q must be newest, ending-soon, most-voted or none", sortKey))
			}
			q.Sort = key
			q.PageSize = limit
			q.PageIndex = page - 1

			debates, err := cli.client.ListDebates(cmd.Context())
			if err != nil {
				return err
			}
			result := listing.Derive(debates, q)
			if asJSON {
				return printJSON(result.Items)
			}
			cli.out.Raw(cli.render.Debates(result))
			return nil
		},
	})

	cmd.Flags().StringVar(&q.Title, "title", "", "Case-insensitive title search")
	cmd.Flags().StringVar(&q.Tag, "tag", "", "Only debates with this tag")
	cmd.Flags().StringVar(&q.Category, "category", "", "Only debates in this category")
	cmd.Flags().StringVar(&sortKey, "sort", string(listing.DefaultSort), "Sort by newest, ending-soon, most-voted or none")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Debates per page (default from DEBATE_PAGE_SIZE)")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number, starting at 1")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("limit") {
			limit = cli.env.PageSize
		}
	}
	return cmd
}

func debatesTagsCmd() *cobra.Command {
	return newCommand(CommandConfig{
		Use:    "tags",
		Short:  "List the tags in use",
		Action: "debates.tags",
		Args:   cobra.NoArgs,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			debates, err := cli.client.ListDebates(cmd.Context())
			if err != nil {
				return err
			}
			tags := listing.Tags(debates)
			if asJSON {
				return printJSON(tags)
			}
			cli.out.Raw(cli.render.List("Tags", tags))
			return nil
		},
	})
}

func debatesCategoriesCmd() *cobra.Command {
	return newCommand(CommandConfig{
		Use:    "categories",
		Short:  "List the categories in use",
		Action: "debates.categories",
		Args:   cobra.NoArgs,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			debates, err := cli.client.ListDebates(cmd.Context())
			if err != nil {
				return err
			}
			categories := listing.Categories(debates)
			if asJSON {
				return printJSON(categories)
			}
			cli.out.Raw(cli.render.List("Categories", categories))
			return nil
		},
	})
}

func debatesShowCmd() *cobra.Command {
	var all bool

	cmd := newCommand(CommandConfig{
		Use:    "show <debateId>",
		Short:  "Show a debate with its arguments and result",
		Action: "debates.show",
		Args:   cobra.ExactArgs(1),
		RunFunc: func(cmd *cobra.Command, args []string) error {
			ctrl, err := openDebate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v := ctrl.View()
			if asJSON {
				return printJSON(v)
			}
			shown := ctrl.Showing()
			if all {
				shown = v.Total()
			}
			cli.out.Raw(cli.render.Debate(v, shown))
			return nil
		},
	})

	cmd.Flags().BoolVarP(&all, "all", "a", false, fmt.Sprintf("Show every argument instead of the first %d per side", detail.InitialVisible))
	return cmd
}

func debatesWatchCmd() *cobra.Command {
	return newCommand(CommandConfig{
		Use:    "watch <debateId>",
		Short:  "Show the time left until a debate closes, live",
		Action: "debates.watch",
		Args:   cobra.ExactArgs(1),
		RunFunc: func(cmd *cobra.Command, args []string) error {
			ctrl, err := openDebate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v := ctrl.View()
			cli.out.Raw(cli.render.Debate(v, ctrl.Showing()))
			if v.Closed {
				return nil
			}

			mgr := runtime.NewShutdownManager(runtime.DefaultShutdownTimeout)
			stop := mgr.ListenForSignals()
			defer stop()

			cli.out.Line()
			ticker := countdown.Start(mgr.Context(), v.Debate.EndsAt, func(t countdown.Tick) {
				if pretty {
					cli.out.Print("\r\033[K⏱ %s", t.Text)
				} else {
					cli.out.Println("%s", t.Text)
				}
			})
			mgr.RegisterSimple("countdown", ticker.Stop)

			select {
			case <-ticker.Done():
			case <-mgr.Context().Done():
			}
			if pretty {
				cli.out.Line()
			}
			if err := mgr.Shutdown(); err != nil {
				return err
			}

			// The countdown ran out: show the final result.
			if ctrl.View().Closed {
				if err := ctrl.Load(cmd.Context()); err != nil {
					return err
				}
				cli.out.Println("%s", cli.render.Result(ctrl.View()))
			}
			return nil
		},
	})
}

func debatesCreateCmd() *cobra.Command {
	var (
		n     domain.NewDebate
		tags  string
		image string
	)

	cmd := newCommand(CommandConfig{
		Use:    "create",
		Short:  "Create a debate",
		Action: "debates.create",
		Args:   cobra.NoArgs,
		Example: `  debate debates create --title "Ban cars downtown?" --description "..." \
    --category Urban --duration 48 --tags cities,climate --image "covers/*.png"`,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			n.Tags = domain.ParseTags(tags)
			if image != "" {
				path, err := resolveImage(image)
				if err != nil {
					return err
				}
				n.ImagePath = path
			}
			if err := n.Validate(); err != nil {
				return err
			}

			token, err := cli.token(cmd.Context())
			if err != nil {
				return err
			}
			d, err := cli.client.CreateDebate(cmd.Context(), token, n)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(d)
			}
			cli.out.Println("Debate created successfully! (%s)", d.ID)
			return nil
		},
	})

	cmd.Flags().StringVar(&n.Title, "title", "", "Debate title")
	cmd.Flags().StringVar(&n.Description, "description", "", "What the debate is about")
	cmd.Flags().StringVar(&n.Category, "category", "", "Category")
	cmd.Flags().Float64Var(&n.Duration, "duration", 0, "Duration in hours")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated tags")
	cmd.Flags().StringVar(&image, "image", "", "Cover image path or glob matching exactly one file")
	return cmd
}

// resolveImage expands pattern to exactly one file.
func resolveImage(pattern string) (string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", domain.Invalid("image", err.Error())
	}
	switch len(matches) {
	case 0:
		return "", domain.Invalid("image", fmt.Sprintf("no file matches %q", pattern))
	case 1:
		return matches[0], nil
	}
	return "", domain.Invalid("image", fmt.Sprintf("%q matches %d files: %s", pattern, len(matches), strings.Join(matches, ", ")))
}
