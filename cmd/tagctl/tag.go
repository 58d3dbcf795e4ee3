package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"media-tags/internal/database"
	"media-tags/internal/startup"
	"media-tags/internal/tags"
)

type registerView struct {
	ID      int64  `json:"id" yaml:"id"`
	Outcome string `json:"outcome" yaml:"outcome"`
}

type tagView struct {
	tags.Tag `yaml:",inline"`
	Aliases  []string `json:"aliases" yaml:"aliases"`
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config loading so version works without a usable config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := startup.GetBuildInfo()
			return a.render(cmd, info, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "tagctl %s (%s) built %s with %s for %s/%s\n",
					info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
				return err
			})
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register TITLE",
		Short: "Register a tag, or find the existing one",
		Long: `Register a tag by title and category. Registering the same tag again
returns the existing id. A content tag defers to an existing tag of any
category owning the same alias; a character or artist tag upgrades such a
content placeholder in place.`,
		Args: cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			alias, _ := cmd.Flags().GetString("alias")

			res, err := tags.Register(cmd.Context(), db, args[0], category, alias)
			if err != nil {
				return err
			}
			view := registerView{ID: res.ID, Outcome: res.Outcome.String()}
			return a.render(cmd, view, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%d\t%s\n", view.ID, view.Outcome)
				return err
			})
		}),
	}
	cmd.Flags().String("category", tags.CategoryContent, "Tag category (content, character, artist)")
	cmd.Flags().String("alias", "", "Alias to register (default: derived from title and category)")
	return cmd
}

func (a *app) tagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Inspect and edit tags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "Show a tag and its aliases",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tag, err := tags.GetTag(cmd.Context(), db, id)
			if err != nil {
				return err
			}
			aliases, err := tags.Aliases(cmd.Context(), db, id)
			if err != nil {
				return err
			}
			view := tagView{Tag: tag, Aliases: aliases}
			return a.render(cmd, view, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "ID:\t%d\n", tag.ID)
				fmt.Fprintf(tw, "Title:\t%s\n", tag.Title)
				fmt.Fprintf(tw, "Category:\t%s\n", tag.Category)
				if tag.Parent != nil {
					fmt.Fprintf(tw, "Parent:\t%d\n", *tag.Parent)
				}
				for _, alias := range aliases {
					fmt.Fprintf(tw, "Alias:\t%s\n", alias)
				}
				return tw.Flush()
			})
		}),
	})

	setCmd := &cobra.Command{
		Use:   "set ID",
		Short: "Change a tag's title or category",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tag, err := tags.GetTag(cmd.Context(), db, id)
			if err != nil {
				return err
			}
			title, category := tag.Title, tag.Category
			if cmd.Flags().Changed("title") {
				title, _ = cmd.Flags().GetString("title")
			}
			if cmd.Flags().Changed("category") {
				category, _ = cmd.Flags().GetString("category")
			}
			return tags.SetTagProperties(cmd.Context(), db, id, title, category)
		}),
	}
	setCmd.Flags().String("title", "", "New title")
	setCmd.Flags().String("category", "", "New category")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tag, its aliases and its content links",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return tags.DeleteTag(cmd.Context(), db, id)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "categories TITLE",
		Short: "List the categories a title is registered under",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			categories, err := tags.CategoriesOf(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}
			if categories == nil {
				return fmt.Errorf("%w: %s", tags.ErrTagNotFound, args[0])
			}
			return a.render(cmd, categories, func(w io.Writer) error {
				for _, c := range categories {
					fmt.Fprintln(w, c)
				}
				return nil
			})
		}),
	})

	cmd.AddCommand(a.idListCmd("children ID", "List direct children of a tag", tags.Children))
	cmd.AddCommand(a.idListCmd("descendants ID", "List a tag and all its descendants", tags.Descendants))
	cmd.AddCommand(a.idListCmd("ancestors ID", "List the ancestors of a tag", tags.Ancestors))
	cmd.AddCommand(a.idListCmd("content ID", "List content ids linked directly to a tag", tags.ContentIDsByTag))

	return cmd
}

// idListCmd builds a command that takes one tag id and prints the ids list
// returns.
func (a *app) idListCmd(use, short string, list func(ctx context.Context, q database.Querier, id int64) ([]int64, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ids, err := list(cmd.Context(), db, id)
			if err != nil {
				return err
			}
			if ids == nil {
				ids = []int64{}
			}
			return a.render(cmd, ids, func(w io.Writer) error { return printIDs(w, ids) })
		}),
	}
}
