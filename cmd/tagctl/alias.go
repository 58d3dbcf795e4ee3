package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"media-tags/internal/database"
	"media-tags/internal/tags"
)

func (a *app) aliasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage tag aliases",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add TAG_ID ALIAS",
		Short: "Add an alias to a tag",
		Args:  cobra.ExactArgs(2),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return tags.AddAlias(cmd.Context(), db, id, args[1])
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete TAG_ID ALIAS",
		Short: "Remove an alias from a tag",
		Args:  cobra.ExactArgs(2),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return tags.DeleteAlias(cmd.Context(), db, id, args[1])
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list TAG_ID",
		Short: "List the aliases of a tag",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			aliases, err := tags.Aliases(cmd.Context(), db, id)
			if err != nil {
				return err
			}
			if aliases == nil {
				aliases = []string{}
			}
			return a.render(cmd, aliases, func(w io.Writer) error {
				for _, alias := range aliases {
					fmt.Fprintln(w, alias)
				}
				return nil
			})
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search PATTERN",
		Short: "Search aliases; '*' matches any run of characters",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			found, err := tags.SearchAliases(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}
			if found == nil {
				found = []tags.Alias{}
			}
			return a.render(cmd, found, func(w io.Writer) error {
				for _, alias := range found {
					fmt.Fprintf(w, "%d\t%s\n", alias.TagID, alias.Title)
				}
				return nil
			})
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup ALIAS",
		Short: "Print the id of the tag owning an alias",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			id, found, err := tags.TagIDByAlias(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: alias %q", tags.ErrTagNotFound, args[0])
			}
			return a.render(cmd, id, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, id)
				return err
			})
		}),
	})

	return cmd
}
