package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"media-tags/internal/database"
	"media-tags/internal/tags"
)

type mergeView struct {
	Loser            int64 `json:"loser" yaml:"loser"`
	Winner           int64 `json:"winner" yaml:"winner"`
	Relinked         int   `json:"relinked" yaml:"relinked"`
	Dropped          int   `json:"dropped" yaml:"dropped"`
	AliasesMoved     int   `json:"aliasesMoved" yaml:"aliases_moved"`
	OrphanedChildren int   `json:"orphanedChildren" yaml:"orphaned_children"`
}

func (a *app) parentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parent",
		Short: "Edit the tag hierarchy",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set CHILD_ID PARENT_ID",
		Short: "Make PARENT_ID the parent of CHILD_ID",
		Long:  "Make PARENT_ID the parent of CHILD_ID. Links that would close a cycle are rejected.",
		Args:  cobra.ExactArgs(2),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			child, err := parseID(args[0])
			if err != nil {
				return err
			}
			parent, err := parseID(args[1])
			if err != nil {
				return err
			}
			return tags.SetParent(cmd.Context(), db, child, parent)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear CHILD_ID",
		Short: "Make a tag a root",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			child, err := parseID(args[0])
			if err != nil {
				return err
			}
			return tags.ClearParent(cmd.Context(), db, child)
		}),
	})

	return cmd
}

func (a *app) mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge LOSER_ID WINNER_ID",
		Short: "Fold one tag into another",
		Long: `Fold LOSER_ID into WINNER_ID: content and aliases of the loser move to the
winner, children of the loser become roots and the loser is deleted.
The merge cannot be undone. Without --yes the merge is confirmed
interactively, and refused when stdin is not a terminal.`,
		Args: cobra.ExactArgs(2),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			loser, err := parseID(args[0])
			if err != nil {
				return err
			}
			winner, err := parseID(args[1])
			if err != nil {
				return err
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				ok, err := a.confirm(cmd, loser, winner)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "Merge cancelled")
					return nil
				}
			}

			report, err := tags.Merge(cmd.Context(), db, loser, winner)
			if err != nil {
				return err
			}
			view := mergeView{
				Loser:            loser,
				Winner:           winner,
				Relinked:         report.Relinked,
				Dropped:          report.Dropped,
				AliasesMoved:     report.AliasesMoved,
				OrphanedChildren: report.OrphanedChildren,
			}
			return a.render(cmd, view, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Merged %d into %d: %d relinked, %d dropped, %d aliases moved, %d children orphaned\n",
					loser, winner, report.Relinked, report.Dropped, report.AliasesMoved, report.OrphanedChildren)
				return err
			})
		}),
	}
	cmd.Flags().BoolP("yes", "y", false, "Merge without asking for confirmation")
	return cmd
}

// confirm asks on the terminal whether loser should be merged into winner.
func (a *app) confirm(cmd *cobra.Command, loser, winner int64) (bool, error) {
	if !a.isTerminal() {
		return false, fmt.Errorf("refusing to merge %d into %d without --yes: stdin is not a terminal", loser, winner)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Merge tag %d into tag %d? This cannot be undone. [y/N]: ", loser, winner)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (a *app) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve REFERENCE...",
		Short: "Expand references to tag ids",
		Long: `Expand references to the set of tag ids they stand for, descendants
included. A reference is a label matched against titles and aliases, or
#ID for a tag id.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			g := &tags.Group{}
			for _, arg := range args {
				g.References = append(g.References, parseReference(arg))
			}
			ids, err := tags.ResolveGroup(cmd.Context(), db, g)
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
