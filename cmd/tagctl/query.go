package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"media-tags/internal/database"
	"media-tags/internal/tags"
)

type countView struct {
	Count int64 `json:"count" yaml:"count"`
}

type statsView struct {
	Tags    int `json:"tags" yaml:"tags"`
	Aliases int `json:"aliases" yaml:"aliases"`
	Links   int `json:"links" yaml:"links"`
	Content int `json:"content" yaml:"content"`
}

func addGroupFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("group", "g", nil, "Tag group: comma separated labels or #ID, '!' prefix negates (repeatable)")
	cmd.Flags().String("groups-file", "", "YAML file with tag groups, applied before --group")
	cmd.Flags().String("hidden", tags.FilterHidden.String(), "Hidden content: filter, show or only")
}

// groupsFromFlags collects the groups of --groups-file followed by those of
// every --group flag.
func groupsFromFlags(cmd *cobra.Command) ([]*tags.Group, error) {
	var groups []*tags.Group

	if path, _ := cmd.Flags().GetString("groups-file"); path != "" {
		fromFile, err := loadGroupsFile(path)
		if err != nil {
			return nil, err
		}
		groups = append(groups, fromFile...)
	}

	values, _ := cmd.Flags().GetStringArray("group")
	for _, v := range values {
		groups = append(groups, parseGroupFlag(v))
	}
	return groups, nil
}

func hiddenFromFlags(cmd *cobra.Command) (tags.HiddenFilter, error) {
	value, _ := cmd.Flags().GetString("hidden")
	return tags.ParseHiddenFilter(value)
}

func (a *app) queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List content matching tag groups",
		Long: `List content matching every tag group. Content matches a group when it
carries any tag the group's references resolve to, descendants included,
or none of them for a negated group. Without groups every content row
passing the hidden filter is listed.`,
		Example: `  tagctl query -g cat -g '!sketch' --order date_desc --limit 20
  tagctl query --groups-file groups.yaml --order random -o json`,
		Args: cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, _ []string) error {
			qr, err := a.queryFromFlags(cmd)
			if err != nil {
				return err
			}
			items, err := tags.QueryContent(cmd.Context(), db, qr)
			if err != nil {
				return err
			}
			if items == nil {
				items = []database.Content{}
			}
			return a.render(cmd, items, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tADDED\tHIDDEN\tTYPE\tPATH")
				for _, c := range items {
					fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%s\n",
						c.ID, c.AdditionDate.Format(time.RFC3339), c.Hidden, c.ContentType, c.FilePath)
				}
				return tw.Flush()
			})
		}),
	}

	addGroupFlags(cmd)
	cmd.Flags().Int("limit", 0, "Maximum rows to return (default: query.default_limit, 0 for no limit)")
	cmd.Flags().Int("offset", 0, "Rows to skip; ignored without a limit")
	cmd.Flags().String("order", tags.OrderNone.String(), "Ordering: none, date_desc, date_asc or random")
	cmd.Flags().String("random", "", "Random ordering strategy: sql or client (default: query.random_strategy)")
	return cmd
}

func (a *app) queryFromFlags(cmd *cobra.Command) (tags.Query, error) {
	groups, err := groupsFromFlags(cmd)
	if err != nil {
		return tags.Query{}, err
	}
	hidden, err := hiddenFromFlags(cmd)
	if err != nil {
		return tags.Query{}, err
	}

	orderValue, _ := cmd.Flags().GetString("order")
	order, err := tags.ParseOrdering(orderValue)
	if err != nil {
		return tags.Query{}, err
	}

	random := a.cfg.RandomStrategy()
	if cmd.Flags().Changed("random") {
		value, _ := cmd.Flags().GetString("random")
		if random, err = tags.ParseRandomStrategy(value); err != nil {
			return tags.Query{}, err
		}
	}

	limit := a.cfg.Query.DefaultLimit
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}
	offset, _ := cmd.Flags().GetInt("offset")

	return tags.Query{
		Groups:  groups,
		Limit:   limit,
		Offset:  offset,
		OrderBy: order,
		Hidden:  hidden,
		Random:  random,
	}, nil
}

func (a *app) countCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count content matching tag groups",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, _ []string) error {
			groups, err := groupsFromFlags(cmd)
			if err != nil {
				return err
			}
			hidden, err := hiddenFromFlags(cmd)
			if err != nil {
				return err
			}
			n, err := tags.CountContent(cmd.Context(), db, groups, hidden)
			if err != nil {
				return err
			}
			return a.render(cmd, countView{Count: n}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, n)
				return err
			})
		}),
	}
	addGroupFlags(cmd)
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show tag graph statistics",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, _ []string) error {
			stats, err := database.Stats(cmd.Context(), db)
			if err != nil {
				return err
			}
			view := statsView{
				Tags:    stats.TotalTags,
				Aliases: stats.TotalAliases,
				Links:   stats.TotalLinks,
				Content: stats.TotalContent,
			}
			return a.render(cmd, view, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Tags:\t%d\n", view.Tags)
				fmt.Fprintf(tw, "Aliases:\t%d\n", view.Aliases)
				fmt.Fprintf(tw, "Links:\t%d\n", view.Links)
				fmt.Fprintf(tw, "Content:\t%d\n", view.Content)
				return tw.Flush()
			})
		}),
	}
}
