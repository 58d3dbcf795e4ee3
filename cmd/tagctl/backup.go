package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"media-tags/internal/backup"
	"media-tags/internal/database"
)

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the tag graph as YAML tag documents",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, _ []string) error {
			dump, err := backup.Export(cmd.Context(), db)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return backup.WriteYAML(cmd.OutOrStdout(), dump)
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			if err := backup.WriteYAML(f, dump); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tags to %s\n", len(dump.Tags), path)
			return nil
		}),
	}
	cmd.Flags().StringP("file", "f", "", "Output file (default: stdout)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Register the tags of a YAML export",
		Long: `Register every tag document of FILE ("-" for stdin), add its aliases and
link parents. Tags that already exist are reused, so an import can be
repeated.`,
		Args: cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.Database, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}

			dump, err := backup.ReadYAML(r)
			if err != nil {
				return err
			}

			config := backup.DefaultImporterConfig()
			if cmd.Flags().Changed("workers") {
				config.NumWorkers, _ = cmd.Flags().GetInt("workers")
			}

			report, importErr := backup.NewImporter(db, config).Import(cmd.Context(), dump)
			if err := a.render(cmd, report, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Registered %d, existing %d, aliases added %d, parents linked %d, failed %d\n",
					report.Registered, report.Existing, report.AliasesAdded, report.ParentsLinked, report.Failed)
				return err
			}); err != nil {
				return err
			}
			return importErr
		}),
	}
	cmd.Flags().Int("workers", 0, "Concurrent registrars (default: 2 per CPU, at most 8)")
	return cmd
}
