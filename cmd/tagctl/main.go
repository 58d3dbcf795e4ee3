package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"media-tags/internal/config"
	"media-tags/internal/database"
	"media-tags/internal/logging"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func main() {
	defer logging.Sync()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by every subcommand of one invocation.
type app struct {
	configPath string
	output     string
	cfg        *config.Config

	// isTerminal reports whether confirmations can be prompted for.
	isTerminal func() bool
}

func newApp() *app {
	return &app{
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tagctl",
		Short: "tagctl - tag graph administration for a media library",
		Long: `tagctl maintains the tag graph of a media library and queries content by tags.

Features:
  • Idempotent tag registration with aliases
  • Tag hierarchy editing with cycle protection
  • Tag merging that preserves content associations
  • Group-based content queries (AND of groups, OR within a group, negation)
  • Tag graph export and concurrent import
  • Prometheus metrics exporter`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "Output format: text, json or yaml")

	rootCmd.AddCommand(
		a.versionCmd(),
		a.registerCmd(),
		a.tagCmd(),
		a.aliasCmd(),
		a.parentCmd(),
		a.mergeCmd(),
		a.resolveCmd(),
		a.queryCmd(),
		a.countCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.serveMetricsCmd(),
	)

	return rootCmd
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	switch a.output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := logging.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	a.cfg = cfg
	return nil
}

// withDB opens the configured database for the duration of fn.
func (a *app) withDB(fn func(cmd *cobra.Command, db *database.Database, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := database.New(cmd.Context(), a.cfg.DatabaseOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Warn("Failed to close database: %v", err)
			}
		}()
		return fn(cmd, db, args)
	}
}

// render writes v as JSON or YAML, or calls text for the plain format.
func (a *app) render(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	switch a.output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid tag id %q", s)
	}
	return id, nil
}

func printIDs(w io.Writer, ids []int64) error {
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}
