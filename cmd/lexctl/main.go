// Package main provides lexctl, the administrative CLI for the lexgov
// corpus: ingestion, vector reindexing, reference re-extraction, purging,
// and statistics. All commands are idempotent and safe to re-run.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lexgov"
	"lexgov/governance"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "lexctl",
		Short:         "Administer the lexgov statutory corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			level := slog.LevelInfo
			switch strings.ToLower(logLevel) {
			case "debug":
				level = slog.LevelDebug
			case "warn":
				level = slog.LevelWarn
			case "error":
				level = slog.LevelError
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		ingestCmd(&configPath),
		reindexCmd(&configPath),
		extractRefsCmd(&configPath),
		purgeCmd(&configPath),
		statsCmd(&configPath),
	)
	return cmd
}

func openEngine(configPath string) (lexgov.Engine, error) {
	cfg := lexgov.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = lexgov.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	}
	return lexgov.New(cfg)
}

func ingestCmd(configPath *string) *cobra.Command {
	var (
		docType string
		section string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest source documents into the corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if section == "" {
				return fmt.Errorf("--section is required")
			}

			cfg := lexgov.DefaultConfig()
			if *configPath != "" {
				var err error
				cfg, err = lexgov.LoadConfig(*configPath)
				if err != nil {
					return err
				}
			}
			if workers > 0 {
				cfg.IngestWorkers = workers
			}
			eng, err := lexgov.New(cfg)
			if err != nil {
				return err
			}
			defer eng.Close()

			sources := make([]lexgov.Source, len(args))
			for i, path := range args {
				sources[i] = lexgov.Source{
					Path:    path,
					DocType: governance.DocumentType(docType),
					Section: section,
				}
			}

			if len(sources) == 1 {
				res, err := eng.Ingest(cmd.Context(), sources[0])
				if err != nil {
					return err
				}
				return printJSON(res)
			}

			report, err := eng.IngestBatch(cmd.Context(), sources)
			if err != nil {
				return err
			}
			if err := printJSON(report); err != nil {
				return err
			}
			if len(report.Failures) > 0 {
				return fmt.Errorf("%d of %d documents failed", len(report.Failures), len(sources))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&docType, "type", "act", "Document type (act, rule, circular, notification, ...)")
	cmd.Flags().StringVar(&section, "section", "", "Section number or instrument identifier")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override batch worker count")
	return cmd
}

func reindexCmd(configPath *string) *cobra.Command {
	var sections []string

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Embed and index children not yet in the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(*configPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			indexed, err := eng.ReindexSections(cmd.Context(), sections)
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d chunks\n", indexed)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&sections, "sections", nil, "Limit to these sections (default: all)")
	return cmd
}

func extractRefsCmd(configPath *string) *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "extract-refs",
		Short: "Re-run reference extraction over a section's parent chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if section == "" {
				return fmt.Errorf("--section is required")
			}

			eng, err := openEngine(*configPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			stats, err := eng.ReextractSection(cmd.Context(), section)
			if err != nil {
				return err
			}
			fmt.Printf("extracted %d references, resolved %d, created %d edges\n",
				stats.Extracted, stats.Resolved, stats.Created)
			return nil
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Section to re-extract")
	return cmd
}

func purgeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <chunk-id>",
		Short: "Remove a parent document, its children, edges, and index entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(*configPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			removed, err := eng.Purge(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("purged %s (%d chunks removed)\n", args[0], len(removed))
			return nil
		},
	}
}

func statsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print corpus and index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(*configPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			stats, err := eng.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
