package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/repolens/internal/service"
)

func indexCmd() *cobra.Command {
	var docsDir string

	cmd := &cobra.Command{
		Use:   "index <record.yaml>...",
		Short: "Index one or more repository records",
		Long: `Index repository records produced by the metadata extractor.

Each record replaces everything stored for its repository. With --docs, text
files under the directory are chunked and indexed alongside the summary; the
flag takes exactly one record, since the documents belong to one repository.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return err
			}
			if docsDir != "" && len(args) > 1 {
				return fmt.Errorf("--docs indexes documents for a single repository, got %d records", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, logger, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			var docs []service.Document
			if docsDir != "" {
				docs, err = service.CollectDocuments(docsDir)
				if err != nil {
					return err
				}
				logger.Info("collected documents", slog.String("dir", docsDir), slog.Int("count", len(docs)))
			}

			for _, path := range args {
				rec, err := service.LoadRecord(path)
				if err != nil {
					return err
				}
				stats, err := a.Indexer.Index(cmd.Context(), rec, docs)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d summary chunks, %d documents, %d chunks\n",
					stats.Repository, stats.SummaryChunks, stats.Documents, stats.TotalChunks)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&docsDir, "docs", "", "Directory of documents to index with the record (single record only)")

	return cmd
}
