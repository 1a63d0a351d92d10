package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/repolens/internal/service"
)

func reposCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List indexed repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			names, err := a.Answers.Repositories(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), service.NoRepositoriesMessage)
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export repository summaries as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, logger, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			n, err := service.ExportCSV(cmd.Context(), a.Store, w)
			if err != nil {
				return err
			}
			logger.Info("exported summaries", "rows", n, "file", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Write CSV to this file instead of stdout")

	return cmd
}
