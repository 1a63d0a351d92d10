package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	var (
		repos []string
		topK  int
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question about indexed repositories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if topK <= 0 {
				topK = a.Config.RetrievalTopK
			}

			question := strings.Join(args, " ")
			answers := a.Answers.AnswerEach(cmd.Context(), question, repos, topK)
			for i, ans := range answers {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "\n---")
				}
				fmt.Fprintln(cmd.OutOrStdout(), ans.Answer)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&repos, "repo", "r", nil, "Repository to answer for (repeatable; inferred when omitted)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of retrieved chunks (default RETRIEVAL_TOP_K)")

	return cmd
}
