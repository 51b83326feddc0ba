package main

import (
	"fmt"

	"github.com/keepvcs/keep/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string
	var author string
	var allowEmpty bool

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record a snapshot of the working tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			h, err := r.Commit(message, repo.CommitOptions{
				Author:     author,
				AllowEmpty: allowEmpty,
			})
			if err != nil {
				return err
			}

			// Determine current branch name for output.
			branch, _, err := r.Head()
			if err != nil || branch == "" {
				branch = "HEAD"
			}

			// Short hash: first 8 characters.
			short := string(h)
			if len(short) > 8 {
				short = short[:8]
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, short, message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "override the configured identity (\"Name <email>\")")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "record a commit even when the tree matches the parent")

	return cmd
}
