package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/keepvcs/keep/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var bare bool
	var initialBranch string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty keep repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			// Ensure the target directory exists.
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			r, err := repo.Init(abs, repo.InitOptions{
				Bare:          bare,
				InitialBranch: initialBranch,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty keep repository in %s\n", r.MetaDir+string(filepath.Separator))
			return nil
		},
	}

	cmd.Flags().BoolVar(&bare, "bare", false, "mark the repository as bare in its config")
	cmd.Flags().StringVar(&initialBranch, "initial-branch", "", "name of the initial branch (default: main)")

	return cmd
}
