package main

import (
	"fmt"

	"github.com/keepvcs/keep/pkg/repo"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "add <paths...>",
		Short: "Stage files for the next commit",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if all {
				if len(args) > 0 {
					return fmt.Errorf("add --all does not accept positional args")
				}
				return r.AddAll()
			}
			if len(args) == 0 {
				return fmt.Errorf("nothing specified; give paths or --all")
			}
			return r.Add(args...)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "A", false, "stage every tracked and untracked file, dropping deleted ones")

	return cmd
}
