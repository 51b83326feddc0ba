package main

import (
	"fmt"

	"github.com/keepvcs/keep/pkg/merkle"
	"github.com/keepvcs/keep/pkg/object"
	"github.com/keepvcs/keep/pkg/repo"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [from] [to]",
		Short: "Show path-level changes between snapshots",
		Long: `Show path-level changes between two snapshots.

With no arguments, compares HEAD against the working tree. With one
argument, compares that commit (or tag, or branch) against the working
tree. With two arguments, compares the two named snapshots.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			var from, to string
			if len(args) > 0 {
				from = args[0]
			}
			if len(args) > 1 {
				to = args[1]
			}

			changes, err := r.Diff(from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, ch := range changes {
				switch ch.Type {
				case merkle.Added:
					fmt.Fprintf(out, "A  %s  %s\n", ch.Path, shortHash(ch.NewHash))
				case merkle.Removed:
					fmt.Fprintf(out, "D  %s  %s\n", ch.Path, shortHash(ch.OldHash))
				case merkle.Modified:
					fmt.Fprintf(out, "M  %s  %s -> %s\n", ch.Path, shortHash(ch.OldHash), shortHash(ch.NewHash))
				}
			}
			return nil
		},
	}
}

func shortHash(h object.Hash) string {
	s := string(h)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
