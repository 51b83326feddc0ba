package main

import (
	"fmt"

	"github.com/keepvcs/keep/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			st, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			branch := st.Branch
			if branch == "" {
				branch = "detached HEAD"
			}
			if st.Head == "" {
				fmt.Fprintf(out, "on %s (no commits yet)\n", branch)
			} else {
				fmt.Fprintf(out, "on %s\n", branch)
			}

			if len(st.Staged) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "staged:")
				for _, p := range st.Staged {
					fmt.Fprintf(out, "  + %s\n", p)
				}
			}

			if len(st.Modified) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "modified:")
				for _, p := range st.Modified {
					fmt.Fprintf(out, "  ~ %s\n", p)
				}
			}

			if len(st.Untracked) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "untracked:")
				for _, p := range st.Untracked {
					fmt.Fprintf(out, "  ? %s\n", p)
				}
			}

			if st.Clean {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "working tree clean")
			}

			return nil
		},
	}
}
