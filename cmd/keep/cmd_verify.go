package main

import (
	"fmt"

	"github.com/keepvcs/keep/pkg/repo"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify object integrity and report unreachable objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			report, err := r.Fsck()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, h := range report.Integrity.Corrupt {
				fmt.Fprintf(out, "corrupt: %s\n", h)
			}
			for _, h := range report.Dangling {
				fmt.Fprintf(out, "dangling: %s\n", h)
			}

			if len(report.Integrity.Corrupt) > 0 {
				return fmt.Errorf("verify: %d corrupt object(s)", len(report.Integrity.Corrupt))
			}

			fmt.Fprintf(
				out,
				"ok: verified %d object(s), %d dangling, %d compressed byte(s) on disk\n",
				report.Integrity.Checked,
				len(report.Dangling),
				report.Stats.CompressedBytes,
			)
			return nil
		},
	}
}
