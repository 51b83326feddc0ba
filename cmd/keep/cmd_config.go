package main

import (
	"fmt"

	"github.com/keepvcs/keep/pkg/repo"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	var list bool
	var unset bool

	cmd := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "Read or write repository configuration",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			cfg, err := r.ReadConfig()
			if err != nil {
				return err
			}

			if list {
				if len(args) > 0 {
					return fmt.Errorf("config --list does not accept positional args")
				}
				for _, line := range cfg.List() {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			}

			if unset {
				if len(args) != 1 {
					return fmt.Errorf("config --unset takes exactly one key")
				}
				if err := cfg.Unset(args[0]); err != nil {
					return err
				}
				return r.WriteConfig(cfg)
			}

			switch len(args) {
			case 1:
				value, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			case 2:
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				return r.WriteConfig(cfg)
			}
			return fmt.Errorf("config needs a key, or --list")
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list all configuration values")
	cmd.Flags().BoolVar(&unset, "unset", false, "remove the given user key")

	return cmd
}
