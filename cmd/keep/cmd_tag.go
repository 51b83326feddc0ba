package main

import (
	"fmt"
	"sort"

	"github.com/keepvcs/keep/pkg/repo"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var message string
	var force bool
	var del bool
	var showHash bool
	var sign bool
	var verify bool
	var signingKey string

	cmd := &cobra.Command{
		Use:   "tag [name] [target]",
		Short: "List, create, delete, or verify annotated tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if del {
				if len(args) != 1 {
					return fmt.Errorf("tag --delete takes exactly one tag name")
				}
				existed, err := r.DeleteTag(args[0])
				if err != nil {
					return err
				}
				if !existed {
					return fmt.Errorf("tag %q not found", args[0])
				}
				return nil
			}

			if verify {
				if len(args) != 1 {
					return fmt.Errorf("tag --verify takes exactly one tag name")
				}
				return verifyTagSignature(cmd, r, args[0])
			}

			if len(args) == 0 {
				tags, err := r.TagsWithHashes()
				if err != nil {
					return err
				}
				names := make([]string, 0, len(tags))
				for name := range tags {
					names = append(names, name)
				}
				sort.Strings(names)

				for _, name := range names {
					if showHash {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tags[name], name)
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
				}
				return nil
			}

			name := args[0]
			target := ""
			if len(args) == 2 {
				target = args[1]
			}

			opts := repo.TagOptions{Force: force}
			if sign {
				signer, _, err := newSSHTagSigner(r, signingKey)
				if err != nil {
					return err
				}
				opts.Signer = signer
			}

			_, err = r.CreateTag(name, target, message, opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "tag message")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")
	cmd.Flags().BoolVarP(&del, "delete", "d", false, "delete the named tag")
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "show tag object hashes when listing")
	cmd.Flags().BoolVarP(&sign, "sign", "s", false, "sign the tag with an SSH key")
	cmd.Flags().BoolVarP(&verify, "verify", "v", false, "verify the named tag's signature")
	cmd.Flags().StringVar(&signingKey, "signing-key", "", "SSH private key to sign with (default: user.signingkey, then ~/.ssh)")

	return cmd
}
