package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mygit/pkg/object"
	"mygit/pkg/repo"
)

func newCommitTreeCmd() *cobra.Command {
	var message string
	var parentArgs []string
	var signKeyPath string
	var sign bool

	cmd := &cobra.Command{
		Use:   "commit-tree <tree-hash>",
		Short: "Create a commit object for an existing tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			tree := object.Hash(args[0])
			if !object.ValidHash(tree) {
				return fmt.Errorf("invalid tree hash %q", args[0])
			}
			var parents []object.Hash
			for _, p := range parentArgs {
				if !object.ValidHash(object.Hash(p)) {
					return fmt.Errorf("invalid parent hash %q", p)
				}
				parents = append(parents, object.Hash(p))
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			opts := repo.CommitOptions{}
			if sign || signKeyPath != "" {
				signer, keyPath, err := newSSHCommitSigner(signKeyPath)
				if err != nil {
					return err
				}
				opts.Signer = signer
				fmt.Fprintf(cmd.ErrOrStderr(), "signing with %s\n", keyPath)
			}

			// Match the canonical commit text convention of a trailing newline.
			if !strings.HasSuffix(message, "\n") {
				message += "\n"
			}

			h, err := r.CommitTree(tree, parents, message, opts)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringArrayVarP(&parentArgs, "parent", "p", nil, "parent commit hash (repeatable)")
	cmd.Flags().BoolVar(&sign, "sign", false, "sign the commit with the default SSH key")
	cmd.Flags().StringVar(&signKeyPath, "sign-key", "", "sign the commit with the SSH private key at this path")

	return cmd
}
