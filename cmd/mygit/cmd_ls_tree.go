package main

import (
	"github.com/spf13/cobra"

	"mygit/pkg/object"
	"mygit/pkg/repo"
)

func newLsTreeCmd() *cobra.Command {
	var nameOnly bool

	cmd := &cobra.Command{
		Use:   "ls-tree <hash>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			tr, err := r.Store.ReadTree(object.Hash(args[0]))
			if err != nil {
				return err
			}

			printTree(cmd, tr, nameOnly)
			return nil
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "print only entry names")

	return cmd
}
