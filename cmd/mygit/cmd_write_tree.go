package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mygit/pkg/repo"
)

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree [path]",
		Short: "Snapshot a file hierarchy into the object store",
		Long: "Snapshot the working set rooted at path (default: the repository root)\n" +
			"into blob and tree objects and print the root tree hash. References are\n" +
			"not touched.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			root := r.RootDir
			if len(args) > 0 {
				root = args[0]
			}

			h, err := r.WriteTree(root)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
