package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mygit/pkg/object"
	"mygit/pkg/repo"
)

func newCatFileCmd() *cobra.Command {
	var pretty bool
	var showType bool
	var showSize bool

	cmd := &cobra.Command{
		Use:   "cat-file <hash>",
		Short: "Inspect an object in the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !pretty && !showType && !showSize {
				return fmt.Errorf("one of -p, -t, -s is required")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			h := object.Hash(args[0])
			objType, data, err := r.Store.Read(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, objType)
			case showSize:
				fmt.Fprintln(out, len(data))
			default:
				switch objType {
				case object.TypeBlob, object.TypeCommit:
					// Blob payloads and commit text print verbatim.
					out.Write(data)
				case object.TypeTree:
					tr, err := object.UnmarshalTree(data)
					if err != nil {
						return err
					}
					printTree(cmd, tr, false)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the payload size in bytes")
	cmd.MarkFlagsMutuallyExclusive("pretty", "type", "size")

	return cmd
}

func printTree(cmd *cobra.Command, tr *object.TreeObj, nameOnly bool) {
	out := cmd.OutOrStdout()
	for _, e := range tr.Entries {
		if nameOnly {
			fmt.Fprintln(out, e.Name)
			continue
		}
		entryType := object.TypeBlob
		if e.IsDir() {
			entryType = object.TypeTree
		}
		fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode, entryType, e.Hash, e.Name)
	}
}
