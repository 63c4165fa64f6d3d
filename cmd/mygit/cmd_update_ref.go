package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mygit/pkg/object"
	"mygit/pkg/repo"
)

func newUpdateRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-ref <ref> <hash>",
		Short: "Point a reference at a commit",
		Long: "Durably record a reference (e.g. refs/heads/main) pointing at an object\n" +
			"already present in the store. The update is atomic: a concurrent reader\n" +
			"sees either the old or the new value, never a torn write.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			h := object.Hash(args[1])
			if !object.ValidHash(h) {
				return fmt.Errorf("invalid hash %q", args[1])
			}
			if !strings.HasPrefix(name, "refs/") {
				name = "refs/heads/" + name
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			// Never publish a ref to a digest that is not durably stored.
			if !r.Store.Has(h) {
				return fmt.Errorf("update-ref %s: %w: %s", name, object.ErrObjectNotFound, h)
			}

			return r.UpdateRef(name, h)
		},
	}
}
