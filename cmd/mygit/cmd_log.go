package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mygit/pkg/object"
	"mygit/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [ref]",
		Short: "Show first-parent commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			ref := "HEAD"
			if len(args) > 0 {
				ref = args[0]
			}
			startHash, err := r.ResolveRef(ref)
			if err != nil {
				return fmt.Errorf("cannot resolve %s: %w", ref, err)
			}

			commits, err := r.Log(startHash, limit)
			if err != nil {
				return err
			}
			if len(commits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
				return nil
			}

			// Reconstruct hashes: the first commit's hash is startHash, and
			// each subsequent commit's hash is the first parent of the
			// previous commit.
			hashes := make([]object.Hash, len(commits))
			hashes[0] = startHash
			for i := 1; i < len(commits); i++ {
				hashes[i] = commits[i-1].Parents[0]
			}

			out := cmd.OutOrStdout()
			for i, c := range commits {
				h := hashes[i]
				message := strings.TrimRight(c.Message, "\n")

				if oneline {
					short := string(h)
					if len(short) > 8 {
						short = short[:8]
					}
					subject, _, _ := strings.Cut(message, "\n")
					fmt.Fprintf(out, "%s %s\n", short, subject)
					continue
				}

				fmt.Fprintf(out, "commit %s\n", h)
				fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
				fmt.Fprintf(out, "Date:   %s\n", repo.CommitTime(c.Author).Format("2006-01-02 15:04:05 -0700"))
				fmt.Fprintln(out)
				for _, line := range strings.Split(message, "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show")

	return cmd
}
