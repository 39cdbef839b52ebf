package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSimilarCmd(a *app) *cobra.Command {
	var (
		dim    string
		pass   int
		spread int
	)
	cmd := &cobra.Command{
		Use:   "similar <id>...",
		Short: "Query a stored pass index for textures similar to an indexed one",
		Long: `Look up textures in the index a previous refine stored. Requires
refine.index_snapshots (TEXDEDUP_INDEX_SNAPSHOTS=true).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, _, err := a.open(ctx, nil)
			if err != nil {
				return err
			}
			defer d.Close()

			idx, err := d.Snapshot(ctx, dim, pass)
			if err != nil {
				return err
			}
			if spread < 0 {
				spread = idx.Kind().DefaultSpread()
			}

			out := cmd.OutOrStdout()
			cyan := color.New(color.FgCyan).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()
			for _, id := range args {
				candidates, ok := idx.GetSimilarByID(id, spread)
				if !ok {
					fmt.Fprintf(out, "%s %s is not indexed\n", red("✗"), id)
					continue
				}
				fmt.Fprintf(out, "%s\n", cyan(id))
				for _, c := range candidates {
					if c.ID == id {
						continue
					}
					fmt.Fprintf(out, "  %s (%dx%d)\n", c.ID, c.Width, c.Height)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dim, "dim", "general", "dimension")
	cmd.Flags().IntVar(&pass, "pass", 1, "refinement pass")
	cmd.Flags().IntVar(&spread, "spread", -1, "bucket spread, negative for the dimension default")
	return cmd
}
