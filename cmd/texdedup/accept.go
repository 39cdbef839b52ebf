package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/texdedup/codec"
)

func newAcceptCmd(a *app) *cobra.Command {
	var (
		dim  string
		file string
	)
	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Record reviewed classes as certain",
		Long: `Merge reviewed classes into the certain ledger. Suggested pairs that are
not certain afterwards are recorded as rejected.

The file holds a JSON array of classes, for example:
  [["a.png", "b.png"], ["c.png", "d.png", "e.png"]]`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var classes [][]string
			if err := codec.Default.Unmarshal(data, &classes); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			ctx := cmd.Context()
			d, _, err := a.open(ctx, nil)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.AcceptCertain(ctx, dim, classes); err != nil {
				return err
			}
			l, err := d.Ledger(ctx, dim)
			if err != nil {
				return err
			}

			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s Accepted %d classes: %d certain, %d pending, %d rejected pairs\n",
				green("✓"), len(classes), l.Certain.Len(), l.Uncertain.Len(), l.Rejected.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&dim, "dim", "general", "dimension")
	cmd.Flags().StringVar(&file, "file", "", "JSON file with reviewed classes")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
