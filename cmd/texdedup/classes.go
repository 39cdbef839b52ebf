package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/codec"
)

func newClassesCmd(a *app) *cobra.Command {
	var (
		dim     string
		asJSON  bool
		certain bool
	)
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Print the classes awaiting review",
		Long: `Print the uncertain classes of a dimension. With --json the output can be
edited and passed to "texdedup accept --file".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, _, err := a.open(ctx, nil)
			if err != nil {
				return err
			}
			defer d.Close()

			l, err := d.Ledger(ctx, dim)
			if err != nil {
				return err
			}
			classes := l.Uncertain.Classes()
			if certain {
				classes = l.Certain.Classes()
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := codec.JSON{}.Marshal(classes)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			gray := color.New(color.FgHiBlack).SprintFunc()
			switch m, err := d.Manifest(ctx, dim); {
			case err == nil:
				fmt.Fprintln(out, gray(fmt.Sprintf("%s: %d certain, %d uncertain, %d rejected pairs (saved %s)",
					m.Dimension, m.Certain, m.Uncertain, m.Rejected, m.UpdatedAt.Format(time.RFC3339))))
			case !errors.Is(err, blobstore.ErrNotFound):
				return err
			}

			if len(classes) == 0 {
				green := color.New(color.FgGreen).SprintFunc()
				fmt.Fprintf(out, "%s No classes\n", green("✓"))
				return nil
			}
			cyan := color.New(color.FgCyan).SprintFunc()
			for i, class := range classes {
				fmt.Fprintf(out, "%s (%d)\n", cyan(fmt.Sprintf("class %d", i+1)), len(class))
				for _, id := range class {
					fmt.Fprintf(out, "  %s\n", id)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dim, "dim", "general", "dimension")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print classes as a JSON array")
	cmd.Flags().BoolVar(&certain, "certain", false, "print the certain classes instead")
	return cmd
}
