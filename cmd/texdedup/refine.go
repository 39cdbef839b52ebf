package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/texdedup"
)

func newRefineCmd(a *app) *cobra.Command {
	var (
		dim    string
		prefix string
	)
	cmd := &cobra.Command{
		Use:   "refine [files...]",
		Short: "Classify textures and store suggestions for review",
		Long: `Fingerprint textures and store classes of likely duplicates in the
uncertain ledger of a dimension.

Without arguments every decodable texture in the texture store is used.

Examples:
  texdedup refine --dim general
  texdedup refine --dim normal --prefix characters/
  texdedup refine --dim alpha a.png b.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, textures, err := a.open(ctx, nil)
			if err != nil {
				return err
			}
			defer d.Close()

			files := args
			if len(files) == 0 {
				if files, err = listTextures(ctx, textures, prefix); err != nil {
					return err
				}
			}

			res, err := d.Refine(ctx, dim, files)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			green := color.New(color.FgGreen).SprintFunc()

			fmt.Fprintf(out, "%s %s (%d files)\n", cyan("Run"), res.RunID, len(files))
			for _, p := range res.Passes {
				fmt.Fprintf(out, "  pass %d: %d candidates, %d indexed, %d classes, %d accepted, %d oversized (%s)\n",
					p.Pass, p.Candidates, p.Indexed, p.Classes, p.Accepted, p.Oversized, p.Duration.Round(time.Millisecond))
				if p.Carried > 0 {
					fmt.Fprintf(out, "    %s %d files too small for this pass kept their previous class\n", yellow("⚠"), p.Carried)
				}
			}
			if res.BestEffort > 0 {
				fmt.Fprintf(out, "%s %d oversized classes kept at the pass limit\n", yellow("⚠"), res.BestEffort)
			}
			if len(res.Skipped) > 0 {
				fmt.Fprintf(out, "%s %d files could not be loaded\n", yellow("⚠"), len(res.Skipped))
			}

			l, err := d.Ledger(ctx, dim)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %d classes await review\n", green("✓"), l.Uncertain.Len())

			if b, ok := a.metrics.(*texdedup.BasicMetricsCollector); ok {
				s := b.GetStats()
				fmt.Fprintf(out, "  hashed %d (%d unsupported), %d queries, %.1f candidates/query\n",
					s.HashCount, s.HashRejected, s.QueryCount, s.AvgQueryCandidates)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dim, "dim", "general", "dimension (general, alpha, normal, gloss, brightness)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only textures whose name starts with prefix")
	return cmd
}
