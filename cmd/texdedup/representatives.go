package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/texdedup"
	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/codec"
	"github.com/hupe1980/texdedup/pixel"
	"github.com/hupe1980/texdedup/selector"
)

func newRepresentativesCmd(a *app) *cobra.Command {
	var (
		dim       string
		itemsFile string
		usedFile  string
		show      bool
	)
	cmd := &cobra.Command{
		Use:   "representatives",
		Short: "Pick one representative per certain class",
		Long: `Pick a representative for every certain class and store the mapping from
each other member to its representative.

Widths and formats come from --items (a JSON array of {"id","width","format"}
objects). Without --items the members are decoded from the texture store.
--used names a JSON array of IDs that are referenced elsewhere; they win ties.
--show prints the stored mapping without picking again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sel := selector.DefaultContext()
			if usedFile != "" {
				var used []string
				if err := readJSON(usedFile, &used); err != nil {
					return err
				}
				sel.Used = make(map[string]bool, len(used))
				for _, id := range used {
					sel.Used[id] = true
				}
			}

			d, textures, err := a.open(ctx, sel)
			if err != nil {
				return err
			}
			defer d.Close()

			if show {
				reps, err := d.StoredRepresentatives(ctx, dim)
				if err != nil {
					return err
				}
				printMapping(cmd.OutOrStdout(), reps)
				return nil
			}

			var items []selector.Item
			if itemsFile != "" {
				if err := readJSON(itemsFile, &items); err != nil {
					return err
				}
			} else {
				l, err := d.Ledger(ctx, dim)
				if err != nil {
					return err
				}
				if items, err = describe(ctx, a.logger, textures, l.Certain.Classes()); err != nil {
					return err
				}
			}

			reps, err := d.Representatives(ctx, dim, items)
			if err != nil {
				return err
			}

			printMapping(cmd.OutOrStdout(), reps)
			return nil
		},
	}
	cmd.Flags().StringVar(&dim, "dim", "general", "dimension")
	cmd.Flags().StringVar(&itemsFile, "items", "", "JSON file describing class members")
	cmd.Flags().StringVar(&usedFile, "used", "", "JSON file listing referenced IDs")
	cmd.Flags().BoolVar(&show, "show", false, "print the stored mapping")
	return cmd
}

func printMapping(out io.Writer, reps map[string]string) {
	ids := make([]string, 0, len(reps))
	for id := range reps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	gray := color.New(color.FgHiBlack).SprintFunc()
	for _, id := range ids {
		fmt.Fprintf(out, "%s %s %s\n", id, gray("->"), reps[id])
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s %d textures mapped\n", green("✓"), len(reps))
}

func readJSON(file string, v any) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	if err := codec.Default.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	return nil
}

// describe reads the header of every class member to learn its width.
// Members that fail to decode are logged, left out and rank lowest.
func describe(ctx context.Context, logger *texdedup.Logger, store blobstore.BlobStore, classes [][]string) ([]selector.Item, error) {
	src := pixel.NewBlobSource(store)
	var items []selector.Item
	for _, class := range classes {
		for _, id := range class {
			cfg, err := src.LoadConfig(ctx, id)
			if err != nil {
				if pixel.IsDecodeError(err) {
					logger.LogSkip(ctx, id, err)
					continue
				}
				return nil, err
			}
			items = append(items, selector.Item{
				ID:     id,
				Width:  cfg.Width,
				Format: strings.TrimPrefix(strings.ToLower(path.Ext(id)), "."),
			})
		}
	}
	return items, nil
}
