package texdedup_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/texdedup"
	"github.com/hupe1980/texdedup/blobstore"
	"github.com/hupe1980/texdedup/testutil"
)

// Example_reviewCycle runs one refinement, confirms part of the suggestion
// and shows what the ledger derives from it.
func Example_reviewCycle() {
	ctx := context.Background()

	rng := testutil.NewRNG(1)
	rock := rng.Texture(64, 64)
	src := testutil.NewMemorySource()
	src.Put("rock.png", rock)
	src.Put("rock_copy.png", rng.Jitter(rock, 1))
	src.Put("rock_small.png", testutil.Downscale(rock, 2))
	src.Put("sand.png", rng.Texture(64, 64))

	d := texdedup.New(blobstore.NewMemoryStore(), src)

	if _, err := d.Refine(ctx, "general", src.IDs()); err != nil {
		log.Fatal(err)
	}
	classes, _ := d.UncertainClasses(ctx, "general")
	fmt.Println("suggested:", classes)

	// The reviewer keeps the full-size copies together only.
	if err := d.AcceptCertain(ctx, "general", [][]string{{"rock.png", "rock_copy.png"}}); err != nil {
		log.Fatal(err)
	}
	l, _ := d.Ledger(ctx, "general")
	fmt.Println("certain:", l.Certain.Classes())
	fmt.Println("rejected:", l.Rejected.Pairs())

	// Output:
	// suggested: [[rock.png rock_copy.png rock_small.png]]
	// certain: [[rock.png rock_copy.png]]
	// rejected: [[rock.png rock_small.png] [rock_copy.png rock_small.png]]
}

// Example_metrics shows the in-memory metrics collector.
func Example_metrics() {
	ctx := context.Background()

	src := testutil.NewMemorySource()
	src.Put("a.png", testutil.Solid(32, 32, 10, 20, 30, 255))
	src.Put("b.png", testutil.Solid(32, 32, 10, 20, 30, 255))
	src.PutBroken("c.png")

	metrics := &texdedup.BasicMetricsCollector{}
	d := texdedup.New(blobstore.NewMemoryStore(), src, texdedup.WithMetrics(metrics))
	res, err := d.Refine(ctx, "gloss", src.IDs())
	if err != nil {
		log.Fatal(err)
	}

	stats := metrics.GetStats()
	fmt.Println("hashed:", stats.HashCount, "skipped:", stats.SkipCount, "files skipped:", res.Skipped)
	// Output: hashed: 2 skipped: 1 files skipped: [c.png]
}
