// Command gen-scores generates a synthetic flat scores CSV for demos
// and import testing.
package main

import (
	"flag"
	"log"

	"github.com/chalkline-data/performance.report/internal/dataset"
	"github.com/chalkline-data/performance.report/internal/fsutil"
)

func main() {
	output := flag.String("out", "scores.csv", "output path")
	n := flag.Int("n", 1000, "number of score rows")
	seed := flag.Uint64("seed", 42, "generator seed")
	flag.Parse()

	rows := dataset.Synthesize(*n, *seed)
	if err := dataset.WriteCSV(fsutil.OSFileSystem{}, *output, rows); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
	log.Printf("✓ Created: %s (%d rows)", *output, len(rows))
}
