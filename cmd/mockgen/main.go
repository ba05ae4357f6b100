package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"driftwatch/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "steady", "Scenario to generate: steady, creep, churn")
	outDir := flag.String("out", "./.cache", "Output directory for mock files")
	count := flag.Int("count", 12, "Number of epics under the generated root")
	seed := flag.Int64("seed", 1, "Random seed for reproducible data")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Seed:     *seed,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Count, cfg.Seed, *outDir)

	records, issues := engine.Generate(cfg)

	if err := engine.Save(*outDir, "activities", records, issues); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
