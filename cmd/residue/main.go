// Package main provides the residue command: it runs the normalizers over
// the configured sources and prints every text neither heuristics nor the
// current override files could resolve, as JSON stubs ready to merge into
// those files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"protestunify/internal/adapters/csvdir"
	"protestunify/internal/aggregate"
	"protestunify/internal/config"
	"protestunify/internal/logger"
	"protestunify/internal/normalize"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to pipeline configuration")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Pipeline.Logging.Level)

	overrides, err := normalize.LoadOverrides(cfg.Overrides.Dates, cfg.Overrides.Participants)
	if err != nil {
		log.Error("failed to load overrides", "error", err)
		os.Exit(1)
	}

	adapters := make([]aggregate.Adapter, 0, len(cfg.Cities))
	for _, city := range cfg.Cities {
		adapters = append(adapters, csvdir.Adapter(cfg.Pipeline.InputDir, city))
	}

	raw, err := aggregate.Collect(adapters)
	if err != nil {
		log.Error("aggregation failed", "error", err)
		os.Exit(1)
	}

	dated := normalize.NewDateNormalizer(cfg.Pipeline.Workers).Normalize(raw, overrides)
	counted := normalize.NewParticipantNormalizer().Apply(dated.Rows, overrides)

	dateStubs := make(map[string]string, len(dated.Unresolved))
	for _, text := range dated.Unresolved {
		dateStubs[text] = ""
	}

	countStubs := make(map[string]*float64, len(counted.Unresolved))
	for _, text := range counted.Unresolved {
		countStubs[text] = nil
	}

	stubs := map[string]any{
		"dates":        dateStubs,
		"participants": countStubs,
	}

	out, err := json.MarshalIndent(stubs, "", "  ")
	if err != nil {
		log.Error("failed to encode stubs", "error", err)
		os.Exit(1)
	}

	fmt.Println(string(out))

	log.Info("residue collected",
		"unresolvedDates", len(dateStubs),
		"unresolvedCounts", len(countStubs))
}
