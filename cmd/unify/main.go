// Package main provides the unify command: it merges all configured city
// sources into one canonical table and prints the run report.
package main

import (
	"flag"
	"fmt"
	"os"

	"protestunify/internal/adapters/csvdir"
	"protestunify/internal/aggregate"
	"protestunify/internal/config"
	"protestunify/internal/logger"
	"protestunify/internal/pipeline"
	"protestunify/internal/report"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to pipeline configuration")
	overview := flag.Bool("overview", false, "Print the per-city availability overview")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Pipeline.Logging.Level)
	log.Info("starting unification", "config", cfg.String())

	store, err := pipeline.OpenStore(cfg)
	if err != nil {
		log.Error("failed to open cache store", "error", err)
		os.Exit(1)
	}

	adapters := make([]aggregate.Adapter, 0, len(cfg.Cities))
	for _, city := range cfg.Cities {
		adapters = append(adapters, csvdir.Adapter(cfg.Pipeline.InputDir, city))
	}

	p := pipeline.New(cfg, store, log)

	rows, summary, err := p.Run(adapters)
	if err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}

	fmt.Println(report.Summary(*summary))

	if *overview {
		fmt.Println(report.Overview(rows))
	}

	if err := store.Close(); err != nil {
		log.Warn("failed to close cache store", "error", err)
	}
}
