// Package main implements the codecbench binary: a throughput and
// correctness benchmark for block compressors over real files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arkilian/codecbench/internal/bench"
	"github.com/arkilian/codecbench/internal/codec"
	"github.com/arkilian/codecbench/internal/config"
	"github.com/arkilian/codecbench/internal/corpus"
	benchErrors "github.com/arkilian/codecbench/internal/errors"
	"github.com/arkilian/codecbench/internal/results"
)

const version = "1.0.0"

func main() {
	var (
		configFile  string
		codecName   string
		chunkKB     int
		iterations  int
		tableLog    int
		coreMode    bool
		resultsPath string
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&codecName, "codec", "", "Codec to benchmark: "+strings.Join(codec.Names(), ", "))
	flag.IntVar(&chunkKB, "b", 0, "Chunk size in KB")
	flag.IntVar(&iterations, "i", 0, "Number of timing iterations")
	flag.IntVar(&tableLog, "tablelog", 0, "Entropy table precision override (0 = codec default)")
	flag.BoolVar(&coreMode, "core", false, "Core-loop mode: time only the state transform, tables prebuilt")
	flag.StringVar(&resultsPath, "results", "", "SQLite database recording run history")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file ...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Files may be local paths or s3://bucket/key references;\n")
		fmt.Fprintf(os.Stderr, "an s3://bucket/prefix/ reference benchmarks every object under it.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("codecbench %s\n", version)
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	// Local overrides, as in development environments.
	_ = godotenv.Load()

	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.LoadFromEnv(cfg)

	// Flags override file and environment.
	if codecName != "" {
		cfg.Codec = codecName
	}
	if chunkKB > 0 {
		cfg.ChunkSize = chunkKB * 1024
	}
	if iterations > 0 {
		cfg.Iterations = iterations
	}
	if tableLog > 0 {
		cfg.TableLog = tableLog
	}
	if coreMode {
		cfg.Mode = config.ModeCore
	}
	if resultsPath != "" {
		cfg.ResultsPath = resultsPath
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to prepare directories: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver := corpus.NewResolver(cfg)
	paths, err := resolver.Resolve(ctx, flag.Args())
	if err != nil {
		log.Printf("Cannot resolve benchmark inputs: %v", err)
		os.Exit(benchErrors.ExitCode(err))
	}

	rep := bench.NewReporter(os.Stderr)
	runner, err := bench.NewRunner(cfg, rep, nil, nil)
	if err != nil {
		log.Fatalf("Cannot construct benchmark: %v", err)
	}

	fileResults, _, runErr := runner.Run(paths)

	if cfg.ResultsPath != "" && len(fileResults) > 0 {
		store, err := results.Open(cfg.ResultsPath)
		if err != nil {
			log.Printf("Cannot open results database: %v", err)
		} else {
			if runID, err := store.RecordRun(ctx, cfg, fileResults); err != nil {
				log.Printf("Cannot record run: %v", err)
			} else {
				log.Printf("Recorded run %s (%d files)", runID, len(fileResults))
			}
			store.Close()
		}
	}

	if runErr != nil {
		log.Printf("Benchmark finished with errors: %v", runErr)
		os.Exit(benchErrors.ExitCode(runErr))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFromFile(path)
}
