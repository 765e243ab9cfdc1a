package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"specklefilter/internal/logger"
	"specklefilter/pkg/batch"
	"specklefilter/pkg/config"
	"specklefilter/pkg/imageio"
	"specklefilter/pkg/speckle"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "specklefilter.yaml", "YAML configuration file (defaults are used if it does not exist)")
	writeConfig := flag.Bool("write-config", false, "Write the effective configuration to -config and exit")
	input := flag.String("input", "", "Image file or directory of PNG/JPEG images")
	outputDir := flag.String("output", "filtered", "Directory for filtered images")
	method := flag.String("method", "", "Speckle operation: Enhance or Suppress")
	enhance := flag.String("enhance", "", "Speckle type when enhancing: Speckles, Neurites or \"Dark holes\"")
	size := flag.Int("size", 0, "Speckle size: diameter of the largest speckle or neurite")
	holes := flag.String("holes", "", "Range of dark hole diameters as min,max")
	workers := flag.Int("workers", 0, "Number of images filtered concurrently")
	maskSuffix := flag.String("mask-suffix", "", "Suffix marking mask files, e.g. _mask")
	compare := flag.Bool("compare", false, "Also write side-by-side original/filtered images")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	jsonLogs := flag.Bool("json", false, "Write JSON logs instead of console output")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line override the configuration file
	var holeErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "method":
			cfg.Speckle.Method = *method
		case "enhance":
			cfg.Speckle.EnhanceMethod = *enhance
		case "size":
			cfg.Speckle.ObjectSize = *size
		case "holes":
			cfg.Speckle.HoleSize, holeErr = speckle.ParseHoleSizeRange(*holes)
		case "workers":
			cfg.Processing.NumWorkers = *workers
		case "mask-suffix":
			cfg.Processing.MaskSuffix = *maskSuffix
		case "compare":
			cfg.Output.SaveComparison = *compare
		case "log-level":
			cfg.Output.LogLevel = *logLevel
		case "json":
			cfg.Output.Verbose = !*jsonLogs
		}
	})
	if holeErr != nil {
		fmt.Fprintf(os.Stderr, "Invalid -holes value: %v\n", holeErr)
		os.Exit(2)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if *writeConfig {
		if err := config.SaveConfig(cfg, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", *configPath)
		return
	}

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	log, err := logger.New(os.Stderr, cfg.Output.LogLevel, cfg.Output.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	log = logger.Component(log, "specklefilter")

	params, err := cfg.SpeckleParams()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid speckle settings")
	}

	jobs, err := planJobs(*input, *outputDir, cfg.Processing.MaskSuffix)
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("no work to do")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := batch.NewRunner(batch.Options{
		Module: speckle.Module{
			InputImage:  cfg.Speckle.InputImage,
			OutputImage: cfg.Speckle.OutputImage,
			Params:      params,
		},
		NumWorkers:     cfg.Processing.NumWorkers,
		SaveComparison: cfg.Output.SaveComparison,
		Logger:         log,
	})

	startTime := time.Now()
	results, err := runner.Run(ctx, jobs)
	if err != nil {
		stop()
		log.Fatal().Err(err).Msg("filtering failed")
	}

	meanChange, stdChange := batch.Aggregate(results)
	log.Info().
		Int("images", len(results)).
		Str("output", *outputDir).
		Dur("elapsed", time.Since(startTime)).
		Float64("meanAbsChange", meanChange).
		Float64("stdAbsChange", stdChange).
		Msg("filtering completed")
}

// planJobs builds the job list for a single file or a directory
func planJobs(input, outputDir, maskSuffix string) ([]batch.Job, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return batch.DiscoverJobs(input, outputDir, maskSuffix)
	}
	if !imageio.Supported(input) {
		return nil, fmt.Errorf("unsupported image format: %s", input)
	}

	ext := filepath.Ext(input)
	base := filepath.Base(input[:len(input)-len(ext)])
	job := batch.Job{
		Input:      input,
		Output:     filepath.Join(outputDir, base+"_filtered.png"),
		Comparison: filepath.Join(outputDir, base+"_comparison.png"),
	}
	if maskSuffix != "" {
		maskPath := input[:len(input)-len(ext)] + maskSuffix + ext
		if _, err := os.Stat(maskPath); err == nil {
			job.Mask = maskPath
		}
	}
	return []batch.Job{job}, nil
}
