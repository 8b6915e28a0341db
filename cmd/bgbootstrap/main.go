package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"bgbootstrap/internal/models"
	"bgbootstrap/pkg/analyzer"
	"bgbootstrap/pkg/bootstrap"
	"bgbootstrap/pkg/config"
	"bgbootstrap/pkg/synth"
	"bgbootstrap/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "bgbootstrap.yaml", "YAML configuration file (defaults are used if missing)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	division := flag.Int("division", 0, "Number of regions per spatial axis (overrides config)")
	threshold := flag.Float64("threshold", 0, "Percentile computed per region and over the stack (overrides config)")
	samples := flag.Int("samples", 0, "Number of draws per region (overrides config)")
	seed := flag.Uint64("seed", 0, "Seed for stack generation and sampling (overrides config)")
	mapImage := flag.String("map-image", "", "Save the threshold map to this PNG or JPEG file")
	slicesDir := flag.String("slices-dir", "", "Save the generated background slices to this directory")
	verbose := flag.Bool("verbose", true, "Print normality test verdicts")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Command line flags win over the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "division":
			cfg.Bootstrap.Division = *division
		case "threshold":
			cfg.Bootstrap.Threshold = *threshold
			cfg.Analysis.Threshold = *threshold
		case "samples":
			cfg.Bootstrap.Samples = *samples
		case "seed":
			cfg.Stack.Seed = *seed
			cfg.Bootstrap.Seed = *seed
		case "map-image":
			cfg.Output.MapImage = *mapImage
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("BACKGROUND BOOTSTRAP: LOCAL PERCENTILE THRESHOLDS AND NORMALITY")
	fmt.Println("================================")

	// Step 1: Generate the background stack
	fmt.Printf("Step 1: Generating %s background stack (%d, %d, %d)...\n",
		cfg.Stack.Distribution, cfg.Stack.Depth, cfg.Stack.Height, cfg.Stack.Width)
	gen := synth.NewGenerator(cfg.Stack.Seed)
	stack := generateStack(gen, cfg)

	if *slicesDir != "" {
		fmt.Printf("Saving background slices to: %s\n", *slicesDir)
		if err := visualization.SaveSliceSequence(stack, *slicesDir); err != nil {
			log.Printf("Warning: Failed to save slices: %v", err)
		}
	}

	// Step 2: Whole-stack analysis
	fmt.Println("Step 2: Analyzing the whole stack...")
	if err := analyze(stack, cfg); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	// Step 3: Regional bootstrap
	fmt.Printf("Step 3: Bootstrapping %dx%d regions with %d samples each...\n",
		max(cfg.Bootstrap.Division, 1), max(cfg.Bootstrap.Division, 1), cfg.Bootstrap.Samples)
	startTime := time.Now()

	params := &bootstrap.Params{
		Division: cfg.Bootstrap.Division,
		Samples:  cfg.Bootstrap.Samples,
	}
	if cfg.Bootstrap.Seed != 0 {
		params.Source = rand.NewSource(cfg.Bootstrap.Seed)
	}
	bst, err := bootstrap.NewBootstrapper(stack, params)
	if err != nil {
		log.Fatalf("Failed to create bootstrapper: %v", err)
	}

	thresholds, err := bst.ComputeConfidence(cfg.Bootstrap.Threshold)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	fmt.Printf("Bootstrap completed in %.2f seconds\n\n", time.Since(startTime).Seconds())

	fmt.Printf("Threshold map (%.1f percentile):\n", cfg.Bootstrap.Threshold)
	fmt.Printf("%v\n", mat.Formatted(thresholds, mat.Squeeze()))

	if cfg.Output.MapImage != "" {
		viewer := visualization.NewViewer(thresholds, cfg.Output.CellSize)
		if err := viewer.Save(cfg.Output.MapImage); err != nil {
			log.Printf("Warning: Failed to save threshold map: %v", err)
		} else {
			fmt.Printf("Threshold map saved to: %s\n", cfg.Output.MapImage)
		}
	}
}

// generateStack draws the configured synthetic background
func generateStack(gen *synth.Generator, cfg *config.Config) *models.Array {
	s := cfg.Stack
	if s.Distribution == config.DistNormal {
		return gen.Normal(s.Mean, s.StdDev, s.Depth, s.Height, s.Width)
	}
	return gen.Poisson(s.Lambda, s.Depth, s.Height, s.Width)
}

// analyze prints the whole-stack statistics and normality verdicts
func analyze(stack *models.Array, cfg *config.Config) error {
	ana := analyzer.FromArray(stack)

	conf, err := ana.ComputeConfidence(cfg.Analysis.Threshold)
	if err != nil {
		return err
	}
	fmt.Printf("%.1f percentile: %.4f\n", cfg.Analysis.Threshold, conf)
	fmt.Printf("Mean: %.4f\n", ana.Mean())
	fmt.Printf("Variance: %.4f\n", ana.Variance())

	// The tests are run on a random subset of large stacks
	values := stack.Values()
	if limit := cfg.Analysis.MaxNormalitySamples; limit > 0 && len(values) > limit {
		fmt.Printf("Running normality tests on %d of %d values\n", limit, len(values))
		values = subsample(values, limit, cfg.Stack.Seed)
	}
	tests := analyzer.New(values)

	gaussian, err := tests.Shapiro(cfg.Analysis.Alpha, cfg.Output.Verbose)
	if err != nil {
		log.Printf("Warning: %v", err)
	} else {
		fmt.Printf("Shapiro-Wilk normal: %t\n", gaussian)
	}

	normal, err := tests.AndersonDarling(cfg.Output.Verbose)
	if err != nil {
		log.Printf("Warning: %v", err)
	} else {
		fmt.Printf("Anderson-Darling normal: %t\n", normal)
	}
	return nil
}

// subsample returns n values drawn without replacement
func subsample(values []float64, n int, seed uint64) []float64 {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(values))[:n]

	out := make([]float64, n)
	for i, idx := range perm {
		out[i] = values[idx]
	}
	return out
}
