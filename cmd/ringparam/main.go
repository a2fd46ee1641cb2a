package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ironsheep/coffee-ring/internal/config"
	"github.com/ironsheep/coffee-ring/internal/logger"
	"github.com/ironsheep/coffee-ring/internal/ring"
	"github.com/ironsheep/coffee-ring/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "ringparam %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "init-config":
			if len(args) != 2 {
				fmt.Fprintln(stderr, "usage: ringparam init-config <path>")
				return 2
			}
			if err := config.CreateDefaultConfigFile(args[1]); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
			fmt.Fprintf(stdout, "Default configuration written to %s\n", args[1])
			return 0
		}
	}

	fs := flag.NewFlagSet("ringparam", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs, stderr) }

	configPath := fs.String("config", "", "YAML configuration file")
	radiusMin := fs.Int("radius-min", 0, "Smallest Hough radius in pixels")
	radiusMax := fs.Int("radius-max", 0, "Largest Hough radius in pixels")
	radiusStep := fs.Int("radius-step", 0, "Hough radius step in pixels")
	numLines := fs.Int("lines", 0, "Number of radial profiles per image")
	wExt := fs.Float64("w-ext", 0, "Exterior background weight")
	wInt := fs.Float64("w-int", 0, "Interior background weight")
	padding := fs.Int("padding", 0, "Crop padding around the detected circle in pixels")
	areaRatio := fs.Float64("area-ratio", 0, "Area ratio rejection threshold")
	tolerance := fs.Int("tolerance", 0, "Samples trimmed next to each ring minimum")
	sigma := fs.Float64("sigma", 0, "Edge detector smoothing scale")
	workers := fs.Int("workers", 0, "Images analyzed concurrently in directory mode")
	timeout := fs.Duration("timeout", 0, "Per-image processing deadline")
	overlayDir := fs.String("overlay-dir", "", "Write annotated overlays to this directory")
	asJSON := fs.Bool("json", false, "Print results as JSON")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Only flags given on the command line override the configuration.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "radius-min":
			cfg.Localizer.RadiusMin = *radiusMin
		case "radius-max":
			cfg.Localizer.RadiusMax = *radiusMax
		case "radius-step":
			cfg.Localizer.RadiusStep = *radiusStep
		case "lines":
			cfg.Profiler.NumLines = *numLines
		case "w-ext":
			cfg.Scorer.ExteriorWeight = *wExt
		case "w-int":
			cfg.Scorer.InteriorWeight = *wInt
		case "padding":
			cfg.Localizer.CropPadding = *padding
		case "area-ratio":
			cfg.Validator.AreaRatioThreshold = *areaRatio
		case "tolerance":
			cfg.Profiler.Tolerance = *tolerance
		case "sigma":
			cfg.Localizer.CannySigma = *sigma
		case "workers":
			cfg.Batch.Workers = *workers
		case "timeout":
			cfg.Batch.ImageTimeout = *timeout
		case "overlay-dir":
			cfg.Output.OverlayDir = *overlayDir
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if fs.NArg() == 1 && fs.Arg(0) == "serve" {
		logger.WithField("version", Version).Info("starting MCP server")
		if err := server.New(cfg, Version).Run(ctx); err != nil && err != context.Canceled {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return 1
		}
		return 0
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	target := fs.Arg(0)

	info, err := os.Stat(target)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	analyzer := ring.NewAnalyzer(cfg)
	if info.IsDir() {
		return runBatch(ctx, analyzer, target, *asJSON, stdout, stderr)
	}
	return runSingle(ctx, analyzer, target, *asJSON, stdout, stderr)
}

func runSingle(ctx context.Context, a *ring.Analyzer, path string, asJSON bool, stdout, stderr io.Writer) int {
	res, err := a.AnalyzeFile(ctx, path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if asJSON {
		return printJSON(stdout, stderr, res)
	}
	if res.Measured() {
		fmt.Fprintf(stdout, "Ring parameter: %.4f\n", res.Score)
	} else {
		fmt.Fprintln(stdout, "Ring is not clearly visible")
	}
	return 0
}

func runBatch(ctx context.Context, a *ring.Analyzer, dir string, asJSON bool, stdout, stderr io.Writer) int {
	report, err := a.AnalyzeDir(ctx, dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if asJSON {
		return printJSON(stdout, stderr, report)
	}
	for _, item := range report.Items {
		name := filepath.Base(item.Path)
		switch {
		case item.Skipped():
			fmt.Fprintf(stdout, "%s\tskipped: %s\n", name, item.Reason)
		case item.Result.Measured():
			fmt.Fprintf(stdout, "%s\t%.4f\n", name, item.Result.Score)
		default:
			fmt.Fprintf(stdout, "%s\tnot visible\n", name)
		}
	}
	fmt.Fprintf(stdout, "Processed %d images in %s\n", len(report.Items), report.Elapsed.Round(time.Millisecond))
	return 0
}

func printJSON(stdout, stderr io.Writer, v interface{}) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "ringparam - measure the coffee-ring effect of dried droplet images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ringparam [flags] <image-file|directory>")
	fmt.Fprintln(w, "  ringparam [flags] serve         Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  ringparam init-config <path>    Write the default configuration")
	fmt.Fprintln(w, "  ringparam --version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  RING_LOG_LEVEL=debug|info|warn|error")
	fmt.Fprintln(w, "  RING_LOG_FORMAT=json|text")
}
