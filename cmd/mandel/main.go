// mandel renders a grayscale image of the Mandelbrot set over a rectangle
// of the complex plane and saves it as PNG, BMP or TIFF.
//
//	mandel [flags] FILE WIDTHxHEIGHT RE,IM RE,IM
//	mandel [flags] -region NAME FILE WIDTHxHEIGHT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	mandel "github.com/marben/banded_mandel"
)

var errUsage = errors.New("usage")

type config struct {
	path    string
	bounds  mandel.Bounds
	plane   mandel.Plane
	workers int
	verbose bool
}

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, errUsage) {
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("run: %v", err)
	}
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintf(out, "usage: %s [flags] <FILE> <WIDTHxHEIGHT> <UPPER_LEFT RE,IM> <LOWER_RIGHT RE,IM>\n", fs.Name())
		fmt.Fprintf(out, "       %s [flags] -region NAME <FILE> <WIDTHxHEIGHT>\n", fs.Name())
		fmt.Fprintf(out, "regions: %s\n", strings.Join(slices.Sorted(maps.Keys(mandel.Regions)), ", "))
		fs.PrintDefaults()
	}
}

// parseArgs turns the command line into a config. Argument count errors are
// reported on stderr and returned as errUsage.
func parseArgs(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("mandel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	var cfg config
	var region string
	fs.IntVar(&cfg.workers, "workers", mandel.DefaultWorkers, "number of bands rendered in parallel (0 = one per CPU)")
	fs.BoolVar(&cfg.verbose, "v", false, "log band timings")
	fs.StringVar(&region, "region", "", "render a named region instead of explicit corners")
	if err := fs.Parse(args); err != nil {
		return config{}, errUsage
	}

	want := 4
	if region != "" {
		want = 2
	}
	if fs.NArg() != want {
		fmt.Fprintf(stderr, "need %d arguments, got %d\n", want, fs.NArg())
		fs.Usage()
		return config{}, errUsage
	}

	cfg.path = fs.Arg(0)
	if _, err := mandel.FormatFromPath(cfg.path); err != nil {
		return config{}, fmt.Errorf("can't use output file %q: %w", cfg.path, err)
	}

	var err error
	cfg.bounds, err = mandel.ParseBounds(fs.Arg(1))
	if err != nil {
		return config{}, fmt.Errorf("can't parse bounds: %w", err)
	}

	if region != "" {
		p, ok := mandel.Regions[region]
		if !ok {
			return config{}, fmt.Errorf("unknown region %q", region)
		}
		cfg.plane = p
		return cfg, nil
	}

	cfg.plane.UpperLeft, err = mandel.ParseComplex(fs.Arg(2))
	if err != nil {
		return config{}, fmt.Errorf("can't parse upper left point: %w", err)
	}
	cfg.plane.LowerRight, err = mandel.ParseComplex(fs.Arg(3))
	if err != nil {
		return config{}, fmt.Errorf("can't parse lower right point: %w", err)
	}
	return cfg, nil
}

func run(cfg config) error {
	if cfg.verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		mandel.SetLogger(slog.Default())
	}

	start := time.Now()
	pix, err := mandel.Engine{Workers: cfg.workers}.Render(context.Background(), cfg.bounds, cfg.plane)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	log.Printf("rendered %dx%d in %s", cfg.bounds.W, cfg.bounds.H, time.Since(start))

	if err := mandel.WriteImage(cfg.path, pix, cfg.bounds); err != nil {
		return fmt.Errorf("can't save result image: %w", err)
	}

	log.Printf("image saved to %q", cfg.path)
	return nil
}
