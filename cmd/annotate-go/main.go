// Package main provides the entry point for the go-annotate screen
// annotation overlay.
package main

import (
	"context"
	"errors"
	"expvar"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-annotate/internal/config"
	"github.com/opd-ai/go-annotate/internal/profiling"
	"github.com/opd-ai/go-annotate/internal/render"
	"github.com/opd-ai/go-annotate/pkg/annotate"
)

// Version is the current version of go-annotate.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath  string
	version     bool
	debug       bool
	active      bool
	check       bool
	convert     string
	cpuProfile  string
	memProfile  string
	tracePath   string
	metricsAddr string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("annotate-go", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "c", config.DefaultPath(), "Path to configuration file (Lua or legacy tool list)")
	fs.BoolVar(&o.version, "v", false, "Print version and exit")
	fs.BoolVar(&o.debug, "debug", false, "Log every drawing call")
	fs.BoolVar(&o.active, "active", false, "Start with painting enabled")
	fs.BoolVar(&o.check, "check", false, "Validate the configuration and exit")
	fs.StringVar(&o.convert, "convert", "", "Convert a legacy tool list to Lua format and print to stdout")
	fs.StringVar(&o.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	fs.StringVar(&o.memProfile, "memprofile", "", "Write memory profile to file")
	fs.StringVar(&o.tracePath, "trace", "", "Write execution trace to file")
	fs.StringVar(&o.metricsAddr, "metrics", "", "Serve expvar metrics on this address, e.g. localhost:6060")
	err := fs.Parse(args)
	return o, err
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	switch {
	case opts.version:
		fmt.Fprintf(stdout, "annotate-go version %s\n", Version)
		return 0
	case opts.convert != "":
		return runConvert(opts.convert, stdout, stderr)
	case opts.check:
		return runCheck(opts.configPath, stdout, stderr)
	}

	// Initialize profiling if requested
	profConfig := profiling.Config{
		CPUProfilePath: opts.cpuProfile,
		MemProfilePath: opts.memProfile,
		TracePath:      opts.tracePath,
	}
	profiler := profiling.New(profConfig)
	if profConfig.Enabled() {
		if err := profiler.Start(); err != nil {
			fmt.Fprintf(stderr, "Failed to start profiling: %v\n", err)
			return 1
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				fmt.Fprintf(stderr, "Warning: failed to stop profiling: %v\n", err)
			}
		}()
	}

	if warning := render.CheckTransparency(); warning != "" {
		fmt.Fprintf(stderr, "Warning: %s\n", warning)
	}

	logger := annotate.DefaultLogger()
	if opts.debug {
		logger = annotate.DebugLogger()
	}
	metrics := annotate.NewMetrics()
	if opts.metricsAddr != "" {
		metrics.RegisterExpvar()
		go func() {
			if err := http.ListenAndServe(opts.metricsAddr, expvar.Handler()); err != nil {
				fmt.Fprintf(stderr, "Warning: metrics server: %v\n", err)
			}
		}()
	}

	o, err := annotate.New(opts.configPath, &annotate.Options{
		Active:      opts.active,
		Debug:       opts.debug,
		Logger:      logger,
		Metrics:     metrics,
		WatchConfig: true,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error creating overlay: %v\n", err)
		return 1
	}

	o.SetErrorHandler(func(err error) {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				if err := o.ReloadConfig(); err != nil {
					fmt.Fprintf(stderr, "Reload failed: %v\n", err)
				}
				continue
			}
			cancel()
			return
		}
	}()

	fmt.Fprintf(stdout, "annotate-go %s starting with config: %s\n", Version, opts.configPath)

	// Ebiten needs the main goroutine, so the overlay runs here.
	if err := o.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Overlay error: %v\n", err)
		return 1
	}
	return 0
}

// runConvert converts a legacy tool list to Lua format and writes it to stdout.
func runConvert(path string, stdout, stderr io.Writer) int {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(stderr, "Configuration file not found: %s\n", path)
		} else {
			fmt.Fprintf(stderr, "Error accessing configuration file %s: %v\n", path, err)
		}
		return 1
	}

	luaContent, err := config.MigrateLegacyFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error converting configuration: %v\n", err)
		return 1
	}

	fmt.Fprint(stdout, string(luaContent))
	return 0
}

// runCheck loads the configuration and prints its tools and any warnings.
func runCheck(path string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}
	config.ExpandEnvConfig(cfg)

	result := config.NewValidator().Validate(cfg)
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "Warning: %s\n", w)
	}
	if _, err := cfg.Presets(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "%s: %d tools, %d bindings\n", path, len(cfg.Tools), len(cfg.Bindings))
	for _, t := range cfg.Tools {
		fmt.Fprintf(stdout, "  %s (%s, size %d)\n", t.Name, t.Type, t.Size)
	}
	return 0
}
