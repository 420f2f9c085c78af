// Package main provides the entry point for c8sim.
// c8sim is a CHIP-8 virtual machine with a terminal front end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"github.com/sarchlab/c8sim/loader"
	"github.com/sarchlab/c8sim/timing/core"
	"github.com/sarchlab/c8sim/timing/latency"
)

var (
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	saveConfig = flag.String("save-config", "", "Write the effective timing configuration to this path and exit")
	headless   = flag.Bool("headless", false, "Run without a terminal display and print the final frame")
	frames     = flag.Int("frames", 600, "Number of 60 Hz frames to run in headless mode")
	skipBad    = flag.Bool("skip-unknown", false, "Skip unknown opcodes instead of stopping")
	verbose    = flag.Bool("v", false, "Verbose output")
	quiet      = flag.Bool("q", false, "Only log errors")
)

func main() {
	ctx := app.Context()
	flag.Parse()

	logger := createLogger(*verbose, *quiet)

	timingConfig, err := loadTimingConfig()
	if err != nil {
		logger.Fatal("Loading timing config failed", log.Err(err))
	}

	if *saveConfig != "" {
		if err := timingConfig.SaveConfig(*saveConfig); err != nil {
			logger.Fatal("Saving timing config failed", log.Err(err))
		}
		logger.Info("Timing config written", log.String("path", *saveConfig))
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: c8sim [options] <program.ch8>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)
	prog, err := loader.Load(programPath)
	if err != nil {
		logger.Fatal("Loading program failed", log.Err(err))
	}

	logger.Debug("Loaded program",
		log.String("path", programPath),
		log.Int("bytes", prog.Size()),
		log.Hex("entry", prog.EntryPoint))

	c, err := core.NewCore(timingConfig, core.WithLogger(logger))
	if err != nil {
		logger.Fatal("Creating core failed", log.Err(err))
	}
	if err := prog.LoadInto(c); err != nil {
		logger.Fatal("Loading program failed", log.Err(err))
	}

	if *headless {
		err = runHeadless(c, *frames)
	} else {
		err = runInteractive(ctx, c, logger)
	}

	printStats(os.Stderr, c.Stats())

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Execution stopped", log.Err(err))
		os.Exit(1)
	}
}

// createLogger creates a logger with the level selected on the command line.
func createLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func loadTimingConfig() (*latency.TimingConfig, error) {
	config := latency.DefaultTimingConfig()
	if *configPath != "" {
		var err error
		config, err = latency.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}
	if *skipBad {
		config.HaltOnUnknownOpcode = false
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}
	return config, nil
}

// runHeadless runs a fixed number of frames and prints the final display.
func runHeadless(c *core.Core, n int) error {
	err := c.RunFrames(n)
	fmt.Print(c.Machine().Framebuffer().String())
	return err
}
