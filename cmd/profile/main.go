// Package main provides a profiling wrapper for c8sim to identify performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/loader"
	"github.com/sarchlab/c8sim/timing/core"
	"github.com/sarchlab/c8sim/timing/latency"
)

var (
	timing      = flag.Bool("timing", false, "Run through the timing core instead of stepping the machine directly")
	decodeCache = flag.Bool("decode-cache", true, "Enable the decoded-instruction cache")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Int("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
	frames      = flag.Int("frames", 6000, "60 Hz frames to run in timing mode")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program.ch8>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Size: %d bytes (%d words)\n", prog.Size(), prog.Words())

	start := time.Now()

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	var instrCount uint64
	if *timing {
		instrCount, err = runTimingProfile(prog)
	} else {
		instrCount, err = runEmulationProfile(prog)
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	if err != nil {
		fmt.Printf("Stopped: %v\n", err)
	}
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

// runEmulationProfile steps the machine as fast as possible, with timer
// ticks every cyclesPerTick instructions.
func runEmulationProfile(prog *loader.Program) (uint64, error) {
	config := latency.DefaultTimingConfig()
	config.DecodeCache = *decodeCache

	c, err := core.NewCore(config, core.WithLogger(quietLogger()), core.WithMachineOptions(machineOptions()...))
	if err != nil {
		return 0, err
	}
	if err := prog.LoadInto(c); err != nil {
		return 0, err
	}

	m := c.Machine()
	cyclesPerTick := int(config.ClockHz / config.TimerHz)

	for {
		if err := m.Run(cyclesPerTick); err != nil {
			return m.InstructionCount(), err
		}
		m.TickTimers()
	}
}

// runTimingProfile runs the program through the timing core.
func runTimingProfile(prog *loader.Program) (uint64, error) {
	config := latency.DefaultTimingConfig()
	config.DecodeCache = *decodeCache

	c, err := core.NewCore(config, core.WithLogger(quietLogger()), core.WithMachineOptions(machineOptions()...))
	if err != nil {
		return 0, err
	}
	if err := prog.LoadInto(c); err != nil {
		return 0, err
	}

	err = c.RunFrames(*frames)
	stats := c.Stats()

	fmt.Printf("Cycles: %d (CPI %.3f)\n", stats.Cycles, stats.CPI())
	return stats.Instructions, err
}

func machineOptions() []emu.MachineOption {
	if *instruction > 0 {
		return []emu.MachineOption{emu.WithMaxInstructions(uint64(*instruction))}
	}
	return nil
}

func quietLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ErrorLevel
	return log.NewWithConfig(cfg)
}
