// Package benchmarks provides hand-assembled CHIP-8 programs and a
// harness that runs them through the timing core.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/timing/core"
	"github.com/sarchlab/c8sim/timing/latency"
)

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark exercises
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// Instructions is the number of executed instructions
	Instructions uint64 `json:"instructions"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// WaitCycles is the number of keypad polls during key waits
	WaitCycles uint64 `json:"wait_cycles"`

	// TimerTicks is the number of 60 Hz ticks delivered
	TimerTicks uint64 `json:"timer_ticks"`

	// Decode cache statistics (if enabled)
	CacheHits   uint64 `json:"cache_hits,omitempty"`
	CacheMisses uint64 `json:"cache_misses,omitempty"`

	// Passed is true if the run finished without error and the final
	// state matched the expectation
	Passed bool `json:"passed"`

	// Error describes why the benchmark did not pass
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark exercises
	Description string

	// Setup prepares the machine before the program is loaded
	// (e.g. pressing keys)
	Setup func(m *emu.Machine)

	// Program is the CHIP-8 image to execute
	Program []byte

	// Frames is the number of timer periods to run
	Frames int

	// Check validates the final machine state
	Check func(m *emu.Machine, stats core.Stats) error
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing is the timing configuration (default: latency.DefaultTimingConfig)
	Timing *latency.TimingConfig

	// EnableDecodeCache enables the decoded-instruction cache
	EnableDecodeCache bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Logger receives per-benchmark progress
	Logger *log.Logger
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Timing:            latency.DefaultTimingConfig(),
		EnableDecodeCache: true,
		Output:            os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	if config.Logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		config.Logger = log.NewWithConfig(cfg)
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark on a fresh core.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	timing := h.config.Timing.Clone()
	timing.DecodeCache = h.config.EnableDecodeCache

	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	c, err := core.NewCore(timing, core.WithLogger(h.config.Logger))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if bench.Setup != nil {
		bench.Setup(c.Machine())
	}

	if err := c.Load(bench.Program); err != nil {
		result.Error = err.Error()
		return result
	}

	// Run simulation and measure time
	start := time.Now()
	err = c.RunFrames(bench.Frames)
	result.WallTime = time.Since(start)

	stats := c.Stats()
	result.SimulatedCycles = stats.Cycles
	result.Instructions = stats.Instructions
	result.CPI = stats.CPI()
	result.WaitCycles = stats.WaitCycles
	result.TimerTicks = stats.TimerTicks
	result.CacheHits = stats.CacheHits
	result.CacheMisses = stats.CacheMisses

	if err == nil && bench.Check != nil {
		err = bench.Check(c.Machine(), stats)
	}

	if err != nil {
		result.Error = err.Error()
		h.config.Logger.Debug("Benchmark failed",
			log.String("name", bench.Name),
			log.Err(err))
		return result
	}

	result.Passed = true
	h.config.Logger.Debug("Benchmark passed",
		log.String("name", bench.Name),
		log.Int("cycles", int(stats.Cycles)))

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== c8sim Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL: " + r.Error
		}

		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Status: %s\n", status)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles: %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions:     %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:              %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Wait Cycles:      %d\n", r.WaitCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Timer Ticks:      %d\n", r.TimerTicks)

		if r.CacheHits > 0 || r.CacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Decode Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.CacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.CacheMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,wait_cycles,timer_ticks,cache_hits,cache_misses,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.Instructions,
			r.CPI,
			r.WaitCycles,
			r.TimerTicks,
			r.CacheHits,
			r.CacheMisses,
			r.Passed,
		)
	}
}

// BenchmarkReport is the JSON document written by PrintJSON.
type BenchmarkReport struct {
	Metadata ReportMetadata    `json:"metadata"`
	Results  []BenchmarkResult `json:"results"`
	Summary  ReportSummary     `json:"summary"`
}

// ReportMetadata describes the run.
type ReportMetadata struct {
	Timestamp   string `json:"timestamp"`
	ClockHz     uint64 `json:"clock_hz"`
	TimerHz     uint64 `json:"timer_hz"`
	DecodeCache bool   `json:"decode_cache"`
}

// ReportSummary aggregates all results.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	Passed            int           `json:"passed"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.Instructions
		summary.TotalWallTime += r.WallTime
		if r.Passed {
			summary.Passed++
		}
	}
	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			ClockHz:     h.config.Timing.ClockHz,
			TimerHz:     h.config.Timing.TimerHz,
			DecodeCache: h.config.EnableDecodeCache,
		},
		Results: results,
		Summary: summary,
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
