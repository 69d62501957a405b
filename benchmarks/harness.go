// Package benchmarks runs the bundled firmware on the SoC and reports
// cycle-level results.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/rvsoc/config"
	"github.com/sarchlab/rvsoc/programs"
	"github.com/sarchlab/rvsoc/timing/soc"
)

// BenchmarkResult holds the results for a single program run.
type BenchmarkResult struct {
	// Name identifies the program
	Name string `json:"name"`

	// Description explains what the program exercises
	Description string `json:"description"`

	// SimulatedCycles is the total number of clock edges
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	FetchStalls uint64 `json:"fetch_stalls"`
	BusStalls   uint64 `json:"bus_stalls"`
	Traps       uint64 `json:"traps"`

	// Fetch cache hits/misses (if enabled)
	FetchHits   uint64 `json:"fetch_hits,omitempty"`
	FetchMisses uint64 `json:"fetch_misses,omitempty"`

	DMAWords   uint64 `json:"dma_words,omitempty"`
	UARTFrames uint64 `json:"uart_frames,omitempty"`

	// ExitCode is the value the firmware wrote to SIM_EXIT
	ExitCode uint32 `json:"exit_code"`

	// Output is everything received on the serial line
	Output string `json:"output,omitempty"`

	// Passed reports whether exit code and output matched expectations
	Passed bool `json:"passed"`

	// Error is set when the run did not halt
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// SoC is the system configuration every program runs on. Nil means
	// config.Default().
	SoC *config.Config

	// EnableFetchCache overrides SoC.FetchCache.Enabled.
	EnableFetchCache bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		SoC:              config.Default(),
		EnableFetchCache: true,
		Output:           os.Stdout,
	}
}

// Harness runs programs and reports results.
type Harness struct {
	config   HarnessConfig
	programs []programs.Program
}

// NewHarness creates a new benchmark harness.
func NewHarness(hc HarnessConfig) *Harness {
	if hc.Output == nil {
		hc.Output = os.Stdout
	}
	if hc.SoC == nil {
		hc.SoC = config.Default()
	}
	return &Harness{config: hc}
}

// AddProgram adds a program to the harness.
func (h *Harness) AddProgram(p programs.Program) {
	h.programs = append(h.programs, p)
}

// AddPrograms adds multiple programs to the harness.
func (h *Harness) AddPrograms(ps []programs.Program) {
	h.programs = append(h.programs, ps...)
}

// RunAll executes all programs and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.programs))

	for _, p := range h.programs {
		results = append(results, h.runProgram(p))
	}

	return results
}

func (h *Harness) runProgram(p programs.Program) BenchmarkResult {
	cfg := h.config.SoC.Clone()
	cfg.FetchCache.Enabled = h.config.EnableFetchCache

	result := BenchmarkResult{
		Name:        p.Name,
		Description: p.Description,
	}

	s, err := soc.New(cfg, p.Image())
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	code, err := s.Run()
	result.WallTime = time.Since(start)

	stats := s.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.FetchStalls = stats.FetchStalls
	result.BusStalls = stats.BusStalls
	result.Traps = stats.Traps
	result.FetchHits = stats.FetchHits
	result.FetchMisses = stats.FetchMisses
	result.DMAWords = stats.DMAWords
	result.UARTFrames = stats.UARTFrames
	result.ExitCode = code
	result.Output = string(s.UARTOutput())

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Passed = code == p.ExpectedExit && result.Output == p.ExpectedOutput

	return result
}

// PrintResults outputs results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	w := h.config.Output

	_, _ = fmt.Fprintln(w, "=== RV32 SoC Benchmark Results ===")
	_, _ = fmt.Fprintln(w, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(w, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(w, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(w, "  Exit Code: %d\n", r.ExitCode)
		if r.Error != "" {
			_, _ = fmt.Fprintf(w, "  Error: %s\n", r.Error)
		}
		_, _ = fmt.Fprintln(w, "  --- Timing ---")
		_, _ = fmt.Fprintf(w, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(w, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(w, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(w, "  Fetch Stalls:         %d\n", r.FetchStalls)
		_, _ = fmt.Fprintf(w, "  Bus Stalls:           %d\n", r.BusStalls)
		_, _ = fmt.Fprintf(w, "  Traps:                %d\n", r.Traps)

		if r.FetchHits > 0 || r.FetchMisses > 0 {
			_, _ = fmt.Fprintln(w, "  --- Fetch Cache ---")
			_, _ = fmt.Fprintf(w, "  Hits:   %d\n", r.FetchHits)
			_, _ = fmt.Fprintf(w, "  Misses: %d\n", r.FetchMisses)
		}

		_, _ = fmt.Fprintf(w, "  Passed: %v\n", r.Passed)
		_, _ = fmt.Fprintf(w, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(w, "")
	}
}

// PrintCSV outputs results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,fetch_stalls,bus_stalls,traps,fetch_hits,fetch_misses,exit_code,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%v\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.FetchStalls,
			r.BusStalls,
			r.Traps,
			r.FetchHits,
			r.FetchMisses,
			r.ExitCode,
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
	Timestamp string        `json:"timestamp"`
	Config    config.Config `json:"config"`
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

// PrintJSON outputs results as an indented JSON report.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var summary ReportSummary
	summary.TotalBenchmarks = len(results)
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsRetired
		summary.TotalWallTime += r.WallTime
		if r.Passed {
			summary.Passed++
		}
	}
	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}

	cfg := h.config.SoC.Clone()
	cfg.FetchCache.Enabled = h.config.EnableFetchCache

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Config:    *cfg,
		},
		Results: results,
		Summary: summary,
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
