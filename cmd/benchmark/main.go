// Command benchmark runs the built-in firmware through the SoC harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv       Output results in CSV format (default: human-readable)
//	-json      Output a JSON report
//	-no-cache  Disable the fetch cache
//	-config    SoC configuration file
//
// Example:
//
//	# Compare runs with and without the fetch cache
//	go run ./cmd/benchmark -csv > cached.csv
//	go run ./cmd/benchmark -csv -no-cache > uncached.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rvsoc/benchmarks"
	"github.com/sarchlab/rvsoc/config"
	"github.com/sarchlab/rvsoc/programs"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as a JSON report")
	noCache := flag.Bool("no-cache", false, "Disable the fetch cache")
	configPath := flag.String("config", "", "Path to a SoC configuration file")
	flag.Parse()

	hc := benchmarks.DefaultConfig()
	hc.EnableFetchCache = !*noCache
	hc.Output = os.Stdout

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		hc.SoC = cfg
	}

	harness := benchmarks.NewHarness(hc)
	harness.AddPrograms(programs.All())

	if !*csvOutput && !*jsonOutput {
		fmt.Println("RV32 SoC Benchmark Harness")
		fmt.Println("==========================")
		fmt.Printf("Fetch cache: %v\n", hc.EnableFetchCache)
		fmt.Printf("Ticks per bit: %d\n", hc.SoC.TicksPerBit)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	for _, r := range results {
		if !r.Passed {
			os.Exit(1)
		}
	}
}
