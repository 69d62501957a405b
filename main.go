// Package main prints a short pointer to the rvsoc command.
//
// For the full CLI, use: go run ./cmd/rvsoc
package main

import (
	"fmt"
	"strings"

	"github.com/sarchlab/rvsoc/programs"
)

func main() {
	fmt.Println("rvsoc - RV32 SoC cycle simulator")
	fmt.Println("")
	fmt.Println("Usage: rvsoc [options] <firmware.hex|firmware.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    SoC configuration (JSON, YAML or TOML)")
	fmt.Println("  -cache     Enable the fetch cache")
	fmt.Println("  -emu       Run the functional reference emulator")
	fmt.Println("  -stats     Print statistics after the run")
	fmt.Println("  -v         Log verbosity")
	fmt.Printf("  -demo      Built-in program (%s)\n", strings.Join(programs.Names(), ", "))
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsoc' for the full CLI.")
}
