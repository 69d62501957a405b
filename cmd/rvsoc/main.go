// Command rvsoc runs RV32 firmware on the cycle-level SoC model.
//
// Usage:
//
//	rvsoc [options] <firmware.hex|firmware.elf>
//	rvsoc [options] -demo hello
//
// Firmware bytes received on the UART are written to stdout as they are
// decoded. The process exits with the value the firmware wrote to SIM_EXIT.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/sarchlab/rvsoc/config"
	"github.com/sarchlab/rvsoc/emu"
	"github.com/sarchlab/rvsoc/loader"
	"github.com/sarchlab/rvsoc/programs"
	"github.com/sarchlab/rvsoc/timing/bus"
	"github.com/sarchlab/rvsoc/timing/soc"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	cycles     uint64
	verbosity  int
	cache      bool
	demo       string
	functional bool
	stats      bool
	cpuProfile string
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}

	fs := flag.NewFlagSet("rvsoc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to a JSON, YAML or TOML SoC configuration")
	fs.Uint64Var(&opts.cycles, "cycles", 0, "Override the cycle limit (0 keeps the configured limit)")
	fs.IntVar(&opts.verbosity, "v", -1, "Log verbosity (-1 disables logging)")
	fs.BoolVar(&opts.cache, "cache", false, "Enable the fetch cache")
	fs.StringVar(&opts.demo, "demo", "",
		"Run a built-in program instead of a file ("+strings.Join(programs.Names(), ", ")+")")
	fs.BoolVar(&opts.functional, "emu", false, "Run the functional reference emulator instead of the SoC")
	fs.BoolVar(&opts.stats, "stats", false, "Print statistics to stderr after the run")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "Write a CPU profile to file")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: rvsoc [options] <firmware.hex|firmware.elf>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}

	return opts, fs, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if (opts.demo == "") == (fs.NArg() == 0) {
		fs.Usage()
		return 1
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error creating CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error starting CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	img, err := loadImage(opts, fs)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading firmware: %v\n", err)
		return 1
	}

	log := newLogger(stderr, opts.verbosity)

	if opts.functional {
		return runEmulation(cfg, img, stdout, stderr)
	}

	return runTiming(cfg, img, log, opts.stats, stdout, stderr)
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.cycles != 0 {
		cfg.MaxCycles = opts.cycles
	}
	if opts.cache {
		cfg.FetchCache.Enabled = true
	}

	return cfg, cfg.Validate()
}

func loadImage(opts *options, fs *flag.FlagSet) (*loader.Image, error) {
	if opts.demo != "" {
		p, err := programs.Lookup(opts.demo)
		if err != nil {
			return nil, err
		}
		return p.Image(), nil
	}
	return loader.Load(fs.Arg(0))
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	if verbosity < 0 {
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

// runTiming runs the image on the cycle-level SoC.
func runTiming(
	cfg *config.Config,
	img *loader.Image,
	log logr.Logger,
	printStats bool,
	stdout, stderr io.Writer,
) int {
	s, err := soc.New(cfg, img, soc.WithLogger(log), soc.WithUARTOutput(stdout))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error building SoC: %v\n", err)
		return 1
	}

	code, err := s.Run()
	if printStats {
		printReport(stderr, s.Stats())
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return int(code)
}

// runEmulation runs the image on the functional reference model. IO stores
// are discarded, so no UART output is produced.
func runEmulation(cfg *config.Config, img *loader.Image, stdout, stderr io.Writer) int {
	rom, err := emu.NewROM(cfg.ROMWords, img.ROM)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading ROM: %v\n", err)
		return 1
	}
	ram := emu.NewMemory(cfg.RAMWords)
	if err := ram.Load(img.RAM); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading RAM: %v\n", err)
		return 1
	}

	e := emu.NewEmulator(rom,
		emu.WithDataPort(bus.Map{ROM: rom, RAM: ram}),
		emu.WithMaxInstructions(cfg.MaxCycles),
	)

	code, err := e.Run()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "Exit code: %d\n", code)
	_, _ = fmt.Fprintf(stdout, "Instructions executed: %d\n", e.InstructionCount())

	return int(code)
}

func printReport(w io.Writer, st soc.Stats) {
	cycles := st.Cycles
	if cycles == 0 {
		cycles = 1
	}
	pct := func(n uint64) float64 { return 100.0 * float64(n) / float64(cycles) }

	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Total Instructions: %d\n", st.Instructions)
	_, _ = fmt.Fprintf(w, "Total Cycles: %d\n", st.Cycles)
	_, _ = fmt.Fprintf(w, "CPI: %.2f\n", st.CPI())
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Breakdown:\n")
	_, _ = fmt.Fprintf(w, "  Fetch stalls: %6d cycles (%5.1f%%)\n", st.FetchStalls, pct(st.FetchStalls))
	_, _ = fmt.Fprintf(w, "  Bus stalls:   %6d cycles (%5.1f%%)\n", st.BusStalls, pct(st.BusStalls))
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Events:\n")
	_, _ = fmt.Fprintf(w, "  Traps:          %d\n", st.Traps)
	_, _ = fmt.Fprintf(w, "  Returns:        %d\n", st.Returns)
	_, _ = fmt.Fprintf(w, "  MEPC writes:    %d (%d over a capture)\n", st.MEPCSoftwareWrites, st.MEPCCollisions)
	_, _ = fmt.Fprintf(w, "  DMA transfers:  %d (%d words, %d rejected)\n", st.DMATransfers, st.DMAWords, st.DMARejected)
	_, _ = fmt.Fprintf(w, "  Masked writes:  %d\n", st.MaskedWrites)
	_, _ = fmt.Fprintf(w, "  UART frames:    %d (%d dropped, %d received)\n", st.UARTFrames, st.UARTDropped, st.UARTBytes)
	if st.FetchHits > 0 || st.FetchMisses > 0 {
		_, _ = fmt.Fprintf(w, "  Fetch cache:    %d hits, %d misses\n", st.FetchHits, st.FetchMisses)
	}
}
