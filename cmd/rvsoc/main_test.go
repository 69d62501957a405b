package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsoc/insts"
	"github.com/sarchlab/rvsoc/programs"
)

var _ = Describe("rvsoc", func() {
	var (
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		dir    string
	)

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		dir = GinkgoT().TempDir()
	})

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	writeHex := func(words []uint32) string {
		var buf bytes.Buffer
		for _, w := range words {
			fmt.Fprintf(&buf, "%08x\n", w)
		}
		return writeFile("firmware.hex", buf.String())
	}

	It("should print usage without firmware", func() {
		Expect(run(nil, stdout, stderr)).To(Equal(1))
		Expect(stderr.String()).To(ContainSubstring("Usage: rvsoc"))
	})

	It("should reject both -demo and a file", func() {
		Expect(run([]string{"-demo", "hello", "x.hex"}, stdout, stderr)).To(Equal(1))
	})

	It("should reject an unknown flag", func() {
		Expect(run([]string{"-bogus"}, stdout, stderr)).To(Equal(1))
	})

	It("should reject an unknown demo", func() {
		Expect(run([]string{"-demo", "nope"}, stdout, stderr)).To(Equal(1))
		Expect(stderr.String()).To(ContainSubstring("Error loading firmware"))
	})

	It("should stream UART output of a demo", func() {
		Expect(run([]string{"-demo", "hello"}, stdout, stderr)).To(Equal(0))
		Expect(stdout.String()).To(Equal(programs.HelloMessage))
	})

	It("should exit with the firmware's code and print stats", func() {
		code := run([]string{"-demo", "timer-trap", "-cache", "-stats"}, stdout, stderr)
		Expect(code).To(Equal(programs.TimerTrapCount))
		Expect(stderr.String()).To(ContainSubstring("CPI:"))
		Expect(stderr.String()).To(ContainSubstring("Fetch cache:"))
	})

	It("should honor a config file and the cycle override", func() {
		cfgPath := writeFile("soc.yaml", "ticks_per_bit: 2\nmax_cycles: 0\n")
		Expect(run([]string{"-config", cfgPath, "-cycles", "5", "-demo", "hello"}, stdout, stderr)).
			To(Equal(1))
		Expect(stderr.String()).To(ContainSubstring("cycle limit"))
	})

	It("should report a bad config file", func() {
		cfgPath := writeFile("soc.json", "{")
		Expect(run([]string{"-config", cfgPath, "-demo", "hello"}, stdout, stderr)).To(Equal(1))
		Expect(stderr.String()).To(ContainSubstring("Error loading config"))
	})

	It("should run a hex image on the functional emulator", func() {
		path := writeHex([]uint32{
			insts.ADDI(10, 0, 7),
			insts.ADDI(10, 10, 5),
			insts.JAL(0, 0),
		})

		Expect(run([]string{"-emu", path}, stdout, stderr)).To(Equal(12))
		Expect(stdout.String()).To(ContainSubstring("Instructions executed: 2"))
	})

	It("should log when verbosity is enabled", func() {
		Expect(run([]string{"-v", "0", "-demo", "hello"}, stdout, stderr)).To(Equal(0))
		Expect(stderr.String()).To(ContainSubstring("halt"))
	})
})
