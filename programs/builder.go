// Package programs builds RV32 firmware images in Go and ships the demo
// programs the CLI and tests run.
package programs

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rvsoc/insts"
)

// ErrUnknownLabel is returned by Build when a branch or jump names a label
// that was never defined.
var ErrUnknownLabel = errors.New("unknown label")

type fixupKind uint8

const (
	fixupBranch fixupKind = iota
	fixupJump
)

type fixup struct {
	index int
	label string
	kind  fixupKind
	rd    uint8
	rs1   uint8
	rs2   uint8
}

// Builder assembles a program word by word. Branch and jump targets are
// labels resolved by Build.
type Builder struct {
	words  []uint32
	labels map[string]uint32
	fixups []fixup
	err    error
}

// NewBuilder creates an empty program starting at address 0.
func NewBuilder() *Builder {
	return &Builder{labels: make(map[string]uint32)}
}

// PC returns the address of the next emitted word.
func (b *Builder) PC() uint32 {
	return uint32(4 * len(b.words))
}

// Label names the current address.
func (b *Builder) Label(name string) *Builder {
	if _, ok := b.labels[name]; ok {
		b.fail(fmt.Errorf("label %q defined twice", name))
		return b
	}
	b.labels[name] = b.PC()
	return b
}

// Emit appends raw instruction words.
func (b *Builder) Emit(words ...uint32) *Builder {
	b.words = append(b.words, words...)
	return b
}

// Org pads with NOPs up to addr.
func (b *Builder) Org(addr uint32) *Builder {
	if addr%4 != 0 || addr < b.PC() {
		b.fail(fmt.Errorf("org 0x%x: current address is already 0x%x", addr, b.PC()))
		return b
	}
	for b.PC() < addr {
		b.words = append(b.words, insts.NOP)
	}
	return b
}

// BEQ branches to label when rs1 equals rs2.
func (b *Builder) BEQ(rs1, rs2 uint8, label string) *Builder {
	b.fixups = append(b.fixups, fixup{index: len(b.words), label: label, kind: fixupBranch, rs1: rs1, rs2: rs2})
	b.words = append(b.words, 0)
	return b
}

// JAL jumps to label, linking into rd.
func (b *Builder) JAL(rd uint8, label string) *Builder {
	b.fixups = append(b.fixups, fixup{index: len(b.words), label: label, kind: fixupJump, rd: rd})
	b.words = append(b.words, 0)
	return b
}

// Jump jumps to label without linking.
func (b *Builder) Jump(label string) *Builder {
	return b.JAL(0, label)
}

// Halt emits a jump to itself.
func (b *Builder) Halt() *Builder {
	return b.Emit(insts.JAL(0, 0))
}

// LoadImm loads a 32-bit constant into rd with LUI and ADDI.
func (b *Builder) LoadImm(rd uint8, value uint32) *Builder {
	lo := int32(value<<20) >> 20
	hi := (value - uint32(lo)) >> 12

	if hi == 0 {
		return b.Emit(insts.ADDI(rd, 0, lo))
	}

	b.Emit(insts.LUI(rd, hi))
	if lo != 0 {
		b.Emit(insts.ADDI(rd, rd, lo))
	}
	return b
}

// Build resolves labels and returns the image.
func (b *Builder) Build() ([]uint32, error) {
	if b.err != nil {
		return nil, b.err
	}

	out := make([]uint32, len(b.words))
	copy(out, b.words)

	for _, f := range b.fixups {
		target, ok := b.labels[f.label]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, f.label)
		}

		offset := int32(target) - int32(4*f.index)
		switch f.kind {
		case fixupBranch:
			out[f.index] = insts.BEQ(f.rs1, f.rs2, offset)
		case fixupJump:
			out[f.index] = insts.JAL(f.rd, offset)
		}
	}

	return out, nil
}

// MustBuild is like Build but panics on error. It is meant for programs
// fixed at compile time.
func (b *Builder) MustBuild() []uint32 {
	words, err := b.Build()
	if err != nil {
		panic(err)
	}
	return words
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
