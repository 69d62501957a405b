package loader

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sarchlab/rvsoc/timing/bus"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a parsed RV32 ELF executable.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
}

// LoadELF parses a little-endian RV32 ELF executable and places its
// segments into ROM and RAM images.
func LoadELF(path string) (*Image, error) {
	prog, err := ReadELF(path)
	if err != nil {
		return nil, err
	}
	return prog.Image()
}

// ReadELF parses a little-endian RV32 ELF executable.
func ReadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}

	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file")
	}

	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{EntryPoint: uint32(f.Entry)}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}

// Image places the program's segments by region. Segments aimed at the IO
// region are rejected.
func (p *Program) Image() (*Image, error) {
	img := &Image{Entry: p.EntryPoint}

	for _, seg := range p.Segments {
		region := bus.Decode(seg.VirtAddr)

		var base uint32
		var dst *[]uint32
		switch region {
		case bus.RegionROM:
			base, dst = bus.ROMBase, &img.ROM
		case bus.RegionRAM:
			base, dst = bus.RAMBase, &img.RAM
		default:
			return nil, fmt.Errorf("segment at 0x%08x targets the %v region", seg.VirtAddr, region)
		}

		if seg.VirtAddr%4 != 0 {
			return nil, fmt.Errorf("segment at 0x%08x is not word aligned", seg.VirtAddr)
		}

		size := seg.MemSize
		if size < uint32(len(seg.Data)) {
			size = uint32(len(seg.Data))
		}

		start := int((seg.VirtAddr - base) / 4)
		words := int((size + 3) / 4)
		if need := start + words; need > len(*dst) {
			grown := make([]uint32, need)
			copy(grown, *dst)
			*dst = grown
		}

		padded := make([]byte, words*4)
		copy(padded, seg.Data)
		for i := 0; i < words; i++ {
			(*dst)[start+i] = binary.LittleEndian.Uint32(padded[i*4:])
		}
	}

	return img, nil
}
