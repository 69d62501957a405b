// Package loader reads firmware images for the SoC from hex and ELF files.
package loader

import (
	"path/filepath"
	"strings"
)

// Image is the boot contents of the memories, word 0 first.
type Image struct {
	ROM []uint32
	RAM []uint32
	// Entry is the ELF entry point. The core always resets to 0, so a
	// non-zero entry only matters to callers that check it.
	Entry uint32
}

// Load reads an image, choosing ELF for .elf files and hex otherwise.
func Load(path string) (*Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".elf") {
		return LoadELF(path)
	}
	return LoadHex(path)
}
