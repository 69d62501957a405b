package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadHex parses $readmemh-style text: whitespace-separated hex words, with
// "@index" setting the next word index and "//" or "#" starting a comment.
func ReadHex(r io.Reader) ([]uint32, error) {
	var words []uint32
	index := 0

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, "//"); i >= 0 {
			text = text[:i]
		}
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		for _, tok := range strings.Fields(text) {
			if strings.HasPrefix(tok, "@") {
				v, err := strconv.ParseUint(tok[1:], 16, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad address %q: %w", line, tok, err)
				}
				index = int(v)
				continue
			}

			v, err := strconv.ParseUint(strings.ReplaceAll(tok, "_", ""), 16, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad word %q: %w", line, tok, err)
			}

			if index >= len(words) {
				grown := make([]uint32, index+1)
				copy(grown, words)
				words = grown
			}
			words[index] = uint32(v)
			index++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hex image: %w", err)
	}

	return words, nil
}

// LoadHex reads a hex file into a ROM image.
func LoadHex(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hex file: %w", err)
	}
	defer func() { _ = f.Close() }()

	words, err := ReadHex(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Image{ROM: words}, nil
}
