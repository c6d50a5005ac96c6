// Package loader reads machine program images: a flat sequence of
// 32-bit big-endian words with no header.
package loader

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrEmptyProgram     = errors.New("program contains no instructions")
	ErrTruncatedProgram = errors.New("program size is not a multiple of 4 bytes")
)

// Load reads a program from path. An empty path or "-" reads stdin.
func Load(path string) ([]uint32, error) {
	if path == "" || path == "-" {
		return LoadReader(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open program: %w", err)
	}
	defer f.Close()

	words, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// LoadReader decodes a program image from r.
func LoadReader(r io.Reader) ([]uint32, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%d bytes: %w", len(data), ErrTruncatedProgram)
	}
	if len(data) == 0 {
		return nil, ErrEmptyProgram
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(data[i*4:])
	}
	return words, nil
}
