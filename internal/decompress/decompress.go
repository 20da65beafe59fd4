// Package decompress unwraps the stream compressions BFRES files ship
// in: Yaz0 (".szs", ".sbfres") and Zstandard (".zs").
package decompress

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/zstd"
)

// ErrCorrupt reports a compressed stream that ends early or refers back
// before its start.
var ErrCorrupt = errors.New("corrupt compressed stream")

// Kind is a detected stream compression.
type Kind uint8

const (
	None Kind = iota
	Yaz0
	Zstd
)

func (k Kind) String() string {
	switch k {
	case Yaz0:
		return "yaz0"
	case Zstd:
		return "zstd"
	}
	return "none"
}

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Detect sniffs the stream signature.
func Detect(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, []byte("Yaz0")), bytes.HasPrefix(data, []byte("Yaz1")):
		return Yaz0
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	}
	return None
}

// Bytes decompresses data according to its signature. Uncompressed
// input is returned unchanged with kind None.
func Bytes(data []byte) ([]byte, Kind, error) {
	kind := Detect(data)
	var out []byte
	var err error
	switch kind {
	case Yaz0:
		out, err = DecodeYaz0(data)
	case Zstd:
		out, err = DecodeZstd(data)
	default:
		return data, None, nil
	}
	if err != nil {
		return nil, kind, err
	}
	return out, kind, nil
}

// File reads path and decompresses it. Zstandard files are streamed
// rather than read whole first.
func File(path string) ([]byte, Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, None, fmt.Errorf("decompress: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if magic, _ := br.Peek(len(zstdMagic)); Detect(magic) == Zstd {
		zr := NewZstdReader(br)
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, Zstd, fmt.Errorf("decompress: zstd %s: %w", path, err)
		}
		return out, Zstd, nil
	}

	data, err := io.ReadAll(br)
	if err != nil {
		return nil, None, fmt.Errorf("decompress: read %s: %w", path, err)
	}
	return Bytes(data)
}

// DecodeZstd decompresses a whole Zstandard frame.
func DecodeZstd(src []byte) ([]byte, error) {
	out, err := zstd.Decompress(nil, src)
	if err != nil {
		return nil, fmt.Errorf("decompress: zstd: %w", err)
	}
	return out, nil
}

// NewZstdReader streams a Zstandard frame from r.
func NewZstdReader(r io.Reader) io.ReadCloser {
	return zstd.NewReader(r)
}

const yaz0HeaderSize = 16

// yaz0MaxRatio bounds output bytes per input byte: a three-byte
// back-reference copies at most 0xFF+0x12 bytes.
const yaz0MaxRatio = (0xFF + 0x12) / 3

// DecodeYaz0 decompresses a Yaz0/Yaz1 stream. The header holds the
// big-endian decompressed size at offset 4; data starts at 16. Each
// code byte covers eight chunks, MSB first: 1 copies a literal, 0 is a
// back-reference of 2 or 3 bytes.
func DecodeYaz0(src []byte) ([]byte, error) {
	if len(src) < yaz0HeaderSize {
		return nil, fmt.Errorf("decompress: yaz0 header: %w", ErrCorrupt)
	}
	size := int(binary.BigEndian.Uint32(src[4:]))
	if limit := (len(src) - yaz0HeaderSize) * yaz0MaxRatio; size > limit {
		return nil, fmt.Errorf("decompress: yaz0 size %d from %d bytes: %w", size, len(src), ErrCorrupt)
	}
	out := make([]byte, 0, size)
	pos := yaz0HeaderSize

	next := func() (byte, error) {
		if pos >= len(src) {
			return 0, fmt.Errorf("decompress: yaz0 at 0x%X: %w", pos, ErrCorrupt)
		}
		b := src[pos]
		pos++
		return b, nil
	}

	for len(out) < size {
		code, err := next()
		if err != nil {
			return nil, err
		}
		for bit := 7; bit >= 0 && len(out) < size; bit-- {
			if code>>bit&1 == 1 {
				b, err := next()
				if err != nil {
					return nil, err
				}
				out = append(out, b)
				continue
			}

			b1, err := next()
			if err != nil {
				return nil, err
			}
			b2, err := next()
			if err != nil {
				return nil, err
			}
			dist := (int(b1&0x0F)<<8 | int(b2)) + 1
			n := int(b1 >> 4)
			if n == 0 {
				b3, err := next()
				if err != nil {
					return nil, err
				}
				n = int(b3) + 0x12
			} else {
				n += 2
			}
			from := len(out) - dist
			if from < 0 {
				return nil, fmt.Errorf("decompress: yaz0 back-reference %d before start: %w", dist, ErrCorrupt)
			}
			// Byte-wise: the source may overlap what is being written.
			for i := 0; i < n && len(out) < size; i++ {
				out = append(out, out[from+i])
			}
		}
	}
	return out, nil
}
