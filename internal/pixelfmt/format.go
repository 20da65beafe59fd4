// Package pixelfmt decodes texture payloads into linear RGBA8.
//
// Every decoder takes tightly packed, already deswizzled data (rows of
// texels, or rows of 4x4 blocks for BCn) and returns width*height*4 bytes
// in R,G,B,A order, top row first.
package pixelfmt

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for format IDs with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported texture format")
	// ErrIncompleteTextureData is returned when the payload is shorter
	// than the dimensions require.
	ErrIncompleteTextureData = errors.New("incomplete texture data")
)

// FormatID is the high byte of a texture's format word.
type FormatID uint8

const (
	R8         FormatID = 0x02
	R5G6B5     FormatID = 0x07
	R8G8       FormatID = 0x09
	R16        FormatID = 0x0A
	R8G8B8A8   FormatID = 0x0B
	B8G8R8A8   FormatID = 0x0C
	R11G11B10  FormatID = 0x0F
	R32        FormatID = 0x14
	BC1        FormatID = 0x1A
	BC2        FormatID = 0x1B
	BC3        FormatID = 0x1C
	BC4        FormatID = 0x1D
	BC5        FormatID = 0x1E
	FormatNone FormatID = 0x00
)

// DataType is the low byte of a texture's format word.
type DataType uint8

const (
	UNorm  DataType = 1
	SNorm  DataType = 2
	UInt   DataType = 3
	SInt   DataType = 4
	Single DataType = 5
	SRGB   DataType = 6
	UHalf  DataType = 10
)

func (d DataType) String() string {
	switch d {
	case UNorm:
		return "UNorm"
	case SNorm:
		return "SNorm"
	case UInt:
		return "UInt"
	case SInt:
		return "SInt"
	case Single:
		return "Single"
	case SRGB:
		return "SRGB"
	case UHalf:
		return "UHalf"
	}
	return fmt.Sprintf("DataType(%d)", uint8(d))
}

// SplitFormat splits a 16-bit format word into type and data type.
func SplitFormat(word uint16) (FormatID, DataType) {
	return FormatID(word >> 8), DataType(word & 0xFF)
}

// Decoder turns packed texture data into RGBA8.
type Decoder func(data []byte, width, height int, dt DataType) ([]byte, error)

// Format holds the static properties of one texture format.
// BytesPerPixel is per block for compressed formats.
type Format struct {
	ID            FormatID
	Name          string
	BytesPerPixel int
	BlockWidth    int
	BlockHeight   int
	Decode        Decoder
}

// Compressed reports whether the format is block compressed.
func (f Format) Compressed() bool {
	return f.BlockWidth > 1 || f.BlockHeight > 1
}

// DataSize returns the packed payload size of a width x height image.
func (f Format) DataSize(width, height int) int {
	bw, bh := max(f.BlockWidth, 1), max(f.BlockHeight, 1)
	return ((width + bw - 1) / bw) * ((height + bh - 1) / bh) * f.BytesPerPixel
}

// Table maps format IDs to their properties. The zero Table supports
// nothing; use DefaultTable.
type Table map[FormatID]Format

// DefaultTable returns every format this package can decode.
func DefaultTable() Table {
	return Table{
		R8:        {ID: R8, Name: "R8", BytesPerPixel: 1, BlockWidth: 1, BlockHeight: 1, Decode: decodeR8},
		R5G6B5:    {ID: R5G6B5, Name: "R5G6B5", BytesPerPixel: 2, BlockWidth: 1, BlockHeight: 1, Decode: decodeR5G6B5},
		R8G8:      {ID: R8G8, Name: "R8G8", BytesPerPixel: 2, BlockWidth: 1, BlockHeight: 1, Decode: decodeR8G8},
		R16:       {ID: R16, Name: "R16", BytesPerPixel: 2, BlockWidth: 1, BlockHeight: 1, Decode: decodeR16},
		R8G8B8A8:  {ID: R8G8B8A8, Name: "R8G8B8A8", BytesPerPixel: 4, BlockWidth: 1, BlockHeight: 1, Decode: decodeR8G8B8A8},
		B8G8R8A8:  {ID: B8G8R8A8, Name: "B8G8R8A8", BytesPerPixel: 4, BlockWidth: 1, BlockHeight: 1, Decode: decodeB8G8R8A8},
		R11G11B10: {ID: R11G11B10, Name: "R11G11B10", BytesPerPixel: 4, BlockWidth: 1, BlockHeight: 1, Decode: decodeR11G11B10},
		R32:       {ID: R32, Name: "R32", BytesPerPixel: 4, BlockWidth: 1, BlockHeight: 1, Decode: decodeR32},
		BC1:       {ID: BC1, Name: "BC1", BytesPerPixel: 8, BlockWidth: 4, BlockHeight: 4, Decode: decodeBC1},
		BC2:       {ID: BC2, Name: "BC2", BytesPerPixel: 16, BlockWidth: 4, BlockHeight: 4, Decode: decodeBC2},
		BC3:       {ID: BC3, Name: "BC3", BytesPerPixel: 16, BlockWidth: 4, BlockHeight: 4, Decode: decodeBC3},
		BC4:       {ID: BC4, Name: "BC4", BytesPerPixel: 8, BlockWidth: 4, BlockHeight: 4, Decode: decodeBC4},
		BC5:       {ID: BC5, Name: "BC5", BytesPerPixel: 16, BlockWidth: 4, BlockHeight: 4, Decode: decodeBC5},
	}
}

// Lookup returns the properties of id.
func (t Table) Lookup(id FormatID) (Format, error) {
	f, ok := t[id]
	if !ok {
		return Format{}, fmt.Errorf("pixelfmt: format 0x%02X: %w", uint8(id), ErrUnsupportedFormat)
	}
	return f, nil
}

// Name returns a display name for id, even when unsupported.
func (t Table) Name(id FormatID) string {
	if f, ok := t[id]; ok {
		return f.Name
	}
	return fmt.Sprintf("0x%02X", uint8(id))
}

// Decode looks up id and runs its decoder.
func (t Table) Decode(id FormatID, dt DataType, data []byte, width, height int) ([]byte, error) {
	f, err := t.Lookup(id)
	if err != nil {
		return nil, err
	}
	return f.Decode(data, width, height, dt)
}

func checkSize(name string, data []byte, need int) error {
	if len(data) < need {
		return fmt.Errorf("pixelfmt: %s: have %d bytes, need %d: %w", name, len(data), need, ErrIncompleteTextureData)
	}
	return nil
}
