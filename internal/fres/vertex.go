package fres

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// AttribFormat is a vertex attribute format word: (type<<8) | numeric.
type AttribFormat uint32

// Numeric interpretations.
const (
	NumericUNorm = 1
	NumericSNorm = 2
	NumericUInt  = 3
	NumericSInt  = 4
	NumericFloat = 5
)

type attribType struct {
	name  string
	comps int
	bits  int // per component; 0 for the packed 10_10_10_2 type
}

var attribTypes = map[uint32]attribType{
	0x02: {"8", 1, 8},
	0x09: {"8_8", 2, 8},
	0x0B: {"8_8_8_8", 4, 8},
	0x0E: {"10_10_10_2", 4, 0},
	0x0A: {"16", 1, 16},
	0x12: {"16_16", 2, 16},
	0x15: {"16_16_16_16", 4, 16},
	0x14: {"32", 1, 32},
	0x17: {"32_32", 2, 32},
	0x18: {"32_32_32", 3, 32},
	0x19: {"32_32_32_32", 4, 32},
}

var numericNames = [...]string{"", "unorm", "snorm", "uint", "sint", "float"}

func (f AttribFormat) Type() uint32    { return uint32(f) >> 8 }
func (f AttribFormat) Numeric() uint32 { return uint32(f) & 0xFF }

// Components returns the component count, or 0 for unknown types.
func (f AttribFormat) Components() int {
	return attribTypes[f.Type()].comps
}

// Size returns the encoded byte width of one element.
func (f AttribFormat) Size() int {
	t, ok := attribTypes[f.Type()]
	if !ok {
		return 0
	}
	if t.bits == 0 {
		return 4
	}
	return t.comps * t.bits / 8
}

func (f AttribFormat) String() string {
	t, ok := attribTypes[f.Type()]
	n := f.Numeric()
	if !ok || int(n) >= len(numericNames) || n == 0 {
		return fmt.Sprintf("0x%04X", uint32(f))
	}
	return t.name + "_" + numericNames[n]
}

// Attribute describes one vertex attribute stream.
type Attribute struct {
	Name        string
	Format      AttribFormat
	Offset      int
	BufferIndex int
}

// Buffer is one interleaved vertex data block.
type Buffer struct {
	Stride int
	Data   []byte
}

// VertexBuffer is an FVTX: attribute descriptors over one or more data
// blocks in the buffer section.
type VertexBuffer struct {
	Index         int
	VertexCount   int
	SkinInfluence int
	Attributes    []*Attribute
	Buffers       []Buffer
}

func (d *decoder) vertexBuffer(off int64) (*VertexBuffer, error) {
	hdr, err := d.r.ReadStruct(off, fvtxLayout)
	if err != nil {
		return nil, err
	}
	vb := &VertexBuffer{
		Index:         int(hdr.Uint("index")),
		VertexCount:   int(hdr.Uint("vertexCount")),
		SkinInfluence: int(hdr.Uint("skinInfluence")),
	}

	base := hdr.Offset("attribArray")
	for i := range int(hdr.Uint("attribCount")) {
		rec, err := d.r.ReadStruct(base+int64(i)*attribLayout.Size(), attribLayout)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		vb.Attributes = append(vb.Attributes, &Attribute{
			Name:        rec.Str("name"),
			Format:      AttribFormat(rec.Uint("format")),
			Offset:      int(rec.Uint("offset")),
			BufferIndex: int(rec.Uint("bufferIndex")),
		})
	}

	infos := hdr.Offset("bufferInfoArray")
	strides := hdr.Offset("strideArray")
	pos := d.buf.Data + int64(hdr.Uint("bufferOffset"))
	for j := range int(hdr.Uint("bufferCount")) {
		size, err := d.r.U32(infos + int64(j)*bufferInfoSize)
		if err != nil {
			return nil, fmt.Errorf("buffer %d info: %w", j, err)
		}
		stride, err := d.r.U32(strides + int64(j)*strideInfoSize)
		if err != nil {
			return nil, fmt.Errorf("buffer %d stride: %w", j, err)
		}
		data, err := d.r.Bytes(pos, int64(size))
		if err != nil {
			return nil, fmt.Errorf("buffer %d data: %w", j, err)
		}
		vb.Buffers = append(vb.Buffers, Buffer{Stride: int(stride), Data: data})
		pos += int64(size+7) &^ 7
	}

	for _, a := range vb.Attributes {
		if a.BufferIndex >= len(vb.Buffers) {
			return nil, fmt.Errorf("attribute %q buffer %d of %d: %w",
				a.Name, a.BufferIndex, len(vb.Buffers), ErrBadReference)
		}
	}
	return vb, nil
}

// Attribute returns the attribute with the given name.
func (vb *VertexBuffer) Attribute(name string) (*Attribute, bool) {
	for _, a := range vb.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Decode converts the named attribute to one float vector per vertex.
// Missing components read as 0, except w which reads as 1.
func (vb *VertexBuffer) Decode(name string) ([][4]float32, error) {
	a, ok := vb.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("fres: attribute %q: not present", name)
	}
	t, ok := attribTypes[a.Format.Type()]
	if !ok || !numericSupported(t, a.Format.Numeric()) {
		return nil, fmt.Errorf("fres: attribute %q format %s: %w", name, a.Format, ErrUnsupportedAttribute)
	}
	buf := vb.Buffers[a.BufferIndex]
	size := a.Format.Size()
	out := make([][4]float32, vb.VertexCount)
	for v := range out {
		start := v*buf.Stride + a.Offset
		if start+size > len(buf.Data) {
			return nil, fmt.Errorf("fres: attribute %q vertex %d: %w", name, v, ErrBadReference)
		}
		out[v] = decodeElement(buf.Data[start:start+size], t, a.Format.Numeric())
	}
	return out, nil
}

func numericSupported(t attribType, n uint32) bool {
	switch {
	case n < NumericUNorm || n > NumericFloat:
		return false
	case n == NumericFloat:
		return t.bits == 16 || t.bits == 32
	}
	return true
}

func decodeElement(b []byte, t attribType, numeric uint32) [4]float32 {
	out := [4]float32{0, 0, 0, 1}
	if t.bits == 0 {
		return decode1010102(binary.LittleEndian.Uint32(b), numeric)
	}
	for c := range t.comps {
		switch t.bits {
		case 8:
			out[c] = scalar(uint64(b[c]), 8, numeric)
		case 16:
			v := binary.LittleEndian.Uint16(b[c*2:])
			if numeric == NumericFloat {
				out[c] = halfToFloat(v)
			} else {
				out[c] = scalar(uint64(v), 16, numeric)
			}
		case 32:
			v := binary.LittleEndian.Uint32(b[c*4:])
			if numeric == NumericFloat {
				out[c] = math.Float32frombits(v)
			} else {
				out[c] = scalar(uint64(v), 32, numeric)
			}
		}
	}
	return out
}

// scalar interprets the low bits of v as an integer component.
func scalar(v uint64, bits uint, numeric uint32) float32 {
	top := float64(uint64(1)<<bits - 1)
	half := float64(uint64(1)<<(bits-1) - 1)
	signed := int64(v<<(64-bits)) >> (64 - bits)
	switch numeric {
	case NumericUNorm:
		return float32(float64(v) / top)
	case NumericSNorm:
		return float32(math.Max(float64(signed)/half, -1))
	case NumericSInt:
		return float32(signed)
	}
	return float32(v)
}

func decode1010102(w uint32, numeric uint32) [4]float32 {
	var out [4]float32
	for c := range 3 {
		out[c] = scalar(uint64(w>>(10*c)&0x3FF), 10, numeric)
	}
	out[3] = scalar(uint64(w>>30), 2, numeric)
	return out
}

// halfToFloat widens an IEEE 754 binary16 value.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h) & 0x3FF
	switch {
	case exp == 0 && frac == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal: value = frac * 2^-24
		f := float32(frac) / (1 << 24)
		if sign != 0 {
			return -f
		}
		return f
	case exp == 0x1F:
		return math.Float32frombits(sign | 0xFF<<23 | frac<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
}

// Dump renders the buffer's attributes and blocks.
func (vb *VertexBuffer) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vertex buffer %d: %d vertices, skin influence %d\n",
		vb.Index, vb.VertexCount, vb.SkinInfluence)
	for _, a := range vb.Attributes {
		fmt.Fprintf(&b, "  Attr %-8q %-22s buffer %d offset %d\n", a.Name, a.Format, a.BufferIndex, a.Offset)
	}
	for j, buf := range vb.Buffers {
		fmt.Fprintf(&b, "  Buffer %d: stride %d, %d bytes\n", j, buf.Stride, len(buf.Data))
	}
	return b.String()
}
