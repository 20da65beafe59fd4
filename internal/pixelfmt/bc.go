package pixelfmt

import (
	"encoding/binary"
	"math"
)

// expand565 unpacks an RGB565 endpoint with bit replication.
func expand565(c uint16) [4]uint8 {
	r := uint8(c>>11&0x1F) << 3
	g := uint8(c>>5&0x3F) << 2
	b := uint8(c&0x1F) << 3
	return [4]uint8{r | r>>5, g | g>>6, b | b>>5, 0xFF}
}

// colorPalette builds the four colours of a BC1-style block. In
// punch-through mode (BC1 with c0 <= c1) entry 2 is the midpoint and
// entry 3 is transparent black.
func colorPalette(c0, c1 uint16, bc1 bool) [4][4]uint8 {
	var p [4][4]uint8
	p[0] = expand565(c0)
	p[1] = expand565(c1)
	if c0 > c1 || !bc1 {
		for i := range 3 {
			a, b := int(p[0][i]), int(p[1][i])
			p[2][i] = uint8((2*a + b) / 3)
			p[3][i] = uint8((a + 2*b) / 3)
		}
		p[2][3], p[3][3] = 0xFF, 0xFF
		return p
	}
	for i := range 3 {
		p[2][i] = uint8((int(p[0][i]) + int(p[1][i])) / 2)
	}
	p[2][3] = 0xFF
	return p
}

// alphaPalette builds the eight-entry interpolated ramp used by BC3
// alpha and BC4/BC5 channels.
func alphaPalette(a0, a1 uint8) [8]uint8 {
	var p [8]uint8
	p[0], p[1] = a0, a1
	x, y := int(a0), int(a1)
	if a0 > a1 {
		for i := 2; i < 8; i++ {
			p[i] = uint8((x*(8-i) + y*(i-1)) / 7)
		}
		return p
	}
	for i := 2; i < 6; i++ {
		p[i] = uint8((x*(6-i) + y*(i-1)) / 5)
	}
	p[6], p[7] = 0x00, 0xFF
	return p
}

// signedAlphaPalette is alphaPalette for SNORM data. Entries are stored
// as the unsigned bytes of signed values.
func signedAlphaPalette(a0, a1 uint8) [8]uint8 {
	var p [8]uint8
	p[0], p[1] = a0, a1
	x, y := toSigned8(int(a0)), toSigned8(int(a1))
	if x > y {
		for i := 2; i < 8; i++ {
			p[i] = uint8(toUnsigned8(floorDiv(x*(8-i)+y*(i-1), 7)))
		}
		return p
	}
	for i := 2; i < 6; i++ {
		p[i] = uint8(toUnsigned8(floorDiv(x*(6-i)+y*(i-1), 5)))
	}
	p[6], p[7] = 0x80, 0x7F
	return p
}

func toSigned8(v int) int {
	switch {
	case v > 255:
		return -1
	case v < 0:
		return 0
	case v > 127:
		return v - 256
	}
	return v
}

func toUnsigned8(v int) int {
	switch {
	case v > 127:
		return 127
	case v < -128:
		return 128
	case v < 0:
		return v + 256
	}
	return v
}

// floorDiv divides rounding toward negative infinity (d > 0).
func floorDiv(n, d int) int {
	q := n / d
	if n%d != 0 && n < 0 {
		q--
	}
	return q
}

// indices48 reads the 48-bit 3-bit-per-texel index field at b[0:6].
func indices48(b []byte) uint64 {
	var v uint64
	for i := range 6 {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// blockLoop calls fn for every texel inside the image, block by block.
// fn receives the block's byte offset, the texel index within the block
// (row-major, 0..15), and the texel's output offset.
func blockLoop(width, height, blockSize int, fn func(blk, p, out int)) {
	bw := (width + 3) / 4
	bh := (height + 3) / 4
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			blk := (by*bw + bx) * blockSize
			for py := 0; py < 4; py++ {
				for px := 0; px < 4; px++ {
					x := bx*4 + px
					y := by*4 + py
					if x >= width || y >= height {
						continue
					}
					fn(blk, py*4+px, (y*width+x)*4)
				}
			}
		}
	}
}

func blockBytes(width, height, blockSize int) int {
	return ((width + 3) / 4) * ((height + 3) / 4) * blockSize
}

// DecodeBC1 decodes DXT1 data.
func DecodeBC1(data []byte, width, height int) ([]byte, error) {
	if err := checkSize("BC1", data, blockBytes(width, height, 8)); err != nil {
		return nil, err
	}
	out := make([]byte, width*height*4)
	var (
		lastBlk = -1
		colors  [4][4]uint8
		idx     uint32
	)
	blockLoop(width, height, 8, func(blk, p, o int) {
		if blk != lastBlk {
			c0 := binary.LittleEndian.Uint16(data[blk:])
			c1 := binary.LittleEndian.Uint16(data[blk+2:])
			colors = colorPalette(c0, c1, true)
			idx = binary.LittleEndian.Uint32(data[blk+4:])
			lastBlk = blk
		}
		c := colors[idx>>(2*p)&3]
		copy(out[o:o+4], c[:])
	})
	return out, nil
}

// DecodeBC2 decodes DXT3 data: explicit 4-bit alpha then a colour block.
func DecodeBC2(data []byte, width, height int) ([]byte, error) {
	if err := checkSize("BC2", data, blockBytes(width, height, 16)); err != nil {
		return nil, err
	}
	out := make([]byte, width*height*4)
	var (
		lastBlk = -1
		colors  [4][4]uint8
		idx     uint32
	)
	blockLoop(width, height, 16, func(blk, p, o int) {
		if blk != lastBlk {
			c0 := binary.LittleEndian.Uint16(data[blk+8:])
			c1 := binary.LittleEndian.Uint16(data[blk+10:])
			colors = colorPalette(c0, c1, false)
			idx = binary.LittleEndian.Uint32(data[blk+12:])
			lastBlk = blk
		}
		c := colors[idx>>(2*p)&3]
		a := data[blk+p/2] >> (4 * (p & 1)) & 0xF
		out[o], out[o+1], out[o+2] = c[0], c[1], c[2]
		out[o+3] = a | a<<4
	})
	return out, nil
}

// DecodeBC3 decodes DXT5 data: an interpolated alpha block then a
// colour block.
func DecodeBC3(data []byte, width, height int) ([]byte, error) {
	if err := checkSize("BC3", data, blockBytes(width, height, 16)); err != nil {
		return nil, err
	}
	out := make([]byte, width*height*4)
	var (
		lastBlk = -1
		colors  [4][4]uint8
		alpha   [8]uint8
		idx     uint32
		aidx    uint64
	)
	blockLoop(width, height, 16, func(blk, p, o int) {
		if blk != lastBlk {
			alpha = alphaPalette(data[blk], data[blk+1])
			aidx = indices48(data[blk+2:])
			c0 := binary.LittleEndian.Uint16(data[blk+8:])
			c1 := binary.LittleEndian.Uint16(data[blk+10:])
			colors = colorPalette(c0, c1, false)
			idx = binary.LittleEndian.Uint32(data[blk+12:])
			lastBlk = blk
		}
		c := colors[idx>>(2*p)&3]
		out[o], out[o+1], out[o+2] = c[0], c[1], c[2]
		out[o+3] = alpha[aidx>>(3*p)&7]
	})
	return out, nil
}

// channelBlock is one decoded 8-byte BC4-style block. SNORM values
// are biased by +128 on output.
type channelBlock struct {
	ramp   [8]uint8
	idx    uint64
	signed bool
}

func newChannelBlock(b []byte, signed bool) channelBlock {
	cb := channelBlock{idx: indices48(b[2:]), signed: signed}
	if signed {
		cb.ramp = signedAlphaPalette(b[0], b[1])
	} else {
		cb.ramp = alphaPalette(b[0], b[1])
	}
	return cb
}

func (cb channelBlock) at(p int) uint8 {
	v := cb.ramp[cb.idx>>(3*p)&7]
	if cb.signed {
		return uint8(toSigned8(int(v)) + 128)
	}
	return v
}

// DecodeBC4 decodes a single-channel block format into (v, 0, 0, 255).
func DecodeBC4(data []byte, width, height int, signed bool) ([]byte, error) {
	if err := checkSize("BC4", data, blockBytes(width, height, 8)); err != nil {
		return nil, err
	}
	out := make([]byte, width*height*4)
	lastBlk := -1
	var red channelBlock
	blockLoop(width, height, 8, func(blk, p, o int) {
		if blk != lastBlk {
			red = newChannelBlock(data[blk:], signed)
			lastBlk = blk
		}
		out[o] = red.at(p)
		out[o+3] = 0xFF
	})
	return out, nil
}

// DecodeBC5 decodes a two-channel normal map. Blue is reconstructed as
// the z of a unit vector from the red and green components.
func DecodeBC5(data []byte, width, height int, signed bool) ([]byte, error) {
	if err := checkSize("BC5", data, blockBytes(width, height, 16)); err != nil {
		return nil, err
	}
	out := make([]byte, width*height*4)
	lastBlk := -1
	var red, green channelBlock
	blockLoop(width, height, 16, func(blk, p, o int) {
		if blk != lastBlk {
			red = newChannelBlock(data[blk:], signed)
			green = newChannelBlock(data[blk+8:], signed)
			lastBlk = blk
		}
		r, g := red.at(p), green.at(p)
		out[o], out[o+1] = r, g
		out[o+2] = normalZ(r, g)
		out[o+3] = 0xFF
	})
	return out, nil
}

func normalZ(r, g uint8) uint8 {
	x := 2*float64(r)/255 - 1
	y := 2*float64(g)/255 - 1
	z := math.Sqrt(max(0, 1-x*x-y*y))
	return uint8((z+1)/2*255 + 0.5)
}

func decodeBC1(data []byte, w, h int, _ DataType) ([]byte, error) { return DecodeBC1(data, w, h) }
func decodeBC2(data []byte, w, h int, _ DataType) ([]byte, error) { return DecodeBC2(data, w, h) }
func decodeBC3(data []byte, w, h int, _ DataType) ([]byte, error) { return DecodeBC3(data, w, h) }

func decodeBC4(data []byte, w, h int, dt DataType) ([]byte, error) {
	return DecodeBC4(data, w, h, dt == SNorm)
}

func decodeBC5(data []byte, w, h int, dt DataType) ([]byte, error) {
	return DecodeBC5(data, w, h, dt == SNorm)
}
