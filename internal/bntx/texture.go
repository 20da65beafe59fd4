package bntx

import (
	"fmt"
	"strings"

	"bfres-decoder/internal/binfile"
	"bfres-decoder/internal/pixelfmt"
	"bfres-decoder/internal/swizzle"
)

// Texture is one BRTI descriptor, its raw surface data and, once
// decoded, its level 0 pixels as RGBA8 rows top to bottom.
type Texture struct {
	Name             string
	Index            int
	Flags            uint8
	Dimensions       uint8
	TileMode         int
	SwizzleSize      uint16
	MipCount         int
	MultisampleCount int
	Format           pixelfmt.FormatID
	DataType         pixelfmt.DataType
	AccessFlags      uint32
	Width            int
	Height           int
	Depth            int
	ArrayCount       int
	TextureLayout    uint32
	TextureLayout2   uint32
	BlockHeightLog2  int
	Alignment        uint32
	ChannelTypes     [4]pixelfmt.Channel
	TextureType      int32
	// MipOffsets are absolute; Data starts at MipOffsets[0].
	MipOffsets []int64
	Data       []byte

	Pixels []byte
	// Err is the reason Pixels is nil after DecodePixels.
	Err error

	formats       pixelfmt.Table
	applySelector bool
}

func readTexture(r *binfile.Reader, off int64, index int, opts Options) (*Texture, error) {
	rec, err := r.ReadStruct(off, brtiLayout)
	if err != nil {
		return nil, err
	}
	t := &Texture{
		Name:             rec.Str("name"),
		Index:            index,
		Flags:            uint8(rec.Uint("flags")),
		Dimensions:       uint8(rec.Uint("dimensions")),
		TileMode:         int(rec.Uint("tileMode")),
		SwizzleSize:      uint16(rec.Uint("swizzleSize")),
		MipCount:         int(rec.Uint("mipCount")),
		MultisampleCount: int(rec.Uint("multisampleCount")),
		AccessFlags:      uint32(rec.Uint("accessFlags")),
		Width:            int(rec.Int("width")),
		Height:           int(rec.Int("height")),
		Depth:            int(rec.Int("depth")),
		ArrayCount:       int(rec.Uint("arrayCount")),
		TextureLayout:    uint32(rec.Uint("textureLayout")),
		TextureLayout2:   uint32(rec.Uint("textureLayout2")),
		Alignment:        uint32(rec.Uint("alignment")),
		TextureType:      int32(rec.Int("textureType")),
		formats:          opts.Formats,
		applySelector:    opts.ApplySelector,
	}
	t.Format, t.DataType = pixelfmt.SplitFormat(uint16(rec.Uint("format")))
	t.BlockHeightLog2 = int(t.TextureLayout & 7)
	for i, c := range rec.Uints("channelTypes") {
		t.ChannelTypes[i] = pixelfmt.Channel(c)
	}
	if t.Width < 0 || t.Height < 0 {
		return nil, fmt.Errorf("%q: negative size %dx%d: %w", t.Name, t.Width, t.Height, binfile.ErrTruncatedData)
	}

	ptrs := rec.Offset("mipPointers")
	for i := range max(t.MipCount, 1) {
		p, err := r.Ptr(ptrs + int64(i)*8)
		if err != nil {
			return nil, fmt.Errorf("%q mip %d pointer: %w", t.Name, i, err)
		}
		t.MipOffsets = append(t.MipOffsets, p)
	}
	if t.Data, err = r.Bytes(t.MipOffsets[0], int64(rec.Uint("dataLen"))); err != nil {
		return nil, fmt.Errorf("%q data: %w", t.Name, err)
	}
	return t, nil
}

// FormatName returns the display name of the texture's format.
func (t *Texture) FormatName() string {
	if t.formats == nil {
		return pixelfmt.DefaultTable().Name(t.Format)
	}
	return t.formats.Name(t.Format)
}

// DecodePixels decodes level 0 into Pixels, or records the failure in
// Err. It returns Err.
func (t *Texture) DecodePixels() error {
	t.Pixels, t.Err = t.DecodeMip(0)
	if t.Err != nil {
		warnTexture(t)
	}
	return t.Err
}

// MipSize returns the dimensions of a mip level.
func (t *Texture) MipSize(level int) (width, height int) {
	return max(1, t.Width>>level), max(1, t.Height>>level)
}

// DecodeMip decodes one mip level to RGBA8 without touching Pixels.
func (t *Texture) DecodeMip(level int) ([]byte, error) {
	if level < 0 || level >= len(t.MipOffsets) {
		return nil, fmt.Errorf("bntx: %q: mip level %d of %d", t.Name, level, len(t.MipOffsets))
	}
	formats := t.formats
	if formats == nil {
		formats = pixelfmt.DefaultTable()
	}
	f, err := formats.Lookup(t.Format)
	if err != nil {
		return nil, fmt.Errorf("bntx: %q: %w", t.Name, err)
	}

	start := t.MipOffsets[level] - t.MipOffsets[0]
	end := int64(len(t.Data))
	if level+1 < len(t.MipOffsets) {
		end = t.MipOffsets[level+1] - t.MipOffsets[0]
	}
	if start < 0 || start > end || end > int64(len(t.Data)) {
		return nil, fmt.Errorf("bntx: %q: mip %d outside data: %w", t.Name, level, pixelfmt.ErrIncompleteTextureData)
	}

	w, h := t.MipSize(level)
	bw, bh := max(f.BlockWidth, 1), max(f.BlockHeight, 1)
	bhl2 := mipBlockHeightLog2(t.BlockHeightLog2, h, bh, level)
	linear := swizzle.Deswizzle(w, h, bw, bh, f.BytesPerPixel, t.TileMode, bhl2, t.Data[start:end])
	linear = linear[:min(len(linear), f.DataSize(w, h))]

	pix, err := f.Decode(linear, w, h, t.DataType)
	if err != nil {
		return nil, fmt.Errorf("bntx: %q mip %d: %w", t.Name, level, err)
	}
	if t.applySelector {
		pixelfmt.ApplyChannelSelector(pix, t.ChannelTypes)
	}
	return pix, nil
}

// mipBlockHeightLog2 shrinks the GOB block height for surfaces shorter
// than one block. Level 0 drops at most one step; smaller mips keep
// halving until the block fits.
func mipBlockHeightLog2(bhl2, height, blkHeight, level int) int {
	rows := swizzle.Pow2RoundUp(swizzle.DivRoundUp(height, blkHeight))
	if level == 0 {
		if rows < (1<<bhl2)*8 {
			bhl2--
		}
		return max(0, bhl2)
	}
	for bhl2 > 0 && rows < (1<<bhl2)*8 {
		bhl2--
	}
	return bhl2
}

// Dump renders the descriptor.
func (t *Texture) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Texture %d %q: %dx%d %s/%s, %d mips, tile mode %d, block height 2^%d\n",
		t.Index, t.Name, t.Width, t.Height, t.FormatName(), t.DataType, t.MipCount, t.TileMode, t.BlockHeightLog2)
	fmt.Fprintf(&b, "    Depth %d, array %d, type %d, access 0x%08X, %d data bytes, channels %v\n",
		t.Depth, t.ArrayCount, t.TextureType, t.AccessFlags, len(t.Data), t.ChannelTypes)
	if t.Err != nil {
		fmt.Fprintf(&b, "    Error: %v\n", t.Err)
	}
	return b.String()
}
