// Package swizzle converts Tegra X1 surface layouts to linear order.
//
// Surfaces are addressed in blocks: one texel for raw formats, one 4x4
// block for BCn. Block-linear surfaces are tiled in 512-byte GOBs
// (64 bytes x 8 rows) stacked blockHeight GOBs high.
package swizzle

import "golang.org/x/exp/constraints"

// Tile modes.
const (
	TileBlockLinear = 0
	TilePitch       = 1
)

const (
	gobWidth  = 64
	gobHeight = 8
	gobSize   = gobWidth * gobHeight
)

// DivRoundUp returns ceil(n/d).
func DivRoundUp[T constraints.Integer](n, d T) T {
	return (n + d - 1) / d
}

// RoundUp rounds x up to a multiple of the power of two y.
func RoundUp[T constraints.Integer](x, y T) T {
	return ((x - 1) | (y - 1)) + 1
}

// Pow2RoundUp returns the smallest power of two >= x (for 32-bit x).
func Pow2RoundUp[T constraints.Integer](x T) T {
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	return x + 1
}

// SurfaceSize returns the byte size of the swizzled surface for the given
// dimensions, which is also the size of the buffer Deswizzle returns.
func SurfaceSize(width, height, blkWidth, blkHeight, bpp, tileMode, blockHeightLog2 int) int {
	w := DivRoundUp(width, blkWidth)
	h := DivRoundUp(height, blkHeight)
	if tileMode == TilePitch {
		return RoundUp(w*bpp, 32) * h
	}
	return RoundUp(w*bpp, gobWidth) * RoundUp(h, (1<<blockHeightLog2)*gobHeight)
}

// Deswizzle reorders src into rows of blocks, (y*w + x)*bpp, where w and
// h are the surface size in blocks. The result has SurfaceSize bytes;
// only the first w*h*bpp are meaningful. Blocks whose source address
// falls outside the surface or src are left zero.
func Deswizzle(width, height, blkWidth, blkHeight, bpp, tileMode, blockHeightLog2 int, src []byte) []byte {
	blockHeight := 1 << blockHeightLog2
	w := DivRoundUp(width, blkWidth)
	h := DivRoundUp(height, blkHeight)

	var pitch int
	if tileMode == TilePitch {
		pitch = RoundUp(w*bpp, 32)
	}
	surfSize := SurfaceSize(width, height, blkWidth, blkHeight, bpp, tileMode, blockHeightLog2)
	out := make([]byte, surfSize)

	for y := range h {
		for x := range w {
			var pos int
			if tileMode == TilePitch {
				pos = y*pitch + x*bpp
			} else {
				pos = BlockLinearAddr(x, y, w, bpp, 0, blockHeight)
			}
			dst := (y*w + x) * bpp
			if pos+bpp > surfSize || pos+bpp > len(src) || dst+bpp > surfSize {
				continue
			}
			copy(out[dst:dst+bpp], src[pos:pos+bpp])
		}
	}
	return out
}

// BlockLinearAddr returns the byte address of block (x, y) in a
// block-linear surface imageWidth blocks wide.
func BlockLinearAddr(x, y, imageWidth, bpp, base, blockHeight int) int {
	widthInGobs := DivRoundUp(imageWidth*bpp, gobWidth)
	gob := base +
		(y/(gobHeight*blockHeight))*gobSize*blockHeight*widthInGobs +
		(x*bpp/gobWidth)*gobSize*blockHeight +
		(y%(gobHeight*blockHeight)/gobHeight)*gobSize

	xb := x * bpp
	return gob + (xb%64)/32*256 + (y%8)/2*64 + (xb%32)/16*32 + (y%2)*16 + xb%16
}
