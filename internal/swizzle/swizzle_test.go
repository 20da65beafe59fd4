package swizzle

import (
	"bytes"
	"testing"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		name      string
		got, want int
	}{
		{"DivRoundUp exact", DivRoundUp(16, 4), 4},
		{"DivRoundUp partial", DivRoundUp(17, 4), 5},
		{"RoundUp", RoundUp(100, 64), 128},
		{"RoundUp aligned", RoundUp(64, 64), 64},
		{"Pow2RoundUp", Pow2RoundUp(33), 64},
		{"Pow2RoundUp exact", Pow2RoundUp(16), 16},
		{"Pow2RoundUp one", Pow2RoundUp(1), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
	if got := DivRoundUp[uint32](9, 8); got != 2 {
		t.Errorf("DivRoundUp[uint32] = %d", got)
	}
}

func TestPitchIdentity(t *testing.T) {
	// 16 texels of 4 bytes: the row is already a multiple of 32 bytes.
	const w, h, bpp = 16, 4, 4
	src := make([]byte, w*h*bpp)
	for i := range src {
		src[i] = byte(i * 7)
	}
	out := Deswizzle(w, h, 1, 1, bpp, TilePitch, 0, src)
	if !bytes.Equal(out[:len(src)], src) {
		t.Fatal("pitch-linear deswizzle is not the identity")
	}
}

func TestPitchPadding(t *testing.T) {
	// 3 texels x 2 rows of 4 bytes: source rows are padded to 32 bytes.
	src := make([]byte, 64)
	for i := range 3 * 4 {
		src[i] = 1
		src[32+i] = 2
	}
	out := Deswizzle(3, 2, 1, 1, 4, TilePitch, 0, src)
	if len(out) != 64 {
		t.Fatalf("len = %d, want 64", len(out))
	}
	for i := range 12 {
		if out[i] != 1 || out[12+i] != 2 {
			t.Fatalf("row data misplaced at %d: %v", i, out[:24])
		}
	}
}

func TestBlockLinearAddr(t *testing.T) {
	tests := []struct{ x, y, want int }{
		{0, 0, 0},
		{0, 1, 16},
		{0, 2, 64},
		{4, 0, 32},
		{8, 0, 256},
		{0, 8, 512},   // next GOB down (blockHeight 2)
		{16, 0, 1024}, // next GOB column
	}
	for _, tt := range tests {
		if got := BlockLinearAddr(tt.x, tt.y, 32, 4, 0, 2); got != tt.want {
			t.Errorf("addr(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestBlockLinearRoundTrip(t *testing.T) {
	const w, h, bpp, bhl2 = 32, 32, 4, 2
	size := SurfaceSize(w, h, 1, 1, bpp, TileBlockLinear, bhl2)
	linear := make([]byte, w*h*bpp)
	for i := range linear {
		linear[i] = byte(i*31 + i>>8)
	}
	swizzled := make([]byte, size)
	for y := range h {
		for x := range w {
			pos := BlockLinearAddr(x, y, w, bpp, 0, 1<<bhl2)
			copy(swizzled[pos:pos+bpp], linear[(y*w+x)*bpp:])
		}
	}
	out := Deswizzle(w, h, 1, 1, bpp, TileBlockLinear, bhl2, swizzled)
	if !bytes.Equal(out[:len(linear)], linear) {
		t.Fatal("block-linear round trip mismatch")
	}
}

func TestShortSourceLeavesZeros(t *testing.T) {
	src := bytes.Repeat([]byte{0xFF}, 16)
	out := Deswizzle(16, 4, 1, 1, 4, TilePitch, 0, src)
	if !bytes.Equal(out[:16], src) {
		t.Fatal("first row lost")
	}
	for i, b := range out[16:] {
		if b != 0 {
			t.Fatalf("byte %d = %#x past the source end", 16+i, b)
		}
	}
}
