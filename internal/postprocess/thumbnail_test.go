package postprocess

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		w, h, size   int
		wantW, wantH int
	}{
		{256, 256, 64, 64, 64},
		{512, 128, 64, 64, 16},
		{16, 1024, 64, 1, 64},
		{32, 32, 64, 32, 32},
	}
	for _, tt := range tests {
		got := Thumbnail(solid(tt.w, tt.h, color.NRGBA{A: 255}), tt.size).Bounds()
		if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
			t.Errorf("Thumbnail(%dx%d, %d) = %dx%d, want %dx%d",
				tt.w, tt.h, tt.size, got.Dx(), got.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestThumbnailKeepsColour(t *testing.T) {
	// Half-transparent red must stay red after premultiplied filtering.
	c := color.NRGBA{R: 200, G: 0, B: 0, A: 128}
	img := Thumbnail(solid(64, 64, c), 8)
	got := img.NRGBAAt(4, 4)
	if got.A < 127 || got.A > 129 || got.G != 0 || got.B != 0 || got.R < 196 || got.R > 204 {
		t.Errorf("centre = %v, want about %v", got, c)
	}
}
