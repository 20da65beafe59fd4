package texture

import (
	"bytes"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"bfres-decoder/internal/bntx"
	"bfres-decoder/internal/pixelfmt"
	"bfres-decoder/internal/swizzle"
)

// pitchTexture is a 2x2 R8G8B8A8 texture with 32-byte pitch rows.
func pitchTexture(name string) *bntx.Texture {
	data := make([]byte, 64)
	copy(data, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	copy(data[32:], []byte{9, 10, 11, 12, 13, 14, 15, 16})
	return &bntx.Texture{
		Name:       name,
		Width:      2,
		Height:     2,
		MipCount:   1,
		Format:     pixelfmt.R8G8B8A8,
		DataType:   pixelfmt.UNorm,
		TileMode:   swizzle.TilePitch,
		MipOffsets: []int64{0},
		Data:       data,
	}
}

func TestIndex(t *testing.T) {
	first := pitchTexture("Body_Alb")
	idx := NewIndex()
	idx.Add(&bntx.File{Name: "model.Tex", Textures: []*bntx.Texture{first}})
	idx.Add(&bntx.File{Name: "model", Textures: []*bntx.Texture{pitchTexture("body_alb"), pitchTexture("Eye")}})

	if idx.Len() != 2 {
		t.Fatalf("Len() = %d", idx.Len())
	}
	got, ok := idx.Lookup(`Tex\BODY_ALB.png`)
	if !ok || got != first {
		t.Errorf("Lookup returned %v, %v", got, ok)
	}
	if _, ok := idx.Lookup("missing"); ok {
		t.Error("found missing texture")
	}
	texs := idx.Textures()
	if texs[0].Name != "Body_Alb" || texs[1].Name != "Eye" {
		t.Errorf("Textures() order: %s, %s", texs[0].Name, texs[1].Name)
	}
}

func TestCacheResolve(t *testing.T) {
	bad := pitchTexture("astc")
	bad.Format = 0x2D
	idx := NewIndex()
	idx.Add(&bntx.File{Textures: []*bntx.Texture{pitchTexture("rgba"), bad}})
	c := NewCache(idx)

	img := c.Resolve("rgba")
	if img == nil {
		t.Fatal("rgba not resolved")
	}
	if img.Bounds() != image.Rect(0, 0, 2, 2) || !bytes.Equal(img.Pix, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}) {
		t.Errorf("image %v pix %v", img.Bounds(), img.Pix)
	}
	if c.Resolve("RGBA") != img {
		t.Error("second resolve not cached")
	}
	if c.Resolve("missing") != nil {
		t.Error("missing texture resolved")
	}
	if img, err := c.ResolveErr("astc"); img != nil || !errors.Is(err, pixelfmt.ErrUnsupportedFormat) {
		t.Errorf("astc: %v, %v", img, err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	copy(src.Pix, []byte{255, 0, 0, 255, 0, 255, 0, 255, 0, 0, 255, 255, 10, 20, 30, 255})

	for _, format := range []string{"png", "webp", "tga"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", FileName("Tex/rgba", format))
			if err := Save(path, src, format); err != nil {
				t.Fatal(err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			for y := range 2 {
				for x := range 2 {
					if got.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
						t.Errorf("(%d,%d) = %v, want %v", x, y, got.NRGBAAt(x, y), src.NRGBAAt(x, y))
					}
				}
			}
		})
	}
}

func TestVerify(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(src.Pix, []byte{10, 20, 30, 255, 5, 5, 5, 0})
	path := filepath.Join(t.TempDir(), "rgba.png")
	if err := Save(path, src, "png"); err != nil {
		t.Fatal(err)
	}

	transparent := image.NewNRGBA(src.Rect)
	copy(transparent.Pix, []byte{10, 20, 30, 255, 9, 9, 9, 0})
	changed := image.NewNRGBA(src.Rect)
	copy(changed.Pix, []byte{10, 20, 31, 255, 5, 5, 5, 0})

	tests := []struct {
		name string
		want *image.NRGBA
		err  error
	}{
		{"same", src, nil},
		{"transparent colour ignored", transparent, nil},
		{"texel differs", changed, ErrMismatch},
		{"size differs", image.NewNRGBA(image.Rect(0, 0, 1, 1)), ErrMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Verify(path, tt.want); !errors.Is(err, tt.err) {
				t.Errorf("Verify() = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestExportErrors(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	if err := Encode(&bytes.Buffer{}, img, "bmp"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("bmp: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "x.bmp")); err == nil {
		t.Error("loaded missing bmp")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct{ name, format, want string }{
		{"Body_Alb", "png", "Body_Alb.png"},
		{`a\b/c`, "tga", "a_b_c.tga"},
		{"", "webp", "unnamed.webp"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name, tt.format); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct{ name, want string }{
		{"Link", "Link"},
		{"../../../escaped.txt", ".._.._.._escaped.txt"},
		{`..\evil`, ".._evil"},
		{"C:secret", "C_secret"},
		{"..", "unnamed"},
		{".", "unnamed"},
		{"a\x00b", "a_b"},
	}
	for _, tt := range tests {
		got := SafeName(tt.name)
		if got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.name, got, tt.want)
		}
		if filepath.Base(got) != got {
			t.Errorf("SafeName(%q) = %q is not a single path element", tt.name, got)
		}
	}
}
