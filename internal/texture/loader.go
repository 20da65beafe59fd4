package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// Load reads an exported PNG, WebP or TGA file back as an NRGBA image.
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	var img image.Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		img, err = png.Decode(bytes.NewReader(raw))
	case ".webp":
		img, err = webp.Decode(bytes.NewReader(raw))
	case ".tga":
		// TGA has no signature, so it cannot go through image.Decode.
		img, err = tga.Decode(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("texture: unknown extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	return toNRGBA(img), nil
}

// ErrMismatch reports an exported file that does not read back as the
// image it was written from.
var ErrMismatch = errors.New("texture: exported image differs")

// Verify reloads an exported file and compares it with want. Fully
// transparent texels match whatever colour they carry.
func Verify(path string, want *image.NRGBA) error {
	got, err := Load(path)
	if err != nil {
		return err
	}
	wb, gb := want.Bounds(), got.Bounds()
	if wb.Dx() != gb.Dx() || wb.Dy() != gb.Dy() {
		return fmt.Errorf("%w: %s is %dx%d, want %dx%d", ErrMismatch, path, gb.Dx(), gb.Dy(), wb.Dx(), wb.Dy())
	}
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			w := want.NRGBAAt(wb.Min.X+x, wb.Min.Y+y)
			g := got.NRGBAAt(gb.Min.X+x, gb.Min.Y+y)
			if w != g && (w.A != 0 || g.A != 0) {
				return fmt.Errorf("%w: %s texel (%d,%d) is %v, want %v", ErrMismatch, path, x, y, g, w)
			}
		}
	}
	return nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha
		draw.Draw(dst, b, src, b.Min, draw.Src)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
