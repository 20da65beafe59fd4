package texture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// ErrUnknownFormat is returned for an export format other than png,
// webp or tga.
var ErrUnknownFormat = errors.New("texture: unknown export format")

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	var err error
	switch format {
	case "png":
		err = png.Encode(w, img)
	case "webp":
		err = nativewebp.Encode(w, img, nil)
	case "tga":
		err = tga.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("texture: encode %s: %w", format, err)
	}
	return nil
}

// Save encodes img to path, creating parent directories.
func Save(path string, img image.Image, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("texture: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("texture: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var unsafeChars = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "\x00", "_")

// SafeName turns a name read from a file into a single path element.
// Separators are replaced, and names that would resolve to the parent
// or current directory become "unnamed".
func SafeName(name string) string {
	name = unsafeChars.Replace(name)
	switch name {
	case "", ".", "..":
		return "unnamed"
	}
	return name
}

// FileName turns a texture name into a file name with the format's
// extension.
func FileName(texName, format string) string {
	return SafeName(texName) + "." + format
}
