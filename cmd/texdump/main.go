package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bfres-decoder/internal/bntx"
	"bfres-decoder/internal/config"
	"bfres-decoder/internal/importer"
	"bfres-decoder/internal/logging"
	"bfres-decoder/internal/texture"
)

// dumpTexture writes every decodable mip level of t into dir. With
// verify set each file is read back and compared.
func dumpTexture(dir, format string, verify bool, t *bntx.Texture) (int, error) {
	written := 0
	for level := range len(t.MipOffsets) {
		pix, err := t.DecodeMip(level)
		if err != nil {
			return written, fmt.Errorf("%s mip %d: %w", t.Name, level, err)
		}
		w, h := t.MipSize(level)
		name := texture.FileName(fmt.Sprintf("%s_mip%d", t.Name, level), format)
		path := filepath.Join(dir, name)
		img := texture.Image(pix, w, h)
		if err := texture.Save(path, img, format); err != nil {
			return written, err
		}
		if verify {
			if err := texture.Verify(path, img); err != nil {
				return written, err
			}
		}
		fmt.Printf("OK  %s -> %s  (%dx%d %s)\n", t.Name, name, w, h, t.FormatName())
		written++
	}
	return written, nil
}

func main() {
	output := flag.String("output", "textures", "Output directory")
	format := flag.String("format", "png", "png, webp or tga")
	raw := flag.Bool("raw-components", false, "Do not apply channel selectors")
	verify := flag.Bool("verify", false, "Read every written image back and compare it")
	flag.Parse()

	cfg := config.Default()
	if err := cfg.Resolve(config.Flags{TextureFormat: *format, RawComponents: *raw}); err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(2)
	}
	logging.SetLevel("warn")

	errors, total := 0, 0
	for _, arg := range flag.Args() {
		res, err := importer.New(cfg).Import(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %s: %v\n", arg, err)
			errors++
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
		for _, f := range res.BNTX {
			dir := filepath.Join(*output, texture.SafeName(stem), texture.SafeName(f.Name))
			for _, t := range f.Textures {
				n, err := dumpTexture(dir, cfg.TextureFormat, *verify, t)
				total += n
				if err != nil {
					fmt.Fprintf(os.Stderr, "ERR %v\n", err)
					errors++
				}
			}
		}
	}
	if errors > 0 {
		fmt.Printf("\nDone with %d error(s), %d images written.\n", errors, total)
		os.Exit(1)
	}
	fmt.Printf("\nDone. %d images written.\n", total)
}
