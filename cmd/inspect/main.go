package main

import (
	"flag"
	"fmt"
	"os"

	"bfres-decoder/internal/config"
	"bfres-decoder/internal/fres"
	"bfres-decoder/internal/importer"
	"bfres-decoder/internal/logging"
	"bfres-decoder/internal/mathutil"
)

func main() {
	firstLOD := flag.Bool("first-lod", false, "Decode only the first LOD of each shape")
	quiet := flag.Bool("q", false, "Skip the full container dumps")
	flag.Parse()

	cfg := config.Default()
	cfg.FirstLODOnly = *firstLOD
	logging.SetLevel("warn")

	for _, arg := range flag.Args() {
		res, err := importer.New(cfg).Import(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Parse error %s: %v\n", arg, err)
			continue
		}
		fmt.Printf("\n=== %s (FRES=%d BNTX=%d) ===\n", arg, len(res.FRES), len(res.BNTX))

		for _, f := range res.FRES {
			if !*quiet {
				fmt.Print(f.Dump())
			}
			for _, m := range f.Models {
				printShapes(m)
			}
		}
		for _, f := range res.BNTX {
			if !*quiet {
				fmt.Print(f.Dump())
			}
			for _, t := range f.Textures {
				if t.Err != nil {
					fmt.Printf("  Texture %q: %v\n", t.Name, t.Err)
					continue
				}
				fmt.Printf("  Texture %q: %dx%d bright=%.0f alpha=%.0f\n", t.Name, t.Width, t.Height,
					mean(t.Pixels, 0, 3), mean(t.Pixels, 3, 1))
			}
		}
		for _, b := range res.Bindings {
			fmt.Printf("  %s\n", b)
		}
	}
}

// printShapes prints each shape's bounding box after rigid bone binding.
func printShapes(m *fres.Model) {
	fmt.Printf("--- %s (shapes=%d bones=%d) ---\n", m.Name, len(m.Shapes), len(m.Skeleton.Bones))
	for i, s := range m.Shapes {
		pos, _, err := m.ShapePositions(s)
		if err != nil {
			fmt.Printf("  Shape[%d] %s: %v\n", i, s.Name, err)
			continue
		}
		if len(pos) == 0 {
			continue
		}
		lo, hi := mathutil.Bounds(pos)
		size, centre := hi.Sub(lo), lo.Add(hi).Scale(0.5)
		mat := "?"
		if s.MaterialIndex < len(m.Materials) {
			mat = m.Materials[s.MaterialIndex].Name
		}
		tris := 0
		if len(s.LODs) > 0 {
			tris = len(s.LODs[0].Indices) / 3
		}
		fmt.Printf("  Shape[%d] %s: v=%d t=%d mat=%q lods=%d size=(%.2f,%.2f,%.2f) centre=(%.2f,%.2f,%.2f) min=(%.2f,%.2f,%.2f)\n",
			i, s.Name, len(pos), tris, mat, len(s.LODs),
			size[0], size[1], size[2], centre[0], centre[1], centre[2], lo[0], lo[1], lo[2])
	}
}

// mean averages n channels starting at first over RGBA8 pixels.
func mean(pix []byte, first, n int) float64 {
	if len(pix) == 0 {
		return 0
	}
	total := 0.0
	for j := 0; j+3 < len(pix); j += 4 {
		for c := first; c < first+n; c++ {
			total += float64(pix[j+c])
		}
	}
	return total / float64(len(pix)/4*n)
}
