package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"bfres-decoder/internal/batch"
	"bfres-decoder/internal/config"
	"bfres-decoder/internal/importer"
	"bfres-decoder/internal/logging"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json or .toml config file")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")
	format := flag.String("format", "", "Texture export format: png, webp or tga (default: png)")
	workers := flag.Int("workers", 0, "Number of texture decode goroutines (default: NumCPU)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")
	dumpTextures := flag.Bool("dump-textures", false, "Export decoded textures and a manifest")
	dumpDebug := flag.Bool("dump-debug", false, "Write container dumps and embedded text files")
	saveDecompressed := flag.Bool("save-decompressed", false, "Save decompressed input next to the original")
	firstLOD := flag.Bool("first-lod", false, "Decode only the first LOD of each shape")
	noTexFile := flag.Bool("no-tex-file", false, "Do not import the sibling .Tex container")
	rawComponents := flag.Bool("raw-components", false, "Do not apply texture channel selectors")
	watchDir := flag.String("watch", "", "Import files as they appear in this directory")

	flag.Parse()

	// Load config
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	err := cfg.Resolve(config.Flags{
		OutputDir:        *outputDir,
		TextureFormat:    *format,
		Workers:          *workers,
		LogLevel:         *logLevel,
		DumpTextures:     *dumpTextures,
		DumpDebug:        *dumpDebug,
		SaveDecompressed: *saveDecompressed,
		FirstLODOnly:     *firstLOD,
		NoTexFile:        *noTexFile,
		RawComponents:    *rawComponents,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *watchDir != "" {
		watch(cfg, *watchDir)
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: bfres [flags] file.bfres...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		if _, ok := run(cfg, path); !ok {
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// run imports one file and prints its summary. It returns the files
// written and reports success.
func run(cfg config.Config, path string) ([]string, bool) {
	fmt.Printf("Importing %s\n", path)
	fmt.Println("------------------------------------------------------------")
	start := time.Now()

	res, err := importer.New(cfg).Import(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
		return nil, false
	}

	for _, f := range res.FRES {
		fmt.Printf("FRES %q: %d models, %d embedded files\n", f.Name, len(f.Models), len(f.Embeds))
	}
	for _, f := range res.BNTX {
		fmt.Printf("BNTX %q: %d textures\n", f.Name, len(f.Textures))
	}
	for _, b := range res.Bindings {
		fmt.Printf("  %s\n", b)
	}

	failed := batch.Failed(res.Textures)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs, session %s\n", time.Since(start).Seconds(), res.Session)
	fmt.Printf("Textures decoded: %d/%d\n", len(res.Textures)-failed, len(res.Textures))

	if failed > 0 {
		fmt.Printf("\nNot decoded (%d):\n", failed)
		shown := 0
		for _, r := range res.Textures {
			if r.Success || shown == 20 {
				continue
			}
			fmt.Printf("  %s (%s): %s\n", r.Name, r.Format, r.Error)
			shown++
		}
	}
	for _, w := range res.Written {
		logging.Debug("wrote", "path", w)
	}
	if len(res.Written) > 0 {
		fmt.Printf("Files written: %d under %s\n", len(res.Written), cfg.OutputDir)
	}
	return res.Written, true
}

func watch(cfg config.Config, dir string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.Info("watching", "dir", dir)
	err := importer.Watch(ctx, dir, func(path string) []string {
		written, _ := run(cfg, path)
		return written
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
