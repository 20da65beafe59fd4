// Package batch decodes texture pixels on a bounded worker pool and
// optionally exports them as image files.
package batch

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"bfres-decoder/internal/bntx"
	"bfres-decoder/internal/logging"
	"bfres-decoder/internal/postprocess"
	"bfres-decoder/internal/texture"
)

// Config holds the settings for a batch run.
type Config struct {
	OutputDir string
	// Export writes each decoded texture to OutputDir in Format.
	Export bool
	Format string
	// PreviewSize > 0 also writes a PNG thumbnail under OutputDir/preview.
	PreviewSize int
	Workers     int
}

// Result holds the outcome of processing one texture.
type Result struct {
	Name    string
	Width   int
	Height  int
	Format  string
	File    string
	Preview string
	Success bool
	Error   string
}

// Run decodes all textures using a worker pool. Results are in input
// order; each texture's Pixels and Err are set as by DecodePixels.
func Run(cfg Config, textures []*bntx.Texture) []Result {
	total := len(textures)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(cfg.Workers, 1)

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					logging.Info("decoding textures", "done", p, "total", total,
						"rate", fmt.Sprintf("%.1f/s", float64(p)/elapsed))
				}
			}
		}
	}()

	// Worker pool
	texChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range texChan {
				results[idx] = processTexture(cfg, textures[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range textures {
		texChan <- i
	}
	close(texChan)

	wg.Wait()
	close(done)

	return results
}

func processTexture(cfg Config, tex *bntx.Texture) Result {
	res := Result{
		Name:   tex.Name,
		Width:  tex.Width,
		Height: tex.Height,
		Format: fmt.Sprintf("%s/%s", tex.FormatName(), tex.DataType),
	}
	if tex.Pixels == nil {
		if err := tex.DecodePixels(); err != nil {
			res.Error = err.Error()
			return res
		}
	}

	img := texture.Image(tex.Pixels, tex.Width, tex.Height)
	if cfg.Export {
		res.File = texture.FileName(tex.Name, cfg.Format)
		if err := texture.Save(filepath.Join(cfg.OutputDir, res.File), img, cfg.Format); err != nil {
			res.Error = err.Error()
			return res
		}
	}
	if cfg.PreviewSize > 0 {
		res.Preview = filepath.ToSlash(filepath.Join("preview", texture.FileName(tex.Name, "png")))
		thumb := postprocess.Thumbnail(img, cfg.PreviewSize)
		if err := texture.Save(filepath.Join(cfg.OutputDir, res.Preview), thumb, "png"); err != nil {
			res.Error = err.Error()
			return res
		}
	}

	res.Success = true
	return res
}

// Failed counts the unsuccessful results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}
