package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name, file, body string
	}{
		{"json", "bfres.json", `{"output_dir": "out", "texture_format": "webp", "dump_debug": true, "workers": 3}`},
		{"toml", "bfres.toml", "output_dir = \"out\"\ntexture_format = \"webp\"\ndump_debug = true\nworkers = 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.OutputDir != "out" || cfg.TextureFormat != FormatWebP || !cfg.DumpDebug || cfg.Workers != 3 || !cfg.ImportTexFile {
				t.Errorf("cfg = %+v", cfg)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file loaded")
	}
	if _, err := Load(writeFile(t, "bad.toml", "workers = [")); err == nil {
		t.Error("bad TOML parsed")
	}
}

func TestResolve(t *testing.T) {
	cfg := Config{TextureFormat: ".TGA", ComponentSelect: true, ImportTexFile: true}
	if err := cfg.Resolve(Flags{OutputDir: "dump", DumpTextures: true, RawComponents: true}); err != nil {
		t.Fatal(err)
	}

	if cfg.OutputDir != "dump" || !cfg.DumpTextures || cfg.ComponentSelect || !cfg.ImportTexFile {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.TextureFormat != FormatTGA {
		t.Errorf("format %q", cfg.TextureFormat)
	}
	if cfg.Workers != runtime.NumCPU() || cfg.PreviewSize != 128 || cfg.LogLevel != "info" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.TextureFormat != FormatPNG || cfg.OutputDir != "." || !cfg.ComponentSelect || !cfg.ImportTexFile {
		t.Errorf("Default() = %+v", cfg)
	}
}

func TestResolveUnknownFormat(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		flags Flags
	}{
		{"file", Config{TextureFormat: "bmp"}, Flags{}},
		{"flag", Config{TextureFormat: "png"}, Flags{TextureFormat: "jpeg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Resolve(tt.flags); !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("Resolve() = %v, want ErrUnknownFormat", err)
			}
		})
	}
}
