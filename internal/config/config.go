package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Export formats for dumped textures.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// ErrUnknownFormat is returned by Resolve for a texture format other
// than png, webp or tga.
var ErrUnknownFormat = errors.New("config: unknown texture format")

// Config holds import settings.
type Config struct {
	// Paths
	OutputDir string `json:"output_dir" toml:"output_dir"`

	// Import settings
	ImportTexFile    bool `json:"import_tex_file" toml:"import_tex_file"`
	SaveDecompressed bool `json:"save_decompressed" toml:"save_decompressed"`
	DumpDebug        bool `json:"dump_debug" toml:"dump_debug"`
	DumpTextures     bool `json:"dump_textures" toml:"dump_textures"`
	ComponentSelect  bool `json:"component_selector" toml:"component_selector"`
	FirstLODOnly     bool `json:"first_lod_only" toml:"first_lod_only"`

	// Export settings
	TextureFormat string `json:"texture_format" toml:"texture_format"`
	PreviewSize   int    `json:"preview_size" toml:"preview_size"`
	Workers       int    `json:"workers" toml:"workers"`
	LogLevel      string `json:"log_level" toml:"log_level"`
}

// Default returns a Config with every default applied.
func Default() Config {
	c := base()
	_ = c.Resolve(Flags{})
	return c
}

// base holds the settings that default to on.
func base() Config {
	return Config{ImportTexFile: true, ComponentSelect: true}
}

// Load reads a JSON or TOML config file, chosen by extension.
// Fields not set in the file keep their unresolved defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := base()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.TextureFormat != "" {
		c.TextureFormat = flags.TextureFormat
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	c.DumpTextures = c.DumpTextures || flags.DumpTextures
	c.DumpDebug = c.DumpDebug || flags.DumpDebug
	c.SaveDecompressed = c.SaveDecompressed || flags.SaveDecompressed
	c.FirstLODOnly = c.FirstLODOnly || flags.FirstLODOnly
	if flags.NoTexFile {
		c.ImportTexFile = false
	}
	if flags.RawComponents {
		c.ComponentSelect = false
	}

	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	c.TextureFormat = strings.ToLower(strings.TrimPrefix(c.TextureFormat, "."))
	switch c.TextureFormat {
	case "":
		c.TextureFormat = FormatPNG
	case FormatPNG, FormatWebP, FormatTGA:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.TextureFormat)
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 128
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
// Booleans can only switch a setting on, except the two negative ones.
type Flags struct {
	OutputDir        string
	TextureFormat    string
	Workers          int
	LogLevel         string
	DumpTextures     bool
	DumpDebug        bool
	SaveDecompressed bool
	FirstLODOnly     bool
	NoTexFile        bool
	RawComponents    bool
}
