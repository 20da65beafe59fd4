// Package bntx decodes BNTX texture containers: the NX directory, BRTI
// descriptors and, optionally, the texture pixels.
//
// Descriptor errors abort the container. Pixel errors (unsupported
// formats, short payloads) are recorded on the texture and decoding
// moves on to the next one.
package bntx

import (
	"fmt"
	"strings"

	"bfres-decoder/internal/binfile"
	"bfres-decoder/internal/dict"
	"bfres-decoder/internal/logging"
	"bfres-decoder/internal/pixelfmt"
)

// Options tunes decoding.
type Options struct {
	// SkipPixels decodes descriptors only; call Texture.DecodePixels
	// later (the batch pool does this in parallel).
	SkipPixels bool
	// ApplySelector remaps decoded pixels through each texture's
	// channel selector.
	ApplySelector bool
	// Formats overrides the supported format table.
	Formats pixelfmt.Table
}

// File is a decoded BNTX container.
type File struct {
	Name          string
	VersionMajor  uint16
	VersionMinor  uint16
	Alignment     uint8
	Flags         uint16
	FileSize      uint32
	DataBlock     int64
	MemPoolOffset uint32
	Textures      []*Texture

	names *dict.Dict
}

// Decode decodes descriptors and pixels with the default format table.
func Decode(r *binfile.Reader) (*File, error) {
	return DecodeWith(r, Options{})
}

// DecodeWith decodes with options.
func DecodeWith(r *binfile.Reader, opts Options) (*File, error) {
	if opts.Formats == nil {
		opts.Formats = pixelfmt.DefaultTable()
	}
	hdr, err := r.ReadStruct(0, headerLayout)
	if err != nil {
		return nil, fmt.Errorf("bntx: header: %w", err)
	}
	f := &File{
		VersionMajor: uint16(hdr.Uint("versionMajor")),
		VersionMinor: uint16(hdr.Uint("versionMinor")),
		Alignment:    uint8(hdr.Uint("alignment")),
		Flags:        uint16(hdr.Uint("flags")),
		FileSize:     uint32(hdr.Uint("fileSize")),
	}
	if err := r.Require(int64(f.FileSize)); err != nil {
		return nil, fmt.Errorf("bntx: file size: %w", err)
	}
	// The name offset points past the u16 length.
	if off := hdr.Offset("nameOffset"); off >= 2 {
		if f.Name, err = r.String(off - 2); err != nil {
			return nil, fmt.Errorf("bntx: name: %w", err)
		}
	}

	nx, err := r.ReadStruct(nxOffset, nxLayout)
	if err != nil {
		return nil, fmt.Errorf("bntx: NX: %w", err)
	}
	f.DataBlock = nx.Offset("dataBlock")
	f.MemPoolOffset = uint32(nx.Uint("memPoolOffset"))
	if f.names, err = dict.Read(r, nx.Offset("textureDict")); err != nil {
		return nil, fmt.Errorf("bntx: texture dict: %w", err)
	}

	table := nx.Offset("textureTable")
	for i := range int(nx.Uint("count")) {
		p, err := r.Ptr(table + int64(i)*8)
		if err != nil {
			return nil, fmt.Errorf("bntx: texture %d pointer: %w", i, err)
		}
		t, err := readTexture(r, p, i, opts)
		if err != nil {
			return nil, fmt.Errorf("bntx: texture %d: %w", i, err)
		}
		f.Textures = append(f.Textures, t)
	}

	if !opts.SkipPixels {
		for _, t := range f.Textures {
			t.DecodePixels()
		}
	}
	return f, nil
}

// Texture returns the texture with the given name.
func (f *File) Texture(name string) (*Texture, bool) {
	if i, err := f.names.Lookup(name); err == nil && i-1 < len(f.Textures) && f.Textures[i-1].Name == name {
		return f.Textures[i-1], true
	}
	for _, t := range f.Textures {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Failed returns the textures whose pixels could not be decoded.
func (f *File) Failed() []*Texture {
	var out []*Texture
	for _, t := range f.Textures {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// Dump renders the container and its texture descriptors.
func (f *File) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "BNTX %q version %d.%d, %d bytes, %d textures, data block at 0x%X\n",
		f.Name, f.VersionMajor, f.VersionMinor, f.FileSize, len(f.Textures), f.DataBlock)
	for _, t := range f.Textures {
		b.WriteString(t.Dump())
	}
	return b.String()
}

func warnTexture(t *Texture) {
	logging.Warn("texture not decoded", "texture", t.Name, "format", t.FormatName(), "err", t.Err)
}
