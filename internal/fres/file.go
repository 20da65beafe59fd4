// Package fres decodes FRES model containers (.bfres) into models,
// skeletons, vertex buffers, shapes and materials.
//
// Decoding is sequential and all-or-nothing: any structural error in a
// sub-object aborts the container. Recoverable oddities (unknown value
// type tags, duplicate names) are kept on the record and logged.
package fres

import (
	"fmt"
	"strings"

	"bfres-decoder/internal/binfile"
	"bfres-decoder/internal/dict"
)

// Options tunes decoding.
type Options struct {
	// FirstLODOnly skips every level of detail after the first.
	FirstLODOnly bool
}

// BufferSection locates the shared vertex and index data blob.
type BufferSection struct {
	Offset int64 // section header position, 0 if absent
	Size   uint32
	Data   int64 // start of the blob
}

// Embed is an embedded file, typically a BNTX texture container.
type Embed struct {
	Name string
	Data []byte
}

// IsBNTX reports whether the embed starts with a BNTX signature.
func (e *Embed) IsBNTX() bool {
	return len(e.Data) >= 4 && string(e.Data[:4]) == "BNTX"
}

// File is a decoded FRES container.
type File struct {
	Name          string
	VersionMajor  uint16
	VersionMinor  uint16
	Version       Version
	Flags         uint16
	Alignment     uint8
	FileSize      uint32
	BufferSection BufferSection
	Models        []*Model
	Embeds        []*Embed
}

// Model returns the model with the given name.
func (f *File) Model(name string) (*Model, bool) {
	for _, m := range f.Models {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

type decoder struct {
	r    *binfile.Reader
	ver  Version
	opts Options
	buf  BufferSection
}

// Decode decodes the FRES container held by r.
func Decode(r *binfile.Reader) (*File, error) {
	return DecodeWith(r, Options{})
}

// DecodeWith decodes with options.
func DecodeWith(r *binfile.Reader, opts Options) (*File, error) {
	hdr, err := r.ReadStruct(0, headerLayout)
	if err != nil {
		return nil, fmt.Errorf("fres: header: %w", err)
	}
	f := &File{
		Name:         hdr.Str("name"),
		VersionMajor: uint16(hdr.Uint("versionMajor")),
		VersionMinor: uint16(hdr.Uint("versionMinor")),
		Flags:        uint16(hdr.Uint("flags")),
		Alignment:    uint8(hdr.Uint("alignment")),
		FileSize:     uint32(hdr.Uint("fileSize")),
	}
	if err := r.Require(int64(f.FileSize)); err != nil {
		return nil, fmt.Errorf("fres: file size: %w", err)
	}
	f.Version = layoutVersion(f.VersionMajor, f.VersionMinor)

	d := &decoder{r: r, ver: f.Version, opts: opts}
	if off := hdr.Offset("bufferSection"); off != 0 {
		bs, err := r.ReadStruct(off, bufferSectionLayout)
		if err != nil {
			return nil, fmt.Errorf("fres: buffer section: %w", err)
		}
		d.buf = BufferSection{Offset: off, Size: uint32(bs.Uint("size")), Data: bs.Offset("data")}
	}
	f.BufferSection = d.buf

	names, err := dict.Read(r, hdr.Offset("modelDict"))
	if err != nil {
		return nil, fmt.Errorf("fres: model dict: %w", err)
	}
	count := int(hdr.Uint("modelCount"))
	if names.Count() != 0 && names.Count() != count {
		return nil, fmt.Errorf("fres: model dict has %d names for %d models: %w",
			names.Count(), count, ErrBadReference)
	}
	base := hdr.Offset("modelArray")
	for i := range count {
		m, err := d.model(base+int64(i)*fmdlLayout.Size(), i)
		if err != nil {
			return nil, fmt.Errorf("fres: model %d: %w", i, err)
		}
		f.Models = append(f.Models, m)
	}

	if f.Embeds, err = d.embeds(hdr); err != nil {
		return nil, fmt.Errorf("fres: %w", err)
	}
	return f, nil
}

func (d *decoder) embeds(hdr binfile.Record) ([]*Embed, error) {
	count := int(hdr.Uint("embedCount"))
	if count == 0 {
		return nil, nil
	}
	names, err := dict.Read(d.r, hdr.Offset("embedDict"))
	if err != nil {
		return nil, fmt.Errorf("embed dict: %w", err)
	}
	base := hdr.Offset("embedArray")
	out := make([]*Embed, 0, count)
	for i := range count {
		rec, err := d.r.ReadStruct(base+int64(i)*embedLayout.Size(), embedLayout)
		if err != nil {
			return nil, fmt.Errorf("embed %d: %w", i, err)
		}
		data, err := d.r.Bytes(rec.Offset("data"), int64(rec.Uint("size")))
		if err != nil {
			return nil, fmt.Errorf("embed %d data: %w", i, err)
		}
		name, _ := names.NameAt(i + 1)
		out = append(out, &Embed{Name: name, Data: data})
	}
	return out, nil
}

// Dump renders the whole container for diagnostics.
func (f *File) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FRES %q version %d.%d (%s), %d bytes, alignment %d, flags 0x%04X\n",
		f.Name, f.VersionMajor, f.VersionMinor, f.Version, f.FileSize, f.Alignment, f.Flags)
	fmt.Fprintf(&b, "Buffer section at 0x%X: %d bytes of data at 0x%X\n",
		f.BufferSection.Offset, f.BufferSection.Size, f.BufferSection.Data)
	for _, m := range f.Models {
		b.WriteString(m.Dump())
	}
	for _, e := range f.Embeds {
		fmt.Fprintf(&b, "Embedded %q: %d bytes\n", e.Name, len(e.Data))
	}
	return b.String()
}
