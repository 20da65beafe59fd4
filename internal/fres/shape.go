package fres

import (
	"fmt"
	"strings"
)

// Primitive is the topology of an index buffer.
type Primitive uint32

const (
	PrimitivePoints Primitive = iota
	PrimitiveLines
	PrimitiveLineLoop
	PrimitiveLineStrip
	PrimitiveTriangles
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
)

var primitiveNames = [...]string{
	"points", "lines", "line_loop", "line_strip",
	"triangles", "triangle_strip", "triangle_fan",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("Primitive(%d)", uint32(p))
}

// IndexFormat is the element width of an index buffer.
type IndexFormat uint32

const (
	IndexU8 IndexFormat = iota
	IndexU16
	IndexU32
)

// Size returns the element width in bytes, or 0 if unknown.
func (f IndexFormat) Size() int {
	switch f {
	case IndexU8:
		return 1
	case IndexU16:
		return 2
	case IndexU32:
		return 4
	}
	return 0
}

func (f IndexFormat) String() string {
	if n := f.Size(); n != 0 {
		return fmt.Sprintf("u%d", n*8)
	}
	return fmt.Sprintf("IndexFormat(%d)", uint32(f))
}

// SubMesh is a range of the LOD's index buffer, in bytes.
type SubMesh struct {
	Offset uint32
	Count  uint32
}

// LOD is one level of detail of a shape.
type LOD struct {
	Primitive   Primitive
	IndexFormat IndexFormat
	IndexOffset uint32
	VisGroup    int
	SubMeshes   []SubMesh
	Indices     []uint32
	// VertexCount is one past the largest index used.
	VertexCount int
}

// Shape is an FSHP: a mesh over one vertex buffer drawn with one
// material, with one or more LODs.
type Shape struct {
	Name              string
	Index             int
	Flags             uint32
	MaterialIndex     int
	BoneIndex         int
	VertexBufferIndex int
	SkinCount         int
	SkinBoneIndices   []uint16
	VisGroupCount     int
	LODs              []*LOD
}

func (d *decoder) shape(off int64, m *Model) (*Shape, error) {
	hdr, err := d.r.ReadStruct(off, fshpLayout)
	if err != nil {
		return nil, err
	}
	s := &Shape{
		Name:              hdr.Str("name"),
		Index:             int(hdr.Uint("index")),
		Flags:             uint32(hdr.Uint("flags")),
		MaterialIndex:     int(hdr.Uint("materialIndex")),
		BoneIndex:         int(hdr.Uint("boneIndex")),
		VertexBufferIndex: int(hdr.Uint("vertexBufferIndex")),
		SkinCount:         int(hdr.Uint("skinCount")),
		VisGroupCount:     int(hdr.Uint("visGroupCount")),
	}
	if s.VertexBufferIndex >= len(m.Buffers) {
		return nil, fmt.Errorf("%q vertex buffer %d of %d: %w",
			s.Name, s.VertexBufferIndex, len(m.Buffers), ErrBadReference)
	}
	if s.MaterialIndex >= len(m.Materials) {
		return nil, fmt.Errorf("%q material %d of %d: %w",
			s.Name, s.MaterialIndex, len(m.Materials), ErrBadReference)
	}

	if p := hdr.Offset("skinBoneIndexArray"); p != 0 {
		n := int(hdr.Uint("skinBoneIndexCount"))
		s.SkinBoneIndices = make([]uint16, n)
		for i := range n {
			if s.SkinBoneIndices[i], err = d.r.U16(p + int64(i)*2); err != nil {
				return nil, fmt.Errorf("%q skin bone index %d: %w", s.Name, i, err)
			}
		}
	}

	count := int(hdr.Uint("lodCount"))
	if d.opts.FirstLODOnly {
		count = min(count, 1)
	}
	base := hdr.Offset("lodArray")
	for i := range count {
		lod, err := d.lod(base + int64(i)*lodLayout.Size())
		if err != nil {
			return nil, fmt.Errorf("%q lod %d: %w", s.Name, i, err)
		}
		s.LODs = append(s.LODs, lod)
	}
	return s, nil
}

func (d *decoder) lod(off int64) (*LOD, error) {
	rec, err := d.r.ReadStruct(off, lodLayout)
	if err != nil {
		return nil, err
	}
	l := &LOD{
		Primitive:   Primitive(rec.Uint("primitive")),
		IndexFormat: IndexFormat(rec.Uint("indexFormat")),
		IndexOffset: uint32(rec.Uint("indexOffset")),
		VisGroup:    int(rec.Uint("visGroup")),
	}

	base := rec.Offset("subMeshArray")
	for i := range int(rec.Uint("subMeshCount")) {
		sm, err := d.r.ReadStruct(base+int64(i)*subMeshLayout.Size(), subMeshLayout)
		if err != nil {
			return nil, fmt.Errorf("submesh %d: %w", i, err)
		}
		l.SubMeshes = append(l.SubMeshes, SubMesh{Offset: uint32(sm.Uint("offset")), Count: uint32(sm.Uint("count"))})
	}

	size := l.IndexFormat.Size()
	if size == 0 {
		return nil, fmt.Errorf("index format %d: %w", uint32(l.IndexFormat), ErrBadReference)
	}
	count := int(rec.Uint("indexCount"))
	pos := d.buf.Data + int64(l.IndexOffset)
	raw, err := d.r.Bytes(pos, int64(count*size))
	if err != nil {
		return nil, fmt.Errorf("index buffer: %w", err)
	}
	l.Indices = make([]uint32, count)
	for i := range l.Indices {
		var v uint32
		switch size {
		case 1:
			v = uint32(raw[i])
		case 2:
			v = uint32(raw[i*2]) | uint32(raw[i*2+1])<<8
		case 4:
			v = uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
		}
		l.Indices[i] = v
		l.VertexCount = max(l.VertexCount, int(v)+1)
	}
	return l, nil
}

// Dump renders the shape and its LODs.
func (s *Shape) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shape %d %q: buffer %d material %d bone %d skin %d flags 0x%08X\n",
		s.Index, s.Name, s.VertexBufferIndex, s.MaterialIndex, s.BoneIndex, s.SkinCount, s.Flags)
	for i, l := range s.LODs {
		fmt.Fprintf(&b, "  LOD %d: %s, %d %s indices at 0x%X, %d vertices, %d submeshes\n",
			i, l.Primitive, len(l.Indices), l.IndexFormat, l.IndexOffset, l.VertexCount, len(l.SubMeshes))
	}
	return b.String()
}
