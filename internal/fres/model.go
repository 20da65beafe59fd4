package fres

import (
	"fmt"
	"strings"

	"bfres-decoder/internal/binfile"
	"bfres-decoder/internal/mathutil"
	"bfres-decoder/internal/skeleton"
)

// Model is one FMDL: a skeleton plus the buffers, materials and shapes
// that reference each other by index.
type Model struct {
	Name          string
	Index         int
	TotalVertices uint32
	Skeleton      *skeleton.Skeleton
	Buffers       []*VertexBuffer
	Materials     []*Material
	Shapes        []*Shape
}

func (d *decoder) model(off int64, index int) (*Model, error) {
	hdr, err := d.r.ReadStruct(off, fmdlLayout)
	if err != nil {
		return nil, err
	}
	m := &Model{
		Name:          hdr.Str("name"),
		Index:         index,
		TotalVertices: uint32(hdr.Uint("totalVertices")),
	}

	if m.Skeleton, err = d.skeleton(hdr.Offset("skeleton")); err != nil {
		return nil, fmt.Errorf("%q skeleton: %w", m.Name, err)
	}

	base := hdr.Offset("vertexArray")
	for i := range int(hdr.Uint("vertexCount")) {
		vb, err := d.vertexBuffer(base + int64(i)*fvtxLayout.Size())
		if err != nil {
			return nil, fmt.Errorf("%q vertex buffer %d: %w", m.Name, i, err)
		}
		m.Buffers = append(m.Buffers, vb)
	}

	base = hdr.Offset("materialArray")
	size := fmatLayouts[d.ver].Size()
	for i := range int(hdr.Uint("materialCount")) {
		mat, err := d.material(base+int64(i)*size, i)
		if err != nil {
			return nil, fmt.Errorf("%q material %d: %w", m.Name, i, err)
		}
		m.Materials = append(m.Materials, mat)
	}

	base = hdr.Offset("shapeArray")
	for i := range int(hdr.Uint("shapeCount")) {
		s, err := d.shape(base+int64(i)*fshpLayout.Size(), m)
		if err != nil {
			return nil, fmt.Errorf("%q shape %d: %w", m.Name, i, err)
		}
		m.Shapes = append(m.Shapes, s)
	}
	return m, nil
}

func (d *decoder) skeleton(off int64) (*skeleton.Skeleton, error) {
	if off == 0 {
		return &skeleton.Skeleton{}, nil
	}
	hdr, err := d.r.ReadStruct(off, fsklLayout)
	if err != nil {
		return nil, err
	}
	s := &skeleton.Skeleton{
		Flags:       uint32(hdr.Uint("flags")),
		SmoothCount: int(hdr.Uint("smoothCount")),
		RigidCount:  int(hdr.Uint("rigidCount")),
	}

	layout := boneLayouts[d.ver]
	base := hdr.Offset("boneArray")
	for i := range int(hdr.Uint("boneCount")) {
		rec, err := d.r.ReadStruct(base+int64(i)*layout.Size(), layout)
		if err != nil {
			return nil, fmt.Errorf("bone %d: %w", i, err)
		}
		s.Bones = append(s.Bones, d.bone(rec))
	}

	if p := hdr.Offset("matrixToBone"); p != 0 {
		n := s.SmoothCount + s.RigidCount
		s.MatrixToBone = make([]int16, n)
		for i := range n {
			if s.MatrixToBone[i], err = d.r.I16(p + int64(i)*2); err != nil {
				return nil, fmt.Errorf("matrix-to-bone table: %w", err)
			}
		}
	}
	if p := hdr.Offset("inverseModel"); p != 0 {
		for i := range s.SmoothCount {
			rows, err := d.r.F32s(p+int64(i)*48, 12)
			if err != nil {
				return nil, fmt.Errorf("inverse model matrix %d: %w", i, err)
			}
			s.InverseModel = append(s.InverseModel, mathutil.FromRows3x4(rows))
		}
	}

	if err := s.Compute(); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *decoder) bone(rec binfile.Record) *skeleton.Bone {
	b := &skeleton.Bone{
		Name:           rec.Str("name"),
		Index:          int(rec.Uint("index")),
		Parent:         int(rec.Int("parent")),
		SmoothMatrix:   int(rec.Int("smoothMtx")),
		RigidMatrix:    int(rec.Int("rigidMtx")),
		BillboardIndex: int(rec.Int("billboard")),
		UserDataCount:  int(rec.Uint("userDataCount")),
	}
	raw := uint32(rec.Uint("flags"))
	if d.ver == V10 {
		b.Flags = skeleton.DecodeFlagsV10(raw)
	} else {
		b.Flags = skeleton.DecodeFlagsV0(raw)
	}
	copy(b.Scale[:], rec.Floats("scale"))
	copy(b.Rotation[:], rec.Floats("rotation"))
	copy(b.Position[:], rec.Floats("position"))
	return b
}

// ShapePositions decodes the first-set positions and normals of s. Shapes
// with no skinning follow their bone: vertices are moved by the bone's
// world matrix. Normals are nil when the buffer has none.
func (m *Model) ShapePositions(s *Shape) (positions, normals [][3]float32, err error) {
	vb := m.Buffers[s.VertexBufferIndex]
	pos, err := vb.Decode("_p0")
	if err != nil {
		return nil, nil, err
	}
	positions = xyz(pos)
	if _, ok := vb.Attribute("_n0"); ok {
		nrm, err := vb.Decode("_n0")
		if err != nil {
			return nil, nil, err
		}
		normals = xyz(nrm)
	}
	if s.SkinCount == 0 && m.Skeleton != nil && s.BoneIndex < len(m.Skeleton.Bones) {
		skeleton.ApplyTransforms(positions, normals, m.Skeleton.Bones[s.BoneIndex].World)
	}
	return positions, normals, nil
}

func xyz(v [][4]float32) [][3]float32 {
	out := make([][3]float32, len(v))
	for i, p := range v {
		out[i] = [3]float32{p[0], p[1], p[2]}
	}
	return out
}

// Dump renders the model and everything it owns.
func (m *Model) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model %d %q: %d buffers, %d materials, %d shapes, %d vertices\n",
		m.Index, m.Name, len(m.Buffers), len(m.Materials), len(m.Shapes), m.TotalVertices)
	if m.Skeleton != nil {
		b.WriteString(m.Skeleton.Dump())
	}
	for _, vb := range m.Buffers {
		b.WriteString(vb.Dump())
	}
	for _, mat := range m.Materials {
		b.WriteString(mat.Dump())
	}
	for _, s := range m.Shapes {
		b.WriteString(s.Dump())
	}
	return b.String()
}
