package skeleton

import (
	"errors"
	"math"
	"testing"

	"bfres-decoder/internal/mathutil"
)

func identityBone(name string, parent int, pos [3]float32) *Bone {
	return &Bone{
		Name:     name,
		Parent:   parent,
		Scale:    [3]float32{1, 1, 1},
		Rotation: [4]float32{0, 0, 0, 1},
		Position: pos,
	}
}

func TestComputeRootCorrection(t *testing.T) {
	s := &Skeleton{Bones: []*Bone{
		identityBone("root", -1, [3]float32{0, 0, 0}),
		identityBone("child", 0, [3]float32{1, 2, 3}),
	}}
	if err := s.Compute(); err != nil {
		t.Fatal(err)
	}
	want := mathutil.Mat4Mul(mathutil.RootCorrection, s.Bones[1].Local)
	if !s.Bones[1].World.ApproxEqual(want, 1e-9) {
		t.Errorf("child world =\n%v\nwant\n%v", s.Bones[1].World, want)
	}
	// (1,2,3) under Rx(+90°) becomes (1,-3,2).
	got := s.Bones[1].World.Translation()
	for i, w := range []float64{1, -3, 2} {
		if !mathutil.ApproxEqual(got[i], w, 1e-6) {
			t.Fatalf("child origin = %v", got)
		}
	}
}

func TestComputeEulerAndScale(t *testing.T) {
	b := identityBone("root", -1, [3]float32{0, 0, 0})
	b.Flags = DecodeFlagsV0(1<<12 | 1)
	b.Rotation = [4]float32{0, 0, float32(math.Pi / 2), 0}
	b.Scale = [3]float32{2, 2, 2}
	s := &Skeleton{Bones: []*Bone{b}}
	if err := s.Compute(); err != nil {
		t.Fatal(err)
	}
	got := b.Local.MulPoint(mathutil.Vec3{1, 0, 0})
	if !mathutil.ApproxEqual(got[0], 0, 1e-6) || !mathutil.ApproxEqual(got[1], 2, 1e-6) {
		t.Errorf("local·(1,0,0) = %v, want (0,2,0)", got)
	}
}

func TestSkeletonWideEuler(t *testing.T) {
	b := identityBone("root", -1, [3]float32{})
	b.Rotation = [4]float32{float32(math.Pi / 2), 0, 0, 0}
	s := &Skeleton{Flags: 1 << 12, Bones: []*Bone{b}}
	if s.RotationMode() != RotationEuler {
		t.Fatal("rotation mode not euler")
	}
	if err := s.Compute(); err != nil {
		t.Fatal(err)
	}
	want := mathutil.FromMat3Translation(mathutil.RotX(math.Pi/2), mathutil.Vec3{})
	if !b.Local.ApproxEqual(want, 1e-6) {
		t.Errorf("local =\n%v", b.Local)
	}
}

func TestInvalidParent(t *testing.T) {
	tests := []struct {
		name   string
		parent int
	}{
		{"self", 1},
		{"forward", 2},
		{"below -1", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Skeleton{Bones: []*Bone{
				identityBone("a", -1, [3]float32{}),
				identityBone("b", tt.parent, [3]float32{}),
				identityBone("c", 0, [3]float32{}),
			}}
			if err := s.Compute(); !errors.Is(err, ErrInvalidParentIndex) {
				t.Errorf("got %v, want ErrInvalidParentIndex", err)
			}
		})
	}
}

func TestFlagVariants(t *testing.T) {
	v0 := DecodeFlagsV0(1 | 1<<12 | 3<<16 | 1<<23)
	if !v0.Visible || !v0.Euler || v0.Billboard != BillboardWorldViewPoint || !v0.SegmentScaleCompensate {
		t.Errorf("v0 flags = %s", v0)
	}
	v10 := DecodeFlagsV10(1 << 12)
	if !v10.Visible || v10.Euler {
		t.Errorf("v10 flags = %s", v10)
	}
	if DecodeFlagsV10(1).Visible {
		t.Error("bit 0 means visible only in v0")
	}
}

func TestApplyTransforms(t *testing.T) {
	world := mathutil.TRS(mathutil.Vec3{0, 0, 5}, mathutil.RotZ(math.Pi/2), mathutil.Vec3{1, 1, 1})
	pos := [][3]float32{{1, 0, 0}}
	nrm := [][3]float32{{1, 0, 0}}
	ApplyTransforms(pos, nrm, world)
	if math.Abs(float64(pos[0][1])-1) > 1e-6 || math.Abs(float64(pos[0][2])-5) > 1e-6 {
		t.Errorf("position = %v", pos[0])
	}
	if math.Abs(float64(nrm[0][1])-1) > 1e-6 {
		t.Errorf("normal = %v", nrm[0])
	}

	same := [][3]float32{{4, 5, 6}}
	ApplyTransforms(same, nil, mathutil.Mat4Identity())
	if same[0] != [3]float32{4, 5, 6} {
		t.Error("identity moved vertices")
	}
}

func TestMatrixBone(t *testing.T) {
	s := &Skeleton{
		Bones:        []*Bone{identityBone("a", -1, [3]float32{}), identityBone("b", 0, [3]float32{})},
		MatrixToBone: []int16{1, 0, 7},
	}
	if b, ok := s.MatrixBone(0); !ok || b.Name != "b" {
		t.Errorf("MatrixBone(0) = %v, %v", b, ok)
	}
	if _, ok := s.MatrixBone(2); ok {
		t.Error("out-of-range bone index resolved")
	}
}
