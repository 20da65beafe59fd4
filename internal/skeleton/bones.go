// Package skeleton holds decoded bone hierarchies and computes their
// bind-pose local and world transforms.
package skeleton

import (
	"errors"
	"fmt"
	"strings"

	"bfres-decoder/internal/mathutil"
)

// ErrInvalidParentIndex reports a bone whose parent does not precede it.
var ErrInvalidParentIndex = errors.New("invalid parent index")

// RotationMode selects how Bone.Rotation is interpreted.
type RotationMode uint8

const (
	RotationQuaternion RotationMode = iota
	RotationEuler
)

func (m RotationMode) String() string {
	if m == RotationEuler {
		return "EulerXYZ"
	}
	return "Quaternion"
}

// Skeleton flag bits.
const (
	skelFlagEuler    = 1 << 12
	skelScalingShift = 8
	skelScalingMask  = 3
	ScalingNone      = 0
	ScalingStandard  = 1
	ScalingMaya      = 2
	ScalingSoftimage = 3
)

// Skeleton is one model's bone hierarchy.
type Skeleton struct {
	Flags       uint32
	Bones       []*Bone
	SmoothCount int
	RigidCount  int
	// MatrixToBone maps skinning matrix slots to bone indices: smooth
	// slots first, then rigid ones.
	MatrixToBone []int16
	// InverseModel holds one inverse bind matrix per smooth slot.
	InverseModel []mathutil.Mat4
}

// RotationMode reports the skeleton-wide rotation encoding.
func (s *Skeleton) RotationMode() RotationMode {
	if s.Flags&skelFlagEuler != 0 {
		return RotationEuler
	}
	return RotationQuaternion
}

// ScalingMode returns the two-bit scaling mode (ScalingNone..ScalingSoftimage).
func (s *Skeleton) ScalingMode() int {
	return int(s.Flags >> skelScalingShift & skelScalingMask)
}

// Bone returns the bone with the given name.
func (s *Skeleton) Bone(name string) (*Bone, bool) {
	for _, b := range s.Bones {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// MatrixBone returns the bone bound to skinning matrix slot i.
func (s *Skeleton) MatrixBone(i int) (*Bone, bool) {
	if i < 0 || i >= len(s.MatrixToBone) {
		return nil, false
	}
	bi := int(s.MatrixToBone[i])
	if bi < 0 || bi >= len(s.Bones) {
		return nil, false
	}
	return s.Bones[bi], true
}

// Compute fills Local and World for every bone. Bones are visited in
// array order, so a parent must precede its children.
//
// local = T(position) · R · S(scale), where R comes from Euler XYZ
// radians (Rz·Ry·Rx) when the bone or skeleton says so and from the
// (x, y, z, w) quaternion otherwise. Root bones are additionally rotated
// by mathutil.RootCorrection.
func (s *Skeleton) Compute() error {
	skelEuler := s.RotationMode() == RotationEuler
	for i, b := range s.Bones {
		if b.Parent >= i || b.Parent < -1 {
			return fmt.Errorf("skeleton: bone %d %q parent %d: %w", i, b.Name, b.Parent, ErrInvalidParentIndex)
		}

		var rot mathutil.Mat3
		if skelEuler || b.Flags.Euler {
			rot = mathutil.EulerToMat3(float64(b.Rotation[0]), float64(b.Rotation[1]), float64(b.Rotation[2]))
		} else {
			q := mathutil.Quat{
				float64(b.Rotation[0]), float64(b.Rotation[1]),
				float64(b.Rotation[2]), float64(b.Rotation[3]),
			}
			rot = mathutil.QuatToMat3(q.Normalize())
		}
		b.Local = mathutil.TRS(mathutil.Vec3From32(b.Position[:]), rot, mathutil.Vec3From32(b.Scale[:]))

		if b.Parent >= 0 {
			b.World = mathutil.Mat4Mul(s.Bones[b.Parent].World, b.Local)
		} else {
			b.World = mathutil.Mat4Mul(mathutil.RootCorrection, b.Local)
		}
	}
	return nil
}

// ApplyTransforms moves rigidly bound vertices into the bone's space:
// positions by world, normals by its inverse transpose. Both slices are
// modified in place; either may be nil.
func ApplyTransforms(positions, normals [][3]float32, world mathutil.Mat4) {
	if world.IsIdentity() {
		return
	}
	for i := range positions {
		positions[i] = world.MulPoint(mathutil.Vec3From32(positions[i][:])).To32()
	}
	if len(normals) == 0 {
		return
	}
	nm := world.Mat3().NormalMatrix()
	for i := range normals {
		normals[i] = nm.MulVec3(mathutil.Vec3From32(normals[i][:])).Normalize().To32()
	}
}

// Dump renders the hierarchy for diagnostics.
func (s *Skeleton) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Skeleton: %d bones, flags 0x%08X (%s, scaling %d), %d smooth / %d rigid matrices\n",
		len(s.Bones), s.Flags, s.RotationMode(), s.ScalingMode(), s.SmoothCount, s.RigidCount)
	for _, bone := range s.Bones {
		b.WriteString(bone.Dump())
	}
	return b.String()
}
