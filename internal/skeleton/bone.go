package skeleton

import (
	"fmt"
	"strings"

	"bfres-decoder/internal/mathutil"
)

// BillboardMode is the three-bit billboard field of a bone's flags.
type BillboardMode uint8

const (
	BillboardNone BillboardMode = iota
	BillboardChild
	BillboardWorldViewVector
	BillboardWorldViewPoint
	BillboardScreenViewVector
	BillboardScreenViewPoint
	BillboardYAxisViewVector
	BillboardYAxisViewPoint
)

var billboardNames = [...]string{
	"None", "Child", "WorldViewVector", "WorldViewPoint",
	"ScreenViewVector", "ScreenViewPoint", "YAxisViewVector", "YAxisViewPoint",
}

func (m BillboardMode) String() string {
	if int(m) < len(billboardNames) {
		return billboardNames[m]
	}
	return fmt.Sprintf("BillboardMode(%d)", uint8(m))
}

// Flags is the decoded bone flag word.
type Flags struct {
	Raw       uint32
	Visible   bool
	Euler     bool
	Billboard BillboardMode

	SegmentScaleCompensate bool
	UniformScale           bool
	ScaleVolumeOne         bool
	NoRotation             bool
	NoTranslation          bool

	HierarchyUniformScale   bool
	HierarchyScaleVolumeOne bool
	HierarchyNoRotation     bool
	HierarchyNoTranslation  bool
}

func decodeCommon(raw uint32) Flags {
	bit := func(n uint) bool { return raw>>n&1 != 0 }
	return Flags{
		Raw:                     raw,
		Billboard:               BillboardMode(raw >> 16 & 7),
		SegmentScaleCompensate:  bit(23),
		UniformScale:            bit(24),
		ScaleVolumeOne:          bit(25),
		NoRotation:              bit(26),
		NoTranslation:           bit(27),
		HierarchyUniformScale:   bit(28),
		HierarchyScaleVolumeOne: bit(29),
		HierarchyNoRotation:     bit(30),
		HierarchyNoTranslation:  bit(31),
	}
}

// DecodeFlagsV0 decodes the flag word of pre-0.10 files, where bit 0
// marks visibility and bit 12 selects Euler rotation.
func DecodeFlagsV0(raw uint32) Flags {
	f := decodeCommon(raw)
	f.Visible = raw&1 != 0
	f.Euler = raw>>12&1 != 0
	return f
}

// DecodeFlagsV10 decodes the flag word of 0.10+ files. Visibility moved
// to bit 12; rotation mode is a skeleton-wide setting there.
func DecodeFlagsV10(raw uint32) Flags {
	f := decodeCommon(raw)
	f.Visible = raw>>12&1 != 0
	return f
}

func (f Flags) String() string {
	var parts []string
	add := func(ok bool, name string) {
		if ok {
			parts = append(parts, name)
		}
	}
	add(f.Visible, "visible")
	add(f.Euler, "euler")
	add(f.Billboard != BillboardNone, "billboard="+f.Billboard.String())
	add(f.SegmentScaleCompensate, "segScaleComp")
	add(f.UniformScale, "uniformScale")
	add(f.ScaleVolumeOne, "scaleVolOne")
	add(f.NoRotation, "noRot")
	add(f.NoTranslation, "noTrans")
	add(f.HierarchyUniformScale, "hierUniformScale")
	add(f.HierarchyScaleVolumeOne, "hierScaleVolOne")
	add(f.HierarchyNoRotation, "hierNoRot")
	add(f.HierarchyNoTranslation, "hierNoTrans")
	return fmt.Sprintf("0x%08X [%s]", f.Raw, strings.Join(parts, " "))
}

// Bone is one node of a skeleton. Parent is -1 for roots. Local and
// World are filled by Skeleton.Compute.
type Bone struct {
	Name           string
	Index          int
	Parent         int
	SmoothMatrix   int
	RigidMatrix    int
	BillboardIndex int
	UserDataCount  int
	Flags          Flags

	Scale    [3]float32
	Rotation [4]float32
	Position [3]float32

	Local mathutil.Mat4
	World mathutil.Mat4
}

// Dump renders one bone.
func (b *Bone) Dump() string {
	var s strings.Builder
	fmt.Fprintf(&s, "  Bone %3d %q parent %3d smooth %3d rigid %3d billboard %3d flags %s\n",
		b.Index, b.Name, b.Parent, b.SmoothMatrix, b.RigidMatrix, b.BillboardIndex, b.Flags)
	fmt.Fprintf(&s, "    Scale %v Rot %v Pos %v\n", b.Scale, b.Rotation, b.Position)
	return s.String()
}
