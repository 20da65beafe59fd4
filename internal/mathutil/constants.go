package mathutil

import "math"

// RootCorrection rotates Y-up model space into the Z-up scene space
// expected by consumers: Rx(+90°). It is applied to every root bone.
var RootCorrection = FromMat3Translation(RotX(math.Pi/2), Vec3{})

// ApproxEqual reports whether a and b differ by at most eps.
func ApproxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
