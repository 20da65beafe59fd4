package mathutil

import "math"

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 [3]float64

// Vec3From32 widens a float32 triple.
func Vec3From32(v []float32) Vec3 {
	var out Vec3
	for i := 0; i < 3 && i < len(v); i++ {
		out[i] = float64(v[i])
	}
	return out
}

// To32 narrows v into a float32 triple.
func (v Vec3) To32() [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

func (a Vec3) Dot(b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return Vec3{v[0] / l, v[1] / l, v[2] / l}
}

// Bounds returns the axis-aligned box around points. Both corners are
// zero for an empty slice.
func Bounds(points [][3]float32) (lo, hi Vec3) {
	if len(points) == 0 {
		return Vec3{}, Vec3{}
	}
	lo = Vec3From32(points[0][:])
	hi = lo
	for _, p := range points[1:] {
		for k := range 3 {
			lo[k] = min(lo[k], float64(p[k]))
			hi[k] = max(hi[k], float64(p[k]))
		}
	}
	return lo, hi
}
