package mathutil

import "math"

// axisRotation is the right-handed rotation by a radians about basis
// axis k (0 X, 1 Y, 2 Z).
func axisRotation(k int, a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	i, j := (k+1)%3, (k+2)%3
	m := Mat3Identity()
	m[i*3+i], m[i*3+j] = c, -s
	m[j*3+i], m[j*3+j] = s, c
	return m
}

func RotX(a float64) Mat3 { return axisRotation(0, a) }
func RotY(a float64) Mat3 { return axisRotation(1, a) }
func RotZ(a float64) Mat3 { return axisRotation(2, a) }

// EulerToMat3 builds the bone rotation for Euler XYZ angles. X turns
// first, so the product is Rz · Ry · Rx.
func EulerToMat3(rx, ry, rz float64) Mat3 {
	m := Mat3Identity()
	for k, a := range [3]float64{rx, ry, rz} {
		m = Mat3Mul(axisRotation(k, a), m)
	}
	return m
}
