package mathutil

// Mat3 is a row-major 3×3 matrix holding a bone's rotation and scale.
type Mat3 [9]float64

func Mat3Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// ScaleMat3 returns diag(s).
func ScaleMat3(s Vec3) Mat3 {
	return Mat3{s[0], 0, 0, 0, s[1], 0, 0, 0, s[2]}
}

func rows3(r0, r1, r2 Vec3) Mat3 {
	return Mat3{r0[0], r0[1], r0[2], r1[0], r1[1], r1[2], r2[0], r2[1], r2[2]}
}

func (m Mat3) Row(i int) Vec3 {
	return Vec3{m[i*3], m[i*3+1], m[i*3+2]}
}

func (m Mat3) Col(j int) Vec3 {
	return Vec3{m[j], m[3+j], m[6+j]}
}

// Mat3Mul returns a × b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for i := range 3 {
		for j := range 3 {
			m[i*3+j] = a.Row(i).Dot(b.Col(j))
		}
	}
	return m
}

// MulVec3 returns m × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{m.Row(0).Dot(v), m.Row(1).Dot(v), m.Row(2).Dot(v)}
}

// NormalMatrix returns the inverse transpose of m, the matrix that
// carries surface normals through m. It is the cofactor matrix over the
// determinant. A singular m gives the identity.
func (m Mat3) NormalMatrix() Mat3 {
	r0, r1, r2 := m.Row(0), m.Row(1), m.Row(2)
	c0, c1, c2 := r1.Cross(r2), r2.Cross(r0), r0.Cross(r1)
	det := r0.Dot(c0)
	if det == 0 {
		return Mat3Identity()
	}
	inv := 1 / det
	return rows3(c0.Scale(inv), c1.Scale(inv), c2.Scale(inv))
}
