package linalg

// Mat4 is a row-major 4x4 matrix applied as row-vector * matrix, matching
// the canonical scene's node transform convention (spec.md §3: "a 4x4
// transform relative to its parent").
type Mat4 struct {
	Xx, Xy, Xz, Xw float32
	Yx, Yy, Yz, Yw float32
	Zx, Zy, Zz, Zw float32
	Wx, Wy, Wz, Ww float32
}

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	return Mat4{
		Xx: 1, Yy: 1, Zz: 1, Ww: 1,
	}
}

// Scale4 returns a uniform-or-nonuniform scale matrix.
func Scale4(sx, sy, sz float32) Mat4 {
	m := Identity4()
	m.Xx, m.Yy, m.Zz = sx, sy, sz
	return m
}

// Translate4 returns a translation matrix.
func Translate4(x, y, z float32) Mat4 {
	m := Identity4()
	m.Wx, m.Wy, m.Wz = x, y, z
	return m
}

// Mult sets m = a*b (row-vector convention: a applied first, then b) and
// returns m. m must not alias a or b.
func (m *Mat4) Mult(a, b Mat4) *Mat4 {
	m.Xx = a.Xx*b.Xx + a.Xy*b.Yx + a.Xz*b.Zx + a.Xw*b.Wx
	m.Xy = a.Xx*b.Xy + a.Xy*b.Yy + a.Xz*b.Zy + a.Xw*b.Wy
	m.Xz = a.Xx*b.Xz + a.Xy*b.Yz + a.Xz*b.Zz + a.Xw*b.Wz
	m.Xw = a.Xx*b.Xw + a.Xy*b.Yw + a.Xz*b.Zw + a.Xw*b.Ww

	m.Yx = a.Yx*b.Xx + a.Yy*b.Yx + a.Yz*b.Zx + a.Yw*b.Wx
	m.Yy = a.Yx*b.Xy + a.Yy*b.Yy + a.Yz*b.Zy + a.Yw*b.Wy
	m.Yz = a.Yx*b.Xz + a.Yy*b.Yz + a.Yz*b.Zz + a.Yw*b.Wz
	m.Yw = a.Yx*b.Xw + a.Yy*b.Yw + a.Yz*b.Zw + a.Yw*b.Ww

	m.Zx = a.Zx*b.Xx + a.Zy*b.Yx + a.Zz*b.Zx + a.Zw*b.Wx
	m.Zy = a.Zx*b.Xy + a.Zy*b.Yy + a.Zz*b.Zy + a.Zw*b.Wy
	m.Zz = a.Zx*b.Xz + a.Zy*b.Yz + a.Zz*b.Zz + a.Zw*b.Wz
	m.Zw = a.Zx*b.Xw + a.Zy*b.Yw + a.Zz*b.Zw + a.Zw*b.Ww

	m.Wx = a.Wx*b.Xx + a.Wy*b.Yx + a.Wz*b.Zx + a.Ww*b.Wx
	m.Wy = a.Wx*b.Xy + a.Wy*b.Yy + a.Wz*b.Zy + a.Ww*b.Wy
	m.Wz = a.Wx*b.Xz + a.Wy*b.Yz + a.Wz*b.Zz + a.Ww*b.Wz
	m.Ww = a.Wx*b.Xw + a.Wy*b.Yw + a.Wz*b.Zw + a.Ww*b.Ww
	return m
}

// Transpose sets m to the transpose of a and returns m. m must not alias a.
func (m *Mat4) Transpose(a Mat4) *Mat4 {
	m.Xx, m.Xy, m.Xz, m.Xw = a.Xx, a.Yx, a.Zx, a.Wx
	m.Yx, m.Yy, m.Yz, m.Yw = a.Xy, a.Yy, a.Zy, a.Wy
	m.Zx, m.Zy, m.Zz, m.Zw = a.Xz, a.Yz, a.Zz, a.Wz
	m.Wx, m.Wy, m.Wz, m.Ww = a.Xw, a.Yw, a.Zw, a.Ww
	return m
}

// MultVec3 transforms point p as a row vector through m (with an implicit
// w=1), applying both the rotation/scale block and the translation row.
func (m Mat4) MultVec3(p Vec3) Vec3 {
	return Vec3{
		X: p.X*m.Xx + p.Y*m.Yx + p.Z*m.Zx + m.Wx,
		Y: p.X*m.Xy + p.Y*m.Yy + p.Z*m.Zy + m.Wy,
		Z: p.X*m.Xz + p.Y*m.Yz + p.Z*m.Zz + m.Wz,
	}
}

// MultDir3 transforms direction d (normal/tangent) through m, ignoring
// translation.
func (m Mat4) MultDir3(d Vec3) Vec3 {
	return Vec3{
		X: d.X*m.Xx + d.Y*m.Yx + d.Z*m.Zx,
		Y: d.X*m.Xy + d.Y*m.Yy + d.Z*m.Zy,
		Z: d.X*m.Xz + d.Y*m.Yz + d.Z*m.Zz,
	}
}

// Det3 returns the determinant of the upper-left 3x3 block, used by the 3DS
// decoder to detect a winding flip after the row-swap coordinate fixup
// (spec.md §4.3).
func (m Mat4) Det3() float32 {
	return m.Xx*(m.Yy*m.Zz-m.Yz*m.Zy) -
		m.Xy*(m.Yx*m.Zz-m.Yz*m.Zx) +
		m.Xz*(m.Yx*m.Zy-m.Yy*m.Zx)
}

// Invert sets m to the inverse of a (full 4x4, assuming the bottom-right
// block is the standard [0 0 0 1] affine row) and returns true, or leaves m
// unchanged and returns false if a is singular.
func (m *Mat4) Invert(a Mat4) (ok bool) {
	// Affine inverse: invert the 3x3 linear block, then the translation is
	// -t * inverse(linear block).
	det := a.Det3()
	if det == 0 {
		return false
	}
	inv := 1 / det
	var r Mat4
	r.Xx = (a.Yy*a.Zz - a.Yz*a.Zy) * inv
	r.Xy = (a.Xz*a.Zy - a.Xy*a.Zz) * inv
	r.Xz = (a.Xy*a.Yz - a.Xz*a.Yy) * inv
	r.Yx = (a.Yz*a.Zx - a.Yx*a.Zz) * inv
	r.Yy = (a.Xx*a.Zz - a.Xz*a.Zx) * inv
	r.Yz = (a.Xz*a.Yx - a.Xx*a.Yz) * inv
	r.Zx = (a.Yx*a.Zy - a.Yy*a.Zx) * inv
	r.Zy = (a.Xy*a.Zx - a.Xx*a.Zy) * inv
	r.Zz = (a.Xx*a.Yy - a.Xy*a.Yx) * inv
	r.Ww = 1
	t := Vec3{a.Wx, a.Wy, a.Wz}
	nt := r.MultDir3(t)
	r.Wx, r.Wy, r.Wz = -nt.X, -nt.Y, -nt.Z
	*m = r
	return true
}

// RowSwap3DS applies the glossary's "3DS row swap" recipe in place: swap
// (d2,d3); (a2,a3); (b1,c1); (c2,b3); (b2,c3), using the row/column naming
// where row A = Xx..Xz, row B = Yx..Yz, row C = Zx..Zz, row D = Wx..Wz (the
// translation row) and column 1/2/3 select x/y/z within each row. This
// converts the 3DS column-major Z-up orientation into row-major Y-up.
func (m *Mat4) RowSwap3DS() {
	m.Wy, m.Wz = m.Wz, m.Wy // d2, d3
	m.Xy, m.Xz = m.Xz, m.Xy // a2, a3
	m.Yx, m.Zx = m.Zx, m.Yx // b1, c1
	m.Zy, m.Yz = m.Yz, m.Zy // c2, b3
	m.Yy, m.Zz = m.Zz, m.Yy // b2, c3
}
