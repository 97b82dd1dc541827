package linalg

import "math"

// Quat is a rotation quaternion, used for joint/bone orientation and
// animation rotation keys.
type Quat struct {
	X, Y, Z, W float32
}

// IdentityQuat returns the identity rotation.
func IdentityQuat() Quat { return Quat{W: 1} }

// Unit normalizes q in place and returns q.
func (q *Quat) Unit() *Quat {
	l := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if l != 0 {
		inv := 1 / l
		q.X, q.Y, q.Z, q.W = q.X*inv, q.Y*inv, q.Z*inv, q.W*inv
	}
	return q
}

// Mat4 converts q to an equivalent rotation matrix.
func (q Quat) Mat4() Mat4 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, yy, zz := x*x2, y*y2, z*z2
	xy, xz, yz := x*y2, x*z2, y*z2
	wx, wy, wz := w*x2, w*y2, w*z2
	m := Identity4()
	m.Xx, m.Xy, m.Xz = 1-(yy+zz), xy+wz, xz-wy
	m.Yx, m.Yy, m.Yz = xy-wz, 1-(xx+zz), yz+wx
	m.Zx, m.Zy, m.Zz = xz+wy, yz-wx, 1-(xx+yy)
	return m
}

// Lerp sets q to the (non-normalized) linear interpolation between a and b
// at fraction t, then normalizes. Used for the CUBICSPLINE-free key
// interpolation animation channels need between adjacent rotation keys.
func (q *Quat) Lerp(a, b Quat, t float32) *Quat {
	q.X = a.X + (b.X-a.X)*t
	q.Y = a.Y + (b.Y-a.Y)*t
	q.Z = a.Z + (b.Z-a.Z)*t
	q.W = a.W + (b.W-a.W)*t
	return q.Unit()
}
