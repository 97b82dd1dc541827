// Package linalg provides the vector, matrix, and quaternion math shared by
// every decoder and post-process step. Types mutate in place through a
// receiver-returns-receiver style: v.Add(a, b) stores a+b into v and returns
// v, so chains like v.Cross(a, b).Unit() avoid intermediate allocations.
package linalg

import "math"

// Vec3 is a 3 element vector, used for positions, normals, and scale.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is a convenience constructor.
func V3(x, y, z float32) Vec3 { return Vec3{x, y, z} }

// Add sets v = a+b and returns v.
func (v *Vec3) Add(a, b Vec3) *Vec3 {
	v.X, v.Y, v.Z = a.X+b.X, a.Y+b.Y, a.Z+b.Z
	return v
}

// Sub sets v = a-b and returns v.
func (v *Vec3) Sub(a, b Vec3) *Vec3 {
	v.X, v.Y, v.Z = a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return v
}

// Scale sets v = a*s and returns v.
func (v *Vec3) Scale(a Vec3, s float32) *Vec3 {
	v.X, v.Y, v.Z = a.X*s, a.Y*s, a.Z*s
	return v
}

// Cross sets v = a x b and returns v. Input vectors may alias v.
func (v *Vec3) Cross(a, b Vec3) *Vec3 {
	x := a.Y*b.Z - a.Z*b.Y
	y := a.Z*b.X - a.X*b.Z
	z := a.X*b.Y - a.Y*b.X
	v.X, v.Y, v.Z = x, y, z
	return v
}

// Dot returns v . a.
func (v Vec3) Dot(a Vec3) float32 { return v.X*a.X + v.Y*a.Y + v.Z*a.Z }

// Len returns the length of v.
func (v Vec3) Len() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Unit normalizes v in place and returns v. A zero-length vector is left
// unchanged, matching the "no shared position" fallback the spatial sort and
// normal generation rely on.
func (v *Vec3) Unit() *Vec3 {
	l := v.Len()
	if l != 0 {
		inv := 1 / l
		v.X, v.Y, v.Z = v.X*inv, v.Y*inv, v.Z*inv
	}
	return v
}

// Lerp sets v to the linear interpolation between a and b at fraction t.
func (v *Vec3) Lerp(a, b Vec3, t float32) *Vec3 {
	v.X = a.X + (b.X-a.X)*t
	v.Y = a.Y + (b.Y-a.Y)*t
	v.Z = a.Z + (b.Z-a.Z)*t
	return v
}

// Eq reports whether v and a have identical components.
func (v Vec3) Eq(a Vec3) bool { return v.X == a.X && v.Y == a.Y && v.Z == a.Z }

// AbsDiff returns the componentwise absolute difference between v and a.
func (v Vec3) AbsDiff(a Vec3) Vec3 {
	return Vec3{absf32(v.X - a.X), absf32(v.Y - a.Y), absf32(v.Z - a.Z)}
}

func absf32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// Vec2 is a 2 element vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}
