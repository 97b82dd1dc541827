package nff

import (
	"math"

	"github.com/galvanized-assets/sceneimport/linalg"
)

// tessTriangle is a standalone position triangle, pre-transform.
type tessTriangle [3]linalg.Vec3

// icosphere tessellates a unit sphere by subdividing an icosahedron
// `subdivisions` times, then scales and translates it to (center, radius).
// Grounded in the "Supplemented features" decision to give NFF's `s`
// primitive real, visible geometry instead of a placeholder.
func icosphere(center linalg.Vec3, radius float32, subdivisions int) []tessTriangle {
	const t = 1.618033988749895 // golden ratio.
	verts := []linalg.Vec3{
		linalg.V3(-1, t, 0), linalg.V3(1, t, 0), linalg.V3(-1, -t, 0), linalg.V3(1, -t, 0),
		linalg.V3(0, -1, t), linalg.V3(0, 1, t), linalg.V3(0, -1, -t), linalg.V3(0, 1, -t),
		linalg.V3(t, 0, -1), linalg.V3(t, 0, 1), linalg.V3(-t, 0, -1), linalg.V3(-t, 0, 1),
	}
	for i := range verts {
		verts[i].Unit()
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	tris := make([]tessTriangle, len(faces))
	for i, f := range faces {
		tris[i] = tessTriangle{verts[f[0]], verts[f[1]], verts[f[2]]}
	}
	for s := 0; s < subdivisions; s++ {
		tris = subdivide(tris)
	}
	out := make([]tessTriangle, len(tris))
	for i, tr := range tris {
		for j := 0; j < 3; j++ {
			v := tr[j]
			out[i][j] = linalg.V3(center.X+v.X*radius, center.Y+v.Y*radius, center.Z+v.Z*radius)
		}
	}
	return out
}

func subdivide(tris []tessTriangle) []tessTriangle {
	out := make([]tessTriangle, 0, len(tris)*4)
	mid := func(a, b linalg.Vec3) linalg.Vec3 {
		m := linalg.V3((a.X+b.X)/2, (a.Y+b.Y)/2, (a.Z+b.Z)/2)
		m.Unit()
		return m
	}
	for _, tr := range tris {
		a, b, c := tr[0], tr[1], tr[2]
		ab, bc, ca := mid(a, b), mid(b, c), mid(c, a)
		out = append(out,
			tessTriangle{a, ab, ca},
			tessTriangle{ab, b, bc},
			tessTriangle{ca, bc, c},
			tessTriangle{ab, bc, ca},
		)
	}
	return out
}

// cylinderCone tessellates a truncated cone (or cylinder, when the two radii
// match) between two end caps as a triangle fan per cap plus a triangle
// strip around the side, matching NFF's `c` primitive.
func cylinderCone(base, apex linalg.Vec3, baseRadius, apexRadius float32, segments int) []tessTriangle {
	axis := linalg.V3(apex.X-base.X, apex.Y-base.Y, apex.Z-base.Z)
	u, v := perpBasis(axis)
	ring := func(center linalg.Vec3, radius float32) []linalg.Vec3 {
		pts := make([]linalg.Vec3, segments)
		for i := 0; i < segments; i++ {
			angle := 2 * math.Pi * float64(i) / float64(segments)
			cu := float32(math.Cos(angle))
			sv := float32(math.Sin(angle))
			pts[i] = linalg.V3(
				center.X+(u.X*cu+v.X*sv)*radius,
				center.Y+(u.Y*cu+v.Y*sv)*radius,
				center.Z+(u.Z*cu+v.Z*sv)*radius,
			)
		}
		return pts
	}
	baseRing := ring(base, baseRadius)
	apexRing := ring(apex, apexRadius)

	var out []tessTriangle
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		out = append(out, tessTriangle{baseRing[i], apexRing[i], apexRing[j]})
		out = append(out, tessTriangle{baseRing[i], apexRing[j], baseRing[j]})
	}
	for i := 1; i+1 < segments; i++ {
		out = append(out, tessTriangle{baseRing[0], baseRing[i+1], baseRing[i]})
		out = append(out, tessTriangle{apexRing[0], apexRing[i], apexRing[i+1]})
	}
	return out
}

// box tessellates an axis-aligned box of the given half-extents around
// center — the third standard shape named in the supplemented-features
// scope, used by NFF's `hex` primitive.
func box(center linalg.Vec3, halfExtent linalg.Vec3) []tessTriangle {
	x, y, z := halfExtent.X, halfExtent.Y, halfExtent.Z
	c := center
	corner := func(sx, sy, sz float32) linalg.Vec3 {
		return linalg.V3(c.X+sx*x, c.Y+sy*y, c.Z+sz*z)
	}
	// 8 corners, 12 triangles (2 per face).
	p := [8]linalg.Vec3{
		corner(-1, -1, -1), corner(1, -1, -1), corner(1, 1, -1), corner(-1, 1, -1),
		corner(-1, -1, 1), corner(1, -1, 1), corner(1, 1, 1), corner(-1, 1, 1),
	}
	quads := [6][4]int{
		{0, 1, 2, 3}, {5, 4, 7, 6}, {4, 0, 3, 7},
		{1, 5, 6, 2}, {3, 2, 6, 7}, {4, 5, 1, 0},
	}
	var out []tessTriangle
	for _, q := range quads {
		out = append(out, tessTriangle{p[q[0]], p[q[1]], p[q[2]]})
		out = append(out, tessTriangle{p[q[0]], p[q[2]], p[q[3]]})
	}
	return out
}

func perpBasis(axis linalg.Vec3) (linalg.Vec3, linalg.Vec3) {
	axis.Unit()
	ref := linalg.V3(0, 1, 0)
	if abs32(axis.Y) > 0.99 {
		ref = linalg.V3(1, 0, 0)
	}
	u := cross(axis, ref)
	u.Unit()
	v := cross(axis, u)
	v.Unit()
	return u, v
}

func cross(a, b linalg.Vec3) linalg.Vec3 {
	return linalg.V3(a.Y*b.Z-a.Z*b.Y, a.Z*b.X-a.X*b.Z, a.X*b.Y-a.Y*b.X)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
