// Package spatial implements the smoothing-group-aware spatial sort from
// spec.md §4.6: given a point cloud (one entry per face-vertex occurrence,
// each carrying the smoothing-group bitmask of the face it belongs to),
// answer "every entry within ε of a query position whose bitmask intersects
// a given mask".
//
// The contract is implementation-free; this uses the source's own approach
// (spec.md §4.6: "the source uses a 1-D projection sort on an arbitrary
// plane normal and linear scan within ε") — entries are sorted by their X
// coordinate, a candidate window is located with a binary search, and each
// candidate is verified against the full componentwise-ε box.
package spatial

import (
	"sort"

	"github.com/galvanized-assets/sceneimport/linalg"
)

// Entry is one face-vertex occurrence fed into the sort.
type Entry struct {
	VertexIndex int
	FaceIndex   int
	Position    linalg.Vec3
	Smoothing   uint32
}

// Sort is the prepared spatial index.
type Sort struct {
	entries []Entry // sorted by Position.X
}

// Prepare builds a Sort over positions, where faces[i] lists the vertex
// indices of face i and faceSmoothing[i] is that face's smoothing-group
// bitmask. Each face contributes one entry per vertex it references,
// matching spec.md §4.6's "faces supply per-face smoothing bitmasks; each
// contributes once per vertex position".
func Prepare(positions []linalg.Vec3, faces [][]uint32, faceSmoothing []uint32) *Sort {
	s := &Sort{}
	for fi, face := range faces {
		mask := uint32(0)
		if fi < len(faceSmoothing) {
			mask = faceSmoothing[fi]
		}
		for _, vi := range face {
			if int(vi) >= len(positions) {
				continue
			}
			s.entries = append(s.entries, Entry{
				VertexIndex: int(vi),
				FaceIndex:   fi,
				Position:    positions[vi],
				Smoothing:   mask,
			})
		}
	}
	sort.Slice(s.entries, func(i, j int) bool { return s.entries[i].Position.X < s.entries[j].Position.X })
	return s
}

// Find returns every entry within epsilon (componentwise absolute) of pos
// whose smoothing bitmask intersects smoothing, along with the face each
// qualifying entry belongs to. If smoothing == 0, positions are treated as
// non-shared: only entries at exactly pos with a zero mask are returned
// (spec.md §4.6: "each returns only itself").
func (s *Sort) Find(pos linalg.Vec3, smoothing uint32, epsilon float32) []Entry {
	lo := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Position.X >= pos.X-epsilon })
	hi := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Position.X > pos.X+epsilon })

	var out []Entry
	for i := lo; i < hi; i++ {
		e := s.entries[i]
		if smoothing == 0 {
			if e.Smoothing == 0 && e.Position.Eq(pos) {
				out = append(out, e)
			}
			continue
		}
		if e.Smoothing&smoothing == 0 {
			continue
		}
		d := e.Position.AbsDiff(pos)
		if d.X <= epsilon && d.Y <= epsilon && d.Z <= epsilon {
			out = append(out, e)
		}
	}
	return out
}

// Epsilon computes the recommended ε for a point cloud: its AABB diagonal
// length times 1e-5, or 1e-5 if the diagonal is zero (spec.md §4.6).
func Epsilon(positions []linalg.Vec3) float32 {
	if len(positions) == 0 {
		return 1e-5
	}
	min, max := positions[0], positions[0]
	for _, p := range positions[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	var diag linalg.Vec3
	diag.Sub(max, min)
	d := diag.Len()
	if d == 0 {
		return 1e-5
	}
	return d * 1e-5
}
