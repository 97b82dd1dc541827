package postprocess

import (
	"log/slog"

	"github.com/galvanized-assets/sceneimport/internal/spatial"
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

// GenerateNormals replaces every mesh's normal buffer with smoothing-group
// averaged face normals (spec.md §4.7): per-face normals are computed first,
// then a spatial sort groups coincident vertices sharing a smoothing group
// so their face normals can be averaged together.
func GenerateNormals(sc *scene.Scene, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	for _, m := range sc.Meshes {
		generateMeshNormals(m)
	}
}

func generateMeshNormals(m *scene.Mesh) {
	if len(m.Positions) == 0 || len(m.Faces) == 0 {
		return
	}
	faceIndices := make([][]uint32, len(m.Faces))
	faceNormals := make([]linalg.Vec3, len(m.Faces))
	for fi, f := range m.Faces {
		faceIndices[fi] = f.Indices
		faceNormals[fi] = faceNormal(m.Positions, f.Indices)
	}

	faceSmoothing := m.SmoothingGroups

	idx := spatial.Prepare(m.Positions, faceIndices, faceSmoothing)
	eps := spatial.Epsilon(m.Positions)

	out := make([]linalg.Vec3, len(m.Positions))
	for fi, f := range m.Faces {
		mask := uint32(0)
		if fi < len(faceSmoothing) {
			mask = faceSmoothing[fi]
		}
		for _, vi := range f.Indices {
			if int(vi) >= len(m.Positions) {
				continue
			}
			matches := idx.Find(m.Positions[vi], mask, eps)
			var sum linalg.Vec3
			if len(matches) == 0 {
				sum = faceNormals[fi]
			} else {
				for _, e := range matches {
					sum.Add(sum, faceNormals[e.FaceIndex])
				}
			}
			sum.Unit()
			out[vi] = sum
		}
	}
	m.Normals = out
}

// faceNormal computes the unnormalized normal of a face's first triangle
// (v1-v0) x (v2-v0), matching spec.md §4.7's area-weighted construction.
// Faces with fewer than 3 indices contribute a zero normal.
func faceNormal(positions []linalg.Vec3, indices []uint32) linalg.Vec3 {
	if len(indices) < 3 {
		return linalg.Vec3{}
	}
	v0, v1, v2 := positions[indices[0]], positions[indices[1]], positions[indices[2]]
	var e1, e2, n linalg.Vec3
	e1.Sub(v1, v0)
	e2.Sub(v2, v0)
	n.Cross(e1, e2)
	return n
}
