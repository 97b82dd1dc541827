package postprocess

import (
	"testing"

	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

func TestGenerateNormalsFlatQuad(t *testing.T) {
	sc := scene.New()
	mesh := &scene.Mesh{
		Positions: []linalg.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Faces: []scene.Face{
			{Indices: []uint32{0, 1, 2}},
			{Indices: []uint32{0, 2, 3}},
		},
		SmoothingGroups: []uint32{1, 1},
	}
	sc.Meshes = append(sc.Meshes, mesh)

	GenerateNormals(sc, nil)

	if len(mesh.Normals) != 4 {
		t.Fatalf("expected 4 normals, got %d", len(mesh.Normals))
	}
	for i, n := range mesh.Normals {
		if n.Z <= 0 {
			t.Errorf("vertex %d: expected a normal pointing toward +Z, got %v", i, n)
		}
		if l := n.Len(); l < 0.99 || l > 1.01 {
			t.Errorf("vertex %d: expected a unit normal, got length %v", i, l)
		}
	}
}

func TestGenerateNormalsDisjointSmoothingGroups(t *testing.T) {
	sc := scene.New()
	// Two coincident triangles sharing vertex 0 but in different smoothing
	// groups: vertex 0's normal must come only from its own face, not the
	// other group's.
	mesh := &scene.Mesh{
		Positions: []linalg.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 0},
			{X: 0, Y: -1, Z: 0},
			{X: -1, Y: 0, Z: 0},
		},
		Faces: []scene.Face{
			{Indices: []uint32{0, 1, 2}},
			{Indices: []uint32{3, 4, 5}},
		},
		SmoothingGroups: []uint32{1, 2},
	}
	sc.Meshes = append(sc.Meshes, mesh)

	GenerateNormals(sc, nil)

	if mesh.Normals[0] == mesh.Normals[3] {
		t.Errorf("expected disjoint smoothing groups to keep separate normals at the shared position, got equal: %v", mesh.Normals[0])
	}
}
