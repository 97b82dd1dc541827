package postprocess

import (
	"testing"

	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

func TestRemoveComponentsDropsAndCompacts(t *testing.T) {
	sc := scene.New()
	mesh := &scene.Mesh{
		Positions:  []linalg.Vec3{{}, {}},
		Normals:    []linalg.Vec3{{}, {}},
		Tangents:   []linalg.Vec3{{}, {}},
		Bitangents: []linalg.Vec3{{}, {}},
		TexCoords: []scene.TexCoordChannel{
			{Components: 2, UV: []linalg.Vec2{{}, {}}},
		},
		Colors: []scene.ColorChannel{
			{Colors: []scene.Color{{}, {}}},
		},
	}
	sc.Meshes = append(sc.Meshes, mesh)

	RemoveComponents(sc, ComponentNormals|ComponentTangents)

	if mesh.HasNormals() {
		t.Errorf("expected normals removed")
	}
	if mesh.Tangents != nil || mesh.Bitangents != nil {
		t.Errorf("expected tangents/bitangents removed")
	}
	if len(mesh.TexCoords) != 1 {
		t.Errorf("expected UV channel untouched, got %d", len(mesh.TexCoords))
	}
	if len(mesh.Colors) != 1 {
		t.Errorf("expected color channel untouched, got %d", len(mesh.Colors))
	}
}

func TestRemoveComponentsNoop(t *testing.T) {
	sc := scene.New()
	mesh := &scene.Mesh{Positions: []linalg.Vec3{{}}, Normals: []linalg.Vec3{{}}}
	sc.Meshes = append(sc.Meshes, mesh)

	RemoveComponents(sc, 0)

	if !mesh.HasNormals() {
		t.Errorf("expected normals left untouched when flags == 0")
	}
}
