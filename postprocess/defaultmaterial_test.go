package postprocess

import (
	"testing"

	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

func triMesh(materialIndex int) *scene.Mesh {
	return &scene.Mesh{
		MaterialIndex: materialIndex,
		Positions:     []linalg.Vec3{{}, {}, {}},
		Faces:         []scene.Face{{Indices: []uint32{0, 1, 2}}},
	}
}

func TestSubstituteDefaultMaterialSynthesizesOne(t *testing.T) {
	sc := scene.New()
	sc.Meshes = append(sc.Meshes, triMesh(SentinelMaterialIndex))

	SubstituteDefaultMaterial(sc, nil)

	if len(sc.Materials) != 1 {
		t.Fatalf("expected 1 synthesized material, got %d", len(sc.Materials))
	}
	if sc.Materials[0].Name() != DefaultMaterialName {
		t.Errorf("expected material named %q, got %q", DefaultMaterialName, sc.Materials[0].Name())
	}
	if sc.Meshes[0].MaterialIndex != 0 {
		t.Errorf("expected mesh reassigned to material 0, got %d", sc.Meshes[0].MaterialIndex)
	}
}

func TestSubstituteDefaultMaterialReusesExisting(t *testing.T) {
	sc := scene.New()
	existing := scene.NewMaterial()
	existing.SetName("Default")
	existing.SetDiffuseColor(0.3, 0.3, 0.3)
	sc.Materials = append(sc.Materials, existing)
	sc.Meshes = append(sc.Meshes, triMesh(5)) // out of range

	SubstituteDefaultMaterial(sc, nil)

	if len(sc.Materials) != 1 {
		t.Fatalf("expected no new material to be synthesized, got %d", len(sc.Materials))
	}
	if sc.Meshes[0].MaterialIndex != 0 {
		t.Errorf("expected mesh reassigned to the existing default, got %d", sc.Meshes[0].MaterialIndex)
	}
}

func TestSubstituteDefaultMaterialNoopWhenAllValid(t *testing.T) {
	sc := scene.New()
	sc.Materials = append(sc.Materials, scene.NewMaterial())
	sc.Meshes = append(sc.Meshes, triMesh(0))

	SubstituteDefaultMaterial(sc, nil)

	if len(sc.Materials) != 1 {
		t.Errorf("expected no material added, got %d", len(sc.Materials))
	}
}
