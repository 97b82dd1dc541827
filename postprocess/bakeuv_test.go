package postprocess

import (
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/propbag"
	"github.com/galvanized-assets/sceneimport/scene"
)

func uvMesh(materialIndex int) *scene.Mesh {
	return &scene.Mesh{
		MaterialIndex: materialIndex,
		Positions:     []linalg.Vec3{{}, {}},
		TexCoords: []scene.TexCoordChannel{
			{Components: 2, UV: []linalg.Vec2{{X: 1, Y: 0}, {X: 0, Y: 1}}},
		},
	}
}

func TestBakeUVSingleTransformInPlace(t *testing.T) {
	sc := scene.New()
	mat := scene.NewMaterial()
	mat.SetTextureFile(propbag.Diffuse, 0, "diffuse.png")
	mat.AddFloats(propbag.TexKey(propbag.StackTransform, propbag.Diffuse, 0), []float32{2, 2, 0.5, 0.5, 0})
	sc.Materials = append(sc.Materials, mat)
	mesh := uvMesh(0)
	sc.Meshes = append(sc.Meshes, mesh)

	BakeUVTransforms(sc, config.New(), nil)

	if len(mesh.TexCoords) != 1 {
		t.Fatalf("expected channel 0 to be rewritten in place, got %d channels", len(mesh.TexCoords))
	}
	got := mesh.TexCoords[0].UV[0]
	if got.X != 2.5 || got.Y != 0.5 {
		t.Errorf("expected (2.5, 0.5), got (%v, %v)", got.X, got.Y)
	}
}

func TestBakeUVMultipleTransformsSplitChannels(t *testing.T) {
	sc := scene.New()
	mat := scene.NewMaterial()
	mat.SetTextureFile(propbag.Diffuse, 0, "diffuse.png")
	mat.AddFloats(propbag.TexKey(propbag.StackTransform, propbag.Diffuse, 0), []float32{2, 2, 0, 0, 0})
	mat.SetTextureFile(propbag.Specular, 0, "spec.png")
	mat.AddFloats(propbag.TexKey(propbag.StackTransform, propbag.Specular, 0), []float32{3, 3, 0, 0, 0})
	sc.Materials = append(sc.Materials, mat)
	mesh := uvMesh(0)
	sc.Meshes = append(sc.Meshes, mesh)

	BakeUVTransforms(sc, config.New(), nil)

	if len(mesh.TexCoords) != 3 {
		t.Fatalf("expected channel 0 plus 2 new channels, got %d", len(mesh.TexCoords))
	}
	if mesh.TexCoords[0].UV[0].X != 1 {
		t.Errorf("expected channel 0 left untouched, got %v", mesh.TexCoords[0].UV[0])
	}
	diffuseSrc := mat.UVWSrc(propbag.Diffuse, 0)
	specSrc := mat.UVWSrc(propbag.Specular, 0)
	if diffuseSrc == specSrc {
		t.Fatalf("expected distinct uvwsrc channels, both got %d", diffuseSrc)
	}
	if mesh.TexCoords[diffuseSrc].UV[0].X != 2 {
		t.Errorf("expected diffuse channel scaled by 2, got %v", mesh.TexCoords[diffuseSrc].UV[0].X)
	}
	if mesh.TexCoords[specSrc].UV[0].X != 3 {
		t.Errorf("expected specular channel scaled by 3, got %v", mesh.TexCoords[specSrc].UV[0].X)
	}
}

func TestNormalizeTransformSnapping(t *testing.T) {
	in := uvTransform{1, 1, 2, -3, 0.02}
	out := normalizeTransform(in)
	if out[2] != 1 || out[3] != 1 {
		t.Errorf("expected integer offsets snapped to 1, got (%v, %v)", out[2], out[3])
	}
	if out[4] != 0 {
		t.Errorf("expected rotation near 0 snapped to 0, got %v", out[4])
	}
}
