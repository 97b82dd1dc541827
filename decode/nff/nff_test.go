package nff

import (
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
)

const sampleNFF = `v
from 0 0 -10
at 0 0 0
up 0 1 0
angle 45
hither 1
resolution 512 512
b 0.2 0.2 0.2
f 1 0 0 1 0 0 0 1
p 3
0 0 0
1 0 0
0 1 0
f 0 1 0 1 0 0 0 1
s 0 0 0 1
`

func TestDecodeNFFPolygonAndSphere(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(sampleNFF), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Meshes) != 2 {
		t.Fatalf("expected 2 meshes (polygon + sphere), got %d", len(sc.Meshes))
	}
	if len(sc.Meshes[0].Faces) != 1 {
		t.Errorf("expected polygon mesh to have 1 triangle, got %d", len(sc.Meshes[0].Faces))
	}
	if len(sc.Meshes[1].Faces) == 0 {
		t.Errorf("expected sphere mesh to have tessellated faces, got 0")
	}
	// Red material (seeded default at 0, "f 1 0 0..." at 1) used by the polygon.
	if sc.Meshes[0].MaterialIndex != 1 {
		t.Errorf("expected polygon material index 1, got %d", sc.Meshes[0].MaterialIndex)
	}
	if sc.Meshes[1].MaterialIndex != 2 {
		t.Errorf("expected sphere material index 2, got %d", sc.Meshes[1].MaterialIndex)
	}
	if len(sc.Materials) != 3 {
		t.Fatalf("expected 3 materials (default + 2 declared), got %d", len(sc.Materials))
	}
}

const sampleCone = `f 1 1 1 1 0 0 0 1
c
0 0 0 1
0 0 2 0.5
`

func TestDecodeNFFCone(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(sampleCone), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(sc.Meshes))
	}
	if len(sc.Meshes[0].Faces) == 0 {
		t.Errorf("expected tessellated cone faces, got 0")
	}
}

const sampleHex = `f 0.5 0.5 0.5 1 0 0 0 1
hex
0 0 0 2
`

func TestDecodeNFFHexahedron(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(sampleHex), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(sc.Meshes))
	}
	if len(sc.Meshes[0].Faces) != 12 {
		t.Errorf("expected 12 triangles (6 box faces x 2), got %d", len(sc.Meshes[0].Faces))
	}
}

func TestDecodeNFFLightDirectiveSkipped(t *testing.T) {
	dec := &Decoder{}
	_, err := dec.Decode([]byte("l 0 0 0 1 1 1\np 3\n0 0 0\n1 0 0\n0 1 0\n"), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
}
