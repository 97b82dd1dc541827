package smd

import (
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
)

const sampleSMD = `version 1
nodes
0 "root" -1
end
skeleton
time 0
0 0.0 0.0 0.0 0.0 0.0 0.0
end
triangles
body_material
0 0.0 0.0 0.0 0.0 0.0 1.0 0.0 0.0
0 1.0 0.0 0.0 0.0 0.0 1.0 1.0 0.0
0 0.0 1.0 0.0 0.0 0.0 1.0 0.0 1.0
end
`

func TestDecodeSMDTriangles(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(sampleSMD), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(sc.Meshes))
	}
	if len(sc.Meshes[0].Positions) != 3 {
		t.Errorf("expected 3 positions, got %d", len(sc.Meshes[0].Positions))
	}
	if len(sc.Materials) != 1 || sc.Materials[0].Name() != "body_material" {
		t.Fatalf("expected material body_material, got %+v", sc.Materials)
	}
}

const sampleSkeletonOnly = `version 1
nodes
0 "root" -1
1 "child" 0
end
skeleton
time 0
0 0.0 0.0 0.0 0.0 0.0 0.0
1 0.0 1.0 0.0 0.0 0.0 0.0
end
`

func TestDecodeSkeletonOnly(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(sampleSkeletonOnly), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(sc.Meshes))
	}
	if len(sc.Root.Children) != 1 {
		t.Fatalf("expected 1 root bone, got %d", len(sc.Root.Children))
	}
}
