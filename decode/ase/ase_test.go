package ase

import (
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
)

const sampleASE = `*3DSMAX_ASCIIEXPORT	200
*MATERIAL_LIST {
	*MATERIAL_COUNT 1
	*MATERIAL 0 {
		*MATERIAL_NAME "redMat"
		*MATERIAL_DIFFUSE	1.0000	0.0000	0.0000
		*MATERIAL_AMBIENT	0.2000	0.2000	0.2000
		*MATERIAL_SPECULAR	1.0000	1.0000	1.0000
		*MATERIAL_SHINE	0.5000
		*MATERIAL_TRANSPARENCY	0.0000
	}
}
*GEOMOBJECT {
	*NODE_NAME "Box01"
	*MATERIAL_REF	0
	*MESH {
		*MESH_NUMVERTEX 3
		*MESH_NUMFACES 1
		*MESH_VERTEX_LIST {
			*MESH_VERTEX    0	0.0000	0.0000	0.0000
			*MESH_VERTEX    1	1.0000	0.0000	0.0000
			*MESH_VERTEX    2	0.0000	1.0000	0.0000
		}
		*MESH_FACE_LIST {
			*MESH_FACE    0:    A:    0 B:    1 C:    2 AB:    1 BC:    1 CA:    1	*MESH_SMOOTHING 1 	*MESH_MTLID 0
		}
		*MESH_NUMTVERTEX 3
		*MESH_TVERTLIST {
			*MESH_TVERT 0	0.0000	0.0000	0.0000
			*MESH_TVERT 1	1.0000	0.0000	0.0000
			*MESH_TVERT 2	0.0000	1.0000	0.0000
		}
		*MESH_NUMTVFACES 1
		*MESH_TFACELIST {
			*MESH_TFACE 0	0	1	2
		}
	}
}
`

func TestDecodeASEMeshAndMaterial(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(sampleASE), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Materials) != 1 || sc.Materials[0].Name() != "redMat" {
		t.Fatalf("expected material redMat, got %+v", sc.Materials)
	}
	r, g, b := sc.Materials[0].DiffuseColor()
	if r != 1 || g != 0 || b != 0 {
		t.Errorf("expected diffuse (1,0,0), got (%v,%v,%v)", r, g, b)
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(sc.Meshes))
	}
	mesh := sc.Meshes[0]
	if len(mesh.Faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(mesh.Faces))
	}
	if len(mesh.Positions) != 3 {
		t.Errorf("expected 3 positions, got %d", len(mesh.Positions))
	}
	if len(mesh.TexCoords) != 1 || len(mesh.TexCoords[0].UV) != 3 {
		t.Fatalf("expected 1 UV channel with 3 entries, got %+v", mesh.TexCoords)
	}
	if len(sc.Root.Children) != 1 || sc.Root.Children[0].Name != "Box01" {
		t.Fatalf("expected one root child named Box01, got %+v", sc.Root.Children)
	}
}

const sampleASENoMaterial = `*GEOMOBJECT {
	*NODE_NAME "Plane01"
	*MESH {
		*MESH_VERTEX_LIST {
			*MESH_VERTEX 0 0 0 0
			*MESH_VERTEX 1 1 0 0
			*MESH_VERTEX 2 0 1 0
		}
		*MESH_FACE_LIST {
			*MESH_FACE 0: A: 0 B: 1 C: 2
		}
	}
}
`

func TestDecodeASEWithoutMaterialList(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(sampleASENoMaterial), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Materials) != 1 {
		t.Fatalf("expected a default material to be synthesized, got %d", len(sc.Materials))
	}
	if len(sc.Meshes) != 1 || len(sc.Meshes[0].Faces) != 1 {
		t.Fatalf("expected 1 mesh with 1 face, got %+v", sc.Meshes)
	}
}

const sampleASEHierarchy = `*GEOMOBJECT {
	*NODE_NAME "Child01"
	*NODE_PARENT "Parent01"
}
*GEOMOBJECT {
	*NODE_NAME "Parent01"
}
`

func TestDecodeASENodeHierarchy(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(sampleASEHierarchy), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	parent := sc.Root.Find("Parent01", func(a, b string) bool { return a == b })
	if parent == nil {
		t.Fatalf("expected to find Parent01 in the hierarchy")
	}
	if len(parent.Children) != 1 || parent.Children[0].Name != "Child01" {
		t.Fatalf("expected Parent01 to have child Child01, got %+v", parent.Children)
	}
}
