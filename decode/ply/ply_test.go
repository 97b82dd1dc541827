package ply

import (
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
)

const samplePLY = `ply
format ascii 1.0
comment exported by a test fixture
element vertex 3
property float x
property float y
property float z
property float nx
property float ny
property float nz
property uchar red
property uchar green
property uchar blue
element face 1
property list uchar int vertex_indices
end_header
0 0 0 0 0 1 255 0 0
1 0 0 0 0 1 0 255 0
0 1 0 0 0 1 0 0 255
3 0 1 2
`

func TestDecodePLYVertexColorAndFace(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(samplePLY), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(sc.Meshes))
	}
	mesh := sc.Meshes[0]
	if len(mesh.Positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(mesh.Positions))
	}
	if !mesh.HasNormals() {
		t.Errorf("expected normals to be populated")
	}
	if len(mesh.Colors) != 1 || len(mesh.Colors[0].Colors) != 3 {
		t.Fatalf("expected 1 color channel with 3 entries, got %+v", mesh.Colors)
	}
	if mesh.Colors[0].Colors[0].R != 1 {
		t.Errorf("expected first vertex red=1.0 (255/255), got %v", mesh.Colors[0].Colors[0].R)
	}
	if len(mesh.Faces) != 1 || len(mesh.Faces[0].Indices) != 3 {
		t.Fatalf("expected 1 triangular face, got %+v", mesh.Faces)
	}
}

const samplePLYNoColorNoNormal = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 2
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
3 0 1 2
3 0 2 3
`

func TestDecodePLYPositionsOnly(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode([]byte(samplePLYNoColorNoNormal), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	mesh := sc.Meshes[0]
	if mesh.HasNormals() {
		t.Errorf("expected no normals")
	}
	if len(mesh.Colors) != 0 {
		t.Errorf("expected no color channel")
	}
	if len(mesh.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(mesh.Faces))
	}
}

func TestDecodePLYBadMagic(t *testing.T) {
	dec := &Decoder{}
	_, err := dec.Decode([]byte("not_ply\nformat ascii 1.0\nend_header\n"), config.New())
	if err == nil {
		t.Fatalf("expected an error for a missing 'ply' magic line")
	}
}

func TestDecodePLYRejectsBinary(t *testing.T) {
	dec := &Decoder{}
	_, err := dec.Decode([]byte("ply\nformat binary_little_endian 1.0\nelement vertex 0\nend_header\n"), config.New())
	if err == nil {
		t.Fatalf("expected an error for a binary-encoded PLY file")
	}
}
