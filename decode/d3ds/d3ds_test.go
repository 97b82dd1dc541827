package d3ds

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/internal/breader"
)

func newTestReader(b []byte) *breader.Reader { return breader.New(b) }

// chunk builds one {tag:u16, length:u32} chunk wrapping payload, with length
// counting the 6-byte header itself (spec.md §6: 3DS chunk "size covers the
// header plus payload"), the same convention a real encoder would use.
func chunk(tag uint16, payload ...[]byte) []byte {
	var body []byte
	for _, p := range payload {
		body = append(body, p...)
	}
	out := make([]byte, 6, 6+len(body))
	binary.LittleEndian.PutUint16(out[0:2], tag)
	binary.LittleEndian.PutUint32(out[2:6], uint32(6+len(body)))
	return append(out, body...)
}

func u16b(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func f32b(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func cstr(s string) []byte { return append([]byte(s), 0) }

func TestReadColorLinearFloat(t *testing.T) {
	payload := chunk(uint16(colorLinearFloat), f32b(0.1), f32b(0.2), f32b(0.3))
	r := newTestReader(payload)
	c, err := readColor(r)
	if err != nil {
		t.Fatalf("readColor: %s", err)
	}
	if c.X != 0.1 || c.Y != 0.2 || c.Z != 0.3 {
		t.Errorf("got %+v", c)
	}
}

func TestReadColorLinearByte(t *testing.T) {
	payload := chunk(uint16(colorLinearByte), []byte{255, 128, 0})
	r := newTestReader(payload)
	c, err := readColor(r)
	if err != nil {
		t.Fatalf("readColor: %s", err)
	}
	if c.X != 1 || c.Z != 0 {
		t.Errorf("got %+v", c)
	}
}

func TestReadPercentInt(t *testing.T) {
	payload := chunk(uint16(percentInt), u16b(0xFFFF))
	r := newTestReader(payload)
	v, err := readPercent(r)
	if err != nil {
		t.Fatalf("readPercent: %s", err)
	}
	if v != 1 {
		t.Errorf("got %v, want 1", v)
	}
}

func TestDecodeMinimalScene(t *testing.T) {
	// One triangle, one material "Red" assigned to face 0.
	vertList := chunk(uint16(triVertexList),
		u16b(3),
		f32b(0), f32b(0), f32b(0),
		f32b(1), f32b(0), f32b(0),
		f32b(0), f32b(1), f32b(0),
	)
	faceMat := chunk(uint16(triFaceMat), cstr("Red"), u16b(1), u16b(0))
	faceList := chunk(uint16(triFaceList),
		u16b(1),
		u16b(0), u16b(1), u16b(2), u16b(0),
		faceMat,
	)
	trimesh := chunk(uint16(objTrimesh), vertList, faceList)
	objBlockChunk := chunk(uint16(editObject), cstr("Cube"), trimesh)

	diffuseChunk := chunk(uint16(matDiffuse), chunk(uint16(colorLinearFloat), f32b(1), f32b(0), f32b(0)))
	matChunk := chunk(uint16(editMaterial), chunk(uint16(matName), cstr("Red")), diffuseChunk)

	edit := chunk(uint16(edit3DS), objBlockChunk, matChunk)
	main := chunk(uint16(main3DS), edit)

	dec := &Decoder{}
	sc, err := dec.Decode(main, config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(sc.Meshes))
	}
	mesh := sc.Meshes[0]
	if len(mesh.Positions) != 3 {
		t.Errorf("expected 3 positions, got %d", len(mesh.Positions))
	}
	if len(mesh.Faces) != 1 || len(mesh.Faces[0].Indices) != 3 {
		t.Fatalf("expected 1 triangular face, got %+v", mesh.Faces)
	}
	if len(sc.Materials) != 1 || sc.Materials[0].Name() != "Red" {
		t.Fatalf("expected material Red, got %+v", sc.Materials)
	}
	if mesh.MaterialIndex != 0 {
		t.Errorf("expected mesh material index 0, got %d", mesh.MaterialIndex)
	}
	// Z negation (coordinate fixup) leaves an all-zero-Z triangle untouched.
	if mesh.Positions[1].X != 1 {
		t.Errorf("expected vertex 1 X=1, got %+v", mesh.Positions[1])
	}
}

func TestDecodeFileTooSmall(t *testing.T) {
	dec := &Decoder{}
	_, err := dec.Decode([]byte{1, 2, 3}, config.New())
	if err == nil {
		t.Fatalf("expected an error for a too-small buffer")
	}
}
