package md2

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
)

func put32(buf *bytes.Buffer, v int32) { binary.Write(buf, binary.LittleEndian, v) }
func put16(buf *bytes.Buffer, v int16) { binary.Write(buf, binary.LittleEndian, v) }
func putF32(buf *bytes.Buffer, v float32) { binary.Write(buf, binary.LittleEndian, v) }

func TestDecodeMinimalMD2(t *testing.T) {
	const numVerts = 3
	const numTex = 3
	const headerLen = 68

	var tex bytes.Buffer
	for i := 0; i < numTex; i++ {
		put16(&tex, int16(i*10))
		put16(&tex, int16(i*10))
	}
	var tris bytes.Buffer
	put16(&tris, 0)
	put16(&tris, 1)
	put16(&tris, 2)
	put16(&tris, 0)
	put16(&tris, 1)
	put16(&tris, 2)

	var frame bytes.Buffer
	putF32(&frame, 1)
	putF32(&frame, 1)
	putF32(&frame, 1) // scale
	putF32(&frame, 0)
	putF32(&frame, 0)
	putF32(&frame, 0) // translate
	name := make([]byte, 16)
	copy(name, "frame0")
	frame.Write(name)
	for i := 0; i < numVerts; i++ {
		frame.Write([]byte{byte(i), byte(i), byte(i), 0})
	}

	texOffset := int32(headerLen)
	triOffset := texOffset + int32(tex.Len())
	frameOffset := triOffset + int32(tris.Len())
	frameSize := int32(frame.Len())

	var h bytes.Buffer
	put32(&h, int32(magic))
	put32(&h, wantVersion)
	put32(&h, 32) // skinwidth
	put32(&h, 32) // skinheight
	put32(&h, frameSize)
	put32(&h, 0) // numSkins
	put32(&h, numVerts)
	put32(&h, numTex)
	put32(&h, 1) // numTriangles
	put32(&h, 0) // numGLCommands
	put32(&h, 1) // numFrames
	put32(&h, 0) // offsetSkins
	put32(&h, texOffset)
	put32(&h, triOffset)
	put32(&h, frameOffset)
	put32(&h, 0) // offsetGLCommands
	put32(&h, 0) // offsetEnd

	if h.Len() != headerLen {
		t.Fatalf("test setup: header is %d bytes, want %d", h.Len(), headerLen)
	}

	var buf bytes.Buffer
	buf.Write(h.Bytes())
	buf.Write(tex.Bytes())
	buf.Write(tris.Bytes())
	buf.Write(frame.Bytes())

	dec := &Decoder{}
	sc, err := dec.Decode(buf.Bytes(), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(sc.Meshes))
	}
	if len(sc.Meshes[0].Faces) != 1 {
		t.Errorf("expected 1 face, got %d", len(sc.Meshes[0].Faces))
	}
}

func TestDecodeBadMagic(t *testing.T) {
	dec := &Decoder{}
	_, err := dec.Decode(make([]byte, 68), config.New())
	if err == nil {
		t.Fatalf("expected an error for a missing IDP2 magic")
	}
}
