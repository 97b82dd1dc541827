package mdr

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
)

func put32(buf *bytes.Buffer, v int32)     { binary.Write(buf, binary.LittleEndian, v) }
func putF32(buf *bytes.Buffer, v float32)  { binary.Write(buf, binary.LittleEndian, v) }
func cstrPad(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

// buildMDR assembles a minimal one-bone, one-surface, one-triangle MDR file
// with numFrames frames, returning the encoded bytes.
func buildMDR(numFrames int) []byte {
	var boneNames bytes.Buffer
	boneNames.Write(cstrPad("root", nameLen))

	var verts bytes.Buffer
	positions := [3][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for _, p := range positions {
		putF32(&verts, 0)
		putF32(&verts, 0)
		putF32(&verts, 1) // normal
		putF32(&verts, p[0])
		putF32(&verts, p[1])
		putF32(&verts, p[2])
		putF32(&verts, 0) // u
		putF32(&verts, 0) // v
		put32(&verts, 0)  // numWeights
	}

	var tris bytes.Buffer
	put32(&tris, 0)
	put32(&tris, 1)
	put32(&tris, 2)

	// Surface header fields are written first so its encoded length can be
	// measured directly, rather than hand-counted, before computing the
	// offsets that follow it.
	var surfHeader bytes.Buffer
	put32(&surfHeader, 0) // ident
	surfHeader.Write(cstrPad("surf0", nameLen))
	surfHeader.Write(cstrPad("", nameLen))
	put32(&surfHeader, 0) // shaderIndex
	put32(&surfHeader, 0) // minLod
	put32(&surfHeader, 0) // ofsHeader
	put32(&surfHeader, 3) // numVerts
	ofsVertsPos := surfHeader.Len()
	put32(&surfHeader, 0) // ofsVerts placeholder
	put32(&surfHeader, 1) // numTriangles
	ofsTrianglesPos := surfHeader.Len()
	put32(&surfHeader, 0) // ofsTriangles placeholder
	put32(&surfHeader, 0) // ofsCollapseMap
	put32(&surfHeader, 0) // numBoneReferences
	ofsBoneRefsPos := surfHeader.Len()
	put32(&surfHeader, 0) // ofsBoneRefs placeholder
	ofsEndPos := surfHeader.Len()
	put32(&surfHeader, 0) // ofsEnd placeholder

	ofsVerts := int32(surfHeader.Len())
	ofsTriangles := ofsVerts + int32(verts.Len())
	ofsBoneRefs := ofsTriangles + int32(tris.Len())
	ofsSurfEnd := ofsBoneRefs

	surf := surfHeader.Bytes()
	binary.LittleEndian.PutUint32(surf[ofsVertsPos:], uint32(ofsVerts))
	binary.LittleEndian.PutUint32(surf[ofsTrianglesPos:], uint32(ofsTriangles))
	binary.LittleEndian.PutUint32(surf[ofsBoneRefsPos:], uint32(ofsBoneRefs))
	binary.LittleEndian.PutUint32(surf[ofsEndPos:], uint32(ofsSurfEnd))

	var surfBuf bytes.Buffer
	surfBuf.Write(surf)
	surfBuf.Write(verts.Bytes())
	surfBuf.Write(tris.Bytes())
	surf = surfBuf.Bytes()

	var lod bytes.Buffer
	put32(&lod, 1) // numSurfaces
	put32(&lod, 8) // ofsSurfaces, relative to the LOD header's own 8 bytes
	lod.Write(surf)

	var frames bytes.Buffer
	for f := 0; f < numFrames; f++ {
		for i := 0; i < 10; i++ {
			putF32(&frames, 0) // bounds x2 + origin + radius
		}
		// One bone matrix: identity rotation, translation (1,2,3)*(frame index+1).
		rows := [3][4]float32{
			{1, 0, 0, float32(f + 1)},
			{0, 1, 0, float32(2 * (f + 1))},
			{0, 0, 1, float32(3 * (f + 1))},
		}
		for _, row := range rows {
			for _, v := range row {
				putF32(&frames, v)
			}
		}
	}

	ofsBoneNames := int32(headerSize)
	ofsLODs := ofsBoneNames + int32(boneNames.Len())
	ofsFrames := ofsLODs + int32(lod.Len())

	var h bytes.Buffer
	put32(&h, magicLE)
	put32(&h, wantVersion)
	h.Write(cstrPad("test", nameLen))
	put32(&h, int32(numFrames))
	put32(&h, 1) // numBones
	put32(&h, ofsBoneNames)
	put32(&h, ofsFrames)
	put32(&h, 1) // numLODs
	put32(&h, ofsLODs)
	put32(&h, 0) // numTags
	put32(&h, 0) // ofsTags

	if h.Len() != headerSize {
		panic("test setup: header size mismatch")
	}

	var out bytes.Buffer
	out.Write(h.Bytes())
	out.Write(boneNames.Bytes())
	out.Write(lod.Bytes())
	out.Write(frames.Bytes())
	return out.Bytes()
}

func TestDecodeMinimalMDR(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode(buildMDR(1), config.New())
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
	if len(mesh.Faces) != 1 {
		t.Errorf("expected 1 face, got %d", len(mesh.Faces))
	}
	if len(sc.Animations) != 0 {
		t.Errorf("expected no animation for a single-frame model, got %d", len(sc.Animations))
	}
}

func TestDecodeMDRAnimation(t *testing.T) {
	dec := &Decoder{}
	sc, err := dec.Decode(buildMDR(3), config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Animations) != 1 {
		t.Fatalf("expected 1 animation, got %d", len(sc.Animations))
	}
	anim := sc.Animations[0]
	if len(anim.Channels) != 1 {
		t.Fatalf("expected 1 bone channel, got %d", len(anim.Channels))
	}
	ch := anim.Channels[0]
	if ch.BoneName != "root" {
		t.Errorf("expected bone name 'root', got %q", ch.BoneName)
	}
	if len(ch.Positions) != 3 {
		t.Fatalf("expected 3 position keys, got %d", len(ch.Positions))
	}
	if ch.Positions[2].Value.X != 3 {
		t.Errorf("expected last frame's bone translation x=3, got %v", ch.Positions[2].Value.X)
	}
}

func TestDecodeMDRBadMagic(t *testing.T) {
	dec := &Decoder{}
	_, err := dec.Decode(make([]byte, headerSize), config.New())
	if err == nil {
		t.Fatalf("expected an error for a missing MDR5 magic")
	}
}
