package lwo

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/internal/breader"
)

func newTestReader(b []byte) *breader.Reader { return breader.New(b) }

// chunk builds one {tag:u32, length:u32} IFF chunk with a payload-only
// length (LWO/LWO2's convention, unlike 3DS's header-inclusive one).
func chunk(tagStr string, payload ...[]byte) []byte {
	var body []byte
	for _, p := range payload {
		body = append(body, p...)
	}
	out := make([]byte, 8, 8+len(body))
	copy(out[0:4], tagStr)
	binary.BigEndian.PutUint32(out[4:8], uint32(len(body)))
	return append(out, body...)
}

func u16be(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func u32be(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func f32be(v float32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func cstrPad(s string) []byte {
	b := append([]byte(s), 0)
	if len(b)%2 != 0 {
		b = append(b, 0) // LWO NUL-terminated strings pad to an even length.
	}
	return b
}

func TestDecodeMinimalLWO2Scene(t *testing.T) {
	pnts := chunk("PNTS",
		f32be(0), f32be(0), f32be(0),
		f32be(1), f32be(0), f32be(0),
		f32be(0), f32be(1), f32be(0),
	)
	pols := chunk("POLS", []byte("FACE"), u16be(3), u16be(0), u16be(1), u16be(2))
	ptag := chunk("PTAG", []byte("SURF"), u16be(0), u16be(0))
	layr := chunk("LAYR", u16be(0), u16be(0), f32be(0), f32be(0), f32be(0), cstrPad("Default"))
	tags := chunk("SRFS", cstrPad("Red"))
	surf := chunk("SURF", cstrPad("Red"), cstrPad(""), chunk("COLR", f32be(1), f32be(0), f32be(0)))

	body := append([]byte{}, layr...)
	body = append(body, pnts...)
	body = append(body, pols...)
	body = append(body, ptag...)
	body = append(body, tags...)
	body = append(body, surf...)

	formPayload := append([]byte("LWO2"), body...)
	form := chunk("FORM", formPayload)

	dec := &Decoder{}
	sc, err := dec.Decode(form, config.New())
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
}

func TestDecodeUnresolvedTagUsesDefaultMaterial(t *testing.T) {
	pnts := chunk("PNTS", f32be(0), f32be(0), f32be(0), f32be(1), f32be(0), f32be(0), f32be(0), f32be(1), f32be(0))
	pols := chunk("POLS", []byte("FACE"), u16be(3), u16be(0), u16be(1), u16be(2))
	ptag := chunk("PTAG", []byte("SURF"), u16be(0), u16be(0))
	layr := chunk("LAYR", u16be(0), u16be(0), f32be(0), f32be(0), f32be(0), cstrPad("Default"))
	tags := chunk("SRFS", cstrPad("Unresolved"))

	body := append([]byte{}, layr...)
	body = append(body, pnts...)
	body = append(body, pols...)
	body = append(body, ptag...)
	body = append(body, tags...)

	formPayload := append([]byte("LWO2"), body...)
	form := chunk("FORM", formPayload)

	dec := &Decoder{}
	sc, err := dec.Decode(form, config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if len(sc.Materials) != 1 || sc.Materials[0].Name() != defaultSurfaceName {
		t.Fatalf("expected synthetic default material, got %+v", sc.Materials)
	}
}

func TestDecodeFileTooSmall(t *testing.T) {
	dec := &Decoder{}
	_, err := dec.Decode([]byte{1, 2, 3}, config.New())
	if err == nil {
		t.Fatalf("expected an error for a too-small buffer")
	}
}

func TestDecodeSingleLayerBecomesSceneRootDirectly(t *testing.T) {
	pnts := chunk("PNTS", f32be(0), f32be(0), f32be(0), f32be(1), f32be(0), f32be(0), f32be(0), f32be(1), f32be(0))
	pols := chunk("POLS", []byte("FACE"), u16be(3), u16be(0), u16be(1), u16be(2))
	ptag := chunk("PTAG", []byte("SURF"), u16be(0), u16be(0))
	layr := chunk("LAYR", u16be(0), u16be(0), f32be(0), f32be(0), f32be(0), cstrPad("Default"))
	tags := chunk("SRFS", cstrPad("Red"))
	surf := chunk("SURF", cstrPad("Red"), cstrPad(""), chunk("COLR", f32be(1), f32be(0), f32be(0)))

	body := append([]byte{}, layr...)
	body = append(body, pnts...)
	body = append(body, pols...)
	body = append(body, ptag...)
	body = append(body, tags...)
	body = append(body, surf...)
	form := chunk("FORM", append([]byte("LWO2"), body...))

	dec := &Decoder{}
	sc, err := dec.Decode(form, config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if sc.Root.Name == "<dummy_root>" {
		t.Fatalf("expected the single layer to become the scene root directly, got a dummy-root wrapper")
	}
	if len(sc.Root.Meshes) != 1 {
		t.Fatalf("expected the mesh attached directly to sc.Root, got %+v", sc.Root)
	}
	if len(sc.Root.Children) != 0 {
		t.Fatalf("expected no children on a single-layer scene root, got %d", len(sc.Root.Children))
	}
}

func TestDecodeTwoRootLayersGetDummyRoot(t *testing.T) {
	pnts := chunk("PNTS", f32be(0), f32be(0), f32be(0), f32be(1), f32be(0), f32be(0), f32be(0), f32be(1), f32be(0))
	pols := chunk("POLS", []byte("FACE"), u16be(3), u16be(0), u16be(1), u16be(2))
	ptag := chunk("PTAG", []byte("SURF"), u16be(0), u16be(0))
	layrA := chunk("LAYR", u16be(0), u16be(0), f32be(0), f32be(0), f32be(0), cstrPad("A"))
	layrB := chunk("LAYR", u16be(1), u16be(0), f32be(0), f32be(0), f32be(0), cstrPad("B"))
	tags := chunk("SRFS", cstrPad("Red"))
	surf := chunk("SURF", cstrPad("Red"), cstrPad(""), chunk("COLR", f32be(1), f32be(0), f32be(0)))

	body := append([]byte{}, layrA...)
	body = append(body, pnts...)
	body = append(body, pols...)
	body = append(body, ptag...)
	body = append(body, layrB...)
	body = append(body, pnts...)
	body = append(body, pols...)
	body = append(body, ptag...)
	body = append(body, tags...)
	body = append(body, surf...)
	form := chunk("FORM", append([]byte("LWO2"), body...))

	dec := &Decoder{}
	sc, err := dec.Decode(form, config.New())
	if err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if sc.Root.Name != "<dummy_root>" {
		t.Fatalf("expected a dummy-root wrapper for two root layers, got %q", sc.Root.Name)
	}
	if len(sc.Root.Children) != 2 {
		t.Fatalf("expected 2 child layer nodes, got %d", len(sc.Root.Children))
	}
}

func TestParsePolygonsLWOBDetailSubList(t *testing.T) {
	// One ordinary triangle (surface 1, positive, no detail), then one
	// triangle with a negative surface reference introducing one detail
	// polygon (surface -2: abs(2)-1 == 1 for the parent; the detail polygon
	// carries its own surface field, here positive surface 1).
	var raw []byte
	raw = append(raw, u16be(3)...)
	raw = append(raw, u16be(0)...)
	raw = append(raw, u16be(1)...)
	raw = append(raw, u16be(2)...)
	raw = append(raw, u16be(1)...) // surface 1 (positive).

	raw = append(raw, u16be(3)...)
	raw = append(raw, u16be(3)...)
	raw = append(raw, u16be(4)...)
	raw = append(raw, u16be(5)...)
	raw = append(raw, u16be(uint16(int16(-2)))...) // surface -2: 1 detail polygon follows.
	raw = append(raw, u16be(1)...)                 // detail-polygon count.
	raw = append(raw, u16be(3)...)                 // detail polygon: 3 indices.
	raw = append(raw, u16be(6)...)
	raw = append(raw, u16be(7)...)
	raw = append(raw, u16be(8)...)
	raw = append(raw, u16be(1)...) // detail polygon's own surface, positive.

	polys, err := parsePolygonsLWOB(newTestReader(raw))
	if err != nil {
		t.Fatalf("parsePolygonsLWOB: %s", err)
	}
	if len(polys) != 3 {
		t.Fatalf("expected 3 flattened polygons (1 + 1 + its detail), got %d: %+v", len(polys), polys)
	}
	if polys[0].tagIndex != 0 {
		t.Errorf("polygon 0: expected tagIndex 0 (surface 1 - 1), got %d", polys[0].tagIndex)
	}
	if polys[1].tagIndex != 1 {
		t.Errorf("polygon 1: expected tagIndex 1 (abs(-2) - 1), got %d", polys[1].tagIndex)
	}
	if polys[2].tagIndex != 0 {
		t.Errorf("polygon 2 (detail): expected tagIndex 0, got %d", polys[2].tagIndex)
	}
	if len(polys[2].indices) != 3 || polys[2].indices[0] != 6 {
		t.Errorf("polygon 2 (detail): expected indices [6 7 8], got %v", polys[2].indices)
	}
}

func TestParseVMAPRGBAPopulatesColormap(t *testing.T) {
	// type "RGBA", dim 4, name "Color", then one point: color (0.1, 0.2, 0.3, 0.4).
	body := append([]byte{}, []byte("RGBA")...)
	body = append(body, u16be(4)...)
	body = append(body, cstrPad("Color")...)
	body = append(body, u16be(0)...) // point index 0, plain VX.
	body = append(body, f32be(0.1)...)
	body = append(body, f32be(0.2)...)
	body = append(body, f32be(0.3)...)
	body = append(body, f32be(0.4)...)

	l := &layer{}
	if err := parseVMAP(newTestReader(body), l); err != nil {
		t.Fatalf("parseVMAP: %s", err)
	}
	entries, ok := l.colormaps["Color"]
	if !ok || len(entries) != 1 {
		t.Fatalf("expected 1 color entry in channel %q, got %+v", "Color", l.colormaps)
	}
	c := entries[0].color
	if c.R != 0.1 || c.G != 0.2 || c.B != 0.3 || c.A != 0.4 {
		t.Errorf("unexpected color %+v", c)
	}
}

func TestParseVMAPWGHTIsDropped(t *testing.T) {
	body := append([]byte{}, []byte("WGHT")...)
	body = append(body, u16be(1)...)
	body = append(body, cstrPad("Weight")...)
	body = append(body, u16be(0)...)
	body = append(body, f32be(1)...)

	l := &layer{}
	if err := parseVMAP(newTestReader(body), l); err != nil {
		t.Fatalf("parseVMAP: %s", err)
	}
	if len(l.uvmaps) != 0 || len(l.colormaps) != 0 {
		t.Errorf("expected WGHT to be dropped, got uvmaps=%+v colormaps=%+v", l.uvmaps, l.colormaps)
	}
}

func TestReadVXEscape(t *testing.T) {
	// A plain u16BE index.
	r := newTestReader(u16be(0x1234))
	v, err := readVX(r)
	if err != nil || v != 0x1234 {
		t.Fatalf("got %d, %v", v, err)
	}
	// An escaped 3-byte index: 0xFF marker + 3 bytes, high byte masked.
	r2 := newTestReader(append([]byte{0xFF}, 0x00, 0x01, 0x02))
	v2, err := readVX(r2)
	if err != nil || v2 != 0x000102 {
		t.Fatalf("got %d, %v", v2, err)
	}
}
