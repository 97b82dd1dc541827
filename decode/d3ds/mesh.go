package d3ds

import (
	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/internal/iff"
	"github.com/galvanized-assets/sceneimport/linalg"
)

// parseObjBlock decodes one EDIT_OBJECT (0x4000) chunk body: a cstr name
// followed by a sub-chunk tree; only OBJ_TRIMESH is meaningful here (lights
// and cameras, spec.md names no requirement for them, are skipped as unknown
// tags).
func parseObjBlock(r *breader.Reader) (*objBlock, error) {
	name, _, err := r.ReadCStrBounded(r.Remaining())
	if err != nil {
		return nil, err
	}
	ob := &objBlock{name: name}
	err = iff.ForEachChunk(r, chunkOpts(nil), func(tag iff.Tag, p *breader.Reader) error {
		if tag == objTrimesh {
			return parseTrimesh(p, ob)
		}
		return nil
	})
	return ob, err
}

func parseTrimesh(r *breader.Reader, ob *objBlock) error {
	return iff.ForEachChunk(r, chunkOpts(nil), func(tag iff.Tag, p *breader.Reader) error {
		switch tag {
		case triVertexList:
			return parseVertexList(p, ob)
		case triMappingCoor:
			return parseMappingList(p, ob)
		case triFaceList:
			return parseFaceList(p, ob)
		case triLocalMatrix:
			return parseLocalMatrix(p, ob)
		}
		return nil
	})
}

func parseVertexList(r *breader.Reader, ob *objBlock) error {
	n, err := r.ReadU16()
	if err != nil {
		return err
	}
	ob.vertices = make([]linalg.Vec3, n)
	for i := range ob.vertices {
		x, err := r.ReadF32()
		if err != nil {
			return err
		}
		y, err := r.ReadF32()
		if err != nil {
			return err
		}
		z, err := r.ReadF32()
		if err != nil {
			return err
		}
		ob.vertices[i] = linalg.V3(x, y, z)
	}
	return nil
}

func parseMappingList(r *breader.Reader, ob *objBlock) error {
	n, err := r.ReadU16()
	if err != nil {
		return err
	}
	ob.uvs = make([]linalg.Vec2, n)
	for i := range ob.uvs {
		u, err := r.ReadF32()
		if err != nil {
			return err
		}
		v, err := r.ReadF32()
		if err != nil {
			return err
		}
		ob.uvs[i] = linalg.Vec2{X: u, Y: v}
	}
	return nil
}

func parseLocalMatrix(r *breader.Reader, ob *objBlock) error {
	var m linalg.Mat4
	fields := []*float32{
		&m.Xx, &m.Xy, &m.Xz,
		&m.Yx, &m.Yy, &m.Yz,
		&m.Zx, &m.Zy, &m.Zz,
		&m.Wx, &m.Wy, &m.Wz,
	}
	for _, f := range fields {
		v, err := r.ReadF32()
		if err != nil {
			return err
		}
		*f = v
	}
	m.Ww = 1
	ob.localMatrix = m
	ob.hasLocalMatrix = true
	return nil
}

// faceSentinel marks a face whose material was never assigned by a FACEMAT
// sub-chunk (spec.md §4.3's "0xCDCDCDCD" described at the scene level; here
// it's simply the empty material name, which convert.go turns into material
// index -1 for postprocess.SubstituteDefaultMaterial to resolve).
const faceSentinel = ""

func parseFaceList(r *breader.Reader, ob *objBlock) error {
	n, err := r.ReadU16()
	if err != nil {
		return err
	}
	ob.faces = make([][3]uint16, n)
	ob.faceMaterial = make([]string, n)
	for i := range ob.faces {
		v0, err := r.ReadU16()
		if err != nil {
			return err
		}
		v1, err := r.ReadU16()
		if err != nil {
			return err
		}
		v2, err := r.ReadU16()
		if err != nil {
			return err
		}
		if _, err := r.ReadU16(); err != nil { // face flags: edge visibility, unused here.
			return err
		}
		ob.faces[i] = [3]uint16{v0, v1, v2}
		ob.faceMaterial[i] = faceSentinel
	}
	ob.smoothing = make([]uint32, n)

	// Remaining bytes of this chunk are TRI_MATERIAL / TRI_SMOOTH sub-chunks.
	return iff.ForEachChunk(r, chunkOpts(nil), func(tag iff.Tag, p *breader.Reader) error {
		switch tag {
		case triFaceMat:
			return parseFaceMaterial(p, ob)
		case triSmoothList:
			return parseSmoothList(p, ob)
		}
		return nil
	})
}

func parseFaceMaterial(r *breader.Reader, ob *objBlock) error {
	name, _, err := r.ReadCStrBounded(r.Remaining())
	if err != nil {
		return err
	}
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		idx, err := r.ReadU16()
		if err != nil {
			return err
		}
		if int(idx) < len(ob.faceMaterial) {
			ob.faceMaterial[idx] = name
		}
	}
	return nil
}

func parseSmoothList(r *breader.Reader, ob *objBlock) error {
	for i := 0; i < len(ob.smoothing) && r.Remaining() >= 4; i++ {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		ob.smoothing[i] = v
	}
	return nil
}
