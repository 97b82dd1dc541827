package lwo

import (
	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

// parsePoints reads a PNTS chunk: a flat array of big-endian float32 triples.
func parsePoints(r *breader.Reader) ([]linalg.Vec3, error) {
	var pts []linalg.Vec3
	for r.Remaining() >= 12 {
		x, err := r.ReadF32BE()
		if err != nil {
			return nil, err
		}
		y, err := r.ReadF32BE()
		if err != nil {
			return nil, err
		}
		z, err := r.ReadF32BE()
		if err != nil {
			return nil, err
		}
		pts = append(pts, linalg.V3(x, y, z))
	}
	return pts, nil
}

// readVX reads one LWO2 variable-width vertex index: a plain u16BE, or, when
// its high byte is 0xFF, a 3-byte index with the top byte masked off
// (spec.md §4.4's "VX escape rule", needed once a layer has more than 0xFF00
// points).
func readVX(r *breader.Reader) (uint32, error) {
	hi, err := r.Peek(0)
	if err != nil {
		return 0, err
	}
	if hi == 0xFF {
		if _, err := r.ReadU8(); err != nil {
			return 0, err
		}
		b, err := r.ReadBytes(3)
		if err != nil {
			return 0, err
		}
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
	}
	v, err := r.ReadU16BE()
	return uint32(v), err
}

// parsePolygonsLWOB reads an LWOB POLS chunk: for each polygon, a u16BE
// vertex count then that many u16BE indices, followed by a signed i16BE
// surface reference. A negative surface index introduces a "detail polygon"
// sub-list: a u16BE count of subsequent entries that are themselves ordinary
// polygons (used by the original format for hole/concave decomposition).
// This decoder flattens the sub-list into ordinary extra polygons, per
// spec.md §4.4's "detail polygons are flattened into ordinary faces".
func parsePolygonsLWOB(r *breader.Reader) ([]polygon, error) {
	var polys []polygon
	if err := readPolygonsLWOB(r, -1, &polys); err != nil {
		return nil, err
	}
	return polys, nil
}

// readPolygonsLWOB reads up to max polygons (unbounded when max < 0),
// recursing into a detail sub-list immediately after the polygon that
// introduced it so the flattened output preserves the original's traversal
// order.
func readPolygonsLWOB(r *breader.Reader, max int, polys *[]polygon) error {
	for (max < 0 || max > 0) && r.Remaining() >= 2 {
		if max > 0 {
			max--
		}
		count, err := r.ReadU16BE()
		if err != nil {
			return err
		}
		indices := make([]uint32, count)
		for i := range indices {
			v, err := r.ReadU16BE()
			if err != nil {
				return err
			}
			indices[i] = uint32(v)
		}
		surfRef, err := func() (int16, error) {
			v, err := r.ReadU16BE()
			return int16(v), err
		}()
		if err != nil {
			return err
		}
		tagIdx := int(surfRef)
		if tagIdx < 0 {
			tagIdx = -tagIdx
		}
		*polys = append(*polys, polygon{indices: indices, tagIndex: tagIdx - 1})
		if surfRef < 0 {
			numDetail, err := r.ReadU16BE()
			if err != nil {
				return err
			}
			if err := readPolygonsLWOB(r, int(numDetail), polys); err != nil {
				return err
			}
		}
	}
	return nil
}

// parsePolygonsLWO2 reads an LWO2 POLS chunk, which begins with a 4-byte
// sub-type tag (FACE is the only one this decoder understands; others are
// skipped wholesale since this decoder only targets renderable face lists,
// per spec.md §4.4). Each entry is a u16BE whose high 6 bits are flags and
// low 10 bits are the vertex count, followed by that many VX indices.
func parsePolygonsLWO2(r *breader.Reader) ([]polygon, bool, error) {
	subType, err := r.ReadU32BE()
	if err != nil {
		return nil, false, err
	}
	if Tag(subType) != tagFACE {
		return nil, false, nil // unsupported sub-type (e.g. PTCH/SUBD/MBAL): no faces to contribute.
	}
	var polys []polygon
	for r.Remaining() >= 2 {
		packed, err := r.ReadU16BE()
		if err != nil {
			return nil, false, err
		}
		count := int(packed & 0x03FF)
		indices := make([]uint32, count)
		for i := range indices {
			v, err := readVX(r)
			if err != nil {
				return nil, false, err
			}
			indices[i] = v
		}
		polys = append(polys, polygon{indices: indices, tagIndex: -1})
	}
	return polys, true, nil
}

// parseTags reads an SRFS chunk: a sequence of NUL-terminated tag names
// filling the remainder of the chunk.
func parseTags(r *breader.Reader) ([]string, error) {
	var tags []string
	for r.Remaining() > 0 {
		s, _, err := r.ReadCStrBounded(r.Remaining())
		if err != nil {
			return nil, err
		}
		tags = append(tags, s)
	}
	return tags, nil
}

// parsePTAG reads a PTAG chunk: a 4-byte association type (SURF or SMGP)
// then repeated {polyIndex u16BE, value u16BE} pairs, applied onto the
// layer's already-parsed polygons.
func parsePTAG(r *breader.Reader, l *layer) error {
	kind, err := r.ReadU32BE()
	if err != nil {
		return err
	}
	for r.Remaining() >= 4 {
		polyIdx, err := r.ReadU16BE()
		if err != nil {
			return err
		}
		val, err := r.ReadU16BE()
		if err != nil {
			return err
		}
		if int(polyIdx) >= len(l.polygons) {
			continue
		}
		switch Tag(kind) {
		case tagSURFtag:
			l.polygons[polyIdx].tagIndex = int(val)
		case tagSMGtag:
			l.polygons[polyIdx].smoothing = uint32(val)
		}
	}
	return nil
}

// vmapKind classifies a VMAP/VMAD map-type tag into the payload this decoder
// keeps: 2-component TXUV channels feed scene.Mesh.TexCoords, 3- or
// 4-component RGB/RGBA channels feed scene.Mesh.Colors (spec.md §4.4 names
// both as VMAP/VMAD payloads). WGHT (vertex weights) and any other map type
// is dropped.
func vmapKind(mapType uint32, dim uint16) (isUV, isColor bool) {
	switch {
	case Tag(mapType) == fourCC("TXUV") && dim == 2:
		return true, false
	case Tag(mapType) == fourCC("RGB ") && dim == 3:
		return false, true
	case Tag(mapType) == fourCC("RGBA") && dim == 4:
		return false, true
	default:
		return false, false
	}
}

func vmapColor(vals []float32) scene.Color {
	c := scene.Color{R: vals[0], G: vals[1], B: vals[2], A: 1}
	if len(vals) > 3 {
		c.A = vals[3]
	}
	return c
}

// parseVMAP reads a VMAP channel: a 4-byte map-type tag, a u16BE dimension,
// a NUL-terminated channel name, then {VX pointIndex, dimension×f32BE} per
// mapped point. TXUV (2-component UV) and RGB/RGBA (vertex color) channels
// are kept, per spec.md §4.4's texture-coordinate and vertex-color payloads.
func parseVMAP(r *breader.Reader, l *layer) error {
	mapType, err := r.ReadU32BE()
	if err != nil {
		return err
	}
	dim, err := r.ReadU16BE()
	if err != nil {
		return err
	}
	name, _, err := r.ReadCStrBounded(r.Remaining())
	if err != nil {
		return err
	}
	isUV, isColor := vmapKind(mapType, dim)
	var uvEntries []uvEntry
	var colorEntries []colorEntry
	for r.Remaining() > 0 {
		pi, err := readVX(r)
		if err != nil {
			return err
		}
		vals := make([]float32, dim)
		for i := range vals {
			vals[i], err = r.ReadF32BE()
			if err != nil {
				return err
			}
		}
		switch {
		case isUV:
			uvEntries = append(uvEntries, uvEntry{pointIndex: int(pi), polyIndex: -1, uv: linalg.Vec2{X: vals[0], Y: vals[1]}})
		case isColor:
			colorEntries = append(colorEntries, colorEntry{pointIndex: int(pi), polyIndex: -1, color: vmapColor(vals)})
		}
	}
	if isUV {
		if l.uvmaps == nil {
			l.uvmaps = map[string][]uvEntry{}
		}
		l.uvmaps[name] = uvEntries
	}
	if isColor {
		if l.colormaps == nil {
			l.colormaps = map[string][]colorEntry{}
		}
		l.colormaps[name] = colorEntries
	}
	return nil
}

// parseVMAD reads a discontinuous ("VMAD") UV or color channel: like VMAP
// but each entry also carries the polygon it applies within, since VMAD
// values are per-polygon-vertex rather than per-point (spec.md §4.4).
func parseVMAD(r *breader.Reader, l *layer) error {
	mapType, err := r.ReadU32BE()
	if err != nil {
		return err
	}
	dim, err := r.ReadU16BE()
	if err != nil {
		return err
	}
	name, _, err := r.ReadCStrBounded(r.Remaining())
	if err != nil {
		return err
	}
	isUV, isColor := vmapKind(mapType, dim)
	var uvEntries []uvEntry
	var colorEntries []colorEntry
	for r.Remaining() > 0 {
		pi, err := readVX(r)
		if err != nil {
			return err
		}
		polyIdx, err := readVX(r)
		if err != nil {
			return err
		}
		vals := make([]float32, dim)
		for i := range vals {
			vals[i], err = r.ReadF32BE()
			if err != nil {
				return err
			}
		}
		switch {
		case isUV:
			uvEntries = append(uvEntries, uvEntry{pointIndex: int(pi), polyIndex: int(polyIdx), uv: linalg.Vec2{X: vals[0], Y: vals[1]}})
		case isColor:
			colorEntries = append(colorEntries, colorEntry{pointIndex: int(pi), polyIndex: int(polyIdx), color: vmapColor(vals)})
		}
	}
	// VMAD entries are appended after any VMAP baseline for the same channel
	// name, so they win when the convert step resolves values by last match
	// on point index. The polygon index is kept on each entry but not used
	// there: a VMAD value applies to every polygon sharing the point.
	if isUV {
		if l.uvmaps == nil {
			l.uvmaps = map[string][]uvEntry{}
		}
		l.uvmaps[name] = append(l.uvmaps[name], uvEntries...)
	}
	if isColor {
		if l.colormaps == nil {
			l.colormaps = map[string][]colorEntry{}
		}
		l.colormaps[name] = append(l.colormaps[name], colorEntries...)
	}
	return nil
}
