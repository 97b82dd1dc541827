package lwo

import (
	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/internal/iff"
	"github.com/galvanized-assets/sceneimport/linalg"
)

// parseLayerHeader reads a LAYR chunk's fixed fields: number, flags, pivot,
// name, and an optional parent index (absent in files with a single layer).
func parseLayerHeader(r *breader.Reader) (*layer, error) {
	l := &layer{parent: -1}
	num, err := r.ReadU16BE()
	if err != nil {
		return nil, err
	}
	l.number = num
	if _, err := r.ReadU16BE(); err != nil { // flags
		return nil, err
	}
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
	l.pivot = linalg.V3(x, y, z)
	name, _, err := r.ReadCStrBounded(r.Remaining())
	if err != nil {
		return nil, err
	}
	l.name = name
	if r.Remaining() >= 2 {
		p, err := r.ReadU16BE()
		if err != nil {
			return nil, err
		}
		l.parent = int16(p)
	}
	return l, nil
}

// parseBody walks the top-level FORM chunks after its type tag, accumulating
// layers/tags/surfaces/clips into doc. A LAYR chunk starts a new layer;
// PNTS/POLS/PTAG/VMAP/VMAD chunks belong to whichever layer most recently
// started, per spec.md §4.4's "layers are delimited by LAYR, every geometry
// chunk until the next LAYR belongs to it".
func parseBody(r *breader.Reader, doc *document, onOverflow iff.OnOverflow) error {
	var current *layer
	return iff.ForEachChunk(r, chunkOpts(onOverflow), func(tag Tag, p *breader.Reader) error {
		switch tag {
		case tagLAYR:
			l, err := parseLayerHeader(p)
			if err != nil {
				return err
			}
			doc.layers = append(doc.layers, l)
			current = l
			return nil
		case tagPNTS:
			if current == nil {
				return nil
			}
			pts, err := parsePoints(p)
			if err != nil {
				return err
			}
			current.points = pts
			return nil
		case tagPOLS:
			if current == nil {
				return nil
			}
			if doc.isLWO2 {
				polys, ok, err := parsePolygonsLWO2(p)
				if err != nil || !ok {
					return err
				}
				current.polygons = polys
			} else {
				polys, err := parsePolygonsLWOB(p)
				if err != nil {
					return err
				}
				current.polygons = polys
			}
			return nil
		case tagPTAG:
			if current == nil {
				return nil
			}
			return parsePTAG(p, current)
		case tagVMAP:
			if current == nil {
				return nil
			}
			return parseVMAP(p, current)
		case tagVMAD:
			if current == nil {
				return nil
			}
			return parseVMAD(p, current)
		case tagSRFS:
			tags, err := parseTags(p)
			if err != nil {
				return err
			}
			doc.tags = append(doc.tags, tags...)
			return nil
		case tagSURF:
			s, err := parseSurface(p)
			if err != nil {
				return err
			}
			doc.surfs = append(doc.surfs, s)
			return nil
		case tagCLIP:
			c, err := parseClip(p)
			if err != nil {
				return err
			}
			doc.clips = append(doc.clips, c)
			return nil
		}
		return nil
	})
}
