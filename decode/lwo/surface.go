package lwo

import (
	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/internal/iff"
	"github.com/galvanized-assets/sceneimport/linalg"
)

// parseSurface reads a SURF chunk: name, parent-surface name, then a run of
// attribute/BLOK sub-chunks (spec.md §4.4).
func parseSurface(r *breader.Reader) (*surface, error) {
	s := &surface{diffusePct: 1, glossiness: 0.4}
	name, _, err := r.ReadCStrBounded(r.Remaining())
	if err != nil {
		return nil, err
	}
	s.name = name
	source, _, err := r.ReadCStrBounded(r.Remaining())
	if err != nil {
		return nil, err
	}
	s.source = source

	err = iff.ForEachChunk(r, chunkOpts(nil), func(tag Tag, p *breader.Reader) error {
		switch tag {
		case surfColor:
			c, err := read3f32PercentAsByte(p)
			s.diffuse = c
			return err
		case surfDiff:
			v, err := p.ReadF32BE()
			s.diffusePct = v
			return err
		case surfSpec:
			v, err := p.ReadF32BE()
			s.specularPct = v
			return err
		case surfTrans:
			v, err := p.ReadF32BE()
			s.transparency = v
			return err
		case surfGlos:
			v, err := p.ReadF32BE()
			s.glossiness = v
			return err
		case surfRefr:
			v, err := p.ReadF32BE()
			s.refraction = v
			return err
		case surfBump:
			v, err := p.ReadF32BE()
			s.bumpStrength = v
			return err
		case surfSide:
			v, err := p.ReadU16BE()
			s.sidedness = v
			return err
		case surfBlok:
			b, err := parseTextureBlock(p)
			if err != nil {
				return err
			}
			s.blocks = append(s.blocks, *b)
			return nil
		}
		return nil
	})
	return s, err
}

func read3f32PercentAsByte(r *breader.Reader) (linalg.Vec3, error) {
	x, err := r.ReadF32BE()
	if err != nil {
		return linalg.Vec3{}, err
	}
	y, err := r.ReadF32BE()
	if err != nil {
		return linalg.Vec3{}, err
	}
	z, err := r.ReadF32BE()
	if err != nil {
		return linalg.Vec3{}, err
	}
	return linalg.V3(x, y, z), nil
}

// parseTextureBlock reads one BLOK: an ordinal-string header (used to sort
// multiple blocks on the same channel), then CHAN/ENAB and, for image maps,
// an IMAG clip reference. PROC/GRAD blocks are recognized but carry no clip,
// per spec.md §4.4's "procedural/gradient blocks are recorded but not
// textured" supplemented scope.
func parseTextureBlock(r *breader.Reader) (*textureBlock, error) {
	b := &textureBlock{enabled: true}
	err := iff.ForEachChunk(r, chunkOpts(nil), func(tag Tag, p *breader.Reader) error {
		switch tag {
		case blokOrdinal:
			s, _, err := p.ReadCStrBounded(p.Remaining())
			b.ordinal = s
			return err
		case blokChannel:
			s, _, err := p.ReadCStrBounded(p.Remaining())
			b.channel = s
			return err
		case blokEnable:
			v, err := p.ReadU16BE()
			b.enabled = v != 0
			return err
		case blokIMAP:
			b.isImage = true
			return iff.ForEachChunk(p, chunkOpts(nil), func(itag Tag, ip *breader.Reader) error {
				if itag == blokCLIPID {
					idx, err := ip.ReadU16BE()
					if err != nil {
						return err
					}
					b.clipFile = "" // resolved later once the document's clip table is complete.
					b.imageIndex = int(idx)
					return nil
				}
				return nil
			})
		case blokPROC, blokGRAD:
			return nil // recorded as a non-image block; no clip to resolve.
		}
		return nil
	})
	return b, err
}

// parseClip reads a CLIP chunk: a numeric index followed by a STIL
// sub-chunk naming the still-image file.
func parseClip(r *breader.Reader) (clip, error) {
	idx, err := r.ReadU32BE()
	if err != nil {
		return clip{}, err
	}
	c := clip{index: int(idx)}
	err = iff.ForEachChunk(r, chunkOpts(nil), func(tag Tag, p *breader.Reader) error {
		if tag == tagSTIL {
			s, _, err := p.ReadCStrBounded(p.Remaining())
			c.file = s
			return err
		}
		return nil
	})
	return c, err
}
