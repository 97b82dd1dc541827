package d3ds

import (
	"math"

	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/internal/iff"
	"github.com/galvanized-assets/sceneimport/linalg"
)

// readColor scans the sub-chunks of a color chunk (DIFFUSE/SPECULAR/AMBIENT/
// SELF_ILLUM) and returns the first recognized color form, applying gamma
// 2.2 decoding to the gamma variants (spec.md §4.3: "the parser must
// recognize all four and gamma-correct the 'linear' variants" — read as: the
// two gamma-encoded forms need correcting to linear before use).
func readColor(r *breader.Reader) (linalg.Vec3, error) {
	var out linalg.Vec3
	found := false
	err := iff.ForEachChunk(r, chunkOpts(nil), func(tag iff.Tag, p *breader.Reader) error {
		if found {
			return nil // first recognized form wins; ignore the rest.
		}
		switch tag {
		case colorLinearFloat:
			rf, gf, bf, e := read3f32(p)
			out = linalg.V3(rf, gf, bf)
			found = e == nil
			return e
		case colorGammaFloat:
			rf, gf, bf, e := read3f32(p)
			out = linalg.V3(gammaDecode(rf), gammaDecode(gf), gammaDecode(bf))
			found = e == nil
			return e
		case colorLinearByte:
			rb, gb, bb, e := read3u8(p)
			out = linalg.V3(rb, gb, bb)
			found = e == nil
			return e
		case colorGammaByte:
			rb, gb, bb, e := read3u8(p)
			out = linalg.V3(gammaDecode(rb), gammaDecode(gb), gammaDecode(bb))
			found = e == nil
			return e
		case colorPercent:
			u, e := p.ReadU16()
			if e != nil {
				return e
			}
			g := float32(u) / 0xFFFF
			out = linalg.V3(g, g, g)
			found = true
			return nil
		}
		return nil
	})
	return out, err
}

// readPercent scans a percentage chunk's sub-chunks, returning the first
// recognized form as a 0..1 fraction.
func readPercent(r *breader.Reader) (float32, error) {
	var out float32
	found := false
	err := iff.ForEachChunk(r, chunkOpts(nil), func(tag iff.Tag, p *breader.Reader) error {
		if found {
			return nil
		}
		switch tag {
		case percentFloat:
			f, e := p.ReadF32()
			out = f
			found = e == nil
			return e
		case percentInt:
			u, e := p.ReadU16()
			out = float32(u) / 0xFFFF
			found = e == nil
			return e
		}
		return nil
	})
	return out, err
}

func read3f32(r *breader.Reader) (a, b, c float32, err error) {
	if a, err = r.ReadF32(); err != nil {
		return
	}
	if b, err = r.ReadF32(); err != nil {
		return
	}
	c, err = r.ReadF32()
	return
}

func read3u8(r *breader.Reader) (a, b, c float32, err error) {
	var ab, bb, cb uint8
	if ab, err = r.ReadU8(); err != nil {
		return
	}
	if bb, err = r.ReadU8(); err != nil {
		return
	}
	if cb, err = r.ReadU8(); err != nil {
		return
	}
	return float32(ab) / 255, float32(bb) / 255, float32(cb) / 255, nil
}

func gammaDecode(v float32) float32 {
	return float32(math.Pow(float64(v), 2.2))
}
