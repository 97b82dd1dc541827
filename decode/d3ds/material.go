package d3ds

import (
	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/internal/iff"
	"github.com/galvanized-assets/sceneimport/propbag"
)

// parseMaterial decodes one MAT_MATERIAL (0xAFFF) chunk body.
func parseMaterial(r *breader.Reader) (*material, error) {
	mat := &material{opacity: 1}
	err := iff.ForEachChunk(r, chunkOpts(nil), func(tag iff.Tag, p *breader.Reader) error {
		switch tag {
		case matName:
			name, _, err := p.ReadCStrBounded(p.Remaining())
			mat.name = name
			return err
		case matDiffuse:
			c, err := readColor(p)
			mat.diffuse = c
			return err
		case matSpecular:
			c, err := readColor(p)
			mat.specular = c
			return err
		case matAmbient:
			c, err := readColor(p)
			mat.ambient = c
			return err
		case matSelfIllum:
			c, err := readColor(p)
			mat.emissive = c
			return err
		case matTransparency:
			t, err := readPercent(p)
			mat.opacity = 1 - t
			return err
		case matShininess:
			v, err := readPercent(p)
			mat.shininess = v
			return err
		case matShin2Pct:
			v, err := readPercent(p)
			mat.shinPercent = v
			return err
		case matTwoSided:
			mat.twoSided = true
			return nil
		case matWire:
			mat.wireframe = true
			return nil
		case matShading:
			v, err := p.ReadU16()
			mat.shadingMode = v
			return err
		case matTexMap:
			return parseTextureSlot(p, propbag.Diffuse, mat)
		case matSpecMap:
			return parseTextureSlot(p, propbag.Specular, mat)
		case matOpacMap:
			return parseTextureSlot(p, propbag.Opacity, mat)
		case matBumpMap:
			return parseTextureSlot(p, propbag.Height, mat)
		case matShinMap:
			return parseTextureSlot(p, propbag.Shininess, mat)
		case matSelfIMap:
			return parseTextureSlot(p, propbag.Emissive, mat)
		}
		return nil
	})
	return mat, err
}

func parseTextureSlot(r *breader.Reader, kind propbag.TextureKind, mat *material) error {
	slot := textureSlot{kind: kind, uScale: 1, vScale: 1}
	err := iff.ForEachChunk(r, chunkOpts(nil), func(tag iff.Tag, p *breader.Reader) error {
		switch tag {
		case mapFileName:
			name, _, err := p.ReadCStrBounded(p.Remaining())
			slot.file = name
			return err
		case mapUScale:
			v, err := p.ReadF32()
			slot.uScale = v
			return err
		case mapVScale:
			v, err := p.ReadF32()
			slot.vScale = v
			return err
		case mapUOffset:
			v, err := p.ReadF32()
			slot.uOffset = v
			return err
		case mapVOffset:
			v, err := p.ReadF32()
			slot.vOffset = v
			return err
		case mapAngle:
			v, err := p.ReadF32()
			slot.angle = v
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	mat.textures = append(mat.textures, slot)
	return nil
}
