package scene

import "github.com/galvanized-assets/sceneimport/propbag"

// Material property names, the canonical spellings from spec.md §6.
const (
	PropName        = "?mat.name"
	PropColorDiffuse = "$clr.diffuse"
	PropColorSpecular = "$clr.specular"
	PropColorAmbient = "$clr.ambient"
	PropColorEmissive = "$clr.emissive"
	PropOpacity      = "$mat.opacity"
	PropBumpScaling  = "$mat.bumpscaling"
	PropShininess    = "$mat.shininess"
	PropShinPercent  = "$mat.shinpercent"
	PropRefracti     = "$mat.refracti"
	PropShadingModel = "$mat.shadingm"
	PropWireframe    = "$mat.wireframe"
	PropTwoSided     = "$mat.twosided"
)

// Material is a bag of properties keyed by (name, texture-kind, index),
// per spec.md §3/§4.5.
type Material struct {
	propbag.Bag
}

// NewMaterial returns an empty material.
func NewMaterial() *Material { return &Material{} }

// Name returns the material's ?mat.name property, or "" if unset.
func (m *Material) Name() string {
	s, _ := m.String(propbag.NamedKey(PropName))
	return s
}

// SetName sets the ?mat.name property.
func (m *Material) SetName(name string) {
	m.AddString(propbag.NamedKey(PropName), name)
}

// DiffuseColor returns the $clr.diffuse property as (r,g,b), defaulting to
// (0,0,0) if unset.
func (m *Material) DiffuseColor() (r, g, b float32) {
	v, ok := m.Floats(propbag.NamedKey(PropColorDiffuse))
	if !ok || len(v) < 3 {
		return 0, 0, 0
	}
	return v[0], v[1], v[2]
}

// SetDiffuseColor sets the $clr.diffuse property.
func (m *Material) SetDiffuseColor(r, g, b float32) {
	m.AddFloats(propbag.NamedKey(PropColorDiffuse), []float32{r, g, b})
}

// HasTextures reports whether any $tex.file.<kind>[n] property is set.
func (m *Material) HasTextures() bool {
	for _, k := range m.Keys() {
		if k.Stack == propbag.StackFile {
			return true
		}
	}
	return false
}

// TextureFile returns the file path stored for the given kind/index texture
// slot.
func (m *Material) TextureFile(kind propbag.TextureKind, index int) (string, bool) {
	return m.String(propbag.TexKey(propbag.StackFile, kind, index))
}

// SetTextureFile stores a texture file path for the given kind/index slot.
func (m *Material) SetTextureFile(kind propbag.TextureKind, index int, path string) {
	m.AddString(propbag.TexKey(propbag.StackFile, kind, index), path)
}

// UVWSrc returns the UV channel a texture slot reads from (default 0).
func (m *Material) UVWSrc(kind propbag.TextureKind, index int) int {
	v, ok := m.Int(propbag.TexKey(propbag.StackUVWSrc, kind, index))
	if !ok {
		return 0
	}
	return int(v)
}

// SetUVWSrc sets the UV channel a texture slot reads from.
func (m *Material) SetUVWSrc(kind propbag.TextureKind, index, channel int) {
	m.AddInts(propbag.TexKey(propbag.StackUVWSrc, kind, index), []int32{int32(channel)})
}
