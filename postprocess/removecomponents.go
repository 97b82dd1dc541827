package postprocess

import "github.com/galvanized-assets/sceneimport/scene"

// Component bits for RemoveComponents, matching the bitmask shape
// config.RemoveComponentsFlags (pp.rvc.flags) documents in spec.md §6.
const (
	ComponentNormals = 1 << iota
	ComponentTangents
	ComponentColors
	ComponentTexCoords
	ComponentBones
)

// RemoveComponents drops the channels named by flags from every mesh
// (spec.md §4.9), then compacts the remaining UV/color channels left-to-right
// so that channel k+1 never exists without channel k.
func RemoveComponents(sc *scene.Scene, flags int) {
	if flags == 0 {
		return
	}
	for _, m := range sc.Meshes {
		if flags&ComponentNormals != 0 {
			m.Normals = nil
		}
		if flags&ComponentTangents != 0 {
			m.Tangents = nil
			m.Bitangents = nil
		}
		if flags&ComponentColors != 0 {
			m.Colors = nil
		}
		if flags&ComponentTexCoords != 0 {
			m.TexCoords = nil
		}
		if flags&ComponentBones != 0 {
			m.Bones = nil
		}
		compactChannels(m)
	}
}

// compactChannels removes any nil/empty UV or color channel, shifting later
// channels down so indices stay dense (spec.md §4.9's "compact ... left to
// right").
func compactChannels(m *scene.Mesh) {
	uv := m.TexCoords[:0]
	for _, ch := range m.TexCoords {
		if len(ch.UV) == 0 {
			continue
		}
		uv = append(uv, ch)
	}
	if len(uv) == 0 {
		m.TexCoords = nil
	} else {
		m.TexCoords = uv
	}

	colors := m.Colors[:0]
	for _, ch := range m.Colors {
		if len(ch.Colors) == 0 {
			continue
		}
		colors = append(colors, ch)
	}
	if len(colors) == 0 {
		m.Colors = nil
	} else {
		m.Colors = colors
	}
}
