// Package postprocess implements the scene transformations spec.md §4.7-§4.10
// run between decode and validation: default-material substitution, normal
// generation, UV transform baking, and component removal. Each step mutates
// the scene in place, matching the teacher's own in-place mesh-building style
// in load/obj.go rather than rebuilding immutable copies.
package postprocess

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"github.com/galvanized-assets/sceneimport/scene"
)

var defaultNameFold = cases.Fold()

// SentinelMaterialIndex is the "unresolved" material index some decoders
// write in place of out-of-range source data, before this step resolves it
// to a real material (spec.md §4.10).
const SentinelMaterialIndex = 0xCDCDCDCD

// DefaultMaterialName is synthesized when no existing material qualifies as
// the scene's default (spec.md §4.10).
const DefaultMaterialName = "%%%DEFAULT"

// SubstituteDefaultMaterial scans sc.Materials for one that looks like a
// default (name containing "default", grey diffuse, no textures); if none
// qualifies, one is appended. Every face whose material index is the
// sentinel 0xCDCDCDCD, negative, or out of range is reassigned to it.
func SubstituteDefaultMaterial(sc *scene.Scene, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	defIdx := findDefaultMaterial(sc.Materials)

	needed := false
	for _, m := range sc.Meshes {
		if isUnresolved(m.MaterialIndex, len(sc.Materials)) {
			needed = true
			break
		}
	}
	if !needed {
		return
	}
	if defIdx < 0 {
		m := scene.NewMaterial()
		m.SetName(DefaultMaterialName)
		m.SetDiffuseColor(0.3, 0.3, 0.3)
		sc.Materials = append(sc.Materials, m)
		defIdx = len(sc.Materials) - 1
		log.Warn("postprocess: substituting default material for unresolved indices", "material", DefaultMaterialName)
	}
	for _, m := range sc.Meshes {
		if isUnresolved(m.MaterialIndex, len(sc.Materials)) {
			m.MaterialIndex = defIdx
		}
	}
}

func isUnresolved(idx, numMaterials int) bool {
	if idx == SentinelMaterialIndex {
		return true
	}
	return idx < 0 || idx >= numMaterials
}

// findDefaultMaterial returns the index of the first material matching
// spec.md §4.10's default heuristic (name contains "default", case
// insensitive; grey diffuse r==g==b; no textures), or -1.
func findDefaultMaterial(materials []*scene.Material) int {
	for i, m := range materials {
		if !strings.Contains(defaultNameFold.String(m.Name()), "default") {
			continue
		}
		r, g, b := m.DiffuseColor()
		if r != g || g != b {
			continue
		}
		if m.HasTextures() {
			continue
		}
		return i
	}
	return -1
}
