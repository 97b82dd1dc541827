package postprocess

import (
	"log/slog"
	"math"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/propbag"
	"github.com/galvanized-assets/sceneimport/scene"
)

// uvTransform is (scale_u, scale_v, offset_u, offset_v, rotation), the
// five-float shape decoders store at propbag.TexKey(StackTransform, kind, idx)
// (see decode/d3ds/convert.go's toSceneMaterial).
type uvTransform [5]float32

var identityTransform = uvTransform{1, 1, 0, 0, 0}

// BakeUVTransforms applies spec.md §4.8's per-material UV transform baking:
// a material with exactly one non-identity texture transform has it baked
// directly into the mesh's UV channel 0; a material with several distinct
// transforms gets one extra UV channel per transform, with each texture's
// uvwsrc property rewritten to point at its channel.
func BakeUVTransforms(sc *scene.Scene, opts *config.Options, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	legacyRotation := opts.Bool(config.TUVLegacyRotation, false)

	for mi, m := range sc.Materials {
		slots := textureSlots(m)
		if len(slots) == 0 {
			continue
		}
		unique := uniqueNonIdentityTransforms(slots)
		if len(unique) == 0 {
			continue
		}

		meshes := meshesUsingMaterial(sc, mi)
		if len(unique) == 1 {
			t := unique[0]
			for _, mesh := range meshes {
				bakeInPlace(mesh, t, legacyRotation)
			}
			continue
		}

		maxNew := scene.MaxTexCoordChannels - 1
		channelOf := make(map[uvTransform]int, len(unique))
		for i, t := range unique {
			if i < maxNew {
				channelOf[t] = 1 + i
			} else {
				channelOf[t] = 0
				log.Warn("postprocess: material exceeds max UV channel count, spilling transform into channel 0",
					"material", m.Name(), "unique_transforms", len(unique), "max_channels", scene.MaxTexCoordChannels)
			}
		}

		for _, mesh := range meshes {
			appendBakedChannels(mesh, unique, channelOf, legacyRotation, maxNew)
		}
		for _, s := range slots {
			if s.transform == identityTransform {
				continue
			}
			ch := channelOf[s.transform]
			m.SetUVWSrc(s.kind, s.index, ch)
		}
	}
}

type texSlot struct {
	kind      propbag.TextureKind
	index     int
	transform uvTransform
}

func textureSlots(m *scene.Material) []texSlot {
	var out []texSlot
	for _, k := range m.Keys() {
		if k.Stack != propbag.StackFile {
			continue
		}
		t := identityTransform
		if raw, ok := m.Floats(propbag.TexKey(propbag.StackTransform, k.Kind, k.Index)); ok && len(raw) == 5 {
			t = uvTransform{raw[0], raw[1], raw[2], raw[3], raw[4]}
		}
		out = append(out, texSlot{kind: k.Kind, index: k.Index, transform: normalizeTransform(t)})
	}
	return out
}

// normalizeTransform applies spec.md §4.8's pre-process snapping: an integer
// offset is snapped to 1 (documented redundancy in 3DS source data), and a
// rotation within +/-0.05 rad of a multiple of 2*pi is snapped to 0.
func normalizeTransform(t uvTransform) uvTransform {
	t[2] = snapIntegerOffset(t[2])
	t[3] = snapIntegerOffset(t[3])
	t[4] = snapRotation(t[4])
	return t
}

func snapIntegerOffset(v float32) float32 {
	if v != 0 && v == float32(math.Round(float64(v))) {
		return 1
	}
	return v
}

func snapRotation(rot float32) float32 {
	twoPi := 2 * math.Pi
	nearest := math.Round(float64(rot)/twoPi) * twoPi
	if math.Abs(float64(rot)-nearest) <= 0.05 {
		return 0
	}
	return rot
}

func uniqueNonIdentityTransforms(slots []texSlot) []uvTransform {
	var out []uvTransform
	seen := map[uvTransform]bool{}
	for _, s := range slots {
		if s.transform == identityTransform || seen[s.transform] {
			continue
		}
		seen[s.transform] = true
		out = append(out, s.transform)
	}
	return out
}

func meshesUsingMaterial(sc *scene.Scene, materialIndex int) []*scene.Mesh {
	var out []*scene.Mesh
	for _, m := range sc.Meshes {
		if m.MaterialIndex == materialIndex && len(m.TexCoords) > 0 {
			out = append(out, m)
		}
	}
	return out
}

func bakeInPlace(mesh *scene.Mesh, t uvTransform, legacyRotation bool) {
	ch := &mesh.TexCoords[0]
	for i := range ch.UV {
		ch.UV[i] = applyTransform(ch.UV[i], t, legacyRotation)
	}
}

func appendBakedChannels(mesh *scene.Mesh, unique []uvTransform, channelOf map[uvTransform]int, legacyRotation bool, maxNew int) {
	base := append([]linalg.Vec2(nil), mesh.TexCoords[0].UV...)
	for _, t := range unique {
		ch := channelOf[t]
		if ch == 0 {
			continue // spilled into channel 0: no new channel, no transform applied.
		}
		uv := make([]linalg.Vec2, len(base))
		for i, v := range base {
			uv[i] = applyTransform(v, t, legacyRotation)
		}
		for len(mesh.TexCoords) <= ch {
			mesh.TexCoords = append(mesh.TexCoords, scene.TexCoordChannel{Components: 2})
		}
		mesh.TexCoords[ch] = scene.TexCoordChannel{Components: 2, UV: uv}
	}
}

// applyTransform computes uv_out = rotate(scale*uv_in, theta) + offset
// (spec.md §4.8). The legacy form reproduces the source's asymmetric
// rotation (x*cos, y*sin); the corrected form is a true rotation matrix.
func applyTransform(v linalg.Vec2, t uvTransform, legacyRotation bool) linalg.Vec2 {
	x, y := v.X*t[0], v.Y*t[1]
	theta := float64(t[4])
	cos, sin := float32(math.Cos(theta)), float32(math.Sin(theta))
	var rx, ry float32
	if legacyRotation {
		rx, ry = x*cos, y*sin
	} else {
		rx = x*cos - y*sin
		ry = x*sin + y*cos
	}
	return linalg.Vec2{X: rx + t[2], Y: ry + t[3]}
}
