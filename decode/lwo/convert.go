package lwo

import (
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/text/cases"

	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/propbag"
	"github.com/galvanized-assets/sceneimport/scene"
)

var lwoFold = cases.Fold()

const defaultSurfaceName = "<default>"

// toScene converts a parsed document into the canonical scene (spec.md
// §4.4's "Conversion" section).
func toScene(doc *document, log *slog.Logger) (*scene.Scene, error) {
	sc := scene.New()

	resolveClips(doc)

	// Build one canonical Material per surface, plus a synthetic grey
	// default appended for tags that never resolve to a SURF, per spec.md
	// §4.4: "a face whose tag has no matching surface gets a default grey
	// material appended once per document, shared by every such face".
	surfByName := map[string]int{}
	for _, s := range doc.surfs {
		idx := len(sc.Materials)
		sc.Materials = append(sc.Materials, toSceneMaterial(s))
		surfByName[lwoFold.String(s.name)] = idx
	}
	defaultMatIndex := -1
	resolveTagMaterial := func(tagIdx int) int {
		if tagIdx < 0 || tagIdx >= len(doc.tags) {
			return ensureDefaultMaterial(sc, &defaultMatIndex)
		}
		idx, ok := surfByName[lwoFold.String(doc.tags[tagIdx])]
		if !ok {
			if log != nil {
				log.Warn("lwo: tag has no matching surface, using default material", "tag", doc.tags[tagIdx])
			}
			return ensureDefaultMaterial(sc, &defaultMatIndex)
		}
		return idx
	}

	layerMeshes := make([][]int, len(doc.layers))
	for li, l := range doc.layers {
		byTag := map[int][]polygon{}
		order := []int{}
		for _, p := range l.polygons {
			mi := resolveTagMaterial(p.tagIndex)
			if _, ok := byTag[mi]; !ok {
				order = append(order, mi)
			}
			byTag[mi] = append(byTag[mi], p)
		}
		for _, mi := range order {
			mesh := buildLayerMesh(l, byTag[mi], mi)
			layerMeshes[li] = append(layerMeshes[li], len(sc.Meshes))
			sc.Meshes = append(sc.Meshes, mesh)
		}
	}

	sc.Root = buildLayerGraph(doc, layerMeshes)
	return sc, nil
}

func ensureDefaultMaterial(sc *scene.Scene, idx *int) int {
	if *idx >= 0 {
		return *idx
	}
	m := scene.NewMaterial()
	m.SetName(defaultSurfaceName)
	m.SetDiffuseColor(0.6, 0.6, 0.6)
	*idx = len(sc.Materials)
	sc.Materials = append(sc.Materials, m)
	return *idx
}

// resolveClips fills in each IMAP texture block's clipFile from the
// document's CLIP table, now that the whole file has been read.
func resolveClips(doc *document) {
	for _, s := range doc.surfs {
		for i := range s.blocks {
			if s.blocks[i].isImage {
				s.blocks[i].clipFile = doc.clipFile(s.blocks[i].imageIndex)
			}
		}
	}
}

// buildLayerMesh packs one material-group's worth of polygons from a layer
// into a verbose-layout canonical mesh, triangulating any polygon with more
// than 3 vertices by a simple triangle fan (spec.md §4.4/§3).
func buildLayerMesh(l *layer, polys []polygon, materialIndex int) *scene.Mesh {
	mesh := &scene.Mesh{Name: l.name, MaterialIndex: materialIndex}
	var uvChannel []linalg.Vec2
	haveUV := len(l.uvmaps) > 0
	var uvName string
	for name := range l.uvmaps {
		uvName = name
		break // only one UV channel survives the verbose split; with several, which one follows map iteration order and is not defined.
	}

	var colorChannel []scene.Color
	haveColor := len(l.colormaps) > 0
	var colorName string
	for name := range l.colormaps {
		colorName = name
		break // same verbose-split rule as UV: only one color channel survives, which one is not defined.
	}

	for _, p := range polys {
		if len(p.indices) < 3 {
			continue
		}
		local := make([]uint32, len(p.indices))
		for i, vi := range p.indices {
			pos := l.points[vi]
			local[i] = uint32(len(mesh.Positions))
			mesh.Positions = append(mesh.Positions, pos)
			if haveUV {
				uvChannel = append(uvChannel, lookupUV(l, uvName, int(vi)))
			}
			if haveColor {
				colorChannel = append(colorChannel, lookupColor(l, colorName, int(vi)))
			}
		}
		mesh.SmoothingGroups = append(mesh.SmoothingGroups, repeatN(p.smoothing, fanCount(len(local)))...)
		for _, f := range fanTriangles(local) {
			mesh.Faces = append(mesh.Faces, scene.Face{Indices: f})
		}
	}
	if haveUV {
		mesh.TexCoords = []scene.TexCoordChannel{{Components: 2, UV: uvChannel}}
	}
	if haveColor {
		mesh.Colors = []scene.ColorChannel{{Colors: colorChannel}}
	}
	return mesh
}

func fanCount(n int) int {
	if n < 3 {
		return 0
	}
	return n - 2
}

func repeatN(v uint32, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// fanTriangles triangulates a convex polygon's local (already-remapped)
// index list by a simple triangle fan from vertex 0.
func fanTriangles(idx []uint32) [][]uint32 {
	if len(idx) < 3 {
		return nil
	}
	var out [][]uint32
	for i := 1; i < len(idx)-1; i++ {
		out = append(out, []uint32{idx[0], idx[i], idx[i+1]})
	}
	return out
}

// lookupUV resolves a point's UV for the given channel: the last entry for
// the point wins, so VMAD entries appended after the VMAP baseline take
// precedence. Entries are matched by point index only; a VMAD entry's
// polygon index is not consulted, so its value applies to every polygon
// that uses the point.
func lookupUV(l *layer, channel string, pointIndex int) linalg.Vec2 {
	var found linalg.Vec2
	for _, e := range l.uvmaps[channel] {
		if e.pointIndex == pointIndex {
			found = e.uv
		}
	}
	return found
}

// lookupColor resolves a point's vertex color for the given channel, same
// last-match-wins rule as lookupUV.
func lookupColor(l *layer, channel string, pointIndex int) scene.Color {
	found := scene.Color{A: 1}
	for _, e := range l.colormaps[channel] {
		if e.pointIndex == pointIndex {
			found = e.color
		}
	}
	return found
}

func toSceneMaterial(s *surface) *scene.Material {
	m := scene.NewMaterial()
	m.SetName(s.name)
	diffuse := s.diffuse
	m.SetDiffuseColor(diffuse.X*s.diffusePct, diffuse.Y*s.diffusePct, diffuse.Z*s.diffusePct)
	m.AddFloats(propbag.NamedKey(scene.PropOpacity), []float32{1 - s.transparency})
	m.AddFloats(propbag.NamedKey(scene.PropShininess), []float32{s.glossiness})
	m.AddFloats(propbag.NamedKey(scene.PropShinPercent), []float32{s.specularPct})
	m.AddInts(propbag.NamedKey(scene.PropTwoSided), []int32{boolToInt(s.sidedness != 1)})

	// BLOKs targeting the same channel are applied in ordinal-string order
	// (spec.md §4.4 "Supplemented features": grounded on the original
	// source's surface-block sort before shading), lexical on the raw
	// digit-string since LWO ordinals are zero-padded ASCII.
	blocks := append([]textureBlock(nil), s.blocks...)
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].ordinal < blocks[j].ordinal })
	counts := map[propbag.TextureKind]int{}
	for _, b := range blocks {
		if !b.enabled || !b.isImage || b.clipFile == "" {
			continue
		}
		kind := channelToTextureKind(b.channel)
		idx := counts[kind]
		counts[kind] = idx + 1
		m.SetTextureFile(kind, idx, b.clipFile)
	}
	return m
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// channelToTextureKind maps an LWO surface channel name to the canonical
// texture slot it feeds.
func channelToTextureKind(channel string) propbag.TextureKind {
	switch channel {
	case "DIFF", "COLR":
		return propbag.Diffuse
	case "SPEC":
		return propbag.Specular
	case "BUMP":
		return propbag.Height
	case "TRAN":
		return propbag.Opacity
	case "LUMI":
		return propbag.Emissive
	default:
		return propbag.Diffuse
	}
}

// buildLayerGraph builds one node per layer, nested by LAYR parent index,
// under a synthetic "<dummy_root>" owning every layer that has no parent or
// whose declared parent doesn't exist (spec.md §4.4's node-graph section).
// When exactly one layer ends up parentless, that single node becomes the
// scene root directly instead of being wrapped (spec.md: "a single remaining
// root becomes the scene root directly").
func buildLayerGraph(doc *document, layerMeshes [][]int) *scene.Node {
	byNumber := map[uint16]*scene.Node{}
	nodes := make([]*scene.Node, len(doc.layers))
	for i, l := range doc.layers {
		name := l.name
		if name == "" {
			name = fmt.Sprintf("Layer[%d]", l.number)
		}
		n := scene.NewNode(name)
		n.Transform = linalg.Translate4(l.pivot.X, l.pivot.Y, l.pivot.Z)
		n.Meshes = append(n.Meshes, layerMeshes[i]...)
		nodes[i] = n
		byNumber[l.number] = n
	}

	var roots []*scene.Node
	for i, l := range doc.layers {
		if l.parent < 0 {
			roots = append(roots, nodes[i])
			continue
		}
		parent, ok := byNumber[uint16(l.parent)]
		if !ok {
			roots = append(roots, nodes[i])
			continue
		}
		parent.AddChild(nodes[i])
	}

	if len(roots) == 1 {
		return roots[0]
	}
	root := scene.NewNode("<dummy_root>")
	for _, n := range roots {
		root.AddChild(n)
	}
	return root
}
