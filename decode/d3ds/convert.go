package d3ds

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/cases"

	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/propbag"
	"github.com/galvanized-assets/sceneimport/scene"
)

var fold = cases.Fold()

// toScene converts a parsed document into the canonical scene, per
// spec.md §4.3's "Conversion to canonical scene" and "Node-graph
// construction" sections.
func toScene(doc *document, log *slog.Logger) (*scene.Scene, error) {
	sc := scene.New()

	materialIndex := make(map[string]int, len(doc.materials))
	for _, m := range doc.materials {
		idx := len(sc.Materials)
		sc.Materials = append(sc.Materials, toSceneMaterial(m))
		materialIndex[m.name] = idx
	}

	// meshesByObject[i] lists the canonical mesh indices derived from
	// doc.objects[i], in the order its materials first appear — used below to
	// attach meshes to the node that matches the OBJBLOCK name.
	meshesByObject := make([][]int, len(doc.objects))
	for oi, ob := range doc.objects {
		fixupCoordinates(ob)
		split := splitByMaterial(ob)
		for _, sm := range split {
			mesh := &scene.Mesh{
				Name:      ob.name,
				Positions: sm.positions,
				Faces:     sm.faces,
			}
			if len(sm.uvs) > 0 {
				mesh.TexCoords = []scene.TexCoordChannel{{Components: 2, UV: sm.uvs}}
			}
			mesh.SmoothingGroups = sm.smoothing
			if idx, ok := materialIndex[sm.material]; ok {
				mesh.MaterialIndex = idx
			} else {
				mesh.MaterialIndex = -1 // resolved by postprocess.SubstituteDefaultMaterial, which treats negative indices like the 0xCDCDCDCD sentinel.
			}
			meshesByObject[oi] = append(meshesByObject[oi], len(sc.Meshes))
			sc.Meshes = append(sc.Meshes, mesh)
		}
	}

	root, err := buildNodeGraph(doc, meshesByObject, log)
	if err != nil {
		return nil, err
	}
	sc.Root = root

	scale := doc.masterScale
	if scale == 0 {
		scale = 1 // spec.md §4.3: "a master_scale of 0 is coerced to 1".
	}
	if scale != 1 {
		s := linalg.Scale4(1/scale, 1/scale, 1/scale)
		var combined linalg.Mat4
		combined.Mult(s, sc.Root.Transform)
		sc.Root.Transform = combined
	}
	return sc, nil
}

// fixupCoordinates applies spec.md §4.3's 3DS→canonical coordinate-system
// conversion in place: negate Z, row-swap the local transform, and if that
// leaves a negative determinant, invert it and reflect positions to restore
// winding.
func fixupCoordinates(ob *objBlock) {
	for i := range ob.vertices {
		ob.vertices[i].Z = -ob.vertices[i].Z
	}
	if !ob.hasLocalMatrix {
		ob.localMatrix = linalg.Identity4()
		return
	}
	ob.localMatrix.RowSwap3DS()
	if ob.localMatrix.Det3() < 0 {
		var inv linalg.Mat4
		if inv.Invert(ob.localMatrix) {
			ob.localMatrix = inv
			for i := range ob.vertices {
				ob.vertices[i] = inv.MultVec3(ob.vertices[i])
			}
			for i := range ob.faces {
				ob.faces[i][1], ob.faces[i][2] = ob.faces[i][2], ob.faces[i][1]
			}
		}
	}
}

type splitMesh struct {
	material  string
	positions []linalg.Vec3
	uvs       []linalg.Vec2
	faces     []scene.Face
	smoothing []uint32
}

// splitByMaterial re-expresses an objBlock's shared-vertex faces into one
// verbose-layout mesh per distinct material, duplicating vertices so every
// face gets unique indices (spec.md §4.3/§3's "verbose layout").
func splitByMaterial(ob *objBlock) []*splitMesh {
	order := []string{}
	byMat := map[string]*splitMesh{}
	for fi, face := range ob.faces {
		matName := ob.faceMaterial[fi]
		sm, ok := byMat[matName]
		if !ok {
			sm = &splitMesh{material: matName}
			byMat[matName] = sm
			order = append(order, matName)
		}
		var newFace scene.Face
		for _, vi := range face {
			sm.positions = append(sm.positions, ob.vertices[vi])
			if int(vi) < len(ob.uvs) {
				sm.uvs = append(sm.uvs, ob.uvs[vi])
			}
			newFace.Indices = append(newFace.Indices, uint32(len(sm.positions)-1))
		}
		sm.faces = append(sm.faces, newFace)
		smoothing := uint32(0)
		if fi < len(ob.smoothing) {
			smoothing = ob.smoothing[fi]
		}
		sm.smoothing = append(sm.smoothing, smoothing)
	}
	out := make([]*splitMesh, 0, len(order))
	for _, name := range order {
		sm := byMat[name]
		if len(sm.uvs) != len(sm.positions) {
			sm.uvs = nil // only keep UVs when every vertex of this split got one.
		}
		out = append(out, sm)
	}
	return out
}

func toSceneMaterial(m *material) *scene.Material {
	sm := scene.NewMaterial()
	sm.SetName(m.name)
	sm.SetDiffuseColor(m.diffuse.X, m.diffuse.Y, m.diffuse.Z)
	sm.AddFloats(propbag.NamedKey(scene.PropColorSpecular), []float32{m.specular.X, m.specular.Y, m.specular.Z})
	sm.AddFloats(propbag.NamedKey(scene.PropColorAmbient), []float32{m.ambient.X, m.ambient.Y, m.ambient.Z})
	sm.AddFloats(propbag.NamedKey(scene.PropColorEmissive), []float32{m.emissive.X, m.emissive.Y, m.emissive.Z})
	sm.AddFloats(propbag.NamedKey(scene.PropOpacity), []float32{m.opacity})
	sm.AddFloats(propbag.NamedKey(scene.PropShininess), []float32{m.shininess})
	sm.AddFloats(propbag.NamedKey(scene.PropShinPercent), []float32{m.shinPercent})
	sm.AddInts(propbag.NamedKey(scene.PropShadingModel), []int32{int32(m.shadingMode)})
	if m.twoSided {
		sm.AddInts(propbag.NamedKey(scene.PropTwoSided), []int32{1})
	}
	if m.wireframe {
		sm.AddInts(propbag.NamedKey(scene.PropWireframe), []int32{1})
	}
	counts := map[propbag.TextureKind]int{}
	for _, tex := range m.textures {
		idx := counts[tex.kind]
		counts[tex.kind] = idx + 1
		sm.SetTextureFile(tex.kind, idx, tex.file)
		sm.AddFloats(propbag.TexKey(propbag.StackTransform, tex.kind, idx),
			[]float32{tex.uScale, tex.vScale, tex.uOffset, tex.vOffset, tex.angle})
	}
	return sm
}

// buildNodeGraph implements spec.md §4.3's "Node-graph construction": walk
// the KEYFRAMER hierarchy if present, matching node names (case-insensitive)
// to OBJBLOCK names; $$$DUMMY-prefixed nodes become empty helper nodes.
// With no KEYFRAMER, a flat root with one child per OBJBLOCK is generated
// instead (see flatNodeGraph for the UNNAMED[i] naming).
func buildNodeGraph(doc *document, meshesByObject [][]int, log *slog.Logger) (*scene.Node, error) {
	if len(doc.nodes) == 0 {
		return flatNodeGraph(doc, meshesByObject), nil
	}

	order := doc.nodes

	// 3DS hierarchy numbers are positions into this same node list: a node's
	// "hierarchy" field is the list index of its parent, -1 for a root.
	built := make([]*scene.Node, len(order))
	for i, n := range order {
		sn := scene.NewNode(n.name)
		sn.Transform = nodeTransform(n)
		built[i] = sn
	}
	roots := []*scene.Node{}
	for i, n := range order {
		if n.hierarchy < 0 || int(n.hierarchy) >= len(built) {
			roots = append(roots, built[i])
			continue
		}
		built[n.hierarchy].AddChild(built[i])
	}

	root := &scene.Node{Name: "<3ds_root>", Transform: linalg.Identity4()}
	if len(roots) == 1 {
		root = roots[0]
	} else {
		for _, r := range roots {
			root.AddChild(r)
		}
	}

	attachMeshesByName(root, doc, meshesByObject, log)
	return root, nil
}

func nodeTransform(n *kfNode) linalg.Mat4 {
	t := linalg.Identity4()
	if n.hasPos {
		t = linalg.Translate4(n.pos.X, n.pos.Y, n.pos.Z)
	}
	if n.hasRot {
		rm := n.rot.Mat4()
		var combined linalg.Mat4
		combined.Mult(rm, t)
		t = combined
	}
	if n.hasScale {
		sm := linalg.Scale4(n.scale.X, n.scale.Y, n.scale.Z)
		var combined linalg.Mat4
		combined.Mult(sm, t)
		t = combined
	}
	return t
}

// attachMeshesByName matches every built node's name (case-insensitive)
// against OBJBLOCK names and assigns mesh indices; $$$DUMMY-prefixed names
// are left as empty helper nodes.
func attachMeshesByName(root *scene.Node, doc *document, meshesByObject [][]int, log *slog.Logger) {
	byName := map[string][]int{}
	for oi, ob := range doc.objects {
		byName[foldName(ob.name)] = meshesByObject[oi]
	}
	root.Walk(func(n *scene.Node) {
		if isDummyName(n.Name) {
			return
		}
		if meshes, ok := byName[foldName(n.Name)]; ok {
			n.Meshes = append(n.Meshes, meshes...)
		} else if log != nil {
			log.Warn("3ds: keyframer node has no matching OBJBLOCK", "node", n.Name)
		}
	})
}

func isDummyName(name string) bool {
	return len(name) >= 8 && name[:8] == "$$$DUMMY"
}

// foldName normalizes an OBJBLOCK/node name for case-insensitive matching
// (spec.md §4.3: "matched (case-insensitive) against OBJBLOCK names").
func foldName(s string) string { return fold.String(s) }

// flatNodeGraph is used when the file carries no KEYFRAMER chunk: a
// synthetic root owns one child per OBJBLOCK, named UNNAMED[i] when the
// block itself is unnamed.
func flatNodeGraph(doc *document, meshesByObject [][]int) *scene.Node {
	root := scene.NewNode("<3ds_root>")
	for i, ob := range doc.objects {
		name := ob.name
		if name == "" {
			name = fmt.Sprintf("UNNAMED[%d]", i)
		}
		child := scene.NewNode(name)
		child.Meshes = append(child.Meshes, meshesByObject[i]...)
		root.AddChild(child)
	}
	return root
}
