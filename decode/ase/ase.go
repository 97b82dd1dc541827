// Package ase implements the 3ds Max ASCII Scene Export text decoder
// (spec.md §6 text-token formats): a brace-nested `*KEYWORD { ... }` token
// tree rooted at `*3DSMAX_ASCIIEXPORT`, carrying a `*MATERIAL_LIST` and zero
// or more `*GEOMOBJECT` nodes, each with its own `*MESH` block.
package ase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/decode"
	"github.com/galvanized-assets/sceneimport/decode/textscan"
	"github.com/galvanized-assets/sceneimport/importerr"
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/propbag"
	"github.com/galvanized-assets/sceneimport/scene"
)

const formatName = "ase"

func init() {
	decode.Register(&Decoder{}, "ase", "ask")
}

type Decoder struct {
	Log *slog.Logger
}

func (d *Decoder) Name() string { return formatName }

type aseMaterial struct {
	name              string
	diffuse           linalg.Vec3
	ambient           linalg.Vec3
	specular          linalg.Vec3
	transparency      float32
	shininess         float32
	shininessStrength float32
}

type aseFace struct {
	indices [3]int
	matID   int
}

type aseMesh struct {
	verts  []linalg.Vec3
	faces  []aseFace
	tverts []linalg.Vec2
	tfaces [][3]int
}

type geomObject struct {
	name   string
	parent string
	matRef int
	mesh   aseMesh
}

func (d *Decoder) Decode(buf []byte, opts *config.Options) (*scene.Scene, error) {
	text, err := textscan.Decode(buf)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}
	sc := textscan.New(text)

	var materials []aseMaterial
	var objects []*geomObject

	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		switch tok {
		case "*MATERIAL_LIST":
			expect(sc, "{")
			materials, err = parseMaterialList(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
		case "*GEOMOBJECT":
			expect(sc, "{")
			obj, err := parseGeomObject(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
			objects = append(objects, obj)
		default:
			skipValueOrBlock(sc)
		}
	}

	scn := scene.New()
	for _, m := range materials {
		scn.Materials = append(scn.Materials, toSceneMaterial(m))
	}
	if len(scn.Materials) == 0 {
		// ASE files with geometry but no *MATERIAL_LIST still need a usable
		// index for every *MATERIAL_REF; give them one default entry.
		scn.Materials = append(scn.Materials, scene.NewMaterial())
	}

	root := scene.NewNode("<ase_root>")
	byName := map[string]*scene.Node{}
	for _, obj := range objects {
		node := scene.NewNode(obj.name)
		if len(obj.mesh.verts) > 0 {
			mesh := buildMesh(obj)
			node.Meshes = append(node.Meshes, len(scn.Meshes))
			scn.Meshes = append(scn.Meshes, mesh)
		}
		byName[obj.name] = node
	}
	for _, obj := range objects {
		node := byName[obj.name]
		if obj.parent != "" {
			if p, ok := byName[obj.parent]; ok {
				p.AddChild(node)
				continue
			}
		}
		root.AddChild(node)
	}
	scn.Root = root
	return scn, nil
}

func expect(sc *textscan.Scanner, want string) {
	tok, ok := sc.Next()
	if !ok || tok != want {
		// Malformed block opener: the token is consumed anyway and the
		// caller goes on parsing as if the block had opened, rather than
		// failing the whole decode, matching the "robust to minor
		// deviations" posture used across the text decoders.
	}
}

// skipValueOrBlock consumes a leaf scalar (rest of the current line) or, if
// the next token opens a brace, the whole balanced `{ ... }` block.
func skipValueOrBlock(sc *textscan.Scanner) {
	tok, ok := sc.Peek()
	if !ok {
		return
	}
	if tok == "{" {
		sc.Next()
		depth := 1
		for depth > 0 {
			t, ok := sc.Next()
			if !ok {
				return
			}
			switch t {
			case "{":
				depth++
			case "}":
				depth--
			}
		}
		return
	}
	sc.SkipLine()
}

func parseMaterialList(sc *textscan.Scanner) ([]aseMaterial, error) {
	var mats []aseMaterial
	for {
		tok, ok := sc.Next()
		if !ok {
			return nil, fmt.Errorf("ase: unterminated *MATERIAL_LIST")
		}
		switch tok {
		case "}":
			return mats, nil
		case "*MATERIAL_COUNT":
			sc.NextInt()
		case "*MATERIAL":
			sc.NextInt() // material index; ASE lists materials in order, so this is redundant.
			expect(sc, "{")
			m, err := parseMaterialBlock(sc)
			if err != nil {
				return nil, err
			}
			mats = append(mats, m)
		default:
			skipValueOrBlock(sc)
		}
	}
}

func parseMaterialBlock(sc *textscan.Scanner) (aseMaterial, error) {
	m := aseMaterial{transparency: 0, shininessStrength: 1}
	for {
		tok, ok := sc.Next()
		if !ok {
			return m, fmt.Errorf("ase: unterminated *MATERIAL block")
		}
		switch tok {
		case "}":
			return m, nil
		case "*MATERIAL_NAME":
			name, _ := sc.Next()
			m.name = strings.Trim(name, "\"")
		case "*MATERIAL_AMBIENT":
			m.ambient, _ = readVec3(sc)
		case "*MATERIAL_DIFFUSE":
			m.diffuse, _ = readVec3(sc)
		case "*MATERIAL_SPECULAR":
			m.specular, _ = readVec3(sc)
		case "*MATERIAL_TRANSPARENCY":
			v, _ := sc.NextFloat()
			m.transparency = v
		case "*MATERIAL_SHINE":
			v, _ := sc.NextFloat()
			m.shininess = v * 15 // 3ds Max stores shine in [0,1]; scaled to a usable exponent range.
		case "*MATERIAL_SHINESTRENGTH":
			v, _ := sc.NextFloat()
			m.shininessStrength = v
		default:
			// *MATERIAL_SHADING, *MAP_DIFFUSE, *NUMSUBMTLS/*SUBMATERIAL, etc:
			// not modeled; skip whatever follows.
			skipValueOrBlock(sc)
		}
	}
}

func parseGeomObject(sc *textscan.Scanner) (*geomObject, error) {
	obj := &geomObject{}
	for {
		tok, ok := sc.Next()
		if !ok {
			return nil, fmt.Errorf("ase: unterminated *GEOMOBJECT")
		}
		switch tok {
		case "}":
			return obj, nil
		case "*NODE_NAME":
			name, _ := sc.Next()
			obj.name = strings.Trim(name, "\"")
		case "*NODE_PARENT":
			name, _ := sc.Next()
			obj.parent = strings.Trim(name, "\"")
		case "*MATERIAL_REF":
			v, _ := sc.NextInt()
			obj.matRef = v
		case "*MESH":
			expect(sc, "{")
			mesh, err := parseMesh(sc)
			if err != nil {
				return nil, err
			}
			obj.mesh = mesh
		default:
			skipValueOrBlock(sc)
		}
	}
}

func parseMesh(sc *textscan.Scanner) (aseMesh, error) {
	var mesh aseMesh
	for {
		tok, ok := sc.Next()
		if !ok {
			return mesh, fmt.Errorf("ase: unterminated *MESH block")
		}
		switch tok {
		case "}":
			return mesh, nil
		case "*MESH_VERTEX_LIST":
			expect(sc, "{")
			verts, err := parseVertexList(sc)
			if err != nil {
				return mesh, err
			}
			mesh.verts = verts
		case "*MESH_FACE_LIST":
			expect(sc, "{")
			faces, err := parseFaceList(sc)
			if err != nil {
				return mesh, err
			}
			mesh.faces = faces
		case "*MESH_TVERTLIST":
			expect(sc, "{")
			tverts, err := parseTVertList(sc)
			if err != nil {
				return mesh, err
			}
			mesh.tverts = tverts
		case "*MESH_TFACELIST":
			expect(sc, "{")
			tfaces, err := parseTFaceList(sc)
			if err != nil {
				return mesh, err
			}
			mesh.tfaces = tfaces
		default:
			// *MESH_NUMVERTEX/*MESH_NUMFACES/*MESH_NORMALS/*MESH_CVERTLIST/etc:
			// counts are redundant with the lists themselves; normals are
			// regenerated downstream rather than imported verbatim.
			skipValueOrBlock(sc)
		}
	}
}

func parseVertexList(sc *textscan.Scanner) ([]linalg.Vec3, error) {
	var verts []linalg.Vec3
	for {
		tok, ok := sc.Next()
		if !ok {
			return nil, fmt.Errorf("ase: unterminated *MESH_VERTEX_LIST")
		}
		if tok == "}" {
			return verts, nil
		}
		if tok != "*MESH_VERTEX" {
			continue
		}
		sc.NextInt() // vertex index: lists are always written in order.
		v, err := readVec3(sc)
		if err != nil {
			return nil, err
		}
		verts = append(verts, v)
	}
}

func parseFaceList(sc *textscan.Scanner) ([]aseFace, error) {
	var faces []aseFace
	for {
		tok, ok := sc.Next()
		if !ok {
			return nil, fmt.Errorf("ase: unterminated *MESH_FACE_LIST")
		}
		if tok == "}" {
			return faces, nil
		}
		if tok != "*MESH_FACE" {
			continue
		}
		f, err := parseFaceLine(sc)
		if err != nil {
			return nil, err
		}
		faces = append(faces, f)
	}
}

// parseFaceLine reads the rest of one `*MESH_FACE N: A: a B: b C: c AB: 1
// BC: 1 CA: 1 *MESH_SMOOTHING g *MESH_MTLID m` line. Edge-visibility flags
// are read and discarded; the smoothing group is not carried onto the
// canonical mesh since face-vertex winding here always matches triangle
// order (no fan/strip reinterpretation needed for ASE's triangle-only faces).
func parseFaceLine(sc *textscan.Scanner) (aseFace, error) {
	sc.Next() // "N:" face index token.
	var f aseFace
	for {
		tok, ok := sc.Peek()
		if !ok {
			return f, nil
		}
		switch tok {
		case "A:":
			sc.Next()
			v, _ := sc.NextInt()
			f.indices[0] = v
		case "B:":
			sc.Next()
			v, _ := sc.NextInt()
			f.indices[1] = v
		case "C:":
			sc.Next()
			v, _ := sc.NextInt()
			f.indices[2] = v
		case "AB:", "BC:", "CA:":
			sc.Next()
			sc.NextInt()
		case "*MESH_SMOOTHING":
			sc.Next()
			sc.Next() // comma-joined group list, e.g. "1,2"; kept as a single token.
		case "*MESH_MTLID":
			sc.Next()
			v, _ := sc.NextInt()
			f.matID = v
		default:
			return f, nil
		}
	}
}

func parseTVertList(sc *textscan.Scanner) ([]linalg.Vec2, error) {
	var tverts []linalg.Vec2
	for {
		tok, ok := sc.Next()
		if !ok {
			return nil, fmt.Errorf("ase: unterminated *MESH_TVERTLIST")
		}
		if tok == "}" {
			return tverts, nil
		}
		if tok != "*MESH_TVERT" {
			continue
		}
		sc.NextInt()
		u, _ := sc.NextFloat()
		v, _ := sc.NextFloat()
		sc.NextFloat() // w component: unused for 2D UV channels.
		tverts = append(tverts, linalg.Vec2{X: u, Y: v})
	}
}

func parseTFaceList(sc *textscan.Scanner) ([][3]int, error) {
	var tfaces [][3]int
	for {
		tok, ok := sc.Next()
		if !ok {
			return nil, fmt.Errorf("ase: unterminated *MESH_TFACELIST")
		}
		if tok == "}" {
			return tfaces, nil
		}
		if tok != "*MESH_TFACE" {
			continue
		}
		sc.NextInt()
		a, _ := sc.NextInt()
		b, _ := sc.NextInt()
		c, _ := sc.NextInt()
		tfaces = append(tfaces, [3]int{a, b, c})
	}
}

func readVec3(sc *textscan.Scanner) (linalg.Vec3, error) {
	x, err := sc.NextFloat()
	if err != nil {
		return linalg.Vec3{}, err
	}
	y, err := sc.NextFloat()
	if err != nil {
		return linalg.Vec3{}, err
	}
	z, err := sc.NextFloat()
	if err != nil {
		return linalg.Vec3{}, err
	}
	return linalg.V3(x, y, z), nil
}

func buildMesh(obj *geomObject) *scene.Mesh {
	mesh := &scene.Mesh{Name: obj.name, MaterialIndex: obj.matRef}
	haveUV := len(obj.mesh.tverts) > 0 && len(obj.mesh.tfaces) == len(obj.mesh.faces)
	var uvs []linalg.Vec2
	for i, f := range obj.mesh.faces {
		var face scene.Face
		for k, vi := range f.indices {
			if vi < 0 || vi >= len(obj.mesh.verts) {
				continue
			}
			mesh.Positions = append(mesh.Positions, obj.mesh.verts[vi])
			face.Indices = append(face.Indices, uint32(len(mesh.Positions)-1))
			if haveUV {
				ti := obj.mesh.tfaces[i][k]
				if ti >= 0 && ti < len(obj.mesh.tverts) {
					uvs = append(uvs, obj.mesh.tverts[ti])
				} else {
					uvs = append(uvs, linalg.Vec2{})
				}
			}
		}
		mesh.Faces = append(mesh.Faces, face)
	}
	if haveUV {
		mesh.TexCoords = []scene.TexCoordChannel{{Components: 2, UV: uvs}}
	}
	return mesh
}

func toSceneMaterial(m aseMaterial) *scene.Material {
	sm := scene.NewMaterial()
	sm.SetName(m.name)
	sm.SetDiffuseColor(m.diffuse.X, m.diffuse.Y, m.diffuse.Z)
	sm.AddFloats(propbag.NamedKey(scene.PropColorAmbient), []float32{m.ambient.X, m.ambient.Y, m.ambient.Z})
	sm.AddFloats(propbag.NamedKey(scene.PropColorSpecular), []float32{m.specular.X, m.specular.Y, m.specular.Z})
	sm.AddFloats(propbag.NamedKey(scene.PropOpacity), []float32{1 - m.transparency})
	sm.AddFloats(propbag.NamedKey(scene.PropShininess), []float32{m.shininess})
	sm.AddFloats(propbag.NamedKey(scene.PropShinPercent), []float32{m.shininessStrength})
	return sm
}
