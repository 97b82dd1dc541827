// Package md5 implements the text-based MD5 mesh/anim decoder (spec.md §6:
// "MD5Version 10", "numJoints", "numMeshes" sections). A .md5anim file with
// no matching .md5mesh produces a skeleton-only scene, spec.md's E6
// end-to-end scenario.
package md5

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/decode"
	"github.com/galvanized-assets/sceneimport/decode/textscan"
	"github.com/galvanized-assets/sceneimport/importerr"
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

const formatName = "md5"
const wantVersion = 10

func init() {
	decode.Register(&Decoder{}, "md5")
}

type Decoder struct {
	Log *slog.Logger
}

func (d *Decoder) Name() string { return formatName }

type joint struct {
	name      string
	parent    int
	pos       linalg.Vec3
	orient    linalg.Quat
}

type weight struct {
	jointIndex int
	bias       float32
	pos        linalg.Vec3
}

type vertex struct {
	uv          linalg.Vec2
	weightStart int
	weightCount int
}

type md5Mesh struct {
	shader  string
	verts   []vertex
	tris    [][3]int
	weights []weight
}

func (d *Decoder) Decode(buf []byte, opts *config.Options) (*scene.Scene, error) {
	text, err := textscan.Decode(buf)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}
	sc := textscan.New(text)

	tok, ok := sc.Next()
	if !ok || tok != "MD5Version" {
		return nil, importerr.At(formatName, importerr.InvalidMagic, 0, "missing MD5Version header")
	}
	version, err := sc.NextInt()
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}
	if version != wantVersion {
		return nil, importerr.At(formatName, importerr.UnsupportedVersion, 0, "expected MD5Version 10")
	}

	var joints []joint
	var meshes []md5Mesh
	hasAnimBlock := false
	var frameRate int
	var baseFrame []joint

	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		switch tok {
		case "commandline":
			sc.Next() // the quoted command-line string: recorded for provenance only.
		case "numJoints", "numMeshes", "numFrames", "numAnimatedComponents":
			sc.Next()
		case "frameRate":
			frameRate, _ = sc.NextInt()
		case "hierarchy":
			joints, err = parseHierarchy(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidHierarchy, -1, err)
			}
		case "baseframe":
			baseFrame, err = parseBaseframe(sc, joints)
			hasAnimBlock = true
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidHierarchy, -1, err)
			}
		case "frame":
			sc.NextInt()
			skipBlock(sc)
		case "bounds":
			skipBlock(sc)
		case "mesh":
			m, err := parseMesh(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
			meshes = append(meshes, m)
		}
	}

	scn := scene.New()
	if len(meshes) == 0 && hasAnimBlock {
		// .md5anim without a matching .md5mesh: skeleton-only scene, E6.
		scn.Flags |= scene.AnimSkeletonOnly
		scn.Root = buildSkeleton(joints)
		ticks := float64(len(baseFrame)) // a single-frame anim block only carries baseframe poses here.
		scn.Animations = append(scn.Animations, &scene.Animation{
			Name: "md5anim", DurationTicks: ticks, TicksPerSecond: float64(frameRate),
		})
		return scn, nil
	}

	for _, m := range meshes {
		mesh := buildMesh(m, joints)
		scn.Meshes = append(scn.Meshes, mesh)
		mat := scene.NewMaterial()
		mat.SetName(m.shader)
		mesh.MaterialIndex = len(scn.Materials)
		scn.Materials = append(scn.Materials, mat)
	}
	scn.Root = buildSkeleton(joints)
	for i := range scn.Meshes {
		scn.Root.Meshes = append(scn.Root.Meshes, i)
	}
	return scn, nil
}

func skipBlock(sc *textscan.Scanner) {
	depth := 0
	for {
		tok, ok := sc.Next()
		if !ok {
			return
		}
		switch tok {
		case "{":
			depth++
		case "}":
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}

func parseHierarchy(sc *textscan.Scanner) ([]joint, error) {
	if _, ok := sc.Next(); !ok { // "{"
		return nil, fmt.Errorf("md5: truncated hierarchy block")
	}
	var joints []joint
	for {
		tok, ok := sc.Next()
		if !ok {
			return nil, fmt.Errorf("md5: unterminated hierarchy block")
		}
		if tok == "}" {
			return joints, nil
		}
		name := strings.Trim(tok, "\"")
		parent, err := sc.NextInt()
		if err != nil {
			return nil, err
		}
		sc.NextInt() // flags
		sc.NextInt() // startIndex
		joints = append(joints, joint{name: name, parent: parent})
	}
}

func parseBaseframe(sc *textscan.Scanner, joints []joint) ([]joint, error) {
	if _, ok := sc.Next(); !ok {
		return nil, fmt.Errorf("md5: truncated baseframe block")
	}
	out := append([]joint(nil), joints...)
	for i := 0; ; i++ {
		tok, ok := sc.Next()
		if !ok {
			return nil, fmt.Errorf("md5: unterminated baseframe block")
		}
		if tok == "}" {
			return out, nil
		}
		if tok != "(" {
			return nil, fmt.Errorf("md5: expected ( in baseframe entry")
		}
		pos, err := readVec3(sc)
		if err != nil {
			return nil, err
		}
		sc.Next() // ")"
		sc.Next() // "("
		qx, _ := sc.NextFloat()
		qy, _ := sc.NextFloat()
		qz, _ := sc.NextFloat()
		sc.Next() // ")"
		q := reconstructQuat(qx, qy, qz)
		if i < len(out) {
			out[i].pos = pos
			out[i].orient = q
		}
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

// reconstructQuat rebuilds the W component MD5 omits from its stored x/y/z,
// per the format's "quaternions are stored as unit-length, W derived"
// convention.
func reconstructQuat(x, y, z float32) linalg.Quat {
	t := 1 - x*x - y*y - z*z
	w := float32(0)
	if t > 0 {
		w = -sqrt32(t)
	}
	return linalg.Quat{X: x, Y: y, Z: z, W: w}
}

func sqrt32(v float32) float32 {
	// Newton's method avoids importing math just for one call site; good
	// enough precision for a joint orientation.
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 8; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

func parseMesh(sc *textscan.Scanner) (md5Mesh, error) {
	m := md5Mesh{}
	if _, ok := sc.Next(); !ok { // "{"
		return m, fmt.Errorf("md5: truncated mesh block")
	}
	for {
		tok, ok := sc.Next()
		if !ok {
			return m, fmt.Errorf("md5: unterminated mesh block")
		}
		switch tok {
		case "}":
			return m, nil
		case "shader":
			s, _ := sc.Next()
			m.shader = strings.Trim(s, "\"")
		case "numverts":
			sc.NextInt()
		case "numtris":
			sc.NextInt()
		case "numweights":
			sc.NextInt()
		case "vert":
			sc.NextInt() // index; vertices are emitted in order.
			sc.Next()    // "("
			u, _ := sc.NextFloat()
			v, _ := sc.NextFloat()
			sc.Next() // ")"
			ws, _ := sc.NextInt()
			wc, _ := sc.NextInt()
			m.verts = append(m.verts, vertex{uv: linalg.Vec2{X: u, Y: v}, weightStart: ws, weightCount: wc})
		case "tri":
			sc.NextInt()
			a, _ := sc.NextInt()
			b, _ := sc.NextInt()
			c, _ := sc.NextInt()
			m.tris = append(m.tris, [3]int{a, b, c})
		case "weight":
			sc.NextInt()
			ji, _ := sc.NextInt()
			bias, _ := sc.NextFloat()
			sc.Next() // "("
			pos, err := readVec3(sc)
			if err != nil {
				return m, err
			}
			sc.Next() // ")"
			m.weights = append(m.weights, weight{jointIndex: ji, bias: bias, pos: pos})
		}
	}
}

// buildMesh resolves each MD5 vertex's bind-pose position by blending its
// weights through the joint hierarchy, then emits a canonical mesh plus one
// Bone per joint that influences it (spec.md §3's skin weight model).
func buildMesh(m md5Mesh, joints []joint) *scene.Mesh {
	mesh := &scene.Mesh{Name: m.shader}
	boneByJoint := map[int]int{}

	for vi, v := range m.verts {
		var blended linalg.Vec3
		for wi := v.weightStart; wi < v.weightStart+v.weightCount && wi < len(m.weights); wi++ {
			w := m.weights[wi]
			if w.jointIndex < 0 || w.jointIndex >= len(joints) {
				continue
			}
			j := joints[w.jointIndex]
			rot := j.orient.Mat4()
			worldPos := rot.MultVec3(w.pos)
			worldPos.X += j.pos.X
			worldPos.Y += j.pos.Y
			worldPos.Z += j.pos.Z
			blended.X += worldPos.X * w.bias
			blended.Y += worldPos.Y * w.bias
			blended.Z += worldPos.Z * w.bias

			bi, ok := boneByJoint[w.jointIndex]
			if !ok {
				bi = len(mesh.Bones)
				boneByJoint[w.jointIndex] = bi
				mesh.Bones = append(mesh.Bones, scene.Bone{Name: j.name})
			}
			mesh.Bones[bi].Weights = append(mesh.Bones[bi].Weights, scene.BoneWeight{VertexID: uint32(vi), Weight: w.bias})
		}
		mesh.Positions = append(mesh.Positions, blended)
	}
	var uvs []linalg.Vec2
	for _, v := range m.verts {
		uvs = append(uvs, v.uv)
	}
	mesh.TexCoords = []scene.TexCoordChannel{{Components: 2, UV: uvs}}
	for _, t := range m.tris {
		mesh.Faces = append(mesh.Faces, scene.Face{Indices: []uint32{uint32(t[0]), uint32(t[1]), uint32(t[2])}})
	}
	return mesh
}

func buildSkeleton(joints []joint) *scene.Node {
	root := scene.NewNode("<md5_root>")
	nodes := make([]*scene.Node, len(joints))
	for i, j := range joints {
		n := scene.NewNode(j.name)
		n.Transform = j.orient.Mat4()
		n.Transform.Wx, n.Transform.Wy, n.Transform.Wz = j.pos.X, j.pos.Y, j.pos.Z
		nodes[i] = n
	}
	for i, j := range joints {
		if j.parent < 0 || j.parent >= len(nodes) || j.parent == i {
			root.AddChild(nodes[i])
			continue
		}
		nodes[j.parent].AddChild(nodes[i])
	}
	return root
}
