// Package smd implements the Valve Studiomdl text decoder (spec.md §6
// text-token formats): a "version 1" line, a "nodes" bone-hierarchy
// section, a "skeleton" section (bind pose taken from its first "time"
// block), and a "triangles" section of material-tagged vertex triples.
package smd

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/decode"
	"github.com/galvanized-assets/sceneimport/decode/textscan"
	"github.com/galvanized-assets/sceneimport/importerr"
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

const formatName = "smd"

func init() {
	decode.Register(&Decoder{}, "smd", "vta")
}

type Decoder struct {
	Log *slog.Logger
}

func (d *Decoder) Name() string { return formatName }

type node struct {
	name   string
	parent int
	pos    linalg.Vec3
	rot    linalg.Vec3 // Euler radians, SMD's native bone-pose representation.
}

type smdVertex struct {
	boneIndex int
	pos       linalg.Vec3
	normal    linalg.Vec3
	uv        linalg.Vec2
}

func (d *Decoder) Decode(buf []byte, opts *config.Options) (*scene.Scene, error) {
	text, err := textscan.Decode(buf)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}
	sc := textscan.New(text)

	var nodes []node
	materialGroups := map[string][]smdVertex{}
	var matOrder []string

	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		switch strings.ToLower(tok) {
		case "version":
			sc.NextInt()
		case "nodes":
			nodes, err = parseNodes(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidHierarchy, -1, err)
			}
		case "skeleton":
			if err := applyFirstSkeletonFrame(sc, nodes); err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidHierarchy, -1, err)
			}
		case "triangles":
			if err := parseTriangles(sc, materialGroups, &matOrder); err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
		}
	}

	sc2 := scene.New()
	if len(matOrder) == 0 {
		// Skeleton-only SMD/VTA: no triangles section found.
		sc2.Flags |= scene.AnimSkeletonOnly
		sc2.Root = buildSkeleton(nodes)
		return sc2, nil
	}
	for _, matName := range matOrder {
		verts := materialGroups[matName]
		mesh := buildMesh(matName, verts)
		mesh.MaterialIndex = len(sc2.Materials)
		mat := scene.NewMaterial()
		mat.SetName(matName)
		sc2.Materials = append(sc2.Materials, mat)
		sc2.Meshes = append(sc2.Meshes, mesh)
	}
	root := buildSkeleton(nodes)
	for i := range sc2.Meshes {
		root.Meshes = append(root.Meshes, i)
	}
	sc2.Root = root
	return sc2, nil
}

func parseNodes(sc *textscan.Scanner) ([]node, error) {
	var nodes []node
	for {
		tok, ok := sc.Peek()
		if !ok {
			return nil, fmt.Errorf("smd: unterminated nodes section")
		}
		if strings.EqualFold(tok, "end") {
			sc.Next()
			return nodes, nil
		}
		idxStr, _ := sc.Next()
		name, _ := sc.Next()
		parentStr, _ := sc.Next()
		idx := atoiSafe(idxStr)
		parent := atoiSafe(parentStr)
		for len(nodes) <= idx {
			nodes = append(nodes, node{})
		}
		nodes[idx] = node{name: strings.Trim(name, "\""), parent: parent}
	}
}

func applyFirstSkeletonFrame(sc *textscan.Scanner, nodes []node) error {
	tok, ok := sc.Next()
	if !ok || !strings.EqualFold(tok, "time") {
		return fmt.Errorf("smd: expected 'time' at start of skeleton section")
	}
	sc.NextInt() // frame number; only the first frame establishes the bind pose.
	for {
		tok, ok := sc.Peek()
		if !ok {
			return fmt.Errorf("smd: unterminated skeleton section")
		}
		if strings.EqualFold(tok, "end") || strings.EqualFold(tok, "time") {
			return nil
		}
		idxStr, _ := sc.Next()
		idx := atoiSafe(idxStr)
		px, _ := sc.NextFloat()
		py, _ := sc.NextFloat()
		pz, _ := sc.NextFloat()
		rx, _ := sc.NextFloat()
		ry, _ := sc.NextFloat()
		rz, _ := sc.NextFloat()
		if idx >= 0 && idx < len(nodes) {
			nodes[idx].pos = linalg.V3(px, py, pz)
			nodes[idx].rot = linalg.V3(rx, ry, rz)
		}
	}
}

func parseTriangles(sc *textscan.Scanner, groups map[string][]smdVertex, order *[]string) error {
	for {
		tok, ok := sc.Peek()
		if !ok {
			return fmt.Errorf("smd: unterminated triangles section")
		}
		if strings.EqualFold(tok, "end") {
			sc.Next()
			return nil
		}
		matName, _ := sc.Next()
		if _, seen := groups[matName]; !seen {
			*order = append(*order, matName)
		}
		for i := 0; i < 3; i++ {
			v, err := parseVertex(sc)
			if err != nil {
				return err
			}
			groups[matName] = append(groups[matName], v)
		}
	}
}

func parseVertex(sc *textscan.Scanner) (smdVertex, error) {
	bi, err := sc.NextInt()
	if err != nil {
		return smdVertex{}, err
	}
	px, _ := sc.NextFloat()
	py, _ := sc.NextFloat()
	pz, _ := sc.NextFloat()
	nx, _ := sc.NextFloat()
	ny, _ := sc.NextFloat()
	nz, _ := sc.NextFloat()
	u, _ := sc.NextFloat()
	v, _ := sc.NextFloat()
	// Optional link-count + {boneIndex, weight} pairs (skinned SMD) on the
	// same line: skipped. The bone index read above is kept on smdVertex,
	// but buildMesh does not carry it onto the canonical mesh.
	line := sc.Line()
	if tok, ok := sc.Peek(); ok && sc.Line() == line {
		if n, convErr := parseIntSafe(tok); convErr == nil {
			sc.Next()
			for i := 0; i < n; i++ {
				sc.NextInt()
				sc.NextFloat()
			}
		}
	}
	return smdVertex{boneIndex: bi, pos: linalg.V3(px, py, pz), normal: linalg.V3(nx, ny, nz), uv: linalg.Vec2{X: u, Y: v}}, nil
}

func parseIntSafe(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func atoiSafe(s string) int {
	n, err := parseIntSafe(s)
	if err != nil {
		return -1
	}
	return n
}

func buildMesh(name string, verts []smdVertex) *scene.Mesh {
	mesh := &scene.Mesh{Name: name}
	var uvs []linalg.Vec2
	for i := 0; i+2 < len(verts); i += 3 {
		var face scene.Face
		for j := 0; j < 3; j++ {
			v := verts[i+j]
			mesh.Positions = append(mesh.Positions, v.pos)
			mesh.Normals = append(mesh.Normals, v.normal)
			uvs = append(uvs, v.uv)
			face.Indices = append(face.Indices, uint32(len(mesh.Positions)-1))
		}
		mesh.Faces = append(mesh.Faces, face)
	}
	mesh.TexCoords = []scene.TexCoordChannel{{Components: 2, UV: uvs}}
	return mesh
}

func buildSkeleton(nodes []node) *scene.Node {
	root := scene.NewNode("<smd_root>")
	built := make([]*scene.Node, len(nodes))
	for i, n := range nodes {
		sn := scene.NewNode(n.name)
		sn.Transform = eulerToMat4(n.rot)
		sn.Transform.Wx, sn.Transform.Wy, sn.Transform.Wz = n.pos.X, n.pos.Y, n.pos.Z
		built[i] = sn
	}
	for i, n := range nodes {
		if n.parent < 0 || n.parent >= len(built) || n.parent == i {
			root.AddChild(built[i])
			continue
		}
		built[n.parent].AddChild(built[i])
	}
	return root
}

// eulerToMat4 builds a rotation matrix from SMD's XYZ Euler-angle bone pose.
func eulerToMat4(e linalg.Vec3) linalg.Mat4 {
	rx := axisAngleMat4(linalg.V3(1, 0, 0), e.X)
	ry := axisAngleMat4(linalg.V3(0, 1, 0), e.Y)
	rz := axisAngleMat4(linalg.V3(0, 0, 1), e.Z)
	var tmp, out linalg.Mat4
	tmp.Mult(rx, ry)
	out.Mult(tmp, rz)
	return out
}

func axisAngleMat4(axis linalg.Vec3, angle float32) linalg.Mat4 {
	q := quatFromAxisAngle(axis, angle)
	return q.Mat4()
}

func quatFromAxisAngle(axis linalg.Vec3, angle float32) linalg.Quat {
	axis.Unit()
	half := float64(angle) / 2
	s := float32(math.Sin(half))
	w := float32(math.Cos(half))
	return linalg.Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: w}
}
