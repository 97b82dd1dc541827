// Package nff implements the classic Neutral File Format text decoder
// (spec.md §6 text-token formats). Camera/light/background directives are
// recognized and skipped; `f` sets the current material for subsequent
// primitives; `p`/`pp` polygons are read directly; `s` (sphere), `c`
// (cone/cylinder), and `hex` (hexahedron) are tessellated via
// internal/../standardshapes-style helpers rather than imported as
// placeholder geometry, per the "Supplemented features" scope.
package nff

import (
	"log/slog"
	"strconv"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/decode"
	"github.com/galvanized-assets/sceneimport/decode/textscan"
	"github.com/galvanized-assets/sceneimport/importerr"
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

const formatName = "nff"
const tessellationSegments = 16

func init() {
	decode.Register(&Decoder{}, "nff")
}

type Decoder struct {
	Log *slog.Logger
}

func (d *Decoder) Name() string { return formatName }

type nffMaterial struct {
	color      linalg.Vec3
	diffuse    float32
	specular   float32
	shine      float32
	transmit   float32
	refractive float32
}

type namedMesh struct {
	name string
	tris []tessTriangle
	mat  int
}

func (d *Decoder) Decode(buf []byte, opts *config.Options) (*scene.Scene, error) {
	text, err := textscan.Decode(buf)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}
	sc := textscan.New(text)

	materials := []nffMaterial{{color: linalg.V3(0.6, 0.6, 0.6), diffuse: 1}}
	currentMat := 0
	var meshes []namedMesh
	counts := map[string]int{}

	nameFor := func(prefix string) string {
		n := counts[prefix]
		counts[prefix] = n + 1
		return prefix + "_" + strconv.Itoa(n)
	}

	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		switch tok {
		case "v":
			skipCameraBlock(sc)
		case "b":
			sc.NextFloat()
			sc.NextFloat()
			sc.NextFloat()
		case "l":
			drainLineNumbers(sc, 6) // position + optional color triple.
		case "f":
			m, err := parseMaterial(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
			currentMat = len(materials)
			materials = append(materials, m)
		case "p", "pp":
			tris, err := parsePolygon(sc, tok == "pp")
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
			meshes = append(meshes, namedMesh{name: nameFor("polygon"), tris: tris, mat: currentMat})
		case "s":
			center, err := readVec3(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
			radius, err := sc.NextFloat()
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
			tris := icosphere(center, radius, 2)
			meshes = append(meshes, namedMesh{name: nameFor("sphere"), tris: tris, mat: currentMat})
		case "c":
			base, err := readVec3(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
			baseR, _ := sc.NextFloat()
			apex, err := readVec3(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
			apexR, _ := sc.NextFloat()
			tris := cylinderCone(base, apex, baseR, apexR, tessellationSegments)
			meshes = append(meshes, namedMesh{name: nameFor("cone"), tris: tris, mat: currentMat})
		case "hex":
			center, err := readVec3(sc)
			if err != nil {
				return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
			}
			radius, _ := sc.NextFloat()
			tris := box(center, linalg.V3(radius, radius, radius))
			meshes = append(meshes, namedMesh{name: nameFor("hexahedron"), tris: tris, mat: currentMat})
		default:
			// Unrecognized directive (from/at/up/angle/hither/yon/resolution,
			// or a stray comment): ignored, matching spec.md's general
			// "unknown tokens are skipped" decoder robustness requirement.
		}
	}

	scn := scene.New()
	for _, m := range materials {
		sm := scene.NewMaterial()
		sm.SetDiffuseColor(m.color.X*m.diffuse, m.color.Y*m.diffuse, m.color.Z*m.diffuse)
		scn.Materials = append(scn.Materials, sm)
	}
	root := scene.NewNode("<nff_root>")
	for _, nm := range meshes {
		mesh := &scene.Mesh{Name: nm.name, MaterialIndex: nm.mat}
		for _, tr := range nm.tris {
			var face scene.Face
			for _, p := range tr {
				mesh.Positions = append(mesh.Positions, p)
				face.Indices = append(face.Indices, uint32(len(mesh.Positions)-1))
			}
			mesh.Faces = append(mesh.Faces, face)
		}
		child := scene.NewNode(nm.name)
		child.Meshes = append(child.Meshes, len(scn.Meshes))
		root.AddChild(child)
		scn.Meshes = append(scn.Meshes, mesh)
	}
	scn.Root = root
	return scn, nil
}

func skipCameraBlock(sc *textscan.Scanner) {
	// "v" is followed by from/at/up/angle/hither/resolution sub-lines; each
	// keyword's numeric argument count is fixed, so just drain known
	// keywords until one we don't recognize appears.
	for {
		tok, ok := sc.Peek()
		if !ok {
			return
		}
		switch tok {
		case "from", "at", "up":
			sc.Next()
			drainLineNumbers(sc, 3)
		case "angle", "hither":
			sc.Next()
			sc.NextFloat()
		case "resolution":
			sc.Next()
			sc.NextInt()
			sc.NextInt()
		default:
			return
		}
	}
}

func drainLineNumbers(sc *textscan.Scanner, max int) {
	for i := 0; i < max; i++ {
		if _, err := sc.NextFloat(); err != nil {
			return
		}
	}
}

func parseMaterial(sc *textscan.Scanner) (nffMaterial, error) {
	color, err := readVec3(sc)
	if err != nil {
		return nffMaterial{}, err
	}
	m := nffMaterial{color: color}
	m.diffuse, _ = sc.NextFloat()
	m.specular, _ = sc.NextFloat()
	m.shine, _ = sc.NextFloat()
	m.transmit, _ = sc.NextFloat()
	m.refractive, _ = sc.NextFloat()
	return m, nil
}

func parsePolygon(sc *textscan.Scanner, hasNormals bool) ([]tessTriangle, error) {
	n, err := sc.NextInt()
	if err != nil {
		return nil, err
	}
	verts := make([]linalg.Vec3, n)
	for i := 0; i < n; i++ {
		v, err := readVec3(sc)
		if err != nil {
			return nil, err
		}
		verts[i] = v
		if hasNormals {
			readVec3(sc) // per-vertex normal: not needed once normals are regenerated downstream.
		}
	}
	var tris []tessTriangle
	for i := 1; i+1 < len(verts); i++ {
		tris = append(tris, tessTriangle{verts[0], verts[i], verts[i+1]})
	}
	return tris, nil
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

