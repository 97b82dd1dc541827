// Package ply implements the ASCII Stanford PLY text decoder (spec.md §6
// text-token formats): a header of `element`/`property` declarations ending
// in `end_header`, followed by one whitespace-delimited data line per
// element instance, in declaration order.
package ply

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

const formatName = "ply"

func init() {
	decode.Register(&Decoder{}, "ply")
}

type Decoder struct {
	Log *slog.Logger
}

func (d *Decoder) Name() string { return formatName }

type property struct {
	name   string
	isList bool
}

type element struct {
	name       string
	count      int
	properties []property
}

func (d *Decoder) Decode(buf []byte, opts *config.Options) (*scene.Scene, error) {
	text, err := textscan.Decode(buf)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}
	sc := textscan.New(text)

	magic, ok := sc.Next()
	if !ok || strings.ToLower(magic) != "ply" {
		return nil, importerr.Wrap(formatName, importerr.InvalidMagic, -1,
			fmt.Errorf("ply: missing 'ply' magic line"))
	}

	var elements []element
	var format string
	for {
		tok, ok := sc.Next()
		if !ok {
			return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1,
				fmt.Errorf("ply: missing end_header"))
		}
		switch strings.ToLower(tok) {
		case "format":
			format, _ = sc.Next()
			sc.SkipLine()
		case "comment", "obj_info":
			sc.SkipLine()
		case "element":
			name, _ := sc.Next()
			count, _ := sc.NextInt()
			elements = append(elements, element{name: strings.ToLower(name), count: count})
		case "property":
			if len(elements) == 0 {
				sc.SkipLine()
				continue
			}
			kind, _ := sc.Next()
			cur := &elements[len(elements)-1]
			if strings.EqualFold(kind, "list") {
				sc.Next() // count type (e.g. uchar).
				sc.Next() // value type (e.g. int).
				name, _ := sc.Next()
				cur.properties = append(cur.properties, property{name: strings.ToLower(name), isList: true})
			} else {
				name, _ := sc.Next()
				cur.properties = append(cur.properties, property{name: strings.ToLower(name)})
			}
		case "end_header":
			goto headerDone
		default:
			sc.SkipLine()
		}
	}
headerDone:

	if strings.Contains(strings.ToLower(format), "binary") {
		return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1,
			fmt.Errorf("ply: binary encodings are not supported, only ascii"))
	}

	var positions []linalg.Vec3
	var normals []linalg.Vec3
	var uvs []linalg.Vec2
	var colors []scene.Color
	var faceIndices [][]uint32
	haveNormals, haveUV, haveColor := false, false, false

	for _, el := range elements {
		switch el.name {
		case "vertex":
			for i := 0; i < el.count; i++ {
				v, n, uv, c, hasN, hasUV, hasC, err := parseVertexLine(sc, el.properties)
				if err != nil {
					return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, sc.Line(), err)
				}
				positions = append(positions, v)
				normals = append(normals, n)
				uvs = append(uvs, uv)
				colors = append(colors, c)
				haveNormals = haveNormals || hasN
				haveUV = haveUV || hasUV
				haveColor = haveColor || hasC
			}
		case "face":
			for i := 0; i < el.count; i++ {
				idx, err := parseFaceLine(sc, el.properties)
				if err != nil {
					return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, sc.Line(), err)
				}
				faceIndices = append(faceIndices, idx)
			}
		default:
			// Unknown element semantics (edge, material, etc.): properties
			// are still declared in the header, so read past each instance
			// property-by-property to keep later elements' line alignment.
			for i := 0; i < el.count; i++ {
				if err := skipInstance(sc, el.properties); err != nil {
					return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, sc.Line(), err)
				}
			}
		}
	}

	mesh := &scene.Mesh{Name: "ply_mesh", Positions: positions}
	if haveNormals {
		mesh.Normals = normals
	}
	if haveUV {
		mesh.TexCoords = []scene.TexCoordChannel{{Components: 2, UV: uvs}}
	}
	if haveColor {
		mesh.Colors = []scene.ColorChannel{{Colors: colors}}
	}
	for _, idx := range faceIndices {
		mesh.Faces = append(mesh.Faces, scene.Face{Indices: idx})
	}

	scn := scene.New()
	scn.Meshes = append(scn.Meshes, mesh)
	root := scene.NewNode("<ply_root>")
	child := scene.NewNode("ply_mesh")
	child.Meshes = append(child.Meshes, 0)
	root.AddChild(child)
	scn.Root = root
	return scn, nil
}

// skipInstance reads past one element instance line whose semantic isn't
// modeled here, consuming exactly as many tokens as its declared properties
// require so the following element stays line-aligned.
func skipInstance(sc *textscan.Scanner, props []property) error {
	for _, p := range props {
		if !p.isList {
			if _, err := sc.NextFloat(); err != nil {
				return err
			}
			continue
		}
		n, err := sc.NextInt()
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			sc.NextFloat()
		}
	}
	return nil
}

func parseVertexLine(sc *textscan.Scanner, props []property) (pos, normal linalg.Vec3, uv linalg.Vec2, col scene.Color, hasNormal, hasUV, hasColor bool, err error) {
	col = scene.Color{A: 1}
	for _, p := range props {
		v, ferr := sc.NextFloat()
		if ferr != nil {
			return pos, normal, uv, col, hasNormal, hasUV, hasColor, ferr
		}
		switch p.name {
		case "x":
			pos.X = v
		case "y":
			pos.Y = v
		case "z":
			pos.Z = v
		case "nx":
			normal.X = v
			hasNormal = true
		case "ny":
			normal.Y = v
			hasNormal = true
		case "nz":
			normal.Z = v
			hasNormal = true
		case "s", "u":
			uv.X = v
			hasUV = true
		case "t", "v":
			uv.Y = v
			hasUV = true
		case "red", "r":
			col.R = v / 255
			hasColor = true
		case "green", "g":
			col.G = v / 255
			hasColor = true
		case "blue", "b":
			col.B = v / 255
			hasColor = true
		case "alpha", "a":
			col.A = v / 255
			hasColor = true
		}
	}
	return pos, normal, uv, col, hasNormal, hasUV, hasColor, nil
}

func parseFaceLine(sc *textscan.Scanner, props []property) ([]uint32, error) {
	var indices []uint32
	for _, p := range props {
		if !p.isList {
			sc.NextFloat() // scalar face property (e.g. a per-face material id): not modeled.
			continue
		}
		if p.name != "vertex_indices" && p.name != "vertex_index" {
			n, err := sc.NextInt()
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				sc.NextFloat()
			}
			continue
		}
		n, err := sc.NextInt()
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			v, err := sc.NextInt()
			if err != nil {
				return nil, err
			}
			indices = append(indices, uint32(v))
		}
	}
	return indices, nil
}
