// Package md2 implements the Quake 2 MD2 binary model decoder, spec.md §6:
// a fixed 68-byte header, per-frame compressed u8x3 positions resolved
// through a scale+translate pair, and normals looked up in a 162-entry
// unit-sphere table. Only the first frame is imported — spec.md's scope
// covers static-pose reconstruction for this format, not frame animation.
package md2

import (
	"log/slog"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/decode"
	"github.com/galvanized-assets/sceneimport/importerr"
	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

const (
	formatName  = "md2"
	magic       = 0x32504449 // "IDP2" read little-endian as a u32.
	wantVersion = 8
	headerSize  = 68
)

func init() {
	decode.Register(&Decoder{}, "md2")
}

type Decoder struct {
	Log *slog.Logger
}

func (d *Decoder) Name() string { return formatName }

type header struct {
	skinWidth, skinHeight int32
	frameSize             int32
	numSkins              int32
	numVertices           int32
	numTexCoords          int32
	numTriangles          int32
	numGLCommands         int32
	numFrames             int32
	offsetSkins           int32
	offsetTexCoords       int32
	offsetTriangles       int32
	offsetFrames          int32
	offsetGLCommands      int32
	offsetEnd             int32
}

func (d *Decoder) Decode(buf []byte, opts *config.Options) (*scene.Scene, error) {
	if len(buf) < headerSize {
		return nil, importerr.New(formatName, importerr.FileTooSmall, "file shorter than the fixed MD2 header")
	}
	r := breader.New(buf)
	magicVal, err := r.ReadU32()
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}
	if magicVal != magic {
		return nil, importerr.At(formatName, importerr.InvalidMagic, 0, "missing IDP2 magic")
	}
	version, err := r.ReadI32()
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}
	if version != wantVersion {
		return nil, importerr.At(formatName, importerr.UnsupportedVersion, 4, "expected MD2 version 8")
	}

	h, err := readHeader(r)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}
	if h.numFrames < 1 || int(h.offsetFrames)+int(h.frameSize) > len(buf) {
		return nil, importerr.At(formatName, importerr.InvalidGeometry, int64(h.offsetFrames), "frame data out of range")
	}

	texCoords, err := readTexCoords(breader.New(buf), int(h.offsetTexCoords), int(h.numTexCoords))
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}
	tris, err := readTriangles(breader.New(buf), int(h.offsetTriangles), int(h.numTriangles))
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}
	positions, normals, frameName, err := readFirstFrame(breader.New(buf), int(h.offsetFrames), int(h.numVertices))
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}

	sc := scene.New()
	mesh := buildMesh(h, positions, normals, texCoords, tris, int(h.skinWidth), int(h.skinHeight))
	mesh.Name = frameName
	sc.Meshes = append(sc.Meshes, mesh)
	mat := scene.NewMaterial()
	mat.SetName("md2_material")
	sc.Materials = append(sc.Materials, mat)
	mesh.MaterialIndex = 0

	root := scene.NewNode(frameName)
	root.Meshes = append(root.Meshes, 0)
	sc.Root = root
	return sc, nil
}

func readHeader(r *breader.Reader) (header, error) {
	var vals [13]int32
	for i := range vals {
		v, err := r.ReadI32()
		if err != nil {
			return header{}, err
		}
		vals[i] = v
	}
	return header{
		skinWidth: vals[0], skinHeight: vals[1], frameSize: vals[2],
		numSkins: vals[3], numVertices: vals[4], numTexCoords: vals[5],
		numTriangles: vals[6], numGLCommands: vals[7], numFrames: vals[8],
		offsetSkins: vals[9], offsetTexCoords: vals[10], offsetTriangles: vals[11],
		offsetFrames: vals[12],
	}, nil
}

type texCoord struct{ s, t int16 }

func readTexCoords(r *breader.Reader, offset, count int) ([]texCoord, error) {
	if err := r.Seek(int64(offset)); err != nil {
		return nil, err
	}
	out := make([]texCoord, count)
	for i := range out {
		s, err := r.ReadI16()
		if err != nil {
			return nil, err
		}
		t, err := r.ReadI16()
		if err != nil {
			return nil, err
		}
		out[i] = texCoord{s, t}
	}
	return out, nil
}

type triangle struct {
	vertexIndices [3]uint16
	texIndices    [3]uint16
}

func readTriangles(r *breader.Reader, offset, count int) ([]triangle, error) {
	if err := r.Seek(int64(offset)); err != nil {
		return nil, err
	}
	out := make([]triangle, count)
	for i := range out {
		var tri triangle
		for j := 0; j < 3; j++ {
			v, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			tri.vertexIndices[j] = v
		}
		for j := 0; j < 3; j++ {
			v, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			tri.texIndices[j] = v
		}
		out[i] = tri
	}
	return out, nil
}

// readFirstFrame decodes only frame 0: a scale+translate vec3 pair, a
// 16-byte frame name, then numVertices × {u8x3 compressed pos, u8 normal
// index}.
func readFirstFrame(r *breader.Reader, offset, numVertices int) ([]linalg.Vec3, []linalg.Vec3, string, error) {
	if err := r.Seek(int64(offset)); err != nil {
		return nil, nil, "", err
	}
	scale, err := readVec3(r)
	if err != nil {
		return nil, nil, "", err
	}
	translate, err := readVec3(r)
	if err != nil {
		return nil, nil, "", err
	}
	nameBytes, err := r.ReadBytes(16)
	if err != nil {
		return nil, nil, "", err
	}
	name := cStringFromFixed(nameBytes)

	positions := make([]linalg.Vec3, numVertices)
	normals := make([]linalg.Vec3, numVertices)
	for i := 0; i < numVertices; i++ {
		b, err := r.ReadBytes(3)
		if err != nil {
			return nil, nil, "", err
		}
		normalIdx, err := r.ReadU8()
		if err != nil {
			return nil, nil, "", err
		}
		positions[i] = linalg.V3(
			float32(b[0])*scale.X+translate.X,
			float32(b[1])*scale.Y+translate.Y,
			float32(b[2])*scale.Z+translate.Z,
		)
		normals[i] = normalLUT[int(normalIdx)%len(normalLUT)]
	}
	return positions, normals, name, nil
}

func readVec3(r *breader.Reader) (linalg.Vec3, error) {
	x, err := r.ReadF32()
	if err != nil {
		return linalg.Vec3{}, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return linalg.Vec3{}, err
	}
	z, err := r.ReadF32()
	if err != nil {
		return linalg.Vec3{}, err
	}
	return linalg.V3(x, y, z), nil
}

func cStringFromFixed(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// buildMesh expands MD2's shared-vertex/separate-texcoord-index scheme into
// the canonical verbose layout: every corner of every triangle becomes its
// own output vertex.
func buildMesh(h header, positions, normals []linalg.Vec3, texCoords []texCoord, tris []triangle, skinW, skinH int) *scene.Mesh {
	mesh := &scene.Mesh{}
	haveUV := len(texCoords) > 0
	var uvs []linalg.Vec2

	resolve := func(vi, ti uint16) uint32 {
		idx := uint32(len(mesh.Positions))
		mesh.Positions = append(mesh.Positions, positions[vi])
		mesh.Normals = append(mesh.Normals, normals[vi])
		if haveUV && int(ti) < len(texCoords) {
			tc := texCoords[ti]
			u := float32(tc.s) / float32(maxInt(skinW, 1))
			v := float32(tc.t) / float32(maxInt(skinH, 1))
			uvs = append(uvs, linalg.Vec2{X: u, Y: v})
		}
		return idx
	}
	for _, tri := range tris {
		var face scene.Face
		for j := 0; j < 3; j++ {
			face.Indices = append(face.Indices, resolve(tri.vertexIndices[j], tri.texIndices[j]))
		}
		mesh.Faces = append(mesh.Faces, face)
	}
	if haveUV {
		mesh.TexCoords = []scene.TexCoordChannel{{Components: 2, UV: uvs}}
	}
	return mesh
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
