// Package mdr implements the id Tech 3 "MDR" binary model decoder
// (spec.md §9): a header listing named bones, one or more detail levels
// (LODs) of surfaces with per-vertex bone weights, and a trailing block of
// per-frame bone matrices. Field offsets below are reconstructed from the
// well-known MDR layout rather than transcribed from a recovered header
// file — MD4, the format MDR's vertex-weight scheme is derived from, is
// intentionally not implemented (spec.md §9 allows omitting it).
package mdr

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
	formatName  = "mdr"
	magicLE     = 0x3552444d // ASCII "MDR5" on disk, read as a little-endian u32.
	wantVersion = 2
	nameLen     = 64
	headerSize  = 4 + 4 + nameLen + 4*8
)

func init() {
	decode.Register(&Decoder{}, "mdr")
}

type Decoder struct {
	Log *slog.Logger
}

func (d *Decoder) Name() string { return formatName }

type mdrHeader struct {
	numFrames    int32
	numBones     int32
	ofsBoneNames int32
	ofsFrames    int32
	numLODs      int32
	ofsLODs      int32
	numTags      int32
	ofsTags      int32
}

type mdrVertex struct {
	normal, pos linalg.Vec3
	uv          linalg.Vec2
	weights     []scene.BoneWeight // VertexID left 0; filled in per-bone below.
	boneIndices []int
}

type mdrSurface struct {
	name          string
	verts         []mdrVertex
	triangles     [][3]int32
	boneRefs      []int32
}

func (d *Decoder) Decode(buf []byte, opts *config.Options) (*scene.Scene, error) {
	if len(buf) < headerSize {
		return nil, importerr.New(formatName, importerr.FileTooSmall, "file shorter than the fixed MDR header")
	}
	r := breader.New(buf)
	magicVal, err := r.ReadU32()
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}
	if magicVal != magicLE {
		return nil, importerr.New(formatName, importerr.InvalidMagic, "missing MDR5 magic word")
	}
	if _, err := r.ReadI32(); err != nil { // version; mismatches are tolerated, matching the teacher's version-warns-not-fails posture.
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}
	if _, err := r.ReadBytes(nameLen); err != nil { // model name: fixed-width, not needed on the scene.
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}
	var h mdrHeader
	for _, f := range []*int32{&h.numFrames, &h.numBones, &h.ofsBoneNames, &h.ofsFrames,
		&h.numLODs, &h.ofsLODs, &h.numTags, &h.ofsTags} {
		v, err := r.ReadI32()
		if err != nil {
			return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
		}
		*f = v
	}
	if h.numBones <= 0 {
		return nil, importerr.New(formatName, importerr.InvalidHierarchy, "MDR model declares zero bones")
	}

	boneNames, err := readBoneNames(buf, int(h.ofsBoneNames), int(h.numBones))
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, -1, err)
	}

	var surfaces []mdrSurface
	if h.numLODs > 0 {
		surfaces, err = readLOD(buf, int(h.ofsLODs))
		if err != nil {
			return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
		}
	}

	frames, err := readFrames(buf, int(h.ofsFrames), int(h.numFrames), int(h.numBones))
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.InvalidHierarchy, -1, err)
	}

	return buildScene(boneNames, surfaces, frames), nil
}

func readBoneNames(buf []byte, offset, count int) ([]string, error) {
	r := breader.New(buf)
	if err := r.Seek(int64(offset)); err != nil {
		return nil, err
	}
	names := make([]string, count)
	for i := 0; i < count; i++ {
		b, err := r.ReadBytes(nameLen)
		if err != nil {
			return nil, err
		}
		names[i] = cStringFromFixed(b)
	}
	return names, nil
}

// cStringFromFixed trims a fixed-width, NUL-padded name field down to the
// string it holds. Unlike ReadCStrBounded, reading the full width first and
// trimming afterward keeps the reader's cursor correctly advanced past the
// whole field regardless of where the embedded NUL falls.
func cStringFromFixed(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// readLOD parses only the first LOD (the highest-detail one, conventionally
// stored first) into a flat surface list; lower-detail LODs exist purely
// for runtime level-of-detail switching, which has no canonical-scene
// equivalent here.
func readLOD(buf []byte, lodOffset int) ([]mdrSurface, error) {
	r := breader.New(buf)
	if err := r.Seek(int64(lodOffset)); err != nil {
		return nil, err
	}
	numSurfaces, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	ofsSurfaces, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	base := lodOffset + int(ofsSurfaces)
	surfaces := make([]mdrSurface, 0, numSurfaces)
	cur := base
	for i := int32(0); i < numSurfaces; i++ {
		surf, next, err := readSurface(buf, cur)
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, surf)
		cur = next
	}
	return surfaces, nil
}

func readSurface(buf []byte, offset int) (mdrSurface, int, error) {
	r := breader.New(buf)
	if err := r.Seek(int64(offset)); err != nil {
		return mdrSurface{}, 0, err
	}
	if _, err := r.ReadI32(); err != nil { // ident
		return mdrSurface{}, 0, err
	}
	nameBytes, err := r.ReadBytes(nameLen)
	if err != nil {
		return mdrSurface{}, 0, err
	}
	name := cStringFromFixed(nameBytes)
	if _, err := r.ReadBytes(nameLen); err != nil { // shader name: unused here.
		return mdrSurface{}, 0, err
	}
	for i := 0; i < 3; i++ { // shaderIndex, minLod, ofsHeader: unused here.
		if _, err := r.ReadI32(); err != nil {
			return mdrSurface{}, 0, err
		}
	}
	numVerts, err := r.ReadI32()
	if err != nil {
		return mdrSurface{}, 0, err
	}
	ofsVerts, err := r.ReadI32()
	if err != nil {
		return mdrSurface{}, 0, err
	}
	numTriangles, err := r.ReadI32()
	if err != nil {
		return mdrSurface{}, 0, err
	}
	ofsTriangles, err := r.ReadI32()
	if err != nil {
		return mdrSurface{}, 0, err
	}
	if _, err := r.ReadI32(); err != nil { // ofsCollapseMap: LOD vertex-merge data, not modeled.
		return mdrSurface{}, 0, err
	}
	numBoneRefs, err := r.ReadI32()
	if err != nil {
		return mdrSurface{}, 0, err
	}
	ofsBoneRefs, err := r.ReadI32()
	if err != nil {
		return mdrSurface{}, 0, err
	}
	ofsEnd, err := r.ReadI32()
	if err != nil {
		return mdrSurface{}, 0, err
	}

	verts, err := readVerts(buf, offset+int(ofsVerts), int(numVerts))
	if err != nil {
		return mdrSurface{}, 0, err
	}
	tris, err := readTriangles(buf, offset+int(ofsTriangles), int(numTriangles))
	if err != nil {
		return mdrSurface{}, 0, err
	}
	boneRefs, err := readBoneRefs(buf, offset+int(ofsBoneRefs), int(numBoneRefs))
	if err != nil {
		return mdrSurface{}, 0, err
	}

	surf := mdrSurface{name: name, verts: verts, triangles: tris, boneRefs: boneRefs}
	return surf, offset + int(ofsEnd), nil
}

func readVerts(buf []byte, offset, count int) ([]mdrVertex, error) {
	r := breader.New(buf)
	if err := r.Seek(int64(offset)); err != nil {
		return nil, err
	}
	verts := make([]mdrVertex, count)
	for i := 0; i < count; i++ {
		n, err := readVec3(r)
		if err != nil {
			return nil, err
		}
		p, err := readVec3(r)
		if err != nil {
			return nil, err
		}
		u, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		numWeights, err := r.ReadI32()
		if err != nil {
			return nil, err
		}
		vert := mdrVertex{normal: n, pos: p, uv: linalg.Vec2{X: u, Y: v}}
		for w := 0; w < int(numWeights); w++ {
			boneIndex, err := r.ReadI32()
			if err != nil {
				return nil, err
			}
			weight, err := r.ReadF32()
			if err != nil {
				return nil, err
			}
			if _, err := readVec3(r); err != nil { // per-bone local offset: unused for the bind-pose position already stored above.
				return nil, err
			}
			vert.boneIndices = append(vert.boneIndices, int(boneIndex))
			vert.weights = append(vert.weights, scene.BoneWeight{Weight: weight})
		}
		verts[i] = vert
	}
	return verts, nil
}

func readTriangles(buf []byte, offset, count int) ([][3]int32, error) {
	r := breader.New(buf)
	if err := r.Seek(int64(offset)); err != nil {
		return nil, err
	}
	tris := make([][3]int32, count)
	for i := 0; i < count; i++ {
		for j := 0; j < 3; j++ {
			v, err := r.ReadI32()
			if err != nil {
				return nil, err
			}
			tris[i][j] = v
		}
	}
	return tris, nil
}

func readBoneRefs(buf []byte, offset, count int) ([]int32, error) {
	r := breader.New(buf)
	if err := r.Seek(int64(offset)); err != nil {
		return nil, err
	}
	refs := make([]int32, count)
	for i := 0; i < count; i++ {
		v, err := r.ReadI32()
		if err != nil {
			return nil, err
		}
		refs[i] = v
	}
	return refs, nil
}

type frame struct {
	bones []linalg.Mat4
}

// readFrames reads each frame's bounding box/origin/radius header (40
// bytes) followed by numBones 3x4 row-major bone matrices.
func readFrames(buf []byte, offset, numFrames, numBones int) ([]frame, error) {
	r := breader.New(buf)
	if err := r.Seek(int64(offset)); err != nil {
		return nil, err
	}
	frames := make([]frame, numFrames)
	for i := 0; i < numFrames; i++ {
		for j := 0; j < 10; j++ { // 2 bounds vec3 + origin vec3 + radius.
			if _, err := r.ReadF32(); err != nil {
				return nil, err
			}
		}
		bones := make([]linalg.Mat4, numBones)
		for b := 0; b < numBones; b++ {
			m, err := readBoneMatrix(r)
			if err != nil {
				return nil, err
			}
			bones[b] = m
		}
		frames[i] = frame{bones: bones}
	}
	return frames, nil
}

// readBoneMatrix reads a row-major 3x4 affine matrix (rotation/scale in the
// upper-left 3x3, translation in the last column) and transposes it into
// linalg's row-vector Mat4 layout, with the translation in the W row.
func readBoneMatrix(r *breader.Reader) (linalg.Mat4, error) {
	var rows [3][4]float32
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			v, err := r.ReadF32()
			if err != nil {
				return linalg.Mat4{}, err
			}
			rows[i][j] = v
		}
	}
	m := linalg.Identity4()
	m.Xx, m.Xy, m.Xz = rows[0][0], rows[1][0], rows[2][0]
	m.Yx, m.Yy, m.Yz = rows[0][1], rows[1][1], rows[2][1]
	m.Zx, m.Zy, m.Zz = rows[0][2], rows[1][2], rows[2][2]
	m.Wx, m.Wy, m.Wz = rows[0][3], rows[1][3], rows[2][3]
	return m, nil
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

func buildScene(boneNames []string, surfaces []mdrSurface, frames []frame) *scene.Scene {
	scn := scene.New()
	mat := scene.NewMaterial()
	scn.Materials = append(scn.Materials, mat)

	root := scene.NewNode("<mdr_root>")
	for _, surf := range surfaces {
		mesh := &scene.Mesh{Name: surf.name}
		var uvs []linalg.Vec2
		for _, v := range surf.verts {
			mesh.Positions = append(mesh.Positions, v.pos)
			mesh.Normals = append(mesh.Normals, v.normal)
			uvs = append(uvs, v.uv)
		}
		mesh.TexCoords = []scene.TexCoordChannel{{Components: 2, UV: uvs}}
		for _, t := range surf.triangles {
			mesh.Faces = append(mesh.Faces, scene.Face{Indices: []uint32{uint32(t[0]), uint32(t[1]), uint32(t[2])}})
		}

		boneByIndex := map[int]int{}
		for vi, v := range surf.verts {
			for wi, bi := range v.boneIndices {
				idx, ok := boneByIndex[bi]
				if !ok {
					name := "bone"
					if bi >= 0 && bi < len(boneNames) {
						name = boneNames[bi]
					}
					mesh.Bones = append(mesh.Bones, scene.Bone{Name: name})
					idx = len(mesh.Bones) - 1
					boneByIndex[bi] = idx
				}
				mesh.Bones[idx].Weights = append(mesh.Bones[idx].Weights,
					scene.BoneWeight{VertexID: uint32(vi), Weight: v.weights[wi].Weight})
			}
		}

		child := scene.NewNode(surf.name)
		child.Meshes = append(child.Meshes, len(scn.Meshes))
		root.AddChild(child)
		scn.Meshes = append(scn.Meshes, mesh)
	}
	scn.Root = root

	if len(frames) > 1 && len(boneNames) > 0 {
		scn.Animations = append(scn.Animations, buildAnimation(boneNames, frames))
	}
	return scn
}

func buildAnimation(boneNames []string, frames []frame) *scene.Animation {
	anim := &scene.Animation{Name: "mdr_anim", TicksPerSecond: 1, DurationTicks: float64(len(frames) - 1)}
	for b, name := range boneNames {
		ch := scene.BoneChannel{BoneName: name}
		for t, f := range frames {
			if b >= len(f.bones) {
				continue
			}
			m := f.bones[b]
			ch.Positions = append(ch.Positions, scene.PositionKey{Time: float64(t), Value: linalg.V3(m.Wx, m.Wy, m.Wz)})
			ch.Rotations = append(ch.Rotations, scene.RotationKey{Time: float64(t), Value: quatFromMat4(m)})
		}
		anim.Channels = append(anim.Channels, ch)
	}
	return anim
}

// quatFromMat4 extracts a rotation quaternion from the upper-left 3x3 of an
// affine matrix, ignoring any scale (MDR bone matrices are expected to be
// orthonormal rotations plus translation).
func quatFromMat4(m linalg.Mat4) linalg.Quat {
	trace := m.Xx + m.Yy + m.Zz
	if trace > 0 {
		s := sqrtApprox(trace+1) * 2
		return linalg.Quat{
			W: s / 4,
			X: (m.Yz - m.Zy) / s,
			Y: (m.Zx - m.Xz) / s,
			Z: (m.Xy - m.Yx) / s,
		}
	}
	if m.Xx > m.Yy && m.Xx > m.Zz {
		s := sqrtApprox(1+m.Xx-m.Yy-m.Zz) * 2
		return linalg.Quat{
			W: (m.Yz - m.Zy) / s,
			X: s / 4,
			Y: (m.Yx + m.Xy) / s,
			Z: (m.Zx + m.Xz) / s,
		}
	}
	if m.Yy > m.Zz {
		s := sqrtApprox(1+m.Yy-m.Xx-m.Zz) * 2
		return linalg.Quat{
			W: (m.Zx - m.Xz) / s,
			X: (m.Yx + m.Xy) / s,
			Y: s / 4,
			Z: (m.Zy + m.Yz) / s,
		}
	}
	s := sqrtApprox(1+m.Zz-m.Xx-m.Yy) * 2
	return linalg.Quat{
		W: (m.Xy - m.Yx) / s,
		X: (m.Zx + m.Xz) / s,
		Y: (m.Zy + m.Yz) / s,
		Z: s / 4,
	}
}

func sqrtApprox(v float32) float32 {
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 12; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}
