package scene

import "github.com/galvanized-assets/sceneimport/linalg"

// MaxTexCoordChannels bounds the number of UV channels a mesh may carry
// (spec.md §4.8 "the maximum UV channel count (typically 4)").
const MaxTexCoordChannels = 4

// MaxColorChannels bounds the number of per-vertex color channels.
const MaxColorChannels = 2

// TexCoordChannel holds one UV channel's worth of per-vertex coordinates.
// Components is how many of X/Y/Z are meaningful (1-3, spec.md §3).
type TexCoordChannel struct {
	Components int
	UV         []linalg.Vec2
	W          []float32 // meaningful only when Components == 3.
}

// ColorChannel holds one per-vertex RGBA color channel.
type ColorChannel struct {
	Colors []Color
}

// Color is an RGBA color in [0,1].
type Color struct {
	R, G, B, A float32
}

// Face is a small ordered list of vertex indices: 3 for a triangle, more for
// an arbitrary polygon.
type Face struct {
	Indices []uint32
}

// BoneWeight pairs a vertex id with the influence weight a Bone has on it.
type BoneWeight struct {
	VertexID uint32
	Weight   float32
}

// Bone holds a named skeletal influence: its inverse-bind-pose transform and
// the vertices it affects.
type Bone struct {
	Name         string
	OffsetMatrix linalg.Mat4 // inverse-bind-pose transform.
	Weights      []BoneWeight
}

// Mesh is the canonical triangle/polygon mesh (spec.md §3). Positions is
// required and defines the vertex count; every other per-vertex array is
// independently optional but, when present, must have the same length as
// Positions.
type Mesh struct {
	Name           string
	MaterialIndex  int
	Positions      []linalg.Vec3
	Normals        []linalg.Vec3 // len 0 or len(Positions).
	Tangents       []linalg.Vec3 // len 0 or len(Positions).
	Bitangents     []linalg.Vec3 // len 0 or len(Positions).
	TexCoords      []TexCoordChannel
	Colors         []ColorChannel
	Faces          []Face
	Bones          []Bone

	// SmoothingGroups carries a per-face bitmask when the source format
	// records one (3DS SMOOLIST, LWO PTAG smoothing groups). Post-process
	// normal generation consumes this; it is empty for formats (e.g. MD2)
	// that never had smoothing groups to begin with.
	SmoothingGroups []uint32
}

// VertexCount returns len(Positions), the mesh's vertex count.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// HasNormals reports whether the mesh currently carries per-vertex normals.
func (m *Mesh) HasNormals() bool { return len(m.Normals) > 0 }

// TexCoordChannelCount returns how many UV channels are populated.
func (m *Mesh) TexCoordChannelCount() int { return len(m.TexCoords) }

// ColorChannelCount returns how many color channels are populated.
func (m *Mesh) ColorChannelCount() int { return len(m.Colors) }
