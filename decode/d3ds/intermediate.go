// Package d3ds implements the 3DS binary chunk decoder, spec.md §4.3.
package d3ds

import (
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/propbag"
)

// objBlock is the intermediate, per-OBJBLOCK mesh the TRIMESH chunks build;
// convert.go splits each one per material into canonical scene.Mesh values
// (spec.md §4.3: "each internal mesh is split per material").
type objBlock struct {
	name           string
	vertices       []linalg.Vec3
	uvs            []linalg.Vec2 // parallel to vertices; nil if no MAPLIST.
	faces          [][3]uint16
	smoothing      []uint32 // parallel to faces; 0 if no SMOOLIST.
	faceMaterial   []string // parallel to faces; "" is the 0xCDCDCDCD sentinel.
	localMatrix    linalg.Mat4
	hasLocalMatrix bool
}

// textureSlot is one TEXTURE/BUMPMAP/OPACMAP/... sub-chunk.
type textureSlot struct {
	kind                                   propbag.TextureKind
	file                                   string
	uScale, vScale, uOffset, vOffset, angle float32
}

// material is the intermediate material record built from a MAT_MATERIAL chunk.
type material struct {
	name                                string
	diffuse, specular, ambient, emissive linalg.Vec3
	opacity                              float32 // 1 - transparency; defaults to 1.
	shininess, shinPercent               float32
	twoSided, wireframe                  bool
	shadingMode                          uint16
	textures                             []textureSlot
}

// kfNode is one TRACKINFO (OBJECT_NODE_TAG) entry from the KEYFRAMER chunk.
type kfNode struct {
	name      string
	hierarchy int16
	pivot     linalg.Vec3
	hasPos    bool
	pos       linalg.Vec3
	hasRot    bool
	rot       linalg.Quat
	hasScale  bool
	scale     linalg.Vec3
}

// document is everything the top-level MAIN3DS/EDIT3DS scan collects before
// convert.go builds the canonical scene.
type document struct {
	masterScale float32 // 0 until set; coerced to 1 in convert.go if still 0.
	objects     []*objBlock
	materials   []*material
	nodes       []*kfNode
}
