package lwo

import (
	"github.com/galvanized-assets/sceneimport/linalg"
	"github.com/galvanized-assets/sceneimport/scene"
)

// polygon is one POLS entry: vertex indices (in file winding order) plus
// the tag index assigned to it via PTAG SURF (spec.md §4.4), or -1 if
// unassigned.
type polygon struct {
	indices   []uint32
	tagIndex  int
	smoothing uint32 // PTAG SMGP association, LWO2 only.
}

// layer is one LAYR section: its own point/polygon pools plus the LAYR
// number of its parent layer (-1 for a root layer).
type layer struct {
	name     string
	number   uint16
	pivot    linalg.Vec3
	parent   int16
	points    []linalg.Vec3
	polygons  []polygon
	uvmaps    map[string][]uvEntry    // VMAP/VMAD TXUV channels, keyed by channel name.
	colormaps map[string][]colorEntry // VMAP/VMAD RGB(A) channels, keyed by channel name.
}

// uvEntry is one VMAP/VMAD mapping entry: a point (and, for VMAD, a
// polygon) index plus its UV value.
type uvEntry struct {
	pointIndex int
	polyIndex  int // -1 for VMAP (per-point); set for VMAD (per-polygon-vertex "discontinuous" maps).
	uv         linalg.Vec2
}

// colorEntry is one VMAP/VMAD RGB(A) mapping entry, mirroring uvEntry.
type colorEntry struct {
	pointIndex int
	polyIndex  int // -1 for VMAP; set for VMAD.
	color      scene.Color
}

// textureBlock is one BLOK: the channel it drives (e.g. "COLR", "DIFF",
// "BUMP"), its ordinal sort key, and — for image maps — the resolved clip
// filename.
type textureBlock struct {
	ordinal    string
	channel    string
	enabled    bool
	isImage    bool // false for PROC/GRAD blocks, which carry no clip (spec.md §4.4: "procedural/gradient blocks are recorded but not textured").
	imageIndex int  // CLIP table index, resolved to clipFile once the document's clip table is complete.
	clipFile   string
}

// surface is one SURF definition.
type surface struct {
	name        string
	source      string // LWO2 parent surface name, empty if none.
	diffuse     linalg.Vec3
	diffusePct  float32
	specularPct float32
	transparency float32
	glossiness  float32
	refraction  float32
	bumpStrength float32
	sidedness   uint16
	blocks      []textureBlock
}

// clip is a top-level CLIP definition: numeric index to still-image filename.
type clip struct {
	index int
	file  string
}

type document struct {
	isLWO2  bool
	layers  []*layer
	tags    []string // SRFS: ordered tag names, indexed by PTAG SURF's tag index.
	surfs   []*surface
	clips   []clip
}

func (d *document) clipFile(index int) string {
	for _, c := range d.clips {
		if c.index == index {
			return c.file
		}
	}
	return ""
}
