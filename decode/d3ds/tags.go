package d3ds

import "github.com/galvanized-assets/sceneimport/internal/iff"

// Chunk tags, per spec.md §4.3's explicit tag-hierarchy listing.
const (
	main3DS tagT = 0x4D4D // root chunk
	edit3DS tagT = 0x3D3D // editor data (EDIT)

	editMasterScale tagT = 0x0100
	editAmbient     tagT = 0x2100
	editObject      tagT = 0x4000 // OBJBLOCK, payload starts with a cstr name
	editMaterial    tagT = 0xAFFF // MAT_MATERIAL
	editKeyframer   tagT = 0xB000 // KFDATA

	objTrimesh tagT = 0x4100 // TRIMESH

	triVertexList  tagT = 0x4110 // VERTLIST
	triFaceList    tagT = 0x4120 // FACELIST
	triFaceMat     tagT = 0x4130 // FACEMAT, within FACELIST
	triSmoothList  tagT = 0x4150 // SMOOLIST, within FACELIST
	triMappingCoor tagT = 0x4140 // MAPLIST
	triLocalMatrix tagT = 0x4160 // TRMATRIX

	matName         tagT = 0xA000
	matAmbient      tagT = 0xA010
	matDiffuse      tagT = 0xA020
	matSpecular     tagT = 0xA030
	matShininess    tagT = 0xA040
	matShin2Pct     tagT = 0xA041
	matTransparency tagT = 0xA050
	matSelfIllum    tagT = 0xA080
	matTwoSided     tagT = 0xA081
	matWire         tagT = 0xA085
	matShading      tagT = 0xA100
	matTexMap       tagT = 0xA200 // TEXTURE
	matSpecMap      tagT = 0xA204
	matOpacMap      tagT = 0xA210
	matBumpMap      tagT = 0xA230
	matShinMap      tagT = 0xA33C
	matSelfIMap     tagT = 0xA33D

	mapFileName tagT = 0xA300 // MAPFILE, within a *MAP chunk
	mapUScale   tagT = 0xA354
	mapVScale   tagT = 0xA356
	mapUOffset  tagT = 0xA358
	mapVOffset  tagT = 0xA35A
	mapAngle    tagT = 0xA35C

	kfHeader        tagT = 0xB00A
	kfObjectNode    tagT = 0xB002 // TRACKINFO
	kfNodeID        tagT = 0xB030
	kfNodeHeader    tagT = 0xB010 // TRACKOBJNAME: name, flags1, flags2, hierarchy
	kfPivot         tagT = 0xB013
	kfPosTrack      tagT = 0xB020
	kfRotTrack      tagT = 0xB021
	kfScaleTrack    tagT = 0xB022

	// Color sub-chunk forms (spec.md §4.3: "four forms: linear-float RGB,
	// gamma-float RGB, linear-byte RGB, and percent").
	colorLinearFloat tagT = 0x0010
	colorLinearByte  tagT = 0x0011
	colorGammaFloat  tagT = 0x0012
	colorGammaByte   tagT = 0x0013
	colorPercent     tagT = 0x0030 // a percentage broadcast to grey RGB

	// Percentage sub-chunk forms (spec.md §4.3: "float or u16-scaled-to-0xFFFF forms").
	percentInt   tagT = 0x0030
	percentFloat tagT = 0x0031
)

// tagT is this decoder's local alias for iff.Tag, kept distinct so the tag
// constants above read naturally without a package-qualified type name on
// every line.
type tagT = iff.Tag

// chunkOpts are the iff.Options shared by every ForEachChunk call in this
// decoder: 2-byte tags, 4-byte little-endian lengths that count the header
// itself (spec.md §6: "size covers the header plus payload plus nested chunks").
func chunkOpts(onOverflow iff.OnOverflow) iff.Options {
	return iff.Options{
		TagWidth:         iff.Tag2,
		LengthWidth:      iff.Length32LE,
		HeaderCountsSelf: true,
		OnOverflow:       onOverflow,
	}
}
