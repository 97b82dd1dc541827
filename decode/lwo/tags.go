// Package lwo implements the LWO/LWO2 IFF decoder, spec.md §4.4.
package lwo

import "github.com/galvanized-assets/sceneimport/internal/iff"

type tagT = iff.Tag

// Tag is the exported spelling of tagT, used by chunk handler signatures
// elsewhere in this package.
type Tag = tagT

// fourCC packs a 4-character ASCII tag into a big-endian uint32, matching
// how ReadHeader(Tag4, ...) already reads one off the wire.
func fourCC(s string) tagT {
	return tagT(uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3]))
}

var (
	tagFORM = fourCC("FORM")
	tagLWOB = fourCC("LWOB")
	tagLWO2 = fourCC("LWO2")

	tagLAYR = fourCC("LAYR")
	tagPNTS = fourCC("PNTS")
	tagPOLS = fourCC("POLS")
	tagPTAG = fourCC("PTAG")
	tagSRFS = fourCC("SRFS")
	tagSURF = fourCC("SURF")
	tagVMAP = fourCC("VMAP")
	tagVMAD = fourCC("VMAD")
	tagCLIP = fourCC("CLIP")
	tagSTIL = fourCC("STIL")

	tagFACE = fourCC("FACE") // LWO2 POLS sub-type.

	// PTAG association kinds.
	tagSURFtag = fourCC("SURF")
	tagSMGtag  = fourCC("SMGP") // smoothing-group association (LWOB has none; LWO2 uses PTAG SMGP).

	// SURF sub-chunks.
	surfColor  = fourCC("COLR")
	surfDiff   = fourCC("DIFF")
	surfSpec   = fourCC("SPEC")
	surfTrans  = fourCC("TRAN")
	surfGlos   = fourCC("GLOS")
	surfRefr   = fourCC("RFOP")
	surfBump   = fourCC("BUMP")
	surfSide   = fourCC("SIDE")
	surfBlok   = fourCC("BLOK")

	// BLOK sub-chunks.
	blokOrdinal = fourCC("ORDR") // ordinal-string header, spec.md §4.4.
	blokChannel = fourCC("CHAN")
	blokEnable  = fourCC("ENAB")
	blokBlend   = fourCC("BLNT")
	blokStrength = fourCC("STRN")
	blokIMAP    = fourCC("IMAP")
	blokPROC    = fourCC("PROC")
	blokGRAD    = fourCC("GRAD")
	blokCLIPID  = fourCC("IMAG") // clip id reference inside an IMAP block.
)

// chunkOpts are the iff.Options shared by this decoder: 4-byte big-endian
// tags, 4-byte big-endian lengths that are payload-only (spec.md §4.4:
// "followed by big-endian {tag:u32, size:u32} chunks").
func chunkOpts(onOverflow iff.OnOverflow) iff.Options {
	return iff.Options{
		TagWidth:         iff.Tag4,
		LengthWidth:      iff.Length32BE,
		HeaderCountsSelf: false,
		OnOverflow:       onOverflow,
	}
}
