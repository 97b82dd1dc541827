package lwo

import (
	"log/slog"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/decode"
	"github.com/galvanized-assets/sceneimport/importerr"
	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/internal/iff"
	"github.com/galvanized-assets/sceneimport/scene"
)

const formatName = "lwo"

func init() {
	decode.Register(&Decoder{}, "lwo")
}

// Decoder implements decode.Decoder for Lightwave's LWOB and LWO2 IFF-based
// model formats (spec.md §4.4).
type Decoder struct {
	Log *slog.Logger
}

func (d *Decoder) Name() string { return formatName }

func (d *Decoder) Decode(buf []byte, opts *config.Options) (*scene.Scene, error) {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	if len(buf) < decode.MinHeaderBytes {
		return nil, importerr.New(formatName, importerr.FileTooSmall, "file shorter than the minimum FORM header")
	}
	r := breader.New(buf)
	hdr, err := iff.ReadHeader(r, iff.Tag4, iff.Length32BE)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}
	if hdr.Tag != tagFORM {
		return nil, importerr.At(formatName, importerr.InvalidMagic, 0, "missing FORM header")
	}
	formType, err := r.ReadU32BE()
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}

	doc := &document{}
	switch Tag(formType) {
	case tagLWO2:
		doc.isLWO2 = true
	case tagLWOB:
		doc.isLWO2 = false
	default:
		return nil, importerr.At(formatName, importerr.InvalidMagic, 4, "unrecognized FORM type, expected LWOB or LWO2")
	}

	onOverflow := func(tag iff.Tag, declared, avail uint32) {
		log.Warn("lwo: chunk overflow, clamping", "tag", tag, "declared", declared, "available", avail)
	}
	if err := parseBody(r, doc, onOverflow); err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}

	sc, err := toScene(doc, log)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
	}
	return sc, nil
}
