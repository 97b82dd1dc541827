package d3ds

import (
	"log/slog"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/decode"
	"github.com/galvanized-assets/sceneimport/importerr"
	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/internal/iff"
	"github.com/galvanized-assets/sceneimport/scene"
)

const formatName = "3ds"

func init() {
	decode.Register(&Decoder{}, "3ds")
}

// Decoder implements decode.Decoder for the Autodesk 3DS binary chunk
// format (spec.md §4.3).
type Decoder struct {
	// Log receives overflow/unresolved-name warnings; defaults to slog.Default().
	Log *slog.Logger
}

func (d *Decoder) Name() string { return formatName }

func (d *Decoder) Decode(buf []byte, opts *config.Options) (*scene.Scene, error) {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	if len(buf) < decode.MinHeaderBytes {
		return nil, importerr.New(formatName, importerr.FileTooSmall, "file shorter than the minimum chunk header")
	}
	r := breader.New(buf)
	hdr, err := iff.ReadHeader(r, iff.Tag2, iff.Length32LE)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}
	if hdr.Tag != main3DS {
		return nil, importerr.At(formatName, importerr.InvalidMagic, 0, "missing MAIN3DS root chunk")
	}

	doc := &document{}
	onOverflow := func(tag iff.Tag, declared, avail uint32) {
		log.Warn("3ds: chunk overflow, clamping", "tag", tag, "declared", declared, "available", avail)
	}
	// hdr.Length already counted the root header itself; ReadHeader has
	// consumed it, so walk the remaining buffer as the MAIN3DS body.
	err = iff.ForEachChunk(r, chunkOpts(onOverflow), func(tag iff.Tag, p *breader.Reader) error {
		if tag != edit3DS {
			return nil
		}
		return parseEdit(p, doc, onOverflow)
	})
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.UnexpectedEOF, r.Tell(), err)
	}

	sc, err := toScene(doc, log)
	if err != nil {
		return nil, importerr.Wrap(formatName, importerr.InvalidGeometry, -1, err)
	}
	return sc, nil
}

func parseEdit(r *breader.Reader, doc *document, onOverflow iff.OnOverflow) error {
	return iff.ForEachChunk(r, chunkOpts(onOverflow), func(tag iff.Tag, p *breader.Reader) error {
		switch tag {
		case editMasterScale:
			v, err := p.ReadF32()
			doc.masterScale = v
			return err
		case editObject:
			ob, err := parseObjBlock(p)
			if err != nil {
				return err
			}
			doc.objects = append(doc.objects, ob)
			return nil
		case editMaterial:
			mat, err := parseMaterial(p)
			if err != nil {
				return err
			}
			doc.materials = append(doc.materials, mat)
			return nil
		case editKeyframer:
			nodes, err := parseKeyframer(p)
			if err != nil {
				return err
			}
			doc.nodes = nodes
			return nil
		}
		return nil
	})
}
