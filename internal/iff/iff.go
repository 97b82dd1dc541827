// Package iff implements the chunk-framework shared by every binary decoder
// in spec.md §4.2: a chunk is {tag, length, payload}; containers are walked
// by repeatedly reading a header and handing the handler a reader bounded to
// that chunk's declared length. A sub-chunk whose declared length exceeds
// the remaining container bytes is clamped and a warning is reported,
// mirroring the source's "chunk overflow" recovery, instead of failing the
// whole container.
//
// Grounded on spec.md §4.2 and original_source/code/3DSLoader.cpp /
// LWOLoader.cpp's repeated "while (remaining) { read header; dispatch to
// handler; }" loops; spec.md §9 names this directly: "a scope-based
// for_each_chunk_within iterator that owns the remaining-bytes invariant".
package iff

import "github.com/galvanized-assets/sceneimport/internal/breader"

// TagWidth selects whether a chunk tag is 2 or 4 bytes.
type TagWidth int

const (
	Tag2 TagWidth = 2
	Tag4 TagWidth = 4
)

// LengthWidth selects whether a chunk length is a u16 or u32, and which
// endianness it's stored in.
type LengthWidth int

const (
	Length16LE LengthWidth = iota
	Length32LE
	Length32BE
)

// Tag is a chunk identifier, normalized to a uint32 regardless of its
// on-disk width (a 2-byte tag like 3DS's occupies the low 16 bits; a 4-byte
// tag like LWO's FORM-style fourCC occupies all 32).
type Tag uint32

// Header is one decoded chunk header.
type Header struct {
	Tag    Tag
	Length uint32 // declared length as stored on disk; for 3DS it also counts the header itself.
}

// ReadHeader reads one chunk header from r using the given tag/length
// widths.
func ReadHeader(r *breader.Reader, tw TagWidth, lw LengthWidth) (Header, error) {
	var tag uint32
	var err error
	switch tw {
	case Tag2:
		var t16 uint16
		t16, err = r.ReadU16()
		tag = uint32(t16)
	default:
		tag, err = r.ReadU32BE() // 4-byte IFF tags are read as raw bytes (fourCC), big-endian order.
	}
	if err != nil {
		return Header{}, err
	}
	var length uint32
	switch lw {
	case Length16LE:
		var l16 uint16
		l16, err = r.ReadU16()
		length = uint32(l16)
	case Length32LE:
		length, err = r.ReadU32()
	case Length32BE:
		length, err = r.ReadU32BE()
	}
	if err != nil {
		return Header{}, err
	}
	return Header{Tag: Tag(tag), Length: length}, nil
}

// Handler processes one chunk's payload, bounded to its declared length.
// Whether Length already counts the chunk's own header is set by
// Options.HeaderCountsSelf (3DS's length covers header+payload+nested
// chunks; LWO/IFF's length covers payload only) — ForEachChunk subtracts
// the header bytes in that case so the handler always receives exactly the
// payload byte count.
type Handler func(tag Tag, payload *breader.Reader) error

// OnOverflow is called when a sub-chunk's declared length exceeded the
// remaining container bytes and was clamped (spec.md §4.2/§7 ChunkOverflow).
type OnOverflow func(tag Tag, declaredLen, availableLen uint32)

// Options configures ForEachChunk.
type Options struct {
	TagWidth   TagWidth
	LengthWidth LengthWidth
	// HeaderCountsSelf is true when a chunk's declared Length includes its
	// own header bytes (3DS: Length covers {tag,length}+payload). It is
	// false for LWO/IFF-style formats where Length is payload-only.
	HeaderCountsSelf bool
	OnOverflow       OnOverflow
}

// headerByteSize returns how many bytes ReadHeader consumes for these
// widths.
func headerByteSize(tw TagWidth, lw LengthWidth) int {
	tagBytes := 2
	if tw == Tag4 {
		tagBytes = 4
	}
	lenBytes := 2
	if lw != Length16LE {
		lenBytes = 4
	}
	return tagBytes + lenBytes
}

// ForEachChunk repeatedly reads a chunk header from r and invokes handler
// with a reader bounded to that chunk's payload, until r is exhausted.
// Unknown tags are the handler's responsibility to skip (returning nil); any
// bytes the handler doesn't consume within its bounded payload are silently
// skipped when the scope exits, exactly like breader.Reader.WithLimit.
func ForEachChunk(r *breader.Reader, opts Options, handler Handler) error {
	hdrSize := headerByteSize(opts.TagWidth, opts.LengthWidth)
	for r.Remaining() > 0 {
		// Not enough bytes left even for a header: treat as an overflowed,
		// zero-content trailing chunk and stop, per the spec's "clamp and
		// continue" recovery philosophy rather than failing outright.
		if r.Remaining() < hdrSize {
			return nil
		}
		hdr, err := ReadHeader(r, opts.TagWidth, opts.LengthWidth)
		if err != nil {
			return err
		}
		payloadLen := int(hdr.Length)
		if opts.HeaderCountsSelf {
			payloadLen -= hdrSize
		}
		if payloadLen < 0 {
			payloadLen = 0
		}
		avail := r.Remaining()
		clamped, herr := r.WithLimit(payloadLen, func(inner *breader.Reader) error {
			return handler(hdr.Tag, inner)
		})
		if clamped && opts.OnOverflow != nil {
			opts.OnOverflow(hdr.Tag, uint32(payloadLen), uint32(avail))
		}
		if herr != nil {
			return herr
		}
	}
	return nil
}
