// Package decode defines the format-decoder contract and the
// extension-based dispatch registry spec.md §4.12 step 1 describes. Each
// concrete format lives in its own subpackage (decode/d3ds, decode/lwo, ...)
// and registers itself here through Register, the way the teacher's `load`
// package keys its per-extension loader functions off a file's suffix
// (`load/load.go`'s asset-kind switch).
package decode

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/scene"
)

var extFold = cases.Fold()

// MinHeaderBytes is the smallest input spec.md §4.12 step 2 tolerates before
// failing with importerr.FileTooSmall; every decoder needs at least this
// much to read its magic/header.
const MinHeaderBytes = 16

// Decoder turns a whole in-memory file into a canonical scene. Decoders
// never perform I/O themselves (spec.md §5): the full buffer is handed to
// Decode up front.
type Decoder interface {
	// Name is the short format name used in importerr.Error.Format ("3ds", "lwo", ...).
	Name() string
	// Decode parses buf and returns a canonical scene, or an *importerr.Error.
	Decode(buf []byte, opts *config.Options) (*scene.Scene, error)
}

var registry = map[string]Decoder{}

// Register binds a Decoder to one or more lowercase, dot-less extensions
// (e.g. "3ds", "ase"). Later registrations for the same extension replace
// earlier ones; format packages call this from an init() function.
func Register(d Decoder, extensions ...string) {
	for _, ext := range extensions {
		registry[extFold.String(ext)] = d
	}
}

// ForExtension returns the decoder registered for a file extension
// (case-insensitive; a leading dot is optional), or nil if none is
// registered — spec.md §6's full dispatch table lists several extensions
// (.md3, .mdc, .md4, .mdl, .vta) for which this module implements no
// decoder (see DESIGN.md); callers should report that as an ordinary
// "unsupported format" condition, not an importerr.Error.
func ForExtension(ext string) Decoder {
	ext = extFold.String(strings.TrimPrefix(ext, "."))
	return registry[ext]
}

// ErrUnsupportedExtension is returned by ForExtension's callers when no
// decoder is registered for a requested extension.
type ErrUnsupportedExtension struct{ Extension string }

func (e *ErrUnsupportedExtension) Error() string {
	return fmt.Sprintf("decode: no decoder registered for extension %q", e.Extension)
}
