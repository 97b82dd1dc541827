package postprocess

import (
	"log/slog"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/scene"
)

// Run executes the post-process chain in the fixed order spec.md §4.12 step
// 4 mandates: default-material substitution, then (if requested) normal
// generation, then UV transform baking, then component removal.
// GenSmoothNormalsMaxSmoothing > 0 or its presence in opts is not itself the
// "requested" gate; normal generation runs whenever genNormals is true,
// matching the importer façade's own flag rather than a config lookup here.
func Run(sc *scene.Scene, opts *config.Options, genNormals bool, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	SubstituteDefaultMaterial(sc, log)
	if genNormals {
		GenerateNormals(sc, log)
	}
	BakeUVTransforms(sc, opts, log)
	RemoveComponents(sc, opts.Int(config.RemoveComponentsFlags, 0))
}
