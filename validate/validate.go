// Package validate implements the structural and semantic checks spec.md
// §4.11 runs over a finished scene before it is handed back to the caller.
// Violations are split into Errors (fatal, per spec.md §7's "Fail" policy)
// and Warnings (logged but non-fatal), mirroring the same
// Kind/fatal-vs-warning split importerr.Kind.Fatal already encodes for
// decode-time errors.
package validate

import (
	"fmt"

	"github.com/galvanized-assets/sceneimport/scene"
)

// Result collects every violation found in one validation pass.
type Result struct {
	Errors   []string
	Warnings []string
}

// OK reports whether no fatal violation was found.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Scene runs every spec.md §4.11 check over sc and returns the combined
// result. It never mutates sc.
func Scene(sc *scene.Scene) *Result {
	r := &Result{}
	checkMeshes(sc, r)
	checkHierarchy(sc, r)
	checkAnimations(sc, r)
	return r
}

func checkMeshes(sc *scene.Scene, r *Result) {
	for mi, m := range sc.Meshes {
		if m.MaterialIndex < 0 || m.MaterialIndex >= len(sc.Materials) {
			r.errorf("mesh %d (%s): material index %d out of range [0,%d)", mi, m.Name, m.MaterialIndex, len(sc.Materials))
		}

		referenced := make([]bool, len(m.Positions))
		for fi, f := range m.Faces {
			if len(f.Indices) < 3 {
				r.errorf("mesh %d (%s): face %d has %d indices, want >= 3", mi, m.Name, fi, len(f.Indices))
				continue
			}
			for _, idx := range f.Indices {
				if int(idx) >= len(m.Positions) {
					r.errorf("mesh %d (%s): face %d references out-of-range vertex %d", mi, m.Name, fi, idx)
					continue
				}
				referenced[idx] = true
			}
		}
		for vi, seen := range referenced {
			if !seen {
				r.errorf("mesh %d (%s): vertex %d is not referenced by any face", mi, m.Name, vi)
			}
		}

		checkChannelPacking(mi, m, r)
		checkBoneWeights(mi, m, r)
	}
}

// checkChannelPacking verifies UV/color channels are left-packed: since
// scene.Mesh stores them as plain slices, "no holes" means no empty channel
// may precede a non-empty one.
func checkChannelPacking(mi int, m *scene.Mesh, r *Result) {
	seenEmpty := false
	for ci, ch := range m.TexCoords {
		if len(ch.UV) == 0 {
			seenEmpty = true
			continue
		}
		if seenEmpty {
			r.errorf("mesh %d (%s): UV channel %d is populated after an empty channel", mi, m.Name, ci)
		}
	}
	seenEmpty = false
	for ci, ch := range m.Colors {
		if len(ch.Colors) == 0 {
			seenEmpty = true
			continue
		}
		if seenEmpty {
			r.errorf("mesh %d (%s): color channel %d is populated after an empty channel", mi, m.Name, ci)
		}
	}
}

const (
	weightSumMin = 0.995
	weightSumMax = 1.005
)

func checkBoneWeights(mi int, m *scene.Mesh, r *Result) {
	if len(m.Bones) == 0 {
		return
	}
	sums := make([]float32, len(m.Positions))
	touched := make([]bool, len(m.Positions))
	for _, b := range m.Bones {
		for _, w := range b.Weights {
			if int(w.VertexID) >= len(sums) {
				continue
			}
			sums[w.VertexID] += w.Weight
			touched[w.VertexID] = true
		}
	}
	for vi, sum := range sums {
		if !touched[vi] {
			continue
		}
		if sum < weightSumMin || sum > weightSumMax {
			r.warnf("mesh %d (%s): vertex %d bone weight sum %.4f outside [%.3f,%.3f]", mi, m.Name, vi, sum, weightSumMin, weightSumMax)
		}
	}
}

func checkHierarchy(sc *scene.Scene, r *Result) {
	if sc.Root == nil {
		r.errorf("scene has no root node")
		return
	}
	onPath := map[*scene.Node]bool{}
	var walk func(n *scene.Node)
	walk = func(n *scene.Node) {
		if onPath[n] {
			r.errorf("node hierarchy contains a cycle at %q", n.Name)
			return
		}
		onPath[n] = true
		for _, c := range n.Children {
			if c.Parent != n {
				r.errorf("node %q does not have its listed parent %q as Parent", c.Name, n.Name)
			}
			walk(c)
		}
		onPath[n] = false
	}
	walk(sc.Root)
}

func checkAnimations(sc *scene.Scene, r *Result) {
	boneNames := map[string]bool{}
	for _, m := range sc.Meshes {
		for _, b := range m.Bones {
			boneNames[b.Name] = true
		}
	}

	for ai, anim := range sc.Animations {
		for ci, ch := range anim.Channels {
			if len(boneNames) > 0 && !boneNames[ch.BoneName] {
				r.warnf("animation %d (%s): channel %d references unknown bone %q", ai, anim.Name, ci, ch.BoneName)
			}
			checkMonotonicKeys(ai, anim, ci, ch, r)
		}
	}
}

func checkMonotonicKeys(ai int, anim *scene.Animation, ci int, ch scene.BoneChannel, r *Result) {
	last := -1.0
	for _, k := range ch.Positions {
		if k.Time <= last {
			r.errorf("animation %d (%s): channel %d position keys are not strictly monotonic at time %v", ai, anim.Name, ci, k.Time)
		}
		if k.Time < 0 || k.Time > anim.DurationTicks {
			r.errorf("animation %d (%s): channel %d position key time %v outside [0,%v]", ai, anim.Name, ci, k.Time, anim.DurationTicks)
		}
		last = k.Time
	}
	last = -1.0
	for _, k := range ch.Rotations {
		if k.Time <= last {
			r.errorf("animation %d (%s): channel %d rotation keys are not strictly monotonic at time %v", ai, anim.Name, ci, k.Time)
		}
		if k.Time < 0 || k.Time > anim.DurationTicks {
			r.errorf("animation %d (%s): channel %d rotation key time %v outside [0,%v]", ai, anim.Name, ci, k.Time, anim.DurationTicks)
		}
		last = k.Time
	}
	last = -1.0
	for _, k := range ch.Scales {
		if k.Time <= last {
			r.errorf("animation %d (%s): channel %d scale keys are not strictly monotonic at time %v", ai, anim.Name, ci, k.Time)
		}
		if k.Time < 0 || k.Time > anim.DurationTicks {
			r.errorf("animation %d (%s): channel %d scale key time %v outside [0,%v]", ai, anim.Name, ci, k.Time, anim.DurationTicks)
		}
		last = k.Time
	}
}
