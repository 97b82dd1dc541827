package d3ds

import (
	"math"
	"math/bits"

	"github.com/galvanized-assets/sceneimport/internal/breader"
	"github.com/galvanized-assets/sceneimport/internal/iff"
	"github.com/galvanized-assets/sceneimport/linalg"
)

// parseKeyframer decodes the KFDATA (0xB000) chunk into one kfNode per
// OBJECT_NODE_TAG. Only each track's first key is kept — spec.md §4.3 only
// requires "the OBJBLOCK name and its first keyframe transform", not a full
// animation import for 3DS.
func parseKeyframer(r *breader.Reader) ([]*kfNode, error) {
	var nodes []*kfNode
	err := iff.ForEachChunk(r, chunkOpts(nil), func(tag iff.Tag, p *breader.Reader) error {
		if tag != kfObjectNode {
			return nil // KFHDR and anything else: not needed for node-graph construction.
		}
		n, err := parseObjectNode(p)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
		return nil
	})
	return nodes, err
}

func parseObjectNode(r *breader.Reader) (*kfNode, error) {
	n := &kfNode{hierarchy: -1}
	err := iff.ForEachChunk(r, chunkOpts(nil), func(tag iff.Tag, p *breader.Reader) error {
		switch tag {
		case kfNodeHeader:
			return parseNodeHeader(p, n)
		case kfPivot:
			x, err := p.ReadF32()
			if err != nil {
				return err
			}
			y, err := p.ReadF32()
			if err != nil {
				return err
			}
			z, err := p.ReadF32()
			n.pivot = linalg.V3(x, y, z)
			return err
		case kfPosTrack:
			pos, ok, err := readVectorTrack(p)
			n.pos, n.hasPos = pos, ok
			return err
		case kfScaleTrack:
			sc, ok, err := readVectorTrack(p)
			n.scale, n.hasScale = sc, ok
			return err
		case kfRotTrack:
			rot, ok, err := readRotationTrack(p)
			n.rot, n.hasRot = rot, ok
			return err
		}
		return nil
	})
	return n, err
}

func parseNodeHeader(r *breader.Reader, n *kfNode) error {
	name, _, err := r.ReadCStrBounded(r.Remaining())
	if err != nil {
		return err
	}
	if _, err := r.ReadU16(); err != nil { // flags1
		return err
	}
	if _, err := r.ReadU16(); err != nil { // flags2
		return err
	}
	hierarchy, err := r.ReadI16()
	if err != nil {
		return err
	}
	n.name = name
	n.hierarchy = hierarchy
	return nil
}

// readTrackHeader reads the fixed portion common to POS/ROT/SCL track tags: flags,
// two reserved u16s, a key count, and a reserved u32.
func readTrackHeader(r *breader.Reader) (numKeys int, err error) {
	if _, err = r.ReadU16(); err != nil { // flags
		return
	}
	if _, err = r.ReadU16(); err != nil { // unused
		return
	}
	if _, err = r.ReadU16(); err != nil { // unused
		return
	}
	n, err := r.ReadU32()
	if err != nil {
		return
	}
	if _, err = r.ReadU32(); err != nil { // unused (loop frame)
		return
	}
	return int(n), nil
}

// skipTCBKeyHeader reads a key's frame number and TCB spline flags, then
// skips one float per set flag bit (tension/continuity/bias/ease-in/ease-out),
// matching the classic 3DS keyframe encoding.
func skipTCBKeyHeader(r *breader.Reader) error {
	if _, err := r.ReadU32(); err != nil { // frame number
		return err
	}
	flags, err := r.ReadU16()
	if err != nil {
		return err
	}
	return r.Skip(4 * bits.OnesCount16(flags))
}

func readVectorTrack(r *breader.Reader) (linalg.Vec3, bool, error) {
	n, err := readTrackHeader(r)
	if err != nil || n == 0 {
		return linalg.Vec3{}, false, err
	}
	if err := skipTCBKeyHeader(r); err != nil {
		return linalg.Vec3{}, false, err
	}
	x, err := r.ReadF32()
	if err != nil {
		return linalg.Vec3{}, false, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return linalg.Vec3{}, false, err
	}
	z, err := r.ReadF32()
	if err != nil {
		return linalg.Vec3{}, false, err
	}
	return linalg.V3(x, y, z), true, nil
}

func readRotationTrack(r *breader.Reader) (linalg.Quat, bool, error) {
	n, err := readTrackHeader(r)
	if err != nil || n == 0 {
		return linalg.IdentityQuat(), false, err
	}
	if err := skipTCBKeyHeader(r); err != nil {
		return linalg.IdentityQuat(), false, err
	}
	angle, err := r.ReadF32()
	if err != nil {
		return linalg.IdentityQuat(), false, err
	}
	ax, err := r.ReadF32()
	if err != nil {
		return linalg.IdentityQuat(), false, err
	}
	ay, err := r.ReadF32()
	if err != nil {
		return linalg.IdentityQuat(), false, err
	}
	az, err := r.ReadF32()
	if err != nil {
		return linalg.IdentityQuat(), false, err
	}
	axis := linalg.V3(ax, ay, az)
	axis.Unit()
	half := float64(angle) / 2
	s := float32(math.Sin(half))
	return linalg.Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(half)),
	}, true, nil
}
