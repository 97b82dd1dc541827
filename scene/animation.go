package scene

import "github.com/galvanized-assets/sceneimport/linalg"

// PositionKey is a keyframe for a bone's translation channel.
type PositionKey struct {
	Time  float64 // in ticks.
	Value linalg.Vec3
}

// RotationKey is a keyframe for a bone's rotation channel.
type RotationKey struct {
	Time  float64
	Value linalg.Quat
}

// ScaleKey is a keyframe for a bone's scale channel.
type ScaleKey struct {
	Time  float64
	Value linalg.Vec3
}

// BoneChannel holds the three independently keyed, strictly-monotonic
// sequences for one animated bone (spec.md §3).
type BoneChannel struct {
	BoneName  string
	Positions []PositionKey
	Rotations []RotationKey
	Scales    []ScaleKey
}

// Animation is a named set of per-bone channels sharing a duration and tick
// rate (spec.md §3).
type Animation struct {
	Name           string
	DurationTicks  float64
	TicksPerSecond float64
	Channels       []BoneChannel
}

// Channel returns the channel for boneName, or nil.
func (a *Animation) Channel(boneName string) *BoneChannel {
	for i := range a.Channels {
		if a.Channels[i].BoneName == boneName {
			return &a.Channels[i]
		}
	}
	return nil
}
