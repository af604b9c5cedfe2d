package systems

import "github.com/mlange-42/ark/ecs"

// Pose is a world-space position and facing.
type Pose struct {
	Pos   Vec2
	Angle float32
}

// OrganOffset returns the local offset of an organ placed at angular
// position p on a body of radius r.
func OrganOffset(p, r float32) Vec2 {
	return Forward(p).Scale(r)
}

// OrganPose places an organ with local offset and facing onto a body.
func OrganPose(body Vec2, heading float32, offset Vec2, angle float32) Pose {
	return Pose{
		Pos:   body.Add(offset.Rotate(heading)),
		Angle: heading + angle,
	}
}

// Vision holds the fixed parameters of an eye.
type Vision struct {
	Cone  Shape
	Range float32
}

// Activation returns the eye signal for a pose: the largest
// clamp(1 - d/range, 0, 1) over food overlapping the cone, or 0 if none.
// Entities the index cannot locate are skipped. scratch is reused for the
// query and returned for the next call.
func (v Vision) Activation(idx SpatialIndex, pose Pose, scratch []ecs.Entity) (float32, []ecs.Entity) {
	scratch = idx.QueryShape(pose.Pos, pose.Angle, v.Cone, scratch[:0])

	var best float32
	for _, e := range scratch {
		pos, ok := idx.Position(e)
		if !ok {
			continue
		}
		c := clamp01(1 - distance(pose.Pos, pos)/v.Range)
		if c > best {
			best = c
		}
	}
	return best, scratch
}
