package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is the capability entry point of a collision shape. Shapes that
// cannot expose a support mapping (e.g. infinite planes) return nil from
// AsSupportMap; the narrow phase reports such pairs as not handled.
type Shape interface {
	// AsSupportMap returns the shape's support-mapping capability, or nil.
	AsSupportMap() SupportMap
}

// SupportMap is the capability every convex shape consumed by the GJK-based
// narrow phase must expose: a support function plus feature extraction along
// a direction and per-feature normal cones.
type SupportMap interface {
	// Support returns the farthest point of the shape along a local-space
	// direction, in local space.
	Support(dir mgl64.Vec3) mgl64.Vec3

	// SupportFaceToward fills out with the face of the shape whose outward
	// normal is most aligned with the world-space direction dir. The output
	// vertices are in world space.
	SupportFaceToward(pose Transform, dir mgl64.Vec3, out *ConvexPolyface)

	// SupportFeatureToward fills out with the vertex, edge or face feature
	// supporting the shape along the world-space direction dir, widening the
	// selection by the angular tolerance angTol (radians). The output
	// vertices are in world space.
	SupportFeatureToward(pose Transform, dir mgl64.Vec3, angTol float64, out *ConvexPolyface)

	// NormalCone returns the cone of possible outward normals of the given
	// feature, in local space.
	NormalCone(localPoint mgl64.Vec3, feature FeatureID) NormalCone
}

// NormalCone is the set of outward normals a feature can have, represented as
// a circular cone: all unit vectors within Span radians of Axis. A face has a
// zero span, an edge or vertex a widening one.
type NormalCone struct {
	Axis mgl64.Vec3
	Span float64
}

// Contains reports whether the unit direction lies inside the cone, within
// the given angular slack.
func (c NormalCone) Contains(dir mgl64.Vec3, slack float64) bool {
	dot := mgl64.Clamp(c.Axis.Dot(dir), -1, 1)
	return math.Acos(dot) <= c.Span+slack
}

// SupportWorld evaluates a support map in world space: the direction is
// brought to local space, the support point back to world space.
func SupportWorld(sm SupportMap, pose Transform, dir mgl64.Vec3) mgl64.Vec3 {
	localDir := pose.InverseApplyVec(dir)
	return pose.Apply(sm.Support(localDir))
}
