package query

import "github.com/go-gl/mathgl/mgl64"

// KinematicKind tags how a contact point's local data should be re-derived as
// the two bodies move, without recomputing the full narrow-phase query.
type KinematicKind uint8

const (
	PointPoint KinematicKind = iota
	PointPlane
	PlanePoint
	PointLine
	LinePoint
	LineLine
)

func (k KinematicKind) String() string {
	switch k {
	case PointPoint:
		return "PointPoint"
	case PointPlane:
		return "PointPlane"
	case PlanePoint:
		return "PlanePoint"
	case PointLine:
		return "PointLine"
	case LinePoint:
		return "LinePoint"
	case LineLine:
		return "LineLine"
	}
	return "Unknown"
}

// Kinematic is a contact kinematic descriptor. The line variants carry the
// unit direction of the edge involved, expressed in the owning shape's local
// frame (Dir1 for the first shape, Dir2 for the second). It is assigned when
// a contact point is created or refreshed and consumed by the solver; this
// package never reinterprets it.
type Kinematic struct {
	Kind KinematicKind
	Dir1 mgl64.Vec3
	Dir2 mgl64.Vec3
}
