package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Segment is a line segment between two local-space points. In the 2D regime
// it plays the role faces play in 3D: the widest feature a flat convex shape
// can offer to the clipper. Vertices are features 0 and 1, the segment itself
// is edge 0.
type Segment struct {
	A, B mgl64.Vec3
}

func (s *Segment) AsSupportMap() SupportMap { return s }

func (s *Segment) direction() (mgl64.Vec3, bool) {
	d := s.B.Sub(s.A)
	if d.LenSqr() < 1e-20 {
		return mgl64.Vec3{}, false
	}
	return d.Normalize(), true
}

func (s *Segment) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if s.B.Sub(s.A).Dot(direction) > 0 {
		return s.B
	}
	return s.A
}

func (s *Segment) SupportFaceToward(pose Transform, dir mgl64.Vec3, out *ConvexPolyface) {
	out.Clear()
	out.PushVertex(pose.Apply(s.A), Vertex(0))
	out.PushVertex(pose.Apply(s.B), Vertex(1))
	out.PushEdge(Edge(0))
	out.FeatureID = Edge(0)
}

func (s *Segment) SupportFeatureToward(pose Transform, dir mgl64.Vec3, angTol float64, out *ConvexPolyface) {
	localDir := pose.InverseApplyVec(dir)
	axis, ok := s.direction()
	if !ok || localDir.LenSqr() < 1e-20 {
		s.SupportFaceToward(pose, dir, out)
		return
	}
	localDir = localDir.Normalize()

	// The whole segment supports the direction when the direction is
	// orthogonal to it within the angular tolerance.
	if math.Abs(localDir.Dot(axis)) <= math.Sin(angTol)+1e-12 {
		s.SupportFaceToward(pose, dir, out)
		return
	}

	out.Clear()
	if axis.Dot(localDir) > 0 {
		out.PushVertex(pose.Apply(s.B), Vertex(1))
		out.FeatureID = Vertex(1)
	} else {
		out.PushVertex(pose.Apply(s.A), Vertex(0))
		out.FeatureID = Vertex(0)
	}
}

func (s *Segment) NormalCone(localPoint mgl64.Vec3, feature FeatureID) NormalCone {
	axis, ok := s.direction()
	if !ok {
		return NormalCone{Axis: mgl64.Vec3{0, 1, 0}, Span: math.Pi}
	}

	switch feature.Kind {
	case FeatureVertex:
		if feature.Index == 0 {
			axis = axis.Mul(-1)
		}
		return NormalCone{Axis: axis, Span: math.Pi / 2}
	case FeatureEdge:
		// Any direction orthogonal to the segment is a valid normal.
		perp := perpendicular(axis)
		return NormalCone{Axis: perp, Span: math.Pi / 2}
	}

	return NormalCone{Axis: mgl64.Vec3{0, 1, 0}, Span: math.Pi}
}

// perpendicular returns an arbitrary unit vector orthogonal to the unit
// vector n.
func perpendicular(n mgl64.Vec3) mgl64.Vec3 {
	t := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		t = mgl64.Vec3{0, 1, 0}
	}
	return t.Sub(n.Mul(t.Dot(n))).Normalize()
}
