package shape

import "github.com/go-gl/mathgl/mgl64"

// Ball is a sphere centered on the origin of its local frame. Its boundary is
// smooth, so every support query degenerates to a single point feature.
type Ball struct {
	Radius float64
}

func (b *Ball) AsSupportMap() SupportMap { return b }

func (b *Ball) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-20 {
		return mgl64.Vec3{b.Radius, 0, 0}
	}
	return direction.Normalize().Mul(b.Radius)
}

func (b *Ball) SupportFaceToward(pose Transform, dir mgl64.Vec3, out *ConvexPolyface) {
	b.SupportFeatureToward(pose, dir, 0, out)
}

func (b *Ball) SupportFeatureToward(pose Transform, dir mgl64.Vec3, angTol float64, out *ConvexPolyface) {
	localDir := pose.InverseApplyVec(dir)
	out.Clear()
	out.PushVertex(pose.Apply(b.Support(localDir)), Vertex(0))
	out.FeatureID = Vertex(0)
}

func (b *Ball) NormalCone(localPoint mgl64.Vec3, feature FeatureID) NormalCone {
	axis := localPoint
	if axis.LenSqr() < 1e-20 {
		axis = mgl64.Vec3{0, 1, 0}
	} else {
		axis = axis.Normalize()
	}
	// The normal at a point of a sphere is the radial direction itself.
	return NormalCone{Axis: axis}
}
