package shape

import "github.com/go-gl/mathgl/mgl64"

// Transform represents the pose of a shape in world space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// Apply transforms a local point to world space (rotation + translation)
func (t Transform) Apply(point mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(point))
}

// ApplyVec transforms a local direction to world space (rotation only)
func (t Transform) ApplyVec(dir mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(dir)
}

// InverseApply transforms a world point to local space
func (t Transform) InverseApply(point mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(point.Sub(t.Position))
}

// InverseApplyVec transforms a world direction to local space
func (t Transform) InverseApplyVec(dir mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(dir)
}
