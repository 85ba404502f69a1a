package shape

import "github.com/go-gl/mathgl/mgl64"

// Plane is an infinite plane defined by Normal · p + Distance = 0 with a
// normalized Normal. It is unbounded and therefore has no support mapping;
// the support-map narrow phase reports pairs involving it as not handled so
// the caller can route them to an analytic plane collider.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

func (p *Plane) AsSupportMap() SupportMap { return nil }
