package epa

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/gjk"
)

// Face is a triangular face of the expanding polytope. Its vertices are
// annotated Minkowski points so the converged face can be mapped back to
// witness points on both shapes.
type Face struct {
	Points   [3]gjk.SupportPoint
	Normal   mgl64.Vec3 // outward unit normal
	Distance float64    // distance from the origin to the face plane
}

// project returns the barycentric coordinates of the origin's projection
// onto the face plane, clamped to a valid combination when the triangle is
// degenerate.
func (f *Face) project() [3]float64 {
	p := f.Normal.Mul(f.Distance)

	v0 := f.Points[1].W.Sub(f.Points[0].W)
	v1 := f.Points[2].W.Sub(f.Points[0].W)
	v2 := p.Sub(f.Points[0].W)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-16 {
		third := 1.0 / 3.0
		return [3]float64{third, third, third}
	}

	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return [3]float64{1 - v - w, v, w}
}

// WitnessPoints maps the face's closest point to the origin back to a pair
// of world-space points, one on each shape.
func (f *Face) WitnessPoints() (p1, p2 mgl64.Vec3) {
	bary := f.project()
	for i := 0; i < 3; i++ {
		p1 = p1.Add(f.Points[i].A.Mul(bary[i]))
		p2 = p2.Add(f.Points[i].B.Mul(bary[i]))
	}
	return p1, p2
}
