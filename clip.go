package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/query"
	"github.com/akmonengine/narrowphase/shape"
)

// rawContact is a contact freshly produced by clipping, still tagged with the
// features of both shapes that generated it.
type rawContact struct {
	contact query.Contact
	f1, f2  shape.FeatureID
}

// polyfaceClipper computes the overlapping contact region of two support
// features sharing a contact normal. The two regimes (segment overlap in 2D,
// polygon/polygon clipping in 3D) implement this one interface so the
// generator can select them with a runtime dimension tag.
type polyfaceClipper interface {
	clip(m1, m2 *shape.ConvexPolyface, normal mgl64.Vec3, out []rawContact) []rawContact
}

// clip2D overlaps two segments along the axis orthogonal to the normal.
// Shapes of the 2D regime live in the z = 0 plane.
type clip2D struct{}

func (clip2D) clip(m1, m2 *shape.ConvexPolyface, normal mgl64.Vec3, out []rawContact) []rawContact {
	if len(m1.Vertices) <= 1 || len(m2.Vertices) <= 1 {
		return out
	}

	ortho := mgl64.Vec3{-normal.Y(), normal.X(), 0}

	seg1 := [2]mgl64.Vec3{m1.Vertices[0], m1.Vertices[1]}
	seg2 := [2]mgl64.Vec3{m2.Vertices[0], m2.Vertices[1]}
	features1 := [2]shape.FeatureID{m1.VertexIDs[0], m1.VertexIDs[1]}
	features2 := [2]shape.FeatureID{m2.VertexIDs[0], m2.VertexIDs[1]}

	// Shared origin reduces cancellation in the projections.
	refPt := seg1[0]
	range1 := [2]float64{0, seg1[1].Sub(refPt).Dot(ortho)}
	range2 := [2]float64{seg2[0].Sub(refPt).Dot(ortho), seg2[1].Sub(refPt).Dot(ortho)}

	if range1[1] < range1[0] {
		range1[0], range1[1] = range1[1], range1[0]
		features1[0], features1[1] = features1[1], features1[0]
		seg1[0], seg1[1] = seg1[1], seg1[0]
	}
	if range2[1] < range2[0] {
		range2[0], range2[1] = range2[1], range2[0]
		features2[0], features2[1] = features2[1], features2[0]
		seg2[0], seg2[1] = seg2[1], seg2[0]
	}

	// Disjoint projected ranges: no clipping possible, a correct negative.
	if range2[0] > range1[1] || range1[0] > range2[1] {
		return out
	}

	length1 := range1[1] - range1[0]
	length2 := range2[1] - range2[0]

	// Low boundary of the overlap: the segment whose low end is inside the
	// other's range keeps its exact vertex, the other side is interpolated.
	if range2[0] > range1[0] {
		bcoord := ratio(range2[0]-range1[0], length1)
		p1 := lerp(seg1[0], seg1[1], bcoord)
		out = append(out, rawContact{
			contact: query.NewContactWoDepth(p1, seg2[0], normal),
			f1:      m1.FeatureID,
			f2:      features2[0],
		})
	} else {
		bcoord := ratio(range1[0]-range2[0], length2)
		p2 := lerp(seg2[0], seg2[1], bcoord)
		out = append(out, rawContact{
			contact: query.NewContactWoDepth(seg1[0], p2, normal),
			f1:      features1[0],
			f2:      m2.FeatureID,
		})
	}

	// High boundary, symmetrically.
	if range2[1] < range1[1] {
		bcoord := ratio(range2[1]-range1[0], length1)
		p1 := lerp(seg1[0], seg1[1], bcoord)
		out = append(out, rawContact{
			contact: query.NewContactWoDepth(p1, seg2[1], normal),
			f1:      m1.FeatureID,
			f2:      features2[1],
		})
	} else {
		bcoord := ratio(range1[1]-range2[0], length2)
		p2 := lerp(seg2[0], seg2[1], bcoord)
		out = append(out, rawContact{
			contact: query.NewContactWoDepth(seg1[1], p2, normal),
			f1:      features1[1],
			f2:      m2.FeatureID,
		})
	}

	return out
}

// clip3D clips two polygonal faces projected on the plane orthogonal to the
// normal. The projection buffers are retained across updates.
type clip3D struct {
	poly1 []mgl64.Vec2
	poly2 []mgl64.Vec2
}

func (c *clip3D) clip(m1, m2 *shape.ConvexPolyface, normal mgl64.Vec3, out []rawContact) []rawContact {
	if len(m1.Vertices) <= 2 && len(m2.Vertices) <= 2 {
		return out
	}

	c.poly1 = c.poly1[:0]
	c.poly2 = c.poly2[:0]

	basis1, basis2 := tangentBasis(normal)

	refPt := m1.Vertices[0]
	for _, pt := range m1.Vertices {
		dpt := pt.Sub(refPt)
		c.poly1 = append(c.poly1, mgl64.Vec2{basis1.Dot(dpt), basis2.Dot(dpt)})
	}
	for _, pt := range m2.Vertices {
		dpt := pt.Sub(refPt)
		c.poly2 = append(c.poly2, mgl64.Vec2{basis1.Dot(dpt), basis2.Dot(dpt)})
	}

	// Vertices of face 1 inside face 2, ray-cast along the normal onto face
	// 2's supporting plane.
	if len(c.poly2) > 2 {
		for i, pt := range c.poly1 {
			if !pointInPoly2D(pt, c.poly2) {
				continue
			}
			origin := refPt.Add(basis1.Mul(pt.X())).Add(basis2.Mul(pt.Y()))
			toi := planeToiWithLine(m2.Vertices[0], m2.Normal, origin, normal)
			world2 := origin.Add(normal.Mul(toi))
			out = append(out, rawContact{
				contact: query.NewContactWoDepth(m1.Vertices[i], world2, normal),
				f1:      m1.VertexIDs[i],
				f2:      m2.FeatureID,
			})
		}
	}

	// Vertices of face 2 inside face 1, symmetrically.
	if len(c.poly1) > 2 {
		for i, pt := range c.poly2 {
			if !pointInPoly2D(pt, c.poly1) {
				continue
			}
			origin := refPt.Add(basis1.Mul(pt.X())).Add(basis2.Mul(pt.Y()))
			toi := planeToiWithLine(m1.Vertices[0], m1.Normal, origin, normal)
			world1 := origin.Add(normal.Mul(toi))
			out = append(out, rawContact{
				contact: query.NewContactWoDepth(world1, m2.Vertices[i], normal),
				f1:      m1.FeatureID,
				f2:      m2.VertexIDs[i],
			})
		}
	}

	// Edge/edge crossings. Only pairs whose projected closest points fall
	// strictly inside both edges count; endpoint hits are already covered by
	// the vertex passes and near-parallel edges simply never qualify.
	nedges1 := m1.NumEdges()
	nedges2 := m2.NumEdges()
	for i1 := 0; i1 < nedges1; i1++ {
		j1 := (i1 + 1) % len(c.poly1)

		for i2 := 0; i2 < nedges2; i2++ {
			j2 := (i2 + 1) % len(c.poly2)

			s, t, interior := segmentsClosestPoints(c.poly1[i1], c.poly1[j1], c.poly2[i2], c.poly2[j2])
			if !interior {
				continue
			}

			world1 := lerp(m1.Vertices[i1], m1.Vertices[j1], s)
			world2 := lerp(m2.Vertices[i2], m2.Vertices[j2], t)
			out = append(out, rawContact{
				contact: query.NewContactWoDepth(world1, world2, normal),
				f1:      m1.EdgeIDs[i1],
				f2:      m2.EdgeIDs[i2],
			})
		}
	}

	return out
}

// tangentBasis completes a unit normal into an orthonormal basis of its
// orthogonal plane.
func tangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	t1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > 0.9 {
		t1 = mgl64.Vec3{0, 1, 0}
	}
	t1 = t1.Sub(normal.Mul(t1.Dot(normal))).Normalize()
	t2 := normal.Cross(t1).Normalize()
	return t1, t2
}

// pointInPoly2D tests a point against a convex polygon, accepting either
// winding: the point is inside when it never switches side across the edges.
func pointInPoly2D(pt mgl64.Vec2, poly []mgl64.Vec2) bool {
	sign := 0.0
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		e := b.Sub(a)
		d := pt.Sub(a)
		cross := e.X()*d.Y() - e.Y()*d.X()
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if cross*sign < 0 {
			return false
		}
	}
	return true
}

// planeToiWithLine returns the parameter t such that origin + dir*t lies on
// the plane through planePt with normal planeNormal.
func planeToiWithLine(planePt, planeNormal, origin, dir mgl64.Vec3) float64 {
	denom := planeNormal.Dot(dir)
	if math.Abs(denom) < 1e-12 {
		return 0
	}
	return planeNormal.Dot(planePt.Sub(origin)) / denom
}

// segmentsClosestPoints computes the parameters of the closest points between
// two 2D segments p1+s*(q1-p1) and p2+t*(q2-p2), s and t clamped to [0, 1].
// interior is true only when both closest points land strictly inside their
// segment.
func segmentsClosestPoints(p1, q1, p2, q2 mgl64.Vec2) (s, t float64, interior bool) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)

	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	const eps = 1e-16

	switch {
	case a <= eps && e <= eps:
		s, t = 0, 0
	case a <= eps:
		s = 0
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= eps {
			t = 0
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = clamp01((b*f - c*e) / denom)
			} else {
				s = 0
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}

	interior = s > 0 && s < 1 && t > 0 && t < 1
	return s, t, interior
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// lerp interpolates linearly between two points.
func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

// ratio divides, treating a zero-length span as a zero coordinate.
func ratio(num, den float64) float64 {
	if math.Abs(den) < 1e-16 {
		return 0
	}
	return num / den
}
