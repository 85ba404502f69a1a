package epa

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/gjk"
	"github.com/akmonengine/narrowphase/shape"
)

// PenetrationPlanar computes the penetration depth, normal and witness points
// of two overlapping shapes of the planar regime, whose Minkowski difference
// is flat in the z = 0 plane and can never enclose a tetrahedron. It expands
// a convex polygon instead of a polytope: the closest polygon edge to the
// origin gives the minimum translation direction, and its annotated endpoints
// the witness points.
func PenetrationPlanar(
	pose1 shape.Transform, sm1 shape.SupportMap,
	pose2 shape.Transform, sm2 shape.SupportMap,
	simplex *gjk.Simplex,
) (Result, error) {
	// Seed with the GJK simplex, whose hull straddles the origin, plus axis
	// supports so the initial polygon has area whenever the difference does.
	seeds := make([]gjk.SupportPoint, 0, 8)
	seeds = append(seeds, simplex.Points[:simplex.Count]...)
	for _, dir := range [4]mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}} {
		seeds = append(seeds, gjk.MinkowskiSupport(pose1, sm1, pose2, sm2, dir))
	}

	hull := planarHull(seeds)
	if len(hull) < 3 {
		return Result{}, ErrDegenerate
	}

	for i := 0; i < maxIterations; i++ {
		edge, normal, distance := closestPolygonEdge(hull)
		if edge < 0 {
			return Result{}, ErrDegenerate
		}

		support := gjk.MinkowskiSupport(pose1, sm1, pose2, sm2, normal)
		if support.W.Dot(normal)-distance < convergenceTolerance {
			return planarEdgeResult(hull[edge], hull[(edge+1)%len(hull)], normal, distance), nil
		}

		// Insert between the edge endpoints; the support is extreme along
		// the edge normal, so counter-clockwise order is preserved.
		hull = append(hull, gjk.SupportPoint{})
		copy(hull[edge+2:], hull[edge+1:])
		hull[edge+1] = support
	}

	return Result{}, fmt.Errorf("epa: no convergence after %d iterations", maxIterations)
}

// planarHull orders the given boundary points counter-clockwise around their
// centroid, dropping duplicates. All inputs are support points of the same
// convex region, so the angular order is the hull order. Returns fewer than
// three points when the region has no area.
func planarHull(pts []gjk.SupportPoint) []gjk.SupportPoint {
	hull := pts[:0]
	for _, p := range pts {
		dup := false
		for _, q := range hull {
			if q.W.Sub(p.W).LenSqr() < 1e-18 {
				dup = true
				break
			}
		}
		if !dup {
			hull = append(hull, p)
		}
	}
	if len(hull) < 3 {
		return hull
	}

	var center mgl64.Vec3
	for _, p := range hull {
		center = center.Add(p.W)
	}
	center = center.Mul(1 / float64(len(hull)))

	sort.Slice(hull, func(i, j int) bool {
		a := hull[i].W.Sub(center)
		b := hull[j].W.Sub(center)
		return math.Atan2(a.Y(), a.X()) < math.Atan2(b.Y(), b.X())
	})

	area := 0.0
	for i := range hull {
		a := hull[i].W
		b := hull[(i+1)%len(hull)].W
		area += a.X()*b.Y() - b.X()*a.Y()
	}
	if area < 1e-14 {
		return hull[:0]
	}
	return hull
}

// closestPolygonEdge returns the polygon edge whose supporting line is
// nearest the origin, with its outward normal and signed distance.
func closestPolygonEdge(hull []gjk.SupportPoint) (int, mgl64.Vec3, float64) {
	best := -1
	bestDist := math.Inf(1)
	var bestNormal mgl64.Vec3

	for i := range hull {
		e := hull[(i+1)%len(hull)].W.Sub(hull[i].W)
		n := mgl64.Vec3{e.Y(), -e.X(), 0}
		length := n.Len()
		if length < 1e-12 {
			continue
		}
		n = n.Mul(1 / length)
		if d := n.Dot(hull[i].W); d < bestDist {
			best, bestDist, bestNormal = i, d, n
		}
	}
	return best, bestNormal, bestDist
}

// planarEdgeResult projects the origin onto the converged edge and
// interpolates the annotated support points into world-space witnesses.
func planarEdgeResult(a, b gjk.SupportPoint, normal mgl64.Vec3, distance float64) Result {
	if distance < 0 {
		// Touching contact found through an edge the origin sits just outside.
		distance = 0
	}

	e := b.W.Sub(a.W)
	t := 0.0
	if lenSqr := e.LenSqr(); lenSqr > 1e-20 {
		t = mgl64.Clamp(normal.Mul(distance).Sub(a.W).Dot(e)/lenSqr, 0, 1)
	}

	return Result{
		Normal: normal,
		Depth:  distance,
		Point1: a.A.Mul(1 - t).Add(b.A.Mul(t)),
		Point2: a.B.Mul(1 - t).Add(b.B.Mul(t)),
	}
}
