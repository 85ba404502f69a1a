// Package epa implements the Expanding Polytope Algorithm for computing the
// penetration depth of two overlapping convex shapes.
//
// EPA runs after the GJK closest-point query reports an intersection. It
// expands a polytope in the Minkowski difference space, starting from GJK's
// final simplex, toward the boundary nearest the origin; that boundary face
// gives the minimum translation direction, the penetration depth, and -
// because the polytope vertices are annotated with both shapes' support
// points - a pair of world-space witness points.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on
//     3D Game Objects" (2001)
package epa

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/gjk"
	"github.com/akmonengine/narrowphase/shape"
)

const (
	// maxIterations limits polytope expansion. Typical convergence is 5-15
	// iterations for simple shapes.
	maxIterations = 64

	// convergenceTolerance defines when the expansion has converged: the new
	// support point improves the closest-face distance by less than this.
	convergenceTolerance = 1e-6

	// minFaceDistance is the minimum face distance before a face is treated
	// as degenerate and skipped.
	minFaceDistance = 1e-7

	polytopeInitialCapacity = 8
)

// ErrDegenerate reports that the initial simplex could not be completed into
// a shape with volume (a tetrahedron, or a polygon with area in the planar
// flavor), so no penetration information can be derived.
var ErrDegenerate = errors.New("epa: degenerate initial simplex")

// Result is the outcome of a penetration query.
type Result struct {
	// Normal is the unit minimum-translation direction, pointing from the
	// first shape toward the second.
	Normal mgl64.Vec3
	// Depth is the penetration depth, always positive.
	Depth float64
	// Point1 and Point2 are world-space witness points on each shape;
	// Point1 lies Depth past Point2 along Normal.
	Point1 mgl64.Vec3
	Point2 mgl64.Vec3
}

// Penetration computes the penetration depth, normal and witness points of
// two overlapping support-mapped shapes, seeded with the simplex left by the
// GJK query. The simplex is completed into a tetrahedron when GJK stopped
// short of one; ErrDegenerate is returned when it cannot be.
func Penetration(
	pose1 shape.Transform, sm1 shape.SupportMap,
	pose2 shape.Transform, sm2 shape.SupportMap,
	simplex *gjk.Simplex,
) (Result, error) {
	if err := completeSimplex(pose1, sm1, pose2, sm2, simplex); err != nil {
		return Result{}, err
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()

	if err := builder.BuildInitialFaces(simplex); err != nil {
		return Result{}, err
	}

	for i := 0; i < maxIterations; i++ {
		if len(builder.faces) == 0 {
			break
		}

		closestIndex := builder.FindClosestFaceIndex()
		closest := builder.faces[closestIndex]

		support := gjk.MinkowskiSupport(pose1, sm1, pose2, sm2, closest.Normal)
		distance := support.W.Dot(closest.Normal)

		// The support point does not meaningfully extend past the closest
		// face: that face is the boundary of the Minkowski difference.
		if distance-closest.Distance < convergenceTolerance {
			p1, p2 := closest.WitnessPoints()
			return Result{
				Normal: closest.Normal,
				Depth:  closest.Distance,
				Point1: p1,
				Point2: p2,
			}, nil
		}

		builder.AddPointAndRebuildFaces(support, closestIndex)
	}

	return Result{}, fmt.Errorf("epa: no convergence after %d iterations", maxIterations)
}

// completeSimplex grows a 1-3 point simplex left by a touching or shallow
// GJK run into a non-flat tetrahedron, trying support directions orthogonal
// to the current feature.
func completeSimplex(
	pose1 shape.Transform, sm1 shape.SupportMap,
	pose2 shape.Transform, sm2 shape.SupportMap,
	simplex *gjk.Simplex,
) error {
	axes := [6]mgl64.Vec3{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}

	for _, dir := range axes {
		if simplex.Count == 4 {
			break
		}
		w := gjk.MinkowskiSupport(pose1, sm1, pose2, sm2, dir)
		if !simplex.ContainsPoint(w.W) && !flattens(simplex, w) {
			simplex.Push(w)
		}
	}

	if simplex.Count != 4 {
		return ErrDegenerate
	}
	return nil
}

// flattens reports whether adding the point would keep the simplex without
// volume: collinear for a segment, coplanar for a triangle.
func flattens(simplex *gjk.Simplex, w gjk.SupportPoint) bool {
	switch simplex.Count {
	case 2:
		ab := simplex.Points[1].W.Sub(simplex.Points[0].W)
		ac := w.W.Sub(simplex.Points[0].W)
		return ab.Cross(ac).LenSqr() < 1e-18
	case 3:
		ab := simplex.Points[1].W.Sub(simplex.Points[0].W)
		ac := simplex.Points[2].W.Sub(simplex.Points[0].W)
		ad := w.W.Sub(simplex.Points[0].W)
		vol := ab.Cross(ac).Dot(ad)
		return vol*vol < 1e-18
	}
	return false
}
