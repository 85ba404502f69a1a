// Package gjk implements the Gilbert-Johnson-Keerthi closest-point query
// between two convex shapes exposing support mappings.
//
// Unlike the boolean flavor of GJK, this variant runs the distance algorithm
// on an annotated simplex: every simplex vertex keeps the support points of
// both shapes, so converging also yields the witness points realizing the
// shortest distance. When the shapes overlap, the final simplex encloses the
// origin and seeds the expanding-polytope penetration query.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance
//     Between Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/shape"
)

const (
	// maxIterations bounds the refinement loop. Distance queries typically
	// converge in well under 20 iterations.
	maxIterations = 100

	// relativeTolerance terminates the loop when the support point found in
	// the search direction cannot improve the distance estimate anymore.
	relativeTolerance = 1e-10

	// touchTolerance is the squared distance under which the closest point
	// is considered to be the origin itself.
	touchTolerance = 1e-16
)

// Status describes the outcome of a closest-points query.
type Status int

const (
	// ClosestPointsFound means the shapes are disjoint; Point1, Point2,
	// Distance and Dir are valid.
	ClosestPointsFound Status = iota
	// Intersecting means the shapes overlap; the simplex encloses the
	// origin and can seed a penetration query.
	Intersecting
	// Failed means the query did not converge (degenerate input).
	Failed
)

// Result is the outcome of ClosestPoints.
type Result struct {
	Status   Status
	Point1   mgl64.Vec3
	Point2   mgl64.Vec3
	Distance float64
	// Dir is the unit separating direction, pointing from the first shape
	// toward the second. It feeds the warm start of the next query.
	Dir mgl64.Vec3
}

// MinkowskiSupport computes the annotated support point of the Minkowski
// difference (A - B) along a world direction.
func MinkowskiSupport(pose1 shape.Transform, sm1 shape.SupportMap, pose2 shape.Transform, sm2 shape.SupportMap, dir mgl64.Vec3) SupportPoint {
	a := shape.SupportWorld(sm1, pose1, dir)
	b := shape.SupportWorld(sm2, pose2, dir.Mul(-1))
	return SupportPoint{W: a.Sub(b), A: a, B: b}
}

// ClosestPoints computes the closest points between two support-mapped shapes.
//
// initialDir is a warm-start search direction, typically the separating
// direction of the previous frame; a zero vector falls back to the vector
// joining the shape centers. The simplex is reset and left holding the final
// state, enclosing the origin when the result is Intersecting.
func ClosestPoints(
	pose1 shape.Transform, sm1 shape.SupportMap,
	pose2 shape.Transform, sm2 shape.SupportMap,
	simplex *Simplex,
	initialDir mgl64.Vec3,
) Result {
	dir := initialDir
	if dir.LenSqr() < 1e-20 {
		dir = pose2.Position.Sub(pose1.Position)
	}
	if dir.LenSqr() < 1e-20 {
		dir = mgl64.Vec3{1, 0, 0}
	}

	simplex.Reset()
	simplex.Push(MinkowskiSupport(pose1, sm1, pose2, sm2, dir))

	for i := 0; i < maxIterations; i++ {
		v, pa, pb, contains := simplex.Solve()
		if contains {
			return Result{Status: Intersecting}
		}

		distSq := v.LenSqr()
		if distSq < touchTolerance {
			// The closest point of the reduced simplex is the origin but the
			// simplex does not enclose it: the shapes touch. Report an
			// intersection so the penetration query resolves the near-zero
			// depth.
			return Result{Status: Intersecting}
		}

		d := v.Mul(-1)
		w := MinkowskiSupport(pose1, sm1, pose2, sm2, d)

		// No point of the Minkowski difference lies meaningfully past the
		// supporting plane of v: converged.
		if distSq-v.Dot(w.W) <= relativeTolerance*distSq || simplex.ContainsPoint(w.W) {
			dist := v.Len()
			return Result{
				Status:   ClosestPointsFound,
				Point1:   pa,
				Point2:   pb,
				Distance: dist,
				Dir:      d.Mul(1 / dist),
			}
		}

		simplex.Push(w)
	}

	return Result{Status: Failed}
}
