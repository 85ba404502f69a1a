package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/epa"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/akmonengine/narrowphase/query"
	"github.com/akmonengine/narrowphase/shape"
)

// contactQueryStatus is the trichotomy of a narrow-phase proximity query.
type contactQueryStatus int

const (
	// queryProjection: a witness contact and a direction were found, either
	// penetrating (depth > 0) or separated within the margin (depth <= 0).
	queryProjection contactQueryStatus = iota
	// queryNoIntersection: the shapes are farther apart than the margin;
	// only the separating direction is reported.
	queryNoIntersection
	// queryIndeterminate: the query degenerated; nothing can be concluded.
	queryIndeterminate
)

type contactQueryResult struct {
	status  contactQueryStatus
	contact query.Contact
	dir     mgl64.Vec3
}

// contactQuery composes the GJK closest-point query with the EPA penetration
// query: separated shapes within the margin yield a negative-depth contact,
// overlapping shapes a positive-depth one. The planar regime uses the polygon
// flavor of the penetration query, since its Minkowski differences are flat.
func contactQuery(
	dim Dim,
	pose1 shape.Transform, sm1 shape.SupportMap,
	pose2 shape.Transform, sm2 shape.SupportMap,
	margin float64,
	simplex *gjk.Simplex,
	initialDir mgl64.Vec3,
) contactQueryResult {
	res := gjk.ClosestPoints(pose1, sm1, pose2, sm2, simplex, initialDir)

	switch res.Status {
	case gjk.ClosestPointsFound:
		if res.Distance <= margin {
			return contactQueryResult{
				status:  queryProjection,
				contact: query.NewContact(res.Point1, res.Point2, res.Dir, -res.Distance),
				dir:     res.Dir,
			}
		}
		return contactQueryResult{status: queryNoIntersection, dir: res.Dir}

	case gjk.Intersecting:
		var pen epa.Result
		var err error
		if dim == Dim2 {
			pen, err = epa.PenetrationPlanar(pose1, sm1, pose2, sm2, simplex)
		} else {
			pen, err = epa.Penetration(pose1, sm1, pose2, sm2, simplex)
		}
		if err != nil {
			return contactQueryResult{status: queryIndeterminate}
		}
		return contactQueryResult{
			status:  queryProjection,
			contact: query.NewContact(pen.Point1, pen.Point2, pen.Normal, pen.Depth),
			dir:     pen.Normal,
		}
	}

	return contactQueryResult{status: queryIndeterminate}
}
