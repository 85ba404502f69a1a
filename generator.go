// Package narrowphase generates persistent contact manifolds between convex
// shapes exposing support mappings.
//
// The entry point is the Generator: for a pair of shapes it runs the
// GJK/EPA proximity query, extracts the locally closest features of both
// shapes along the contact normal, clips them against each other and commits
// the resulting contact points into a persistent manifold whose points keep
// their identity frame-to-frame through feature-id matching. The manifold
// feeds a physics solver that warm-starts impulses on the stable cache slot
// ids.
package narrowphase

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/gjk"
	"github.com/akmonengine/narrowphase/query"
	"github.com/akmonengine/narrowphase/shape"
)

// ErrMissingEdgeDirection reports a shape returning an edge feature whose
// direction cannot be retrieved from its polyface. This is a contract
// violation by the shape, fatal to the current pair update: line-contact
// kinematics cannot be fabricated without the direction.
var ErrMissingEdgeDirection = errors.New("narrowphase: edge feature without retrievable direction")

// Dim selects the ambient dimensionality of a generator. Shapes of the 2D
// regime live in the z = 0 plane.
type Dim int

const (
	Dim2 Dim = 2
	Dim3 Dim = 3
)

// ContactGenerator is a persistent pair-wise contact generator. The boolean
// result of Update reports whether the generator could handle the pair at
// all; an empty manifold on a handled pair is a valid result meaning the
// shapes are apart.
type ContactGenerator interface {
	Update(shape1 shape.Shape, pose1 shape.Transform, shape2 shape.Shape, pose2 shape.Transform, prediction query.Prediction, ids *query.IDAllocator) (bool, error)
	ContactCount() int
	Manifolds(out []*query.Manifold) []*query.Manifold
}

// Generator computes a persistent contact manifold between two shapes with
// support mappings, based on the GJK algorithm. Each instance owns its
// warm-start state, scratch buffers and manifold exclusively; distinct pairs
// may be updated concurrently as long as each keeps its own generator and id
// allocator access is made safe.
type Generator struct {
	dim     Dim
	clipper polyfaceClipper

	simplex gjk.Simplex

	lastDir    mgl64.Vec3
	hasLastDir bool

	// Reserved for the optimal-direction fast path; not populated yet.
	lastOptimalDir mgl64.Vec3

	manifold1   shape.ConvexPolyface
	manifold2   shape.ConvexPolyface
	newContacts []rawContact

	contactManifold *query.Manifold

	// Stats, when non-nil, tallies manifold cache hits and misses. Purely
	// diagnostic.
	Stats *query.Stats
}

// NewGenerator creates a generator for the given ambient dimensionality.
func NewGenerator(dim Dim) *Generator {
	g := &Generator{
		dim:             dim,
		contactManifold: query.NewManifold(),
	}
	if dim == Dim2 {
		g.clipper = clip2D{}
	} else {
		g.clipper = &clip3D{}
	}
	return g
}

// Update recomputes the manifold for the current poses.
//
// It returns false when either shape lacks a support mapping (the pair must
// be routed to another generator; nothing is modified). A non-nil error is a
// defect in the feature data reported by a shape; it aborts this pair's
// generation for the frame, leaving the manifold partially updated, and
// should not abort the surrounding simulation step.
func (g *Generator) Update(
	shape1 shape.Shape, pose1 shape.Transform,
	shape2 shape.Shape, pose2 shape.Transform,
	prediction query.Prediction,
	ids *query.IDAllocator,
) (bool, error) {
	sm1 := shape1.AsSupportMap()
	sm2 := shape2.AsSupportMap()
	if sm1 == nil || sm2 == nil {
		return false, nil
	}

	res := contactQuery(g.dim, pose1, sm1, pose2, sm2, prediction.Linear, &g.simplex, g.warmStartDir())

	g.newContacts = g.newContacts[:0]
	g.manifold1.Clear()
	g.manifold2.Clear()

	switch res.status {
	case queryProjection:
		g.lastDir, g.hasLastDir = res.dir, true
		c := res.contact

		if c.Depth > 0 {
			// Deep contact: take the whole support faces, a generous
			// feature that covers the overlap region.
			sm1.SupportFaceToward(pose1, c.Normal, &g.manifold1)
			sm2.SupportFaceToward(pose2, c.Normal.Mul(-1), &g.manifold2)
		} else {
			// Separated within the margin: take the narrower support
			// feature so a near-miss does not produce an over-wide manifold.
			sm1.SupportFeatureToward(pose1, c.Normal, prediction.Angular1, &g.manifold1)
			sm2.SupportFeatureToward(pose2, c.Normal.Mul(-1), prediction.Angular2, &g.manifold2)
		}

		g.newContacts = g.clipper.clip(&g.manifold1, &g.manifold2, c.Normal, g.newContacts)

		// Degenerate feature pair (e.g. two single points): fall back to
		// the witness contact of the proximity query itself.
		if len(g.newContacts) == 0 {
			g.newContacts = append(g.newContacts, rawContact{
				contact: c,
				f1:      g.manifold1.FeatureID,
				f2:      g.manifold2.FeatureID,
			})
		}

	case queryNoIntersection:
		g.lastDir, g.hasLastDir = res.dir, true

	case queryIndeterminate:
		// Nothing can be concluded; leave the manifold untouched.
		return true, nil
	}

	if err := g.commitContacts(pose1, sm1, pose2, sm2, ids); err != nil {
		return true, err
	}
	return true, nil
}

// ContactCount returns the number of active contact points.
func (g *Generator) ContactCount() int {
	return g.contactManifold.Len()
}

// Manifolds appends this generator's manifold to out when it holds at least
// one contact.
func (g *Generator) Manifolds(out []*query.Manifold) []*query.Manifold {
	if g.contactManifold.Len() != 0 {
		out = append(out, g.contactManifold)
	}
	return out
}

// Manifold returns the persistent manifold owned by the generator.
func (g *Generator) Manifold() *query.Manifold {
	return g.contactManifold
}

func (g *Generator) warmStartDir() mgl64.Vec3 {
	if !g.hasLastDir {
		return mgl64.Vec3{}
	}
	return g.lastDir
}

// commitContacts merges the raw contacts of this update into the persistent
// manifold: previous records are snapshot for feature matching, each raw
// contact gets its kinematic and normal cones, and records whose feature
// pair survives keep their cache slot id.
func (g *Generator) commitContacts(
	pose1 shape.Transform, sm1 shape.SupportMap,
	pose2 shape.Transform, sm2 shape.SupportMap,
	ids *query.IDAllocator,
) error {
	g.contactManifold.SaveCacheAndClear(ids)

	for _, rc := range g.newContacts {
		kinematic, err := contactKinematic(g.dim, pose1, &g.manifold1, rc.f1, pose2, &g.manifold2, rc.f2)
		if err != nil {
			return err
		}

		local1 := pose1.InverseApply(rc.contact.World1)
		local2 := pose2.InverseApply(rc.contact.World2)
		cone1 := sm1.NormalCone(local1, rc.f1)
		cone2 := sm2.NormalCone(local2, rc.f2)

		matched := g.contactManifold.Push(rc.contact, local1, local2, cone1, cone2, rc.f1, rc.f2, kinematic, ids)
		if g.Stats != nil {
			if matched {
				g.Stats.CacheHits++
			} else {
				g.Stats.CacheMisses++
			}
		}
	}

	return nil
}

// contactKinematic classifies how a contact between two features must be
// tracked as the bodies move. Line kinematics need the edge direction in the
// owning shape's local frame; a missing direction is a defect of the shape.
// Combinations the clipper cannot produce default to PointPoint.
func contactKinematic(
	dim Dim,
	pose1 shape.Transform, manifold1 *shape.ConvexPolyface, f1 shape.FeatureID,
	pose2 shape.Transform, manifold2 *shape.ConvexPolyface, f2 shape.FeatureID,
) (query.Kinematic, error) {
	if dim == Dim2 {
		switch {
		case f1.IsVertex() && f2.IsVertex():
			return query.Kinematic{Kind: query.PointPoint}, nil
		case f1.IsVertex() && f2.IsEdge():
			return query.Kinematic{Kind: query.PointPlane}, nil
		case f1.IsEdge() && f2.IsVertex():
			return query.Kinematic{Kind: query.PlanePoint}, nil
		}
		return query.Kinematic{Kind: query.PointPoint}, nil
	}

	switch {
	case f1.IsVertex() && f2.IsVertex():
		return query.Kinematic{Kind: query.PointPoint}, nil

	case f1.IsVertex() && f2.IsFace():
		return query.Kinematic{Kind: query.PointPlane}, nil

	case f1.IsFace() && f2.IsVertex():
		return query.Kinematic{Kind: query.PlanePoint}, nil

	case f1.IsEdge() && f2.IsVertex():
		dir1, ok := manifold1.EdgeDirection(f1)
		if !ok {
			return query.Kinematic{}, ErrMissingEdgeDirection
		}
		return query.Kinematic{Kind: query.LinePoint, Dir1: pose1.InverseApplyVec(dir1)}, nil

	case f1.IsVertex() && f2.IsEdge():
		dir2, ok := manifold2.EdgeDirection(f2)
		if !ok {
			return query.Kinematic{}, ErrMissingEdgeDirection
		}
		return query.Kinematic{Kind: query.PointLine, Dir2: pose2.InverseApplyVec(dir2)}, nil

	case f1.IsEdge() && f2.IsEdge():
		dir1, ok := manifold1.EdgeDirection(f1)
		if !ok {
			return query.Kinematic{}, ErrMissingEdgeDirection
		}
		dir2, ok := manifold2.EdgeDirection(f2)
		if !ok {
			return query.Kinematic{}, ErrMissingEdgeDirection
		}
		return query.Kinematic{
			Kind: query.LineLine,
			Dir1: pose1.InverseApplyVec(dir1),
			Dir2: pose2.InverseApplyVec(dir2),
		}, nil
	}

	return query.Kinematic{Kind: query.PointPoint}, nil
}
