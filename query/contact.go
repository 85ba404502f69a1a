package query

import "github.com/go-gl/mathgl/mgl64"

// Contact is a single contact between two shapes: one world-space point per
// shape, a unit normal pointing from the first shape toward the second, and
// a signed depth (positive when penetrating, negative when the shapes are
// separated but within the prediction margin).
type Contact struct {
	World1 mgl64.Vec3
	World2 mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
}

// NewContact builds a contact with an explicit depth.
func NewContact(world1, world2, normal mgl64.Vec3, depth float64) Contact {
	return Contact{World1: world1, World2: world2, Normal: normal, Depth: depth}
}

// NewContactWoDepth builds a contact deriving the depth from the witness
// points: the penetration is the extent by which world1 lies past world2
// along the normal.
func NewContactWoDepth(world1, world2, normal mgl64.Vec3) Contact {
	depth := normal.Dot(world1.Sub(world2))
	return Contact{World1: world1, World2: world2, Normal: normal, Depth: depth}
}

// Flip returns the same contact seen from the other shape.
func (c Contact) Flip() Contact {
	return Contact{World1: c.World2, World2: c.World1, Normal: c.Normal.Mul(-1), Depth: c.Depth}
}

// Prediction groups the margins within which near-misses still count as
// contacts, letting the narrow phase anticipate contact before actual
// penetration.
type Prediction struct {
	// Linear is the extra distance within which separated shapes still
	// produce contact points.
	Linear float64
	// Angular1 and Angular2 widen the support-feature queries of each shape
	// by an angle, in radians.
	Angular1 float64
	Angular2 float64
}

// NewPrediction returns a prediction with the given linear margin and no
// angular widening.
func NewPrediction(linear float64) Prediction {
	return Prediction{Linear: linear}
}
