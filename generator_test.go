package narrowphase

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akmonengine/narrowphase/query"
	"github.com/akmonengine/narrowphase/shape"
)

func poseAt(position mgl64.Vec3) shape.Transform {
	return shape.Transform{Position: position, Rotation: mgl64.QuatIdent()}
}

// stackedBoxes is the canonical shallow face-face scenario: a half-extent 1
// box under a narrower box overlapping it by 0.1 along z.
func stackedBoxes() (shape.Shape, shape.Transform, shape.Shape, shape.Transform) {
	lower := &shape.Cuboid{HalfExtents: mgl64.Vec3{1, 1, 1}}
	upper := &shape.Cuboid{HalfExtents: mgl64.Vec3{0.5, 0.5, 1}}
	return lower, poseAt(mgl64.Vec3{0, 0, 0}), upper, poseAt(mgl64.Vec3{0, 0, 1.9})
}

func TestGeneratorUpdate(t *testing.T) {
	t.Run("penetrating boxes produce a face manifold", func(t *testing.T) {
		s1, p1, s2, p2 := stackedBoxes()
		gen := NewGenerator(Dim3)
		ids := query.NewIDAllocator()

		handled, err := gen.Update(s1, p1, s2, p2, query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		require.True(t, handled)

		require.Equal(t, 4, gen.ContactCount())
		for _, tc := range gen.Manifold().Contacts() {
			assert.InDelta(t, 1, tc.Contact.Normal.Z(), 1e-6, "normal %v", tc.Contact.Normal)
			assert.InDelta(t, 0.1, tc.Contact.Depth, 1e-6)
			assert.InDelta(t, 1, tc.Contact.World1.Z(), 1e-6)
			assert.InDelta(t, 0.9, tc.Contact.World2.Z(), 1e-6)

			// Lower box face against an upper box corner.
			assert.Equal(t, shape.Face(4), tc.Feature1)
			assert.True(t, tc.Feature2.IsVertex(), "feature %v", tc.Feature2)
			assert.Equal(t, query.PlanePoint, tc.Kinematic.Kind)

			// Local points are world points brought into each box's frame.
			assert.InDelta(t, 1, tc.Local1.Z(), 1e-6)
			assert.InDelta(t, -1, tc.Local2.Z(), 1e-6)
		}
	})

	t.Run("identical cubes keep one contact per corner", func(t *testing.T) {
		a := &shape.Cuboid{HalfExtents: mgl64.Vec3{1, 1, 1}}
		b := &shape.Cuboid{HalfExtents: mgl64.Vec3{1, 1, 1}}
		gen := NewGenerator(Dim3)
		ids := query.NewIDAllocator()

		// Coincident faces: every corner is reported by both clipping
		// passes and must still collapse to a 4-point manifold.
		handled, err := gen.Update(a, poseAt(mgl64.Vec3{0, 0, 0}), b, poseAt(mgl64.Vec3{0, 0, 1.9}), query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		require.True(t, handled)

		require.Equal(t, 4, gen.ContactCount())
		corners := map[[2]float64]bool{}
		for _, tc := range gen.Manifold().Contacts() {
			assert.InDelta(t, 1, tc.Contact.Normal.Z(), 1e-6)
			assert.InDelta(t, 0.1, tc.Contact.Depth, 1e-6)
			corners[[2]float64{tc.Contact.World1.X(), tc.Contact.World1.Y()}] = true
		}
		assert.Len(t, corners, 4, "one contact per shared corner region")
	})

	t.Run("slot ids survive an identical frame", func(t *testing.T) {
		s1, p1, s2, p2 := stackedBoxes()
		gen := NewGenerator(Dim3)
		gen.Stats = &query.Stats{}
		ids := query.NewIDAllocator()

		_, err := gen.Update(s1, p1, s2, p2, query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		before := map[shape.FeatureID]int{}
		for _, tc := range gen.Manifold().Contacts() {
			before[tc.Feature2] = tc.ID
		}
		require.Len(t, before, 4)
		assert.Equal(t, uint64(4), gen.Stats.CacheMisses)

		_, err = gen.Update(s1, p1, s2, p2, query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		require.Equal(t, 4, gen.ContactCount())
		for _, tc := range gen.Manifold().Contacts() {
			assert.Equal(t, before[tc.Feature2], tc.ID, "slot of %v must persist", tc.Feature2)
		}
		assert.Equal(t, uint64(4), gen.Stats.CacheHits)
	})

	t.Run("separation within the margin yields negative depths", func(t *testing.T) {
		lower := &shape.Cuboid{HalfExtents: mgl64.Vec3{1, 1, 1}}
		upper := &shape.Cuboid{HalfExtents: mgl64.Vec3{0.5, 0.5, 1}}
		gen := NewGenerator(Dim3)
		ids := query.NewIDAllocator()

		handled, err := gen.Update(lower, poseAt(mgl64.Vec3{0, 0, 0}), upper, poseAt(mgl64.Vec3{0, 0, 2.05}), query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		require.True(t, handled)

		require.Equal(t, 4, gen.ContactCount())
		for _, tc := range gen.Manifold().Contacts() {
			assert.InDelta(t, -0.05, tc.Contact.Depth, 1e-6)
		}
	})

	t.Run("moving apart empties the manifold", func(t *testing.T) {
		s1, p1, s2, _ := stackedBoxes()
		gen := NewGenerator(Dim3)
		ids := query.NewIDAllocator()

		_, err := gen.Update(s1, p1, s2, poseAt(mgl64.Vec3{0, 0, 1.9}), query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		require.Equal(t, 4, gen.ContactCount())

		handled, err := gen.Update(s1, p1, s2, poseAt(mgl64.Vec3{0, 0, 5}), query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, 0, gen.ContactCount())
		assert.Empty(t, gen.Manifolds(nil))
	})

	t.Run("single contact pairs fall back to the witness points", func(t *testing.T) {
		a := &shape.Ball{Radius: 1}
		b := &shape.Ball{Radius: 1}
		gen := NewGenerator(Dim3)
		ids := query.NewIDAllocator()

		handled, err := gen.Update(a, poseAt(mgl64.Vec3{0, 0, 0}), b, poseAt(mgl64.Vec3{1.5, 0, 0}), query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		require.True(t, handled)

		require.Equal(t, 1, gen.ContactCount())
		tc := gen.Manifold().Contacts()[0]
		assert.InDelta(t, 0.5, tc.Contact.Depth, 1e-3)
		assert.InDelta(t, 1, tc.Contact.Normal.X(), 1e-3)
		assert.Equal(t, query.PointPoint, tc.Kinematic.Kind)
	})

	t.Run("pairs without a support map are not handled", func(t *testing.T) {
		ground := &shape.Plane{Normal: mgl64.Vec3{0, 0, 1}}
		box := &shape.Cuboid{HalfExtents: mgl64.Vec3{1, 1, 1}}
		gen := NewGenerator(Dim3)
		ids := query.NewIDAllocator()

		handled, err := gen.Update(ground, poseAt(mgl64.Vec3{}), box, poseAt(mgl64.Vec3{0, 0, 1}), query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		assert.False(t, handled)
		assert.Equal(t, 0, gen.ContactCount())
	})

	t.Run("deep crossing segments in the plane regime resolve a depth", func(t *testing.T) {
		horizontal := &shape.Segment{A: mgl64.Vec3{-1, 0, 0}, B: mgl64.Vec3{1, 0, 0}}
		vertical := &shape.Segment{A: mgl64.Vec3{0, -1, 0}, B: mgl64.Vec3{0, 1, 0}}
		gen := NewGenerator(Dim2)
		ids := query.NewIDAllocator()

		handled, err := gen.Update(horizontal, poseAt(mgl64.Vec3{}), vertical, poseAt(mgl64.Vec3{0, 0.9, 0}), query.NewPrediction(0.1), ids)
		require.NoError(t, err)
		require.True(t, handled)
		require.NotZero(t, gen.ContactCount())

		deepest := gen.Manifold().Contacts()[0]
		for _, tc := range gen.Manifold().Contacts() {
			if tc.Contact.Depth > deepest.Contact.Depth {
				deepest = tc
			}
		}
		assert.InDelta(t, 0.1, deepest.Contact.Depth, 1e-6)
		assert.InDelta(t, 1, deepest.Contact.Normal.Y(), 1e-6)
		assert.InDelta(t, 0, deepest.Contact.World1.X(), 1e-6)
	})

	t.Run("parallel segments in the plane regime", func(t *testing.T) {
		s1 := &shape.Segment{A: mgl64.Vec3{-1, 0, 0}, B: mgl64.Vec3{1, 0, 0}}
		s2 := &shape.Segment{A: mgl64.Vec3{-1, 0.15, 0}, B: mgl64.Vec3{1, 0.15, 0}}
		gen := NewGenerator(Dim2)
		ids := query.NewIDAllocator()

		handled, err := gen.Update(s1, poseAt(mgl64.Vec3{}), s2, poseAt(mgl64.Vec3{}), query.NewPrediction(0.2), ids)
		require.NoError(t, err)
		require.True(t, handled)

		require.Equal(t, 2, gen.ContactCount())
		for _, tc := range gen.Manifold().Contacts() {
			assert.InDelta(t, -0.15, tc.Contact.Depth, 1e-9)
			assert.InDelta(t, 1, tc.Contact.Normal.Y(), 1e-9)
		}
	})
}

func TestContactKinematic(t *testing.T) {
	pose := shape.NewTransform()

	point := func(id shape.FeatureID) *shape.ConvexPolyface {
		var p shape.ConvexPolyface
		p.Clear()
		p.PushVertex(mgl64.Vec3{}, id)
		p.FeatureID = id
		return &p
	}
	edge := func(id shape.FeatureID, a, b mgl64.Vec3) *shape.ConvexPolyface {
		var p shape.ConvexPolyface
		p.Clear()
		p.PushVertex(a, shape.Vertex(0))
		p.PushVertex(b, shape.Vertex(1))
		p.PushEdge(id)
		p.FeatureID = id
		return &p
	}
	face := func(id shape.FeatureID) *shape.ConvexPolyface {
		var p shape.ConvexPolyface
		p.Clear()
		for i, v := range []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}} {
			p.PushVertex(v, shape.Vertex(i))
			p.PushEdge(shape.Edge(i))
		}
		p.SetNormal(mgl64.Vec3{0, 0, 1})
		p.FeatureID = id
		return &p
	}

	t.Run("classification table", func(t *testing.T) {
		tests := []struct {
			name   string
			m1, m2 *shape.ConvexPolyface
			f1, f2 shape.FeatureID
			want   query.KinematicKind
		}{
			{"vertex vertex", point(shape.Vertex(0)), point(shape.Vertex(1)), shape.Vertex(0), shape.Vertex(1), query.PointPoint},
			{"vertex face", point(shape.Vertex(0)), face(shape.Face(2)), shape.Vertex(0), shape.Face(2), query.PointPlane},
			{"face vertex", face(shape.Face(2)), point(shape.Vertex(0)), shape.Face(2), shape.Vertex(0), query.PlanePoint},
			{"edge vertex", edge(shape.Edge(1), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 2, 0}), point(shape.Vertex(0)), shape.Edge(1), shape.Vertex(0), query.LinePoint},
			{"vertex edge", point(shape.Vertex(0)), edge(shape.Edge(1), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 2, 0}), shape.Vertex(0), shape.Edge(1), query.PointLine},
			{"edge edge", edge(shape.Edge(0), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}), edge(shape.Edge(1), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 2, 0}), shape.Edge(0), shape.Edge(1), query.LineLine},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				k, err := contactKinematic(Dim3, pose, tt.m1, tt.f1, pose, tt.m2, tt.f2)
				require.NoError(t, err)
				assert.Equal(t, tt.want, k.Kind)
			})
		}
	})

	t.Run("line kinematics carry local edge directions", func(t *testing.T) {
		rotated := shape.Transform{
			Position: mgl64.Vec3{},
			Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}),
		}
		// World edge along y on a frame rotated a quarter turn: locally the
		// edge runs along x.
		m1 := edge(shape.Edge(1), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 2, 0})
		k, err := contactKinematic(Dim3, rotated, m1, shape.Edge(1), pose, point(shape.Vertex(0)), shape.Vertex(0))
		require.NoError(t, err)
		require.Equal(t, query.LinePoint, k.Kind)
		assert.InDelta(t, 1, k.Dir1.X(), 1e-12)
		assert.InDelta(t, 0, k.Dir1.Y(), 1e-12)
	})

	t.Run("missing edge direction is a defect", func(t *testing.T) {
		m1 := point(shape.Edge(7))
		_, err := contactKinematic(Dim3, pose, m1, shape.Edge(7), pose, point(shape.Vertex(0)), shape.Vertex(0))
		assert.ErrorIs(t, err, ErrMissingEdgeDirection)
	})

	t.Run("planar regime uses edges as planes", func(t *testing.T) {
		k, err := contactKinematic(Dim2, pose,
			point(shape.Vertex(0)), shape.Vertex(0),
			pose, edge(shape.Edge(0), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}), shape.Edge(0))
		require.NoError(t, err)
		assert.Equal(t, query.PointPlane, k.Kind)
	})
}
