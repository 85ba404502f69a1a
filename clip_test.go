package narrowphase

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/shape"
)

func segmentPolyface(a, b mgl64.Vec3) *shape.ConvexPolyface {
	s := &shape.Segment{A: a, B: b}
	var out shape.ConvexPolyface
	s.SupportFaceToward(shape.NewTransform(), mgl64.Vec3{0, 1, 0}, &out)
	return &out
}

// polygonPolyface builds a face polyface from an explicit vertex loop lying
// in a z = constant plane.
func polygonPolyface(normal mgl64.Vec3, loop ...mgl64.Vec3) *shape.ConvexPolyface {
	var out shape.ConvexPolyface
	out.Clear()
	for i, v := range loop {
		out.PushVertex(v, shape.Vertex(i))
		out.PushEdge(shape.Edge(i))
	}
	out.SetNormal(normal)
	out.FeatureID = shape.Face(0)
	return &out
}

func TestClip2D(t *testing.T) {
	normal := mgl64.Vec3{0, 1, 0}

	t.Run("partial overlap yields both overlap endpoints", func(t *testing.T) {
		m1 := segmentPolyface(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0})
		m2 := segmentPolyface(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{3, 0, 0})

		contacts := clip2D{}.clip(m1, m2, normal, nil)
		if len(contacts) != 2 {
			t.Fatalf("expected 2 contacts, got %d", len(contacts))
		}

		xs := map[float64]bool{}
		for _, rc := range contacts {
			xs[rc.contact.World1.X()] = true
			// Both segments lie on y = 0: the clipped points coincide.
			if d := rc.contact.World1.Sub(rc.contact.World2); d.Len() > 1e-12 {
				t.Errorf("witness points differ by %v", d)
			}
			if rc.contact.Depth != 0 {
				t.Errorf("depth %v, want 0", rc.contact.Depth)
			}
		}
		if !xs[1] || !xs[2] {
			t.Errorf("overlap endpoints %v, want x = 1 and x = 2", xs)
		}
	})

	t.Run("contained segment clips to its own endpoints", func(t *testing.T) {
		m1 := segmentPolyface(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0})
		m2 := segmentPolyface(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1.5, 0, 0})

		contacts := clip2D{}.clip(m1, m2, normal, nil)
		if len(contacts) != 2 {
			t.Fatalf("expected 2 contacts, got %d", len(contacts))
		}
		for _, rc := range contacts {
			if x := rc.contact.World2.X(); x != 0.5 && x != 1.5 {
				t.Errorf("contact at x = %v, want an endpoint of the inner segment", x)
			}
			// The exact side is the inner segment's vertex, the outer side
			// is interpolated and tagged with the whole feature.
			if !rc.f2.IsVertex() {
				t.Errorf("inner feature %v, want a vertex", rc.f2)
			}
			if rc.f1 != m1.FeatureID {
				t.Errorf("outer feature %v, want %v", rc.f1, m1.FeatureID)
			}
		}
	})

	t.Run("disjoint segments yield nothing", func(t *testing.T) {
		m1 := segmentPolyface(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0})
		m2 := segmentPolyface(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{3, 0, 0})

		if contacts := (clip2D{}).clip(m1, m2, normal, nil); len(contacts) != 0 {
			t.Fatalf("expected no contacts, got %d", len(contacts))
		}
	})

	t.Run("point feature cannot be clipped", func(t *testing.T) {
		var m1 shape.ConvexPolyface
		m1.Clear()
		m1.PushVertex(mgl64.Vec3{0, 0, 0}, shape.Vertex(0))
		m1.FeatureID = shape.Vertex(0)
		m2 := segmentPolyface(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0})

		if contacts := (clip2D{}).clip(&m1, m2, normal, nil); len(contacts) != 0 {
			t.Fatalf("expected no contacts, got %d", len(contacts))
		}
	})
}

func TestClip3D(t *testing.T) {
	normal := mgl64.Vec3{0, 0, 1}

	t.Run("small face inside a large face", func(t *testing.T) {
		m1 := polygonPolyface(mgl64.Vec3{0, 0, 1},
			mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, -1, 0}, mgl64.Vec3{1, 1, 0}, mgl64.Vec3{-1, 1, 0})
		m2 := polygonPolyface(mgl64.Vec3{0, 0, -1},
			mgl64.Vec3{-0.5, -0.5, 0.1}, mgl64.Vec3{-0.5, 0.5, 0.1}, mgl64.Vec3{0.5, 0.5, 0.1}, mgl64.Vec3{0.5, -0.5, 0.1})

		var c clip3D
		contacts := c.clip(m1, m2, normal, nil)
		if len(contacts) != 4 {
			t.Fatalf("expected 4 contacts, got %d", len(contacts))
		}
		for _, rc := range contacts {
			if rc.f1 != m1.FeatureID || !rc.f2.IsVertex() {
				t.Errorf("feature pair %v / %v, want whole face against a vertex", rc.f1, rc.f2)
			}
			// The large face point is the small face vertex ray-cast onto
			// the z = 0 plane.
			if rc.contact.World1.Z() != 0 || rc.contact.World2.Z() != 0.1 {
				t.Errorf("witness points %v / %v off their planes", rc.contact.World1, rc.contact.World2)
			}
			if math.Abs(rc.contact.Depth-(-0.1)) > 1e-12 {
				t.Errorf("depth %v, want -0.1", rc.contact.Depth)
			}
		}
	})

	t.Run("crossed faces meet on their edges", func(t *testing.T) {
		m1 := polygonPolyface(mgl64.Vec3{0, 0, 1},
			mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, -1, 0}, mgl64.Vec3{1, 1, 0}, mgl64.Vec3{-1, 1, 0})
		// The same square rotated 45 degrees: all contacts come from edge
		// crossings, eight of them.
		m2 := polygonPolyface(mgl64.Vec3{0, 0, -1},
			mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{0, -1.5, 0}, mgl64.Vec3{-1.5, 0, 0}, mgl64.Vec3{0, 1.5, 0})

		var c clip3D
		contacts := c.clip(m1, m2, normal, nil)
		if len(contacts) != 8 {
			t.Fatalf("expected 8 contacts, got %d", len(contacts))
		}
		seen := map[[2]shape.FeatureID]bool{}
		for _, rc := range contacts {
			if !rc.f1.IsEdge() || !rc.f2.IsEdge() {
				t.Errorf("feature pair %v / %v, want edge against edge", rc.f1, rc.f2)
			}
			key := [2]shape.FeatureID{rc.f1, rc.f2}
			if seen[key] {
				t.Errorf("duplicate feature pair %v", key)
			}
			seen[key] = true
		}
	})

	t.Run("two degenerate features are left to the fallback", func(t *testing.T) {
		m1 := segmentPolyface(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0})
		m2 := segmentPolyface(mgl64.Vec3{-1, 0, 0.1}, mgl64.Vec3{1, 0, 0.1})

		var c clip3D
		if contacts := c.clip(m1, m2, normal, nil); len(contacts) != 0 {
			t.Fatalf("expected no contacts, got %d", len(contacts))
		}
	})
}

func TestPointInPoly2D(t *testing.T) {
	square := []mgl64.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	tests := []struct {
		name string
		pt   mgl64.Vec2
		want bool
	}{
		{"center", mgl64.Vec2{0, 0}, true},
		{"inside corner region", mgl64.Vec2{0.9, -0.9}, true},
		{"outside", mgl64.Vec2{1.5, 0}, false},
		{"on an edge", mgl64.Vec2{1, 0}, true},
		{"far outside diagonal", mgl64.Vec2{2, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pointInPoly2D(tt.pt, square); got != tt.want {
				t.Errorf("pointInPoly2D(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}

	t.Run("clockwise winding works too", func(t *testing.T) {
		cw := []mgl64.Vec2{{-1, 1}, {1, 1}, {1, -1}, {-1, -1}}
		if !pointInPoly2D(mgl64.Vec2{0, 0}, cw) {
			t.Error("center must be inside regardless of winding")
		}
		if pointInPoly2D(mgl64.Vec2{2, 0}, cw) {
			t.Error("outside point reported inside")
		}
	})
}

func TestSegmentsClosestPoints(t *testing.T) {
	t.Run("proper crossing", func(t *testing.T) {
		s, tt, interior := segmentsClosestPoints(
			mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0},
			mgl64.Vec2{0, -1}, mgl64.Vec2{0, 1},
		)
		if !interior {
			t.Fatal("crossing segments must report an interior pair")
		}
		if math.Abs(s-0.5) > 1e-12 || math.Abs(tt-0.5) > 1e-12 {
			t.Errorf("parameters %v, %v, want 0.5, 0.5", s, tt)
		}
	})

	t.Run("endpoint touch is not interior", func(t *testing.T) {
		_, _, interior := segmentsClosestPoints(
			mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0},
			mgl64.Vec2{1, -1}, mgl64.Vec2{1, 1},
		)
		if interior {
			t.Error("touch at an endpoint must not count as interior")
		}
	})

	t.Run("parallel segments are never interior", func(t *testing.T) {
		_, _, interior := segmentsClosestPoints(
			mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0},
			mgl64.Vec2{-1, 1}, mgl64.Vec2{1, 1},
		)
		if interior {
			t.Error("parallel segments must not produce an edge contact")
		}
	})
}
