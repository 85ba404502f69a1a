package gjk

import "github.com/go-gl/mathgl/mgl64"

// SupportPoint is a point of the Minkowski difference annotated with the
// support points of both shapes that produced it: W = A - B. Carrying A and B
// along lets the simplex reconstruct witness points on each shape from the
// barycentric coordinates of its closest point to the origin.
type SupportPoint struct {
	W mgl64.Vec3
	A mgl64.Vec3
	B mgl64.Vec3
}

// Simplex holds 1-4 annotated points of the Minkowski difference. It evolves
// during GJK iterations, reduced each step to the minimal feature supporting
// the point closest to the origin.
type Simplex struct {
	Points [4]SupportPoint
	Count  int

	// Barycentric weights of the last reduction, parallel to Points.
	weights [4]float64
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) Push(p SupportPoint) {
	s.Points[s.Count] = p
	s.Count++
}

// ContainsPoint reports whether a Minkowski point already is a simplex
// vertex, within a small tolerance. Re-adding a known support point means
// GJK can make no further progress.
func (s *Simplex) ContainsPoint(w mgl64.Vec3) bool {
	for i := 0; i < s.Count; i++ {
		if s.Points[i].W.Sub(w).LenSqr() < 1e-20 {
			return true
		}
	}
	return false
}

// Solve computes the point of the simplex closest to the origin, reduces the
// simplex to the feature supporting that point, and returns the closest point
// together with the witness points on both shapes. contains is true when the
// simplex is a tetrahedron enclosing the origin (the shapes intersect).
func (s *Simplex) Solve() (v, pa, pb mgl64.Vec3, contains bool) {
	switch s.Count {
	case 1:
		p := s.Points[0]
		return p.W, p.A, p.B, false
	case 2:
		return s.solveSegment()
	case 3:
		bary, used := closestOnTriangle(s.Points[0], s.Points[1], s.Points[2])
		s.reduce([3]SupportPoint{s.Points[0], s.Points[1], s.Points[2]}, bary, used)
		v, pa, pb = s.combine()
		return v, pa, pb, false
	case 4:
		return s.solveTetrahedron()
	}
	return mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{}, false
}

func (s *Simplex) solveSegment() (v, pa, pb mgl64.Vec3, contains bool) {
	p, q := s.Points[0], s.Points[1]
	ab := q.W.Sub(p.W)
	den := ab.LenSqr()
	if den < 1e-20 {
		s.Count = 1
		return p.W, p.A, p.B, false
	}

	t := -p.W.Dot(ab) / den
	if t <= 0 {
		s.Count = 1
		return p.W, p.A, p.B, false
	}
	if t >= 1 {
		s.Points[0] = q
		s.Count = 1
		return q.W, q.A, q.B, false
	}

	v = p.W.Mul(1 - t).Add(q.W.Mul(t))
	pa = p.A.Mul(1 - t).Add(q.A.Mul(t))
	pb = p.B.Mul(1 - t).Add(q.B.Mul(t))
	return v, pa, pb, false
}

func (s *Simplex) solveTetrahedron() (v, pa, pb mgl64.Vec3, contains bool) {
	pts := s.Points

	inside := true
	bestDist := -1.0
	var bestPts [3]SupportPoint
	var bestBary [3]float64
	var bestUsed [3]bool

	// The four faces, each with the opposite vertex used to orient the test.
	faces := [4][4]int{
		{0, 1, 2, 3},
		{0, 2, 3, 1},
		{0, 3, 1, 2},
		{1, 3, 2, 0},
	}

	for _, f := range faces {
		a, b, c, d := pts[f[0]], pts[f[1]], pts[f[2]], pts[f[3]]
		n := b.W.Sub(a.W).Cross(c.W.Sub(a.W))
		if n.LenSqr() < 1e-20 {
			// Flat face, the volume test is meaningless.
			inside = false
		}
		signO := -n.Dot(a.W)
		signD := n.Dot(d.W.Sub(a.W))

		if signO*signD >= 0 {
			// Origin on the inner side of this face.
			continue
		}
		inside = false

		bary, used := closestOnTriangle(a, b, c)
		var cp mgl64.Vec3
		for i, p := range [3]SupportPoint{a, b, c} {
			cp = cp.Add(p.W.Mul(bary[i]))
		}
		dist := cp.LenSqr()
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			bestPts = [3]SupportPoint{a, b, c}
			bestBary = bary
			bestUsed = used
		}
	}

	if inside {
		return mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{}, true
	}
	if bestDist < 0 {
		// Degenerate tetrahedron with no face to project on: drop the oldest
		// point and retry on the remaining triangle.
		s.Points[0], s.Points[1], s.Points[2] = s.Points[1], s.Points[2], s.Points[3]
		s.Count = 3
		return s.Solve()
	}

	s.reduce(bestPts, bestBary, bestUsed)
	v, pa, pb = s.combine()
	return v, pa, pb, false
}

// reduce rewrites the simplex as the subset of the three candidate points
// that actually supports the closest point, keeping barycentric weights
// alongside for combine.
func (s *Simplex) reduce(pts [3]SupportPoint, bary [3]float64, used [3]bool) {
	s.Count = 0
	for i := 0; i < 3; i++ {
		if used[i] {
			s.Points[s.Count] = pts[i]
			s.weights[s.Count] = bary[i]
			s.Count++
		}
	}
}

// combine evaluates the closest point and both witness points from the
// current simplex and the weights stored by reduce.
func (s *Simplex) combine() (v, pa, pb mgl64.Vec3) {
	for i := 0; i < s.Count; i++ {
		w := s.weights[i]
		v = v.Add(s.Points[i].W.Mul(w))
		pa = pa.Add(s.Points[i].A.Mul(w))
		pb = pb.Add(s.Points[i].B.Mul(w))
	}
	return v, pa, pb
}

// closestOnTriangle projects the origin onto the triangle abc, returning the
// barycentric coordinates of the closest point and which vertices carry a
// nonzero weight. Classic Voronoi-region case analysis.
func closestOnTriangle(a, b, c SupportPoint) (bary [3]float64, used [3]bool) {
	ab := b.W.Sub(a.W)
	ac := c.W.Sub(a.W)
	ap := a.W.Mul(-1)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return [3]float64{1, 0, 0}, [3]bool{true, false, false}
	}

	bp := b.W.Mul(-1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return [3]float64{0, 1, 0}, [3]bool{false, true, false}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		t := d1 / (d1 - d3)
		return [3]float64{1 - t, t, 0}, [3]bool{true, true, false}
	}

	cp := c.W.Mul(-1)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return [3]float64{0, 0, 1}, [3]bool{false, false, true}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		t := d2 / (d2 - d6)
		return [3]float64{1 - t, 0, t}, [3]bool{true, false, true}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		t := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return [3]float64{0, 1 - t, t}, [3]bool{false, true, true}
	}

	den := 1.0 / (va + vb + vc)
	v := vb * den
	w := vc * den
	return [3]float64{1 - v - w, v, w}, [3]bool{true, true, true}
}
