package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cuboid is an oriented box defined by its half-extents, centered on the
// origin of its local frame.
//
// Its feature indexing is fixed: vertex i has its sign bits encoded as
// bit0 = +x, bit1 = +y, bit2 = +z; the 12 edges are numbered 0-3 along x,
// 4-7 along y, 8-11 along z; the 6 faces are +x, -x, +y, -y, +z, -z.
type Cuboid struct {
	HalfExtents mgl64.Vec3
}

// cuboidFaceNormals indexes the outward normal of each face.
var cuboidFaceNormals = [6]mgl64.Vec3{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// cuboidFaceVertices lists each face's vertex loop, counterclockwise when
// viewed from outside the box.
var cuboidFaceVertices = [6][4]int{
	{1, 3, 7, 5}, // +x
	{0, 4, 6, 2}, // -x
	{2, 6, 7, 3}, // +y
	{0, 1, 5, 4}, // -y
	{4, 5, 7, 6}, // +z
	{0, 2, 3, 1}, // -z
}

// cuboidFaceEdges lists, per face, the edge id connecting loop vertex i to
// loop vertex (i+1) mod 4.
var cuboidFaceEdges = [6][4]int{
	{5, 11, 7, 9},  // +x
	{8, 6, 10, 4},  // -x
	{10, 3, 11, 1}, // +y
	{0, 9, 2, 8},   // -y
	{2, 7, 3, 6},   // +z
	{4, 1, 5, 0},   // -z
}

// cuboidEdgeVertices lists the two corner indices of each edge, the lower
// corner first.
var cuboidEdgeVertices = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along x
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along z
}

func (c *Cuboid) AsSupportMap() SupportMap { return c }

// vertex returns the local position of corner i.
func (c *Cuboid) vertex(i int) mgl64.Vec3 {
	v := c.HalfExtents
	if i&1 == 0 {
		v[0] = -v[0]
	}
	if i&2 == 0 {
		v[1] = -v[1]
	}
	if i&4 == 0 {
		v[2] = -v[2]
	}
	return v
}

// vertexToward returns the corner index supporting the local direction.
// Zero components resolve to the positive side.
func cuboidVertexToward(dir mgl64.Vec3) int {
	i := 0
	if dir.X() >= 0 {
		i |= 1
	}
	if dir.Y() >= 0 {
		i |= 2
	}
	if dir.Z() >= 0 {
		i |= 4
	}
	return i
}

func (c *Cuboid) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return c.vertex(cuboidVertexToward(direction))
}

func (c *Cuboid) SupportFaceToward(pose Transform, dir mgl64.Vec3, out *ConvexPolyface) {
	localDir := pose.InverseApplyVec(dir)

	best := 0
	bestDot := math.Inf(-1)
	for i, n := range cuboidFaceNormals {
		if dot := localDir.Dot(n); dot > bestDot {
			bestDot = dot
			best = i
		}
	}

	c.fillFace(pose, best, out)
}

func (c *Cuboid) fillFace(pose Transform, face int, out *ConvexPolyface) {
	out.Clear()
	for i := 0; i < 4; i++ {
		corner := cuboidFaceVertices[face][i]
		out.PushVertex(pose.Apply(c.vertex(corner)), Vertex(corner))
		out.PushEdge(Edge(cuboidFaceEdges[face][i]))
	}
	out.SetNormal(pose.ApplyVec(cuboidFaceNormals[face]))
	out.FeatureID = Face(face)
}

func (c *Cuboid) SupportFeatureToward(pose Transform, dir mgl64.Vec3, angTol float64, out *ConvexPolyface) {
	localDir := pose.InverseApplyVec(dir)
	if localDir.LenSqr() < 1e-20 {
		c.SupportFaceToward(pose, dir, out)
		return
	}
	localDir = localDir.Normalize()

	// An axis is free when the direction is orthogonal to it within the
	// angular tolerance; the supported feature extends along free axes.
	seps := math.Sin(angTol) + 1e-12
	var free [3]bool
	nfree := 0
	for i := 0; i < 3; i++ {
		if math.Abs(localDir[i]) <= seps {
			free[i] = true
			nfree++
		}
	}

	switch nfree {
	case 0:
		corner := cuboidVertexToward(localDir)
		out.Clear()
		out.PushVertex(pose.Apply(c.vertex(corner)), Vertex(corner))
		out.FeatureID = Vertex(corner)
	case 1:
		axis := 0
		for i, f := range free {
			if f {
				axis = i
			}
		}
		// Both corners of the edge: fixed signs from the direction, the
		// free axis taking both values (negative side first).
		lo := cuboidVertexToward(localDir) &^ (1 << axis)
		hi := lo | 1<<axis
		edge := cuboidEdgeIndex(lo, hi)

		out.Clear()
		out.PushVertex(pose.Apply(c.vertex(lo)), Vertex(lo))
		out.PushVertex(pose.Apply(c.vertex(hi)), Vertex(hi))
		out.PushEdge(Edge(edge))
		out.FeatureID = Edge(edge)
	default:
		c.SupportFaceToward(pose, dir, out)
	}
}

// cuboidEdgeIndex returns the id of the edge joining two adjacent corners.
func cuboidEdgeIndex(a, b int) int {
	if a > b {
		a, b = b, a
	}
	for i, e := range cuboidEdgeVertices {
		if e[0] == a && e[1] == b {
			return i
		}
	}
	return 0
}

func (c *Cuboid) NormalCone(localPoint mgl64.Vec3, feature FeatureID) NormalCone {
	switch feature.Kind {
	case FeatureFace:
		return NormalCone{Axis: cuboidFaceNormals[feature.Index]}
	case FeatureEdge:
		var sum mgl64.Vec3
		var first mgl64.Vec3
		found := false
		for f := 0; f < 6; f++ {
			for i := 0; i < 4; i++ {
				if cuboidFaceEdges[f][i] == feature.Index {
					n := cuboidFaceNormals[f]
					if !found {
						first = n
						found = true
					}
					sum = sum.Add(n)
				}
			}
		}
		axis := sum.Normalize()
		span := math.Acos(mgl64.Clamp(axis.Dot(first), -1, 1))
		return NormalCone{Axis: axis, Span: span}
	case FeatureVertex:
		var sum mgl64.Vec3
		span := 0.0
		var normals []mgl64.Vec3
		for f := 0; f < 6; f++ {
			for i := 0; i < 4; i++ {
				if cuboidFaceVertices[f][i] == feature.Index {
					sum = sum.Add(cuboidFaceNormals[f])
					normals = append(normals, cuboidFaceNormals[f])
				}
			}
		}
		axis := sum.Normalize()
		for _, n := range normals {
			if a := math.Acos(mgl64.Clamp(axis.Dot(n), -1, 1)); a > span {
				span = a
			}
		}
		return NormalCone{Axis: axis, Span: span}
	}

	// Unknown feature: any outward direction is admissible.
	axis := localPoint
	if axis.LenSqr() < 1e-20 {
		axis = mgl64.Vec3{0, 1, 0}
	} else {
		axis = axis.Normalize()
	}
	return NormalCone{Axis: axis, Span: math.Pi}
}
