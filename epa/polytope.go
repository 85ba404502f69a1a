package epa

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/gjk"
)

// PolytopeBuilder manages polytope expansion with dynamic buffers reused
// across queries through a pool.
type PolytopeBuilder struct {
	faces []Face

	// Edge tracking for boundary detection of the visible region.
	edges []edgeEntry

	// Visible face tracking.
	visibleIndices []int

	// Unique vertices of the current polytope, used for the centroid that
	// orients new faces.
	uniquePoints []mgl64.Vec3
}

// edgeEntry is an edge with an occurrence count for boundary detection. An
// edge shared by two visible faces is internal; an edge seen exactly once
// borders the visible region and receives a new face.
type edgeEntry struct {
	a, b   mgl64.Vec3 // Minkowski-space endpoints, a < b lexicographically
	pa, pb gjk.SupportPoint
	count  int
}

var polytopeBuilderPool = sync.Pool{
	New: func() interface{} {
		return &PolytopeBuilder{
			faces:          make([]Face, 0, polytopeInitialCapacity),
			edges:          make([]edgeEntry, 0, polytopeInitialCapacity),
			visibleIndices: make([]int, 0, polytopeInitialCapacity),
			uniquePoints:   make([]mgl64.Vec3, 0, polytopeInitialCapacity),
		}
	},
}

// Reset prepares the builder for reuse by clearing all slices.
func (b *PolytopeBuilder) Reset() {
	b.faces = b.faces[:0]
	b.edges = b.edges[:0]
	b.visibleIndices = b.visibleIndices[:0]
	b.uniquePoints = b.uniquePoints[:0]
}

// BuildInitialFaces creates the initial polytope from a GJK tetrahedron.
func (b *PolytopeBuilder) BuildInitialFaces(simplex *gjk.Simplex) error {
	if simplex.Count != 4 {
		return fmt.Errorf("invalid simplex count: %d (expected 4)", simplex.Count)
	}

	p0, p1, p2, p3 := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]

	candidateFaces := [4]Face{
		b.createFaceOutward(p0, p1, p2, p3.W),
		b.createFaceOutward(p0, p2, p3, p1.W),
		b.createFaceOutward(p0, p3, p1, p2.W),
		b.createFaceOutward(p1, p3, p2, p0.W),
	}

	for i := 0; i < 4; i++ {
		if candidateFaces[i].Distance >= minFaceDistance {
			b.faces = append(b.faces, candidateFaces[i])
		}
	}

	// A valid closed polytope needs all four; keep everything when the
	// tetrahedron was too flat to filter.
	if len(b.faces) < 3 {
		b.faces = b.faces[:0]
		for i := 0; i < 4; i++ {
			b.faces = append(b.faces, candidateFaces[i])
		}
	}

	return nil
}

// createFaceOutward creates a Face with its normal pointing outward from the
// polytope, using the opposite point to orient it.
func (b *PolytopeBuilder) createFaceOutward(p0, p1, p2 gjk.SupportPoint, opposite mgl64.Vec3) Face {
	var face Face
	face.Points = [3]gjk.SupportPoint{p0, p1, p2}

	edge1 := p1.W.Sub(p0.W)
	edge2 := p2.W.Sub(p0.W)
	normal := edge1.Cross(edge2)

	normalLength := math.Sqrt(normal.Dot(normal))
	if normalLength < 1e-8 {
		face.Normal = mgl64.Vec3{0, 1, 0}
		face.Distance = minFaceDistance
		return face
	}
	normal = normal.Mul(1.0 / normalLength)

	toOpposite := opposite.Sub(p0.W)
	if normal.Dot(toOpposite) > 0 {
		normal = normal.Mul(-1)
	}

	distance := p0.W.Dot(normal)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
	}
	if distance < minFaceDistance {
		distance = minFaceDistance
	}

	face.Normal = normal
	face.Distance = distance
	return face
}

// FindClosestFaceIndex returns the index of the face closest to the origin,
// or -1 when no face is left.
func (b *PolytopeBuilder) FindClosestFaceIndex() int {
	if len(b.faces) == 0 {
		return -1
	}

	closestIndex := 0
	minDistance := b.faces[0].Distance
	for i := 1; i < len(b.faces); i++ {
		if b.faces[i].Distance < minDistance {
			closestIndex = i
			minDistance = b.faces[i].Distance
		}
	}
	return closestIndex
}

// calculateCentroid averages the unique vertices of the polytope; new faces
// are oriented away from it.
func (b *PolytopeBuilder) calculateCentroid() mgl64.Vec3 {
	b.uniquePoints = b.uniquePoints[:0]

	for i := range b.faces {
		for j := 0; j < 3; j++ {
			point := b.faces[i].Points[j].W
			seen := false
			for _, p := range b.uniquePoints {
				if p == point {
					seen = true
					break
				}
			}
			if !seen {
				b.uniquePoints = append(b.uniquePoints, point)
			}
		}
	}

	if len(b.uniquePoints) == 0 {
		return mgl64.Vec3{}
	}

	sum := mgl64.Vec3{}
	for _, p := range b.uniquePoints {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(b.uniquePoints)))
}

// findVisibleFaces populates visibleIndices with the faces visible from the
// support point.
func (b *PolytopeBuilder) findVisibleFaces(support gjk.SupportPoint) {
	b.visibleIndices = b.visibleIndices[:0]

	for i := range b.faces {
		toSupport := support.W.Sub(b.faces[i].Points[0].W)
		if toSupport.Dot(b.faces[i].Normal) > 0 {
			b.visibleIndices = append(b.visibleIndices, i)
		}
	}
}

// findBoundaryEdges collects the edges of the visible region that appear
// exactly once; those border the hole left by removing the visible faces.
func (b *PolytopeBuilder) findBoundaryEdges() {
	b.edges = b.edges[:0]

	for _, faceIdx := range b.visibleIndices {
		face := &b.faces[faceIdx]

		pairs := [3][2]gjk.SupportPoint{
			{face.Points[0], face.Points[1]},
			{face.Points[1], face.Points[2]},
			{face.Points[2], face.Points[0]},
		}

		for _, pair := range pairs {
			pa, pb := pair[0], pair[1]
			ea, eb := pa.W, pb.W
			if compareVec3(ea, eb) > 0 {
				ea, eb = eb, ea
				pa, pb = pb, pa
			}

			found := false
			for i := range b.edges {
				if b.edges[i].a == ea && b.edges[i].b == eb {
					b.edges[i].count++
					found = true
					break
				}
			}
			if !found {
				b.edges = append(b.edges, edgeEntry{a: ea, b: eb, pa: pa, pb: pb, count: 1})
			}
		}
	}
}

// removeVisibleFaces removes the faces marked visible using swap-with-last,
// processing indices in descending order so they stay valid.
func (b *PolytopeBuilder) removeVisibleFaces() {
	for i := 0; i < len(b.visibleIndices)-1; i++ {
		for j := i + 1; j < len(b.visibleIndices); j++ {
			if b.visibleIndices[i] < b.visibleIndices[j] {
				b.visibleIndices[i], b.visibleIndices[j] = b.visibleIndices[j], b.visibleIndices[i]
			}
		}
	}

	for _, idx := range b.visibleIndices {
		if idx < len(b.faces) {
			b.faces[idx] = b.faces[len(b.faces)-1]
			b.faces = b.faces[:len(b.faces)-1]
		}
	}
}

// AddPointAndRebuildFaces expands the polytope with a new support point:
// visible faces are removed and the boundary edges of the hole are connected
// to the new point.
func (b *PolytopeBuilder) AddPointAndRebuildFaces(support gjk.SupportPoint, closestIndex int) {
	centroid := b.calculateCentroid()

	b.findVisibleFaces(support)

	// Never remove the whole polytope; fall back to replacing just the
	// closest face when numerical noise marks everything visible.
	if len(b.visibleIndices) >= len(b.faces) {
		b.visibleIndices = b.visibleIndices[:0]
		b.visibleIndices = append(b.visibleIndices, closestIndex)
	}

	b.findBoundaryEdges()
	b.removeVisibleFaces()

	for i := range b.edges {
		if b.edges[i].count != 1 {
			continue
		}
		b.faces = append(b.faces, b.createFaceOutward(b.edges[i].pa, b.edges[i].pb, support, centroid))
	}
}

// compareVec3 orders vectors lexicographically for edge normalization.
func compareVec3(a, b mgl64.Vec3) int {
	for i := 0; i < 3; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
