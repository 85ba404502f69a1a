package shape

import "github.com/go-gl/mathgl/mgl64"

// ConvexPolyface describes the local supporting feature of a convex shape
// along a direction: an ordered vertex loop with per-vertex and per-edge
// feature ids. Depending on the shape and direction it degenerates to a
// single vertex (point feature), two vertices (edge feature) or keeps a full
// loop (face feature, in which case Normal is set).
//
// A polyface is rebuilt from scratch on every update and owned by a single
// generator for the duration of one update call.
type ConvexPolyface struct {
	Vertices  []mgl64.Vec3
	VertexIDs []FeatureID
	EdgeIDs   []FeatureID

	// Outward unit normal, present only when the feature is a face.
	Normal    mgl64.Vec3
	HasNormal bool

	// Id naming the whole feature, used when no finer-grained id applies.
	FeatureID FeatureID
}

// Clear resets the polyface for reuse, keeping allocated capacity.
func (p *ConvexPolyface) Clear() {
	p.Vertices = p.Vertices[:0]
	p.VertexIDs = p.VertexIDs[:0]
	p.EdgeIDs = p.EdgeIDs[:0]
	p.HasNormal = false
	p.FeatureID = Unknown()
}

// PushVertex appends a vertex and its feature id to the loop.
func (p *ConvexPolyface) PushVertex(v mgl64.Vec3, id FeatureID) {
	p.Vertices = append(p.Vertices, v)
	p.VertexIDs = append(p.VertexIDs, id)
}

// PushEdge appends the feature id of the edge starting at the vertex pushed
// at the same position in the loop.
func (p *ConvexPolyface) PushEdge(id FeatureID) {
	p.EdgeIDs = append(p.EdgeIDs, id)
}

// SetNormal marks the polyface as a face with the given outward unit normal.
func (p *ConvexPolyface) SetNormal(n mgl64.Vec3) {
	p.Normal = n
	p.HasNormal = true
}

// NumEdges returns the number of edges of the vertex loop: 0 for a point,
// 1 for a segment, n for an n-gon (edge i connects vertex i and (i+1) mod n).
func (p *ConvexPolyface) NumEdges() int {
	switch len(p.Vertices) {
	case 0, 1:
		return 0
	case 2:
		return 1
	default:
		return len(p.Vertices)
	}
}

// EdgeDirection returns the world-space unit direction of the edge carrying
// the given feature id. The second return value is false when no edge of this
// polyface carries that id or the edge is degenerate.
func (p *ConvexPolyface) EdgeDirection(id FeatureID) (mgl64.Vec3, bool) {
	n := len(p.Vertices)
	for i := 0; i < p.NumEdges(); i++ {
		if p.EdgeIDs[i] != id {
			continue
		}
		dir := p.Vertices[(i+1)%n].Sub(p.Vertices[i])
		if dir.LenSqr() < 1e-20 {
			return mgl64.Vec3{}, false
		}
		return dir.Normalize(), true
	}
	return mgl64.Vec3{}, false
}
