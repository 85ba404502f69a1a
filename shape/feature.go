package shape

import "fmt"

// FeatureKind distinguishes the sub-elements a convex shape is made of.
type FeatureKind uint8

const (
	// FeatureUnknown is the zero value, used when no finer-grained
	// identification applies (e.g. the single feature of a ball).
	FeatureUnknown FeatureKind = iota
	FeatureVertex
	FeatureEdge
	FeatureFace
)

// FeatureID identifies a geometric sub-element of a shape: a vertex, an edge
// or a face, by its index into the shape's fixed feature list. It stays stable
// across frames as long as the shape's topology is unchanged, which is what
// lets the persistent manifold match contacts frame-to-frame.
type FeatureID struct {
	Kind  FeatureKind
	Index int
}

func Vertex(index int) FeatureID { return FeatureID{Kind: FeatureVertex, Index: index} }
func Edge(index int) FeatureID   { return FeatureID{Kind: FeatureEdge, Index: index} }
func Face(index int) FeatureID   { return FeatureID{Kind: FeatureFace, Index: index} }

// Unknown returns the catch-all feature id.
func Unknown() FeatureID { return FeatureID{} }

func (f FeatureID) IsVertex() bool { return f.Kind == FeatureVertex }
func (f FeatureID) IsEdge() bool   { return f.Kind == FeatureEdge }
func (f FeatureID) IsFace() bool   { return f.Kind == FeatureFace }

func (f FeatureID) String() string {
	switch f.Kind {
	case FeatureVertex:
		return fmt.Sprintf("Vertex(%d)", f.Index)
	case FeatureEdge:
		return fmt.Sprintf("Edge(%d)", f.Index)
	case FeatureFace:
		return fmt.Sprintf("Face(%d)", f.Index)
	}
	return "Unknown"
}
