package query

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/narrowphase/shape"
)

// TrackedContact is one record of a persistent manifold: a contact with the
// local-space data and feature identity needed to track it as the bodies
// move, plus the cache slot id solvers key their warm-start data on.
type TrackedContact struct {
	Contact   Contact
	Local1    mgl64.Vec3
	Local2    mgl64.Vec3
	Cone1     shape.NormalCone
	Cone2     shape.NormalCone
	Feature1  shape.FeatureID
	Feature2  shape.FeatureID
	Kinematic Kinematic

	// ID is the cache slot id, stable as long as the same feature pair keeps
	// being reproduced frame after frame.
	ID int
}

// coincidenceEps is the squared distance under which two contacts pushed in
// the same frame are the same physical contact point even when their feature
// pairs differ, as happens when two faces meet corner on corner.
const coincidenceEps = 1e-9

// Manifold is a persistent contact manifold: the set of contact points
// currently active between two shapes, keyed by feature-id pairs so points
// keep their identity across updates. At most one record is retained per
// distinct feature pair or per coincident contact point.
type Manifold struct {
	contacts []TrackedContact
	cache    []TrackedContact
}

// NewManifold creates an empty manifold.
func NewManifold() *Manifold {
	return &Manifold{}
}

// Len returns the number of active contacts.
func (m *Manifold) Len() int {
	return len(m.contacts)
}

// Contacts returns the active contact records. The returned slice is owned
// by the manifold and valid until the next SaveCacheAndClear.
func (m *Manifold) Contacts() []TrackedContact {
	return m.contacts
}

// SaveCacheAndClear snapshots the current records for feature matching. It
// must be called once at the start of every update, before any Push.
//
// The snapshotted records keep their slot ids reserved: a cached id never
// enters the allocator's free pool while its pair may still come back, so a
// new pair pushed earlier in the same update cannot steal it. Ids of cached
// records that went a whole update without a match are released here.
func (m *Manifold) SaveCacheAndClear(ids *IDAllocator) {
	for i := range m.cache {
		if m.cache[i].ID >= 0 {
			ids.Free(m.cache[i].ID)
		}
	}
	m.cache, m.contacts = m.contacts, m.cache[:0]
}

// Push inserts or replaces the record for the feature pair (f1, f2).
//
// When the pair was already pushed since the last SaveCacheAndClear, or the
// contact point coincides with one already pushed, the deeper of the two
// contacts wins and the slot id is kept. When the pair existed on the
// previous frame, it takes over the cached record's still-reserved slot id
// so solver warm-start data keyed on it survives. The return value reports
// whether either kind of match occurred.
func (m *Manifold) Push(
	c Contact,
	local1, local2 mgl64.Vec3,
	cone1, cone2 shape.NormalCone,
	f1, f2 shape.FeatureID,
	kinematic Kinematic,
	ids *IDAllocator,
) bool {
	for i := range m.contacts {
		tc := &m.contacts[i]
		sameFeatures := tc.Feature1 == f1 && tc.Feature2 == f2
		if !sameFeatures && tc.Contact.World1.Sub(c.World1).LenSqr() >= coincidenceEps {
			continue
		}
		if c.Depth > tc.Contact.Depth {
			id := tc.ID
			*tc = TrackedContact{
				Contact:   c,
				Local1:    local1,
				Local2:    local2,
				Cone1:     cone1,
				Cone2:     cone2,
				Feature1:  f1,
				Feature2:  f2,
				Kinematic: kinematic,
				ID:        id,
			}
		}
		return true
	}

	id := -1
	for i := range m.cache {
		if m.cache[i].Feature1 == f1 && m.cache[i].Feature2 == f2 {
			if m.cache[i].ID >= 0 {
				id = m.cache[i].ID
				// Consume the cached slot so it is not released later.
				m.cache[i].ID = -1
			}
			break
		}
	}
	matched := id >= 0
	if id < 0 {
		id = ids.Allocate()
	}

	m.contacts = append(m.contacts, TrackedContact{
		Contact:   c,
		Local1:    local1,
		Local2:    local2,
		Cone1:     cone1,
		Cone2:     cone2,
		Feature1:  f1,
		Feature2:  f2,
		Kinematic: kinematic,
		ID:        id,
	})
	return matched
}
