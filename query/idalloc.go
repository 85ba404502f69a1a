package query

// IDAllocator hands out small reusable integers for manifold cache slots, so
// slot ids stay small instead of growing unbounded. It is not safe for
// concurrent use: the surrounding pipeline either gives each worker its own
// allocator or serializes access (one generator update assumes exclusive
// access for its whole duration).
type IDAllocator struct {
	next int
	free []int
}

// NewIDAllocator creates an empty allocator starting at id 0.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Allocate returns a fresh id, reusing the most recently freed one if any.
func (a *IDAllocator) Allocate() int {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		return id
	}
	id := a.next
	a.next++
	return id
}

// Free returns an id to the allocator for reuse. An id still cached by a
// manifold must not be freed; the manifold releases it itself once the
// cached record goes unmatched for a full update.
func (a *IDAllocator) Free(id int) {
	a.free = append(a.free, id)
}
