package query

// Stats is an optional tally of manifold cache behavior. A generator given a
// non-nil Stats increments it as contacts are committed; the counters are
// purely diagnostic and never influence the generated manifold.
type Stats struct {
	// CacheHits counts pushed contacts that matched an existing or cached
	// record, by feature pair or by coincident contact point.
	CacheHits uint64
	// CacheMisses counts pushed contacts that created a brand new record.
	CacheMisses uint64
}
