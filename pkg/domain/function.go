package domain

// Function is a single discovered pytest item: a bare test function, a
// parametrized row of one, or a method (possibly inherited via the
// semantic discoverer). It is the unit the scheduler and worker pool
// operate on; Collector trees are flattened to a []Function before
// dispatch.
//
// Function lives in domain rather than collect so the syntax-tree and
// semantic discoverers (pkg/pydiscover) can construct it directly
// without importing pkg/collect, which itself depends on pydiscover
// for discovery — keeping the dependency graph acyclic.
type Function struct {
	// Nodeid is the full pytest node id:
	// relpath/to/file.py::ClassName::test_name[param_id].
	Nodeid string
	// Name is the bare function/method name, without class or param suffix.
	Name string
	// Location is the function definition's source span.
	Location Location
	// IsParametrized is true when this item carries a recognized
	// @parametrize decorator: either one row of its expansion (possibly
	// a single-row expansion), or the single unexpanded item emitted when
	// the decorator's arguments cannot be statically evaluated.
	IsParametrized bool
	// HasUncertainParams is true when any parametrize value for this
	// item could not be statically interpreted (see pydiscover).
	HasUncertainParams bool
	// XdistGroup holds the interned xdist_group tag, if any.
	XdistGroup *string
}
