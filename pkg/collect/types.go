// Package collect implements the collection session: walking root
// paths, discovering pytest items, and producing both the ordered,
// nodeid-addressed collector sequence and the flat item list the
// scheduler consumes.
package collect

import "github.com/specvital/rtest-go/pkg/domain"

// Kind tags which variant of the Collector union a value holds.
type Kind int

const (
	KindDirectory Kind = iota
	KindModule
	KindFunction
)

// Collector is the tagged union described by the data model: a
// Directory or Module node names a path and a nodeid prefix; a
// Function node additionally names a single discovered test item.
// The Function field is set only when Kind is KindFunction.
type Collector struct {
	Kind     Kind
	Path     string // relative to the collection root, forward slashes
	Nodeid   string
	Function *Function // non-nil iff Kind == KindFunction
}

// Function is a discovered pytest item. Defined in pkg/domain so
// pydiscover can construct it without importing this package back.
type Function = domain.Function

// CollectionError is a per-file failure recorded alongside a nodeid
// without aborting the overall walk.
type CollectionError struct {
	Nodeid string
	Err    error
}

func (e CollectionError) Error() string {
	return e.Nodeid + ": " + e.Err.Error()
}
