package pydiscover

// importTracker maps the local names a file's imports bind to their
// canonical pytest-facing path, so decorator recognition works
// regardless of aliasing: `import pytest as pt`, `from pytest import
// mark`, `from pytest.mark import parametrize` all resolve to the same
// canonical form. Distinct from the semantic discoverer's broader,
// all-imports table, which tracks every name a module binds.
type importTracker struct {
	aliases map[string]string // local name -> canonical dotted path
}

func newImportTracker() *importTracker {
	return &importTracker{aliases: make(map[string]string)}
}

func (t *importTracker) add(localName, canonical string) {
	t.aliases[localName] = canonical
}

func (t *importTracker) resolve(localName string) (string, bool) {
	canonical, ok := t.aliases[localName]
	return canonical, ok
}
