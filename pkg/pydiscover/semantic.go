package pydiscover

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specvital/rtest-go/internal/intern"
	"github.com/specvital/rtest-go/internal/pyresolve"
	"github.com/specvital/rtest-go/pkg/domain"
	"github.com/specvital/rtest-go/pkg/tspool"
)

// ParsedModule is one file's syntax-tree-discoverer output (component
// D): test functions, test classes, and the import table, before any
// cross-module inheritance has been resolved.
type ParsedModule struct {
	RelPath    string
	ModulePath []string
	info       moduleInfo
}

// Parse runs the syntax-tree discoverer over a single file's source.
// The returned ParsedModule carries no resolved inheritance; feed it
// to a Discoverer's Seed and Discover methods for that.
func Parse(ctx context.Context, relPath string, source []byte, cfg Config) (*ParsedModule, error) {
	tree, err := tspool.Parse(ctx, domain.LanguagePython, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	mi := parseModule(tree.RootNode(), source, cfg)
	return &ParsedModule{
		RelPath:    relPath,
		ModulePath: modulePathFromRelPath(relPath),
		info:       mi,
	}, nil
}

func modulePathFromRelPath(relPath string) []string {
	slashed := filepath.ToSlash(relPath)
	parts := strings.Split(slashed, "/")
	if len(parts) == 0 {
		return nil
	}
	last := strings.TrimSuffix(parts[len(parts)-1], ".py")
	if last == "__init__" {
		return parts[:len(parts)-1]
	}
	out := make([]string, len(parts))
	copy(out, parts)
	out[len(out)-1] = last
	return out
}

func joinModulePath(p []string) string {
	return strings.Join(p, "/")
}

// Warning is a non-fatal collection event attached to a nodeid: a
// class or its ancestor defines __init__, so the class is excluded
// from collection but the exclusion is surfaced to the report.
type Warning struct {
	Nodeid  string
	Message string
}

// DiscoverResult is one module's fully resolved collection output.
type DiscoverResult struct {
	Functions []domain.Function
	Uncertain bool
	Warnings  []Warning
}

// classKey identifies one class definition by the module that defines
// it plus its own name.
type classKey struct {
	modulePath string
	className  string
}

// classRecord bundles one resolved class's own (unresolved) data
// together with the import table of the module that defines it, so
// recursive base-class resolution can walk outward from it.
type classRecord struct {
	info       classInfo
	modulePath []string
	imports    map[string]importedName
}

// Discoverer is the semantic discoverer: cross-module base-class
// resolution, method inheritance, and override rules, built on top of
// the per-file syntax-tree discoverer. One Discoverer lives for
// exactly one collection pass: its class cache has pass lifetime and
// must never be shared across goroutines or reused for a second,
// unrelated pass.
type Discoverer struct {
	cfg      Config
	resolver *pyresolve.Resolver

	modules map[string]*moduleInfo
	classes map[classKey]*classRecord

	ctx context.Context
}

// NewDiscoverer creates a semantic discoverer backed by resolver for
// modules outside the walked tree. resolver may be nil if the caller
// only ever discovers self-contained modules with no external base
// classes (mainly useful in tests).
func NewDiscoverer(cfg Config, resolver *pyresolve.Resolver) *Discoverer {
	return &Discoverer{
		cfg:      cfg,
		resolver: resolver,
		modules:  make(map[string]*moduleInfo),
		classes:  make(map[classKey]*classRecord),
	}
}

// Seed registers a module that was already parsed by Parse, so that
// later cross-module lookups for it never touch disk or the module
// resolver's cache again. Call this for every file the collection
// session walks, before calling Discover on any of them — a class
// defined in a file discovered later in the walk must still be
// resolvable from one discovered earlier, if either imports the other.
func (d *Discoverer) Seed(pm *ParsedModule) {
	d.modules[joinModulePath(pm.ModulePath)] = &pm.info
}

// Discover resolves pm's top-level test classes — those defined
// directly in the module and those re-collected because an import
// shadows the python_classes pattern — plus its module-level test
// functions, into nodeid-bearing Functions.
func (d *Discoverer) Discover(ctx context.Context, pm *ParsedModule) (DiscoverResult, error) {
	d.ctx = ctx

	var result DiscoverResult

	for _, entry := range pm.info.order {
		switch entry.kind {
		case entryFunction:
			fn, ok := findFunction(pm.info.functions, entry.name)
			if !ok {
				continue
			}
			items, uncertain := buildFunctions(pm.RelPath, "", fn)
			result.Functions = append(result.Functions, items...)
			if uncertain {
				result.Uncertain = true
			}

		case entryClass:
			methods, skip, warn, err := d.resolveClass(pm.ModulePath, entry.name)
			if err != nil {
				return result, err
			}
			if skip {
				result.Warnings = append(result.Warnings, Warning{
					Nodeid:  pm.RelPath + "::" + entry.name,
					Message: warn,
				})
				continue
			}
			for _, m := range methods {
				items, uncertain := buildFunctions(pm.RelPath, entry.name, m)
				result.Functions = append(result.Functions, items...)
				if uncertain {
					result.Uncertain = true
				}
			}

		case entryImport:
			im, ok := pm.info.imports[entry.name]
			if !ok || im.originalName == "" {
				continue
			}
			targetPath, err := pyresolve.ResolveRelative(pm.ModulePath, im.level, im.modulePath)
			if err != nil {
				continue
			}
			methods, skip, warn, err := d.resolveClass(targetPath, im.originalName)
			if err != nil {
				return result, err
			}
			if skip {
				result.Warnings = append(result.Warnings, Warning{
					Nodeid:  pm.RelPath + "::" + entry.name,
					Message: warn,
				})
				continue
			}
			for _, m := range methods {
				items, uncertain := buildFunctions(pm.RelPath, entry.name, m)
				result.Functions = append(result.Functions, items...)
				if uncertain {
					result.Uncertain = true
				}
			}
		}
	}

	return result, nil
}

func findFunction(fns []testItem, name string) (testItem, bool) {
	for _, f := range fns {
		if f.name == name {
			return f, true
		}
	}
	return testItem{}, false
}

// buildFunctions expands one already-resolved test item (a bare
// function or a resolved method) into its nodeid-bearing Functions,
// applying parametrize expansion.
func buildFunctions(relPath, className string, item testItem) ([]domain.Function, bool) {
	base := relPath + "::" + item.name
	if className != "" {
		base = relPath + "::" + className + "::" + item.name
	}

	loc := item.loc
	loc.File = relPath

	var group *string
	if item.xdistGroup != nil {
		group = intern.Intern(*item.xdistGroup)
	}

	if len(item.parametrize) == 0 {
		return []domain.Function{{
			Nodeid:     base,
			Name:       item.name,
			Location:   loc,
			XdistGroup: group,
		}}, false
	}

	if hasNonLiteralDecorator(item.parametrize) {
		return []domain.Function{{
			Nodeid:             base,
			Name:               item.name,
			Location:           loc,
			IsParametrized:     true,
			HasUncertainParams: true,
			XdistGroup:         group,
		}}, true
	}

	ids, uncertain := expandParametrize(item.parametrize)
	out := make([]domain.Function, len(ids))
	for i, id := range ids {
		out[i] = domain.Function{
			Nodeid:             base + "[" + id + "]",
			Name:               item.name,
			Location:           loc,
			IsParametrized:     true,
			HasUncertainParams: uncertain,
			XdistGroup:         group,
		}
	}
	return out, uncertain
}

// getModule returns the already-seeded moduleInfo for modulePath, or
// parses and caches it on demand via the module resolver for modules
// outside the walked tree. A nil, nil result means modulePath is a
// standard-library module or could not be located — both non-errors
// the caller should silently treat as "contributes nothing".
func (d *Discoverer) getModule(modulePath []string) (*moduleInfo, error) {
	key := joinModulePath(modulePath)
	if mi, ok := d.modules[key]; ok {
		return mi, nil
	}
	if len(modulePath) > 0 && pyresolve.IsStdlib(modulePath[0]) {
		d.modules[key] = nil
		return nil, nil
	}
	if d.resolver == nil {
		return nil, nil
	}

	mod, err := d.resolver.Resolve(d.ctx, modulePath)
	if err != nil {
		return nil, fmt.Errorf("pydiscover: resolving %s: %w", key, err)
	}
	if mod == nil {
		d.modules[key] = nil
		return nil, nil
	}

	mi := parseModule(mod.Tree.RootNode(), mod.Source, d.cfg)
	d.modules[key] = &mi
	return &mi, nil
}

func (d *Discoverer) lookupClass(modulePath []string, className string) (*classRecord, error) {
	key := classKey{modulePath: joinModulePath(modulePath), className: className}
	if rec, ok := d.classes[key]; ok {
		return rec, nil
	}

	mi, err := d.getModule(modulePath)
	if err != nil {
		return nil, err
	}
	if mi == nil {
		return nil, nil
	}

	for _, c := range mi.classes {
		if c.name != className {
			continue
		}
		rec := &classRecord{info: c, modulePath: modulePath, imports: mi.imports}
		d.classes[key] = rec
		return rec, nil
	}
	return nil, nil
}

// resolveBaseRef maps one base-class reference to the (modulePath,
// className) it names, honoring the defining module's own import
// table and relative-import level. A stdlib-rooted target is treated
// as unresolvable: stdlib ancestors are assumed to define no
// initializer and contribute no methods.
func (d *Discoverer) resolveBaseRef(currentModulePath []string, imports map[string]importedName, ref baseRef) ([]string, string, bool) {
	var targetParts []string
	var className string
	var level int
	var ok bool

	switch ref.kind {
	case refName:
		im, found := imports[ref.name]
		if !found {
			// Not imported: same-module class reference.
			return currentModulePath, ref.name, true
		}
		if im.originalName == "" {
			// Imports the module itself, not a class — not usable as
			// a bare-name base.
			return nil, "", false
		}
		targetParts, level, className, ok = im.modulePath, im.level, im.originalName, true

	case refAttribute:
		if len(ref.objectPath) == 0 {
			return nil, "", false
		}
		im, found := imports[ref.objectPath[0]]
		if !found {
			return nil, "", false
		}
		targetParts = append(append([]string{}, im.modulePath...), ref.objectPath[1:]...)
		level, className, ok = im.level, ref.name, true

	default:
		return nil, "", false
	}
	if !ok {
		return nil, "", false
	}

	resolved, err := pyresolve.ResolveRelative(currentModulePath, level, targetParts)
	if err != nil {
		return nil, "", false
	}
	if len(resolved) > 0 && pyresolve.IsStdlib(resolved[0]) {
		return nil, "", false
	}
	return resolved, className, true
}

// hasInitRecursive reports whether the class or any ancestor defines
// __init__. Revisiting a (module, class) pair during resolution
// returns false, so inheritance cycles terminate.
func (d *Discoverer) hasInitRecursive(modulePath []string, className string, visited map[classKey]bool) bool {
	key := classKey{modulePath: joinModulePath(modulePath), className: className}
	if visited[key] {
		return false
	}
	visited[key] = true

	rec, err := d.lookupClass(modulePath, className)
	if err != nil || rec == nil {
		return false
	}
	if rec.info.hasInit {
		return true
	}
	for _, base := range rec.info.bases {
		baseModule, baseClass, ok := d.resolveBaseRef(modulePath, rec.imports, base)
		if !ok {
			continue
		}
		if d.hasInitRecursive(baseModule, baseClass, visited) {
			return true
		}
	}
	return false
}

// collectMethodsRecursive walks the inheritance chain depth-first,
// left-to-right, ancestors before self. A revisited (module, class)
// pair contributes nothing rather than an error: diamond inheritance
// is silently deduplicated.
func (d *Discoverer) collectMethodsRecursive(modulePath []string, className string, visited map[classKey]bool) []testItem {
	key := classKey{modulePath: joinModulePath(modulePath), className: className}
	if visited[key] {
		return nil
	}
	visited[key] = true

	rec, err := d.lookupClass(modulePath, className)
	if err != nil || rec == nil {
		return nil
	}

	var all []testItem
	for _, base := range rec.info.bases {
		baseModule, baseClass, ok := d.resolveBaseRef(modulePath, rec.imports, base)
		if !ok {
			continue
		}
		all = append(all, d.collectMethodsRecursive(baseModule, baseClass, visited)...)
	}
	all = append(all, rec.info.ownMethods...)
	return all
}

// resolveClass applies the skip rule, then the override rule,
// returning the final ordered method list for one top-level test
// class. skip is true, with a human-readable warning message, when the
// class or an ancestor defines __init__.
func (d *Discoverer) resolveClass(modulePath []string, className string) (methods []testItem, skip bool, warning string, err error) {
	rec, lookupErr := d.lookupClass(modulePath, className)
	if lookupErr != nil {
		return nil, false, "", lookupErr
	}
	if rec == nil {
		return nil, false, "", nil
	}

	if d.hasInitRecursive(modulePath, className, make(map[classKey]bool)) {
		return nil, true, fmt.Sprintf("cannot collect test class %q (line %d) because it has a __init__ constructor", className, rec.info.startLine), nil
	}

	all := d.collectMethodsRecursive(modulePath, className, make(map[classKey]bool))

	ownCount := len(rec.info.ownMethods)
	ancestorCount := len(all) - ownCount
	if ancestorCount < 0 {
		ancestorCount = 0
	}

	ownNames := make(map[string]bool, ownCount)
	for _, m := range rec.info.ownMethods {
		ownNames[m.name] = true
	}

	filtered := make([]testItem, 0, len(all))
	for i, m := range all {
		if i < ancestorCount && ownNames[m.name] {
			continue // overridden by the current class's own method
		}
		filtered = append(filtered, m)
	}
	return filtered, false, "", nil
}
