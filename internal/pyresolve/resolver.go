// Package pyresolve resolves dotted Python module paths to source files
// under a collection root, and resolves relative imports to absolute
// module paths. It underlies the semantic discoverer's cross-module
// base-class lookups.
package pyresolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/rtest-go/pkg/domain"
	"github.com/specvital/rtest-go/pkg/tspool"
)

// Module is a parsed Python source file plus the module path it was
// resolved from.
type Module struct {
	Path   []string
	File   string
	Source []byte
	Tree   *sitter.Tree
}

// Resolver locates and lazily parses modules under a single collection
// root, caching results so a module imported from multiple files is
// only read and parsed once.
type Resolver struct {
	root string

	mu    sync.Mutex
	cache map[string]*Module
	miss  map[string]struct{}
}

// New creates a Resolver rooted at root (an absolute or cwd-relative
// directory containing the collected package tree).
func New(root string) *Resolver {
	return &Resolver{
		root:  root,
		cache: make(map[string]*Module),
		miss:  make(map[string]struct{}),
	}
}

// Resolve loads and parses the module at modulePath (e.g. ["pkg",
// "sub", "mod"]), returning a cached result on repeat calls. It
// returns (nil, nil) for standard library modules and for modules that
// could not be located on disk — both are non-errors the caller should
// silently skip, per the semantic discoverer's contract.
func (r *Resolver) Resolve(ctx context.Context, modulePath []string) (*Module, error) {
	if len(modulePath) == 0 {
		return nil, fmt.Errorf("pyresolve: empty module path")
	}
	if IsStdlib(modulePath[0]) {
		return nil, nil
	}

	key := filepath.Join(modulePath...)

	r.mu.Lock()
	if mod, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return mod, nil
	}
	if _, ok := r.miss[key]; ok {
		r.mu.Unlock()
		return nil, nil
	}
	r.mu.Unlock()

	file, ok := r.locate(modulePath)
	if !ok {
		r.mu.Lock()
		r.miss[key] = struct{}{}
		r.mu.Unlock()
		return nil, nil
	}

	source, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("pyresolve: reading %s: %w", file, err)
	}

	tree, err := tspool.Parse(ctx, domain.LanguagePython, source)
	if err != nil {
		return nil, fmt.Errorf("pyresolve: parsing %s: %w", file, err)
	}

	mod := &Module{Path: modulePath, File: file, Source: source, Tree: tree}

	r.mu.Lock()
	r.cache[key] = mod
	r.mu.Unlock()

	return mod, nil
}

// locate maps a dotted module path to a file under root: a.b.c first
// tries a/b/c.py, then a/b/c/__init__.py.
func (r *Resolver) locate(modulePath []string) (string, bool) {
	base := filepath.Join(r.root, filepath.Join(modulePath...))

	if fi, err := os.Stat(base + ".py"); err == nil && !fi.IsDir() {
		return base + ".py", true
	}
	if fi, err := os.Stat(filepath.Join(base, "__init__.py")); err == nil && !fi.IsDir() {
		return filepath.Join(base, "__init__.py"), true
	}
	return "", false
}

// ResolveRelative computes the absolute module path a relative import
// (`level` leading dots) refers to, given the importing module's own
// path. A level that ascends beyond the top-level package is an error.
func ResolveRelative(currentModulePath []string, level int, parts []string) ([]string, error) {
	if level <= 0 {
		return parts, nil
	}
	if len(currentModulePath) < level {
		return nil, fmt.Errorf("pyresolve: relative import beyond top-level package")
	}

	base := make([]string, len(currentModulePath)-level)
	copy(base, currentModulePath[:len(currentModulePath)-level])

	return append(base, parts...), nil
}

// PathToModulePath derives a dotted module path from a file path
// relative to root. The trailing .py suffix is stripped; __init__
// segments are dropped entirely rather than kept as a path component.
func PathToModulePath(filePath, root string) []string {
	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		rel = filePath
	}
	rel = filepath.ToSlash(rel)

	parts := splitNonEmpty(rel, '/')
	if len(parts) == 0 {
		return parts
	}

	last := parts[len(parts)-1]
	last = trimSuffix(last, ".py")

	if last == "__init__" {
		return parts[:len(parts)-1]
	}

	parts[len(parts)-1] = last
	return parts
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func trimSuffix(s, suffix string) string {
	if len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)]
	}
	return s
}
