package collect

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/rtest-go/internal/pattern"
	"github.com/specvital/rtest-go/internal/pyresolve"
	"github.com/specvital/rtest-go/pkg/domain"
	"github.com/specvital/rtest-go/pkg/pyconfig"
	"github.com/specvital/rtest-go/pkg/pydiscover"
	"github.com/specvital/rtest-go/pkg/rtesterr"
)

// bytecodeCacheDir is always skipped, independent of the configurable
// norecursedirs patterns.
const bytecodeCacheDir = "__pycache__"

// DefaultNoRecurseDirs mirrors pytest's own built-in norecursedirs
// default.
var DefaultNoRecurseDirs = []string{"*.egg", ".*", "_darcs", "build", "CVS", "dist", "node_modules", "venv", "{arch}"}

// SessionConfig controls one collection pass: the root directory
// everything is resolved relative to, the default test paths used when
// no explicit args are given, and the discovery glob patterns.
type SessionConfig struct {
	Root              string
	TestPaths         []string
	PythonFiles       []string
	PythonClasses     []string
	PythonFunctions   []string
	NoRecursePatterns []string
	IgnorePatterns    []string
}

// NewSessionConfig builds a SessionConfig for root, layering any
// options declared in a discovered pytest.ini/pyproject.toml/setup.cfg
// (fileCfg) over pytest's own documented defaults. A key fileCfg
// leaves unset falls back to its default rather than being treated as
// "explicitly empty".
func NewSessionConfig(root string, fileCfg pyconfig.Config) SessionConfig {
	d := pydiscover.DefaultConfig()
	return SessionConfig{
		Root:              root,
		TestPaths:         fileCfg.TestPaths,
		PythonFiles:       firstNonEmpty(fileCfg.PythonFiles, d.PythonFiles),
		PythonClasses:     firstNonEmpty(fileCfg.PythonClasses, d.PythonClasses),
		PythonFunctions:   firstNonEmpty(fileCfg.PythonFunctions, d.PythonFunctions),
		NoRecursePatterns: firstNonEmpty(fileCfg.NoRecurseDirs, DefaultNoRecurseDirs),
		IgnorePatterns:    fileCfg.IgnorePatterns,
	}
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

func (c SessionConfig) discoverConfig() pydiscover.Config {
	return pydiscover.Config{
		PythonFiles:     c.PythonFiles,
		PythonClasses:   c.PythonClasses,
		PythonFunctions: c.PythonFunctions,
	}
}

// Result is one collection pass's full output: the flat ordered
// collector sequence, the flattened item sequence the scheduler
// consumes, per-file errors, skip-rule warnings, and the set of files
// whose item set may not match a runtime discovery.
type Result struct {
	Collectors     []Collector
	Functions      []domain.Function
	Errors         []CollectionError
	Warnings       []pydiscover.Warning
	UncertainFiles []string
}

// PerformCollect resolves root paths, walks them one after another,
// parses every matched file in parallel, then sequentially resolves cross-module
// inheritance into a flat, ordered Function sequence. Per-file and
// per-root failures are recovered locally, recorded in Result.Errors,
// and never abort the walk.
func PerformCollect(ctx context.Context, args []string, cfg SessionConfig) (Result, error) {
	roots := resolveRoots(args, cfg)

	var (
		files []string
		errs  []CollectionError
	)
	for _, root := range roots {
		rfiles, rerrs := walkRoot(root, cfg)
		files = append(files, rfiles...)
		errs = append(errs, rerrs...)
	}

	dcfg := cfg.discoverConfig()
	parsed := make([]*pydiscover.ParsedModule, len(files))

	workers := runtime.GOMAXPROCS(0)
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	var (
		mu        sync.Mutex
		parseErrs []CollectionError
	)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			source, err := os.ReadFile(filepath.Join(cfg.Root, f))
			if err != nil {
				mu.Lock()
				parseErrs = append(parseErrs, CollectionError{Nodeid: f, Err: &rtesterr.IoError{Path: f, Err: err}})
				mu.Unlock()
				return nil
			}
			pm, err := pydiscover.Parse(gctx, f, source, dcfg)
			if err != nil {
				mu.Lock()
				parseErrs = append(parseErrs, CollectionError{Nodeid: f, Err: &rtesterr.ParseError{Path: f, Message: err.Error(), Err: err}})
				mu.Unlock()
				return nil
			}
			parsed[i] = pm
			return nil
		})
	}
	_ = g.Wait()
	errs = append(errs, parseErrs...)

	var uncertain []string
	for i, pm := range parsed {
		if pm == nil {
			uncertain = append(uncertain, files[i])
		}
	}

	resolver := pyresolve.New(cfg.Root)
	disc := pydiscover.NewDiscoverer(dcfg, resolver)
	for _, pm := range parsed {
		if pm != nil {
			disc.Seed(pm)
		}
	}

	var result Result
	seenDirs := make(map[string]bool)
	for i, pm := range parsed {
		rel := files[i]
		for _, dir := range ancestorDirs(rel) {
			if !seenDirs[dir] {
				seenDirs[dir] = true
				result.Collectors = append(result.Collectors, Collector{Kind: KindDirectory, Path: dir, Nodeid: dir})
			}
		}
		result.Collectors = append(result.Collectors, Collector{Kind: KindModule, Path: rel, Nodeid: rel})

		if pm == nil {
			continue
		}
		dr, err := disc.Discover(ctx, pm)
		if err != nil {
			errs = append(errs, CollectionError{Nodeid: rel, Err: err})
			uncertain = append(uncertain, rel)
			continue
		}
		for _, f := range dr.Functions {
			f := f
			result.Collectors = append(result.Collectors, Collector{Kind: KindFunction, Path: rel, Nodeid: f.Nodeid, Function: &f})
		}
		result.Functions = append(result.Functions, dr.Functions...)
		result.Warnings = append(result.Warnings, dr.Warnings...)
		if dr.Uncertain {
			uncertain = append(uncertain, rel)
		}
	}

	result.Errors = errs
	result.UncertainFiles = dedupeSorted(uncertain)
	return result, nil
}

// ancestorDirs lists the directory prefixes of a slash-separated
// relative path, outermost first: "a/b/test_x.py" yields "a", "a/b".
func ancestorDirs(rel string) []string {
	var out []string
	for i := 0; i < len(rel); i++ {
		if rel[i] == '/' {
			out = append(out, rel[:i])
		}
	}
	return out
}

func dedupeSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// resolveRoots turns the driver's positional arguments into absolute
// filesystem roots to walk: empty args fall back to the configured
// testpaths (or the collection root itself if none are declared);
// absolute args pass through; relative args join the root.
func resolveRoots(args []string, cfg SessionConfig) []string {
	if len(args) == 0 {
		if len(cfg.TestPaths) == 0 {
			return []string{cfg.Root}
		}
		out := make([]string, len(cfg.TestPaths))
		for i, p := range cfg.TestPaths {
			out[i] = joinIfRelative(cfg.Root, p)
		}
		return out
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = joinIfRelative(cfg.Root, a)
	}
	return out
}

func joinIfRelative(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// walkRoot walks one resolved root path. A root naming a single file
// is always collected, regardless of python_files, matching pytest's
// own "explicit node ids always collect" behavior; a directory is
// walked recursively with each directory's immediate children sorted
// before recursion, so the flattened sequence is bitwise repeatable
// across runs over the same tree even though the caller may choose to
// parallelize the per-file parse stage afterward.
func walkRoot(root string, cfg SessionConfig) ([]string, []CollectionError) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, []CollectionError{{Nodeid: root, Err: &rtesterr.IoError{Path: root, Err: err}}}
	}
	if !info.IsDir() {
		rel, err := filepath.Rel(cfg.Root, root)
		if err != nil {
			rel = root
		}
		return []string{filepath.ToSlash(rel)}, nil
	}

	var files []string
	var errs []CollectionError
	walkDir(root, cfg, &files, &errs)
	return files, errs
}

func walkDir(dir string, cfg SessionConfig, files *[]string, errs *[]CollectionError) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) {
			return
		}
		*errs = append(*errs, CollectionError{Nodeid: dir, Err: &rtesterr.IoError{Path: dir, Err: err}})
		return
	}

	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if shouldSkipDir(e.Name(), cfg) {
				continue
			}
			walkDir(full, cfg, files, errs)
			continue
		}

		if !matchesAnyGlob(cfg.PythonFiles, e.Name()) {
			continue
		}

		rel, err := filepath.Rel(cfg.Root, full)
		if err != nil {
			rel = full
		}
		rel = filepath.ToSlash(rel)

		if matchesAnyDoublestar(cfg.IgnorePatterns, rel) {
			continue
		}

		*files = append(*files, rel)
	}
}

func shouldSkipDir(base string, cfg SessionConfig) bool {
	if base == bytecodeCacheDir {
		return true
	}
	return matchesAnyGlob(cfg.NoRecursePatterns, base)
}

func matchesAnyGlob(patterns []string, name string) bool {
	for _, p := range patterns {
		if pattern.Matches(p, name) {
			return true
		}
	}
	return false
}

func matchesAnyDoublestar(patterns []string, relPath string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
