package pydiscover

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/rtest-go/pkg/domain"
	"github.com/specvital/rtest-go/pkg/pyast"
)

// testItem is a single function or method found directly in a module,
// before parametrize expansion or nodeid assembly. It is the shared
// currency between the per-module parse (this file) and the
// cross-module semantic resolver (semantic.go).
type testItem struct {
	name        string
	loc         domain.Location // File unset; filled in by buildFunctions
	className   string          // "" for a module-level function
	xdistGroup  *string
	parametrize []parametrizeInfo // this item's own decorator(s), outermost first
}

// refKind distinguishes the two base-class expression shapes pytest
// code actually uses: a bare name (same-module or imported directly)
// and a dotted module.Class attribute access.
type refKind int

const (
	refName refKind = iota
	refAttribute
)

type baseRef struct {
	kind       refKind
	name       string   // class name for both kinds
	objectPath []string // dotted prefix before name, refAttribute only
}

type classInfo struct {
	name       string
	startLine  int
	hasInit    bool
	ownMethods []testItem
	bases      []baseRef
}

// importedName is one name brought into scope, with enough information
// for semantic.go to resolve it to a module + original name.
type importedName struct {
	localName    string
	modulePath   []string
	originalName string // "" when the import binds the module itself
	level        int    // >0 for relative imports
}

// entryKind distinguishes the three things that can appear at module
// top level and matter to the semantic discoverer's collection order:
// a bare test function, a class definition, and an imported name that
// shadows a test-class pattern (re-collected under the importing
// module).
type entryKind int

const (
	entryFunction entryKind = iota
	entryClass
	entryImport
)

// topEntry records one module-top-level name in source order, so the
// semantic discoverer can emit collectors in the order pytest itself
// would walk the module's namespace.
type topEntry struct {
	kind entryKind
	name string
}

type moduleInfo struct {
	functions []testItem
	classes   []classInfo
	imports   map[string]importedName
	order     []topEntry
}

// parseModule walks a single file's tree-sitter root node, extracting
// module-level test functions, test classes (with their own methods,
// base-class references, and __init__ presence), and the file's import
// table. It does not resolve inheritance; that is semantic.go's job.
func parseModule(root *sitter.Node, source []byte, cfg Config) moduleInfo {
	v := &moduleVisitor{
		cfg:     cfg,
		tracker: newImportTracker(),
		imports: make(map[string]importedName),
	}
	v.visitBody(root, source)
	return moduleInfo{functions: v.functions, classes: v.classes, imports: v.imports, order: v.order}
}

type moduleVisitor struct {
	cfg     Config
	tracker *importTracker
	imports map[string]importedName
	current string

	functions []testItem
	classes   []classInfo
	order     []topEntry
}

func (v *moduleVisitor) visitBody(parent *sitter.Node, source []byte) {
	for i := 0; i < int(parent.ChildCount()); i++ {
		v.visitStmt(parent.Child(i), source)
	}
}

func (v *moduleVisitor) visitStmt(stmt *sitter.Node, source []byte) {
	switch stmt.Type() {
	case nodeFunctionDefinition:
		v.visitFunction(stmt, source, nil)
	case nodeClassDefinition:
		v.visitClass(stmt, source)
	case nodeImportStatement:
		v.visitImport(stmt, source)
	case nodeImportFromStatement:
		v.visitImportFrom(stmt, source)
	case nodeDecoratedDefinition:
		def := pyast.GetDecoratedDefinition(stmt)
		if def == nil {
			return
		}
		decorators := pyast.GetDecorators(stmt)
		switch def.Type() {
		case nodeFunctionDefinition:
			v.visitFunction(def, source, decorators)
		case nodeClassDefinition:
			v.visitClassWithDecorators(def, source, decorators)
		}
	}
}

func (v *moduleVisitor) visitFunction(fn *sitter.Node, source []byte, decorators []*sitter.Node) {
	nameNode := fn.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(source)
	if !v.cfg.isTestFunction(name) {
		return
	}

	item := testItem{
		name:      name,
		loc:       pyast.GetLocation(fn, ""),
		className: v.current,
	}
	if len(decorators) > 0 {
		item.xdistGroup = extractXdistGroup(decorators, source, v.tracker)
		item.parametrize = extractParametrizeDecorators(decorators, source, v.tracker)
	}

	if v.current == "" {
		v.functions = append(v.functions, item)
		v.order = append(v.order, topEntry{kind: entryFunction, name: name})
	} else {
		for i := range v.classes {
			if v.classes[i].name == v.current {
				v.classes[i].ownMethods = append(v.classes[i].ownMethods, item)
				return
			}
		}
	}
}

func (v *moduleVisitor) visitClass(class *sitter.Node, source []byte) {
	v.visitClassWithDecorators(class, source, nil)
}

func (v *moduleVisitor) visitClassWithDecorators(class *sitter.Node, source []byte, classDecorators []*sitter.Node) {
	nameNode := class.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(source)

	// Every class definition is recorded, not just ones matching the
	// python_classes pattern: a base class that provides inherited
	// test methods commonly has an arbitrary name (a Mixin, a plain
	// BaseTest). Whether a class is itself a top-level collection entry
	// point is still gated by isTestClass, same as the entryImport
	// re-collection case below.
	info := classInfo{
		name:      name,
		startLine: pyast.GetLocation(class, "").StartLine,
		hasInit:   classHasInit(class, source),
		bases:     parseBaseClasses(class, source),
	}
	v.classes = append(v.classes, info)
	if v.current == "" && v.cfg.isTestClass(name) {
		v.order = append(v.order, topEntry{kind: entryClass, name: name})
	}

	classLevelParametrize := extractParametrizeDecorators(classDecorators, source, v.tracker)

	prevClass := v.current
	v.current = name
	body := class.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			v.visitStmt(body.Child(i), source)
		}
	}
	v.current = prevClass

	if len(classLevelParametrize) > 0 {
		for i := range v.classes {
			if v.classes[i].name != name {
				continue
			}
			for m := range v.classes[i].ownMethods {
				v.classes[i].ownMethods[m].parametrize = append(
					append([]parametrizeInfo{}, classLevelParametrize...),
					v.classes[i].ownMethods[m].parametrize...,
				)
			}
		}
	}
}

func classHasInit(class *sitter.Node, source []byte) bool {
	body := class.ChildByFieldName("body")
	if body == nil {
		return false
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		c := body.Child(i)
		target := c
		if c.Type() == nodeDecoratedDefinition {
			target = pyast.GetDecoratedDefinition(c)
		}
		if target != nil && target.Type() == nodeFunctionDefinition {
			if nameNode := target.ChildByFieldName("name"); nameNode != nil && nameNode.Content(source) == "__init__" {
				return true
			}
		}
	}
	return false
}

// parseBaseClasses reads a class_definition's superclasses argument
// list, recognizing bare names (TestBase) and dotted attribute access
// (mod.TestBase); anything else (subscripted generics, calls) is
// silently skipped.
func parseBaseClasses(class *sitter.Node, source []byte) []baseRef {
	super := class.ChildByFieldName("superclasses")
	if super == nil {
		return nil
	}

	var out []baseRef
	for i := 0; i < int(super.ChildCount()); i++ {
		c := super.Child(i)
		switch c.Type() {
		case nodeIdentifier:
			out = append(out, baseRef{kind: refName, name: c.Content(source)})
		case nodeAttribute:
			obj := c.ChildByFieldName("object")
			attr := c.ChildByFieldName("attribute")
			if obj == nil || attr == nil {
				continue
			}
			path, ok := formatAttributePath(obj, source)
			if !ok {
				continue
			}
			out = append(out, baseRef{
				kind:       refAttribute,
				name:       attr.Content(source),
				objectPath: splitDots(path),
			})
		}
	}
	return out
}

func (v *moduleVisitor) visitImport(stmt *sitter.Node, source []byte) {
	for _, im := range parsePlainImport(stmt, source) {
		v.imports[im.localName] = importedName{localName: im.localName, modulePath: im.modulePath}
		if len(im.modulePath) == 1 && im.modulePath[0] == "pytest" {
			v.tracker.add(im.localName, "pytest")
		}
	}
}

func (v *moduleVisitor) visitImportFrom(stmt *sitter.Node, source []byte) {
	modulePath, level, names, wildcard := parseFromImport(stmt, source)
	if wildcard {
		return
	}

	fullModuleStr := joinDots(modulePath)

	for _, n := range names {
		v.imports[n.localName] = importedName{
			localName:    n.localName,
			modulePath:   modulePath,
			originalName: n.importedName,
			level:        level,
		}

		switch {
		case fullModuleStr == "pytest" && n.importedName == "mark":
			v.tracker.add(n.localName, "pytest.mark")
		case fullModuleStr == "pytest":
			v.tracker.add(n.localName, "pytest."+n.importedName)
		case fullModuleStr == "pytest.mark":
			v.tracker.add(n.localName, "pytest.mark."+n.importedName)
		}

		// An imported name matching the python_classes pattern shadows
		// a test class in this module's own namespace, so pytest
		// collects it again here under its original name.
		if v.current == "" && v.cfg.isTestClass(n.localName) {
			v.order = append(v.order, topEntry{kind: entryImport, name: n.localName})
		}
	}
}

func joinDots(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
