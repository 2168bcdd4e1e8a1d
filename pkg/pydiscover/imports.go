package pydiscover

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/rtest-go/pkg/pyast"
)

// importedSymbol is one name introduced into scope by an import
// statement, with the local name it is bound to (accounting for `as`
// aliasing).
type importedSymbol struct {
	importedName string // "" for a plain `import foo` form
	localName    string
}

// plainImportName is one local name bound by `import a.b.c` /
// `import a.b.c as x`, with the module it refers to. parsePlainImport
// returns one per (possibly comma-separated) imported module: an alias
// binds the full dotted module, while an unaliased `import a.b.c`
// binds `a` to the top-level module a.
type plainImportName struct {
	modulePath []string
	localName  string
}

func parsePlainImport(node *sitter.Node, source []byte) []plainImportName {
	var out []plainImportName
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case nodeDottedName:
			parts := dottedNameParts(child, source)
			out = append(out, plainImportName{modulePath: parts[:1], localName: parts[0]})
		case nodeAliasedImport:
			dotted := pyast.FindChildByType(child, nodeDottedName)
			alias := pyast.FindChildByType(child, nodeIdentifier)
			if dotted == nil || alias == nil {
				continue
			}
			parts := dottedNameParts(dotted, source)
			out = append(out, plainImportName{modulePath: parts, localName: alias.Content(source)})
		}
	}
	return out
}

// parseFromImport parses `from <module> import a, b as c` / `from .rel
// import x` / `from ..pkg.rel import x`, returning the base module path
// (empty for a bare relative import with no module name), the number
// of leading dots (0 for an absolute import), and every imported
// symbol with its local binding.
func parseFromImport(node *sitter.Node, source []byte) (modulePath []string, level int, names []importedSymbol, wildcard bool) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode != nil {
		modulePath, level = parseImportSource(moduleNode, source)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "wildcard_import":
			wildcard = true
		case nodeDottedName:
			if child == moduleNode {
				continue
			}
			name := child.Content(source)
			names = append(names, importedSymbol{importedName: name, localName: name})
		case nodeIdentifier:
			name := child.Content(source)
			names = append(names, importedSymbol{importedName: name, localName: name})
		case nodeAliasedImport:
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil || aliasNode == nil {
				continue
			}
			names = append(names, importedSymbol{importedName: nameNode.Content(source), localName: aliasNode.Content(source)})
		}
	}

	return modulePath, level, names, wildcard
}

// parseImportSource handles both a plain dotted_name module reference
// and a relative_import node (leading dots, optionally followed by a
// dotted_name).
func parseImportSource(node *sitter.Node, source []byte) (parts []string, level int) {
	switch node.Type() {
	case nodeDottedName:
		return dottedNameParts(node, source), 0
	case nodeRelativeImport:
		text := node.Content(source)
		for _, r := range text {
			if r == '.' {
				level++
				continue
			}
			break
		}
		if dotted := pyast.FindChildByType(node, nodeDottedName); dotted != nil {
			parts = dottedNameParts(dotted, source)
		}
		return parts, level
	default:
		return dottedNameParts(node, source), 0
	}
}

func dottedNameParts(node *sitter.Node, source []byte) []string {
	text := node.Content(source)
	return splitDots(text)
}

func splitDots(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
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
