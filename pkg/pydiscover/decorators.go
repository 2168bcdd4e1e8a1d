package pydiscover

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// parametrizeInfo is one @parametrize decorator's parsed contents.
type parametrizeInfo struct {
	paramNames  []string
	rows        [][]paramValue
	explicitIDs []string // empty if no ids= kwarg, or entries "" where not overridden
	// nonLiteral is true when the decorator was recognized as
	// pytest.mark.parametrize but its parameter-names or values
	// argument was not a statically evaluable literal (a name
	// reference, a call, a comprehension, ...). The whole function is
	// then emitted as a single uncertain item, never expanded.
	nonLiteral bool
}

func decoratorExpr(dec *sitter.Node) *sitter.Node {
	for i := 0; i < int(dec.ChildCount()); i++ {
		c := dec.Child(i)
		if c.Type() != "@" {
			return c
		}
	}
	return nil
}

// canonicalPytestPath resolves a decorator expression node (an
// identifier or an attribute chain) to its canonical pytest-facing
// dotted path, honoring import aliasing tracked in t. Anything that
// doesn't bottom out at a tracked pytest import returns ok=false.
func canonicalPytestPath(expr *sitter.Node, source []byte, t *importTracker) (string, bool) {
	switch expr.Type() {
	case nodeIdentifier:
		return t.resolve(expr.Content(source))
	case nodeAttribute:
		obj := expr.ChildByFieldName("object")
		attr := expr.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return "", false
		}
		base, ok := canonicalPytestPath(obj, source, t)
		if !ok {
			return "", false
		}
		return base + "." + attr.Content(source), true
	default:
		return "", false
	}
}

func isDecoratorCallOf(dec *sitter.Node, source []byte, t *importTracker, canonical string) (*sitter.Node, bool) {
	expr := decoratorExpr(dec)
	if expr == nil || expr.Type() != nodeCall {
		return nil, false
	}
	fn := expr.ChildByFieldName("function")
	if fn == nil {
		return nil, false
	}
	path, ok := canonicalPytestPath(fn, source, t)
	if !ok || path != canonical {
		return nil, false
	}
	return expr, true
}

func extractXdistGroup(decorators []*sitter.Node, source []byte, t *importTracker) *string {
	for _, dec := range decorators {
		call, ok := isDecoratorCallOf(dec, source, t, "pytest.mark.xdist_group")
		if !ok {
			continue
		}
		args := call.ChildByFieldName("arguments")
		if args == nil {
			continue
		}
		if name := keywordStringArg(args, source, "name"); name != "" {
			return &name
		}
		if first := firstPositionalString(args, source); first != "" {
			return &first
		}
	}
	return nil
}

func extractParametrizeDecorators(decorators []*sitter.Node, source []byte, t *importTracker) []parametrizeInfo {
	var out []parametrizeInfo
	for _, dec := range decorators {
		call, ok := isDecoratorCallOf(dec, source, t, "pytest.mark.parametrize")
		if !ok {
			continue
		}
		if info, ok := parseParametrizeCall(call, source); ok {
			out = append(out, info)
		}
	}
	return out
}

func parseParametrizeCall(call *sitter.Node, source []byte) (parametrizeInfo, bool) {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return parametrizeInfo{}, false
	}

	positional := positionalArgs(args)
	if len(positional) < 2 {
		return parametrizeInfo{}, false
	}

	names := extractParamNames(positional[0], source)
	if len(names) == 0 {
		// The argnames argument isn't a literal string/tuple we can
		// read statically (e.g. a variable reference). The decorator
		// is still recognized as parametrize; its rows just can't be
		// enumerated.
		return parametrizeInfo{nonLiteral: true}, true
	}

	if positional[1].Type() != nodeList && positional[1].Type() != nodeTuple {
		return parametrizeInfo{paramNames: names, nonLiteral: true}, true
	}

	rows := extractParamRows(positional[1], source, len(names))

	info := parametrizeInfo{paramNames: names, rows: rows}
	if idsNode := keywordArgNamed(args, source, "ids"); idsNode != nil {
		info.explicitIDs = extractExplicitIDs(idsNode, source, len(rows))
	}
	return info, true
}

// extractParamNames handles `"a,b"` and `["a", "b"]` / `("a", "b")` forms.
func extractParamNames(node *sitter.Node, source []byte) []string {
	if node.Type() == nodeString {
		raw := stringLiteralValue(node, source)
		var names []string
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				names = append(names, part)
			}
		}
		return names
	}
	if node.Type() == nodeTuple || node.Type() == nodeList {
		var names []string
		for i := 0; i < int(node.ChildCount()); i++ {
			c := node.Child(i)
			if c.Type() == nodeString {
				names = append(names, stringLiteralValue(c, source))
			}
		}
		return names
	}
	return nil
}

// extractParamRows handles a single values argument which is either a
// list/tuple of rows (each row itself a tuple/list when paramCount>1,
// or a bare value when paramCount==1) directly as positional args.
func extractParamRows(node *sitter.Node, source []byte, paramCount int) [][]paramValue {
	if node.Type() != nodeList && node.Type() != nodeTuple {
		return nil
	}

	var rows [][]paramValue
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if isPunctuation(c) {
			continue
		}
		rows = append(rows, extractRow(c, source, paramCount))
	}
	return rows
}

func extractRow(node *sitter.Node, source []byte, paramCount int) []paramValue {
	if paramCount > 1 && (node.Type() == nodeTuple || node.Type() == nodeList) {
		elts := namedChildren(node)
		if len(elts) == paramCount {
			row := make([]paramValue, len(elts))
			for i, e := range elts {
				row[i] = formatParamValue(e, source)
			}
			return row
		}
	}
	return []paramValue{formatParamValue(node, source)}
}

func extractExplicitIDs(node *sitter.Node, source []byte, rowCount int) []string {
	if node.Type() != nodeList && node.Type() != nodeTuple {
		return nil
	}
	elts := namedChildren(node)
	ids := make([]string, rowCount)
	for i, e := range elts {
		if i >= rowCount {
			break
		}
		if e.Type() == nodeString {
			ids[i] = stringLiteralValue(e, source)
		}
	}
	return ids
}

func positionalArgs(argList *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(argList.ChildCount()); i++ {
		c := argList.Child(i)
		if isPunctuation(c) || c.Type() == nodeKeywordArgument {
			continue
		}
		out = append(out, c)
	}
	return out
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if !isPunctuation(c) {
			out = append(out, c)
		}
	}
	return out
}

func isPunctuation(n *sitter.Node) bool {
	t := n.Type()
	return t == "(" || t == ")" || t == "[" || t == "]" || t == "," || t == ":" || t == "="
}

func keywordStringArg(argList *sitter.Node, source []byte, name string) string {
	n := keywordArgNamed(argList, source, name)
	if n == nil || n.Type() != nodeString {
		return ""
	}
	return stringLiteralValue(n, source)
}

func firstPositionalString(argList *sitter.Node, source []byte) string {
	pos := positionalArgs(argList)
	if len(pos) == 0 || pos[0].Type() != nodeString {
		return ""
	}
	return stringLiteralValue(pos[0], source)
}

func keywordArgNamed(argList *sitter.Node, source []byte, name string) *sitter.Node {
	for i := 0; i < int(argList.ChildCount()); i++ {
		c := argList.Child(i)
		if c.Type() != nodeKeywordArgument {
			continue
		}
		nameNode := c.ChildByFieldName("name")
		valueNode := c.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		if nameNode.Content(source) == name {
			return valueNode
		}
	}
	return nil
}
