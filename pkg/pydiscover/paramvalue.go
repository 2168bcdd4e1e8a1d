package pydiscover

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// paramValueKind classifies how a single parametrize value literal was
// interpreted.
type paramValueKind int

const (
	// valueSimple values contribute their text directly to an
	// auto-generated test id.
	valueSimple paramValueKind = iota
	// valueAttributeAccess is a dotted name (e.g. Color.RED); used as
	// its full text, but promotes the file to uncertain since pytest's
	// own id-generation for enum members varies.
	valueAttributeAccess
	// valueComplex values (calls, containers, non-ASCII/control-char
	// strings) cannot be rendered into a stable id; the row instead
	// gets an auto id of "{param_name}{row_index}".
	valueComplex
)

type paramValue struct {
	kind paramValueKind
	text string
}

// formatParamValue statically interprets a parametrize argument
// expression node: only literals, bare identifiers, unary negation of a
// literal, and dotted attribute access are resolved; anything else is
// Complex.
// User expressions are never executed.
func formatParamValue(node *sitter.Node, source []byte) paramValue {
	switch node.Type() {
	case nodeInteger, nodeFloat:
		return paramValue{kind: valueSimple, text: formatNumber(node, source)}

	case nodeString:
		text := stringLiteralValue(node, source)
		if isComplexString(text) {
			return paramValue{kind: valueComplex, text: text}
		}
		return paramValue{kind: valueSimple, text: text}

	case nodeTrue:
		return paramValue{kind: valueSimple, text: "True"}
	case nodeFalse:
		return paramValue{kind: valueSimple, text: "False"}
	case nodeNone:
		return paramValue{kind: valueSimple, text: "None"}

	case nodeUnaryOperator:
		return formatUnary(node, source)

	case nodeAttribute:
		path, ok := formatAttributePath(node, source)
		if !ok {
			return paramValue{kind: valueComplex, text: node.Content(source)}
		}
		return paramValue{kind: valueAttributeAccess, text: path}

	case nodeIdentifier:
		return paramValue{kind: valueSimple, text: node.Content(source)}

	default:
		return paramValue{kind: valueComplex, text: node.Content(source)}
	}
}

func formatNumber(node *sitter.Node, source []byte) string {
	text := node.Content(source)
	if node.Type() != nodeFloat {
		return text
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(f, 'f', -1, 64), "0"), ".")
	}
	return text
}

func formatUnary(node *sitter.Node, source []byte) paramValue {
	opNode := node.ChildByFieldName("operator")
	argNode := node.ChildByFieldName("argument")
	if argNode == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			c := node.Child(i)
			if c.Type() == nodeInteger || c.Type() == nodeFloat {
				argNode = c
			}
		}
	}
	if argNode == nil {
		return paramValue{kind: valueComplex, text: node.Content(source)}
	}

	op := "-"
	if opNode != nil {
		op = opNode.Content(source)
	}

	inner := formatParamValue(argNode, source)
	if op == "-" && inner.kind == valueSimple {
		return paramValue{kind: valueSimple, text: "-" + inner.text}
	}
	return paramValue{kind: valueComplex, text: node.Content(source)}
}

// formatAttributePath recursively builds the dotted string for a chain
// of attribute accesses rooted at an identifier (e.g. Color.RED, or
// module.Color.RED). Anything else at the root is not a plain
// attribute chain.
func formatAttributePath(node *sitter.Node, source []byte) (string, bool) {
	switch node.Type() {
	case nodeIdentifier:
		return node.Content(source), true
	case nodeAttribute:
		obj := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return "", false
		}
		base, ok := formatAttributePath(obj, source)
		if !ok {
			return "", false
		}
		return base + "." + attr.Content(source), true
	default:
		return "", false
	}
}

// stringLiteralValue strips the surrounding quotes from a Python
// string literal node's raw text.
func stringLiteralValue(node *sitter.Node, source []byte) string {
	text := node.Content(source)
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return text[len(q) : len(text)-len(q)]
		}
	}
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2 {
			return text[1 : len(text)-1]
		}
	}
	return text
}

// isComplexString reports whether a string literal contains control
// characters or non-ASCII runes. Such strings are Complex rather than
// Simple: auto-generated ids must stay ASCII and single-line.
func isComplexString(s string) bool {
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || r > 127 {
			return true
		}
	}
	return false
}
