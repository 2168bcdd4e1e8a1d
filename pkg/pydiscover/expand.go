package pydiscover

import (
	"fmt"
	"strings"
)

// rowID is one parametrize row's contribution to a test id, with
// whether computing it required a non-literal fallback.
type rowID struct {
	id        string
	uncertain bool
}

// hasNonLiteralDecorator reports whether any decorator on this item
// could not be statically evaluated at all (name reference, call,
// comprehension for argnames or argvalues). Such a function is emitted
// as a single uncertain item with no parametrize expansion whatsoever,
// regardless of any other, literal, decorators stacked alongside it.
func hasNonLiteralDecorator(parametrize []parametrizeInfo) bool {
	for _, p := range parametrize {
		if p.nonLiteral {
			return true
		}
	}
	return false
}

// rowIDsFor computes one id per row of a single parametrize decorator,
// applying the explicit ids= override first, then the per-position
// literal-interpretation rules, then the duplicate-id "_1", "_2", ...
// disambiguation pass.
func rowIDsFor(dec parametrizeInfo) []rowID {
	ids := make([]rowID, len(dec.rows))
	for i, row := range dec.rows {
		if i < len(dec.explicitIDs) && dec.explicitIDs[i] != "" {
			ids[i] = rowID{id: dec.explicitIDs[i]}
			continue
		}

		parts := make([]string, len(row))
		uncertain := false
		for pi, v := range row {
			switch v.kind {
			case valueAttributeAccess:
				parts[pi] = v.text
				uncertain = true
			case valueComplex:
				name := "value"
				if pi < len(dec.paramNames) {
					name = dec.paramNames[pi]
				}
				parts[pi] = fmt.Sprintf("%s%d", name, i)
				uncertain = true
			default: // valueSimple
				parts[pi] = v.text
			}
		}
		ids[i] = rowID{id: strings.Join(parts, "-"), uncertain: uncertain}
	}
	dedupeRowIDs(ids)
	return ids
}

func dedupeRowIDs(ids []rowID) {
	seen := make(map[string]int, len(ids))
	for i := range ids {
		id := ids[i].id
		seen[id]++
		if n := seen[id]; n > 1 {
			ids[i].id = fmt.Sprintf("%s_%d", id, n-1)
		}
	}
}

// expandParametrize computes the Cartesian product of every stacked
// parametrize decorator's rows and the resulting id suffix for each
// combination.
//
// parametrize is in source order (the decorator closest to the "@"
// column, i.e. outermost/first-listed, at index 0). Decorators are
// combined innermost-first: the combination list starts as a single
// empty combo, and each decorator, processed from the last (innermost,
// closest to "def") to the first (outermost), is multiplied in as a
// newly-appended rightmost segment. The net effect is that the
// innermost decorator's id occupies the leftmost segment and varies
// slowest, while the outermost decorator's id is rightmost and varies
// fastest.
func expandParametrize(parametrize []parametrizeInfo) (ids []string, uncertain bool) {
	if len(parametrize) == 0 {
		return nil, false
	}

	type combo struct {
		parts     []string
		uncertain bool
	}
	combos := []combo{{}}

	for i := len(parametrize) - 1; i >= 0; i-- {
		rows := rowIDsFor(parametrize[i])
		next := make([]combo, 0, len(combos)*len(rows))
		for _, c := range combos {
			for _, r := range rows {
				parts := make([]string, len(c.parts), len(c.parts)+1)
				copy(parts, c.parts)
				parts = append(parts, r.id)
				next = append(next, combo{parts: parts, uncertain: c.uncertain || r.uncertain})
			}
		}
		combos = next
	}

	ids = make([]string, len(combos))
	for i, c := range combos {
		ids[i] = strings.Join(c.parts, "-")
		if c.uncertain {
			uncertain = true
		}
	}
	return ids, uncertain
}
