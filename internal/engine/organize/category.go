package organize

import (
	"sort"
	"strings"

	"usetidy/internal/engine/parser"
)

// Category partitions statements for display, in this order.
type Category int

const (
	CategoryStd Category = iota
	CategoryExternal
	CategoryInternal
	CategoryAttributed
)

func (c Category) String() string {
	switch c {
	case CategoryStd:
		return "std"
	case CategoryExternal:
		return "external"
	case CategoryInternal:
		return "internal"
	case CategoryAttributed:
		return "attributed"
	}
	return "unknown"
}

// Dependencies answers whether a root segment names a package the project
// manifest declares. Nil is a valid oracle that knows nothing.
type Dependencies interface {
	Contains(name string) bool
}

// stdRoots is the fixed standard-library root set.
var stdRoots = map[string]struct{}{
	"std":        {},
	"core":       {},
	"alloc":      {},
	"proc_macro": {},
	"test":       {},
}

// internalRoots marks paths relative to the current crate or module.
var internalRoots = map[string]struct{}{
	"crate": {},
	"super": {},
	"self":  {},
}

// Classify picks the category for one statement. Attributes trump
// everything, then the standard-library set, then crate-local markers.
// Known manifest dependencies and unrecognized roots both land in
// external; the manifest oracle matters to reporting surfaces, not to the
// partition itself.
func Classify(s parser.Statement, deps Dependencies) Category {
	if len(s.Attributes) > 0 {
		return CategoryAttributed
	}
	root := s.Root()
	if _, ok := stdRoots[root]; ok {
		return CategoryStd
	}
	if _, ok := internalRoots[root]; ok {
		return CategoryInternal
	}
	if deps != nil && deps.Contains(root) {
		return CategoryExternal
	}
	return CategoryExternal
}

// Group is a run of statements rendered together and separated from its
// neighbors by one blank line.
type Group struct {
	Category   Category
	AttrKey    string // normalized attribute set, attributed groups only
	Statements []parser.Statement
}

// GroupStatements splits statements into display groups: standard library,
// external, internal, then one group per distinct attribute set, ordered by
// their normalized key. Empty groups are omitted.
func GroupStatements(stmts []parser.Statement, deps Dependencies) []Group {
	var std, external, internal []parser.Statement
	attributed := make(map[string][]parser.Statement)

	for _, s := range stmts {
		switch Classify(s, deps) {
		case CategoryStd:
			std = append(std, s)
		case CategoryInternal:
			internal = append(internal, s)
		case CategoryAttributed:
			key := attrKey(s.Attributes)
			attributed[key] = append(attributed[key], s)
		default:
			external = append(external, s)
		}
	}

	var groups []Group
	for _, g := range []struct {
		cat   Category
		stmts []parser.Statement
	}{
		{CategoryStd, std},
		{CategoryExternal, external},
		{CategoryInternal, internal},
	} {
		if len(g.stmts) > 0 {
			groups = append(groups, Group{Category: g.cat, Statements: g.stmts})
		}
	}

	attrKeys := make([]string, 0, len(attributed))
	for key := range attributed {
		attrKeys = append(attrKeys, key)
	}
	sort.Strings(attrKeys)
	for _, key := range attrKeys {
		groups = append(groups, Group{
			Category:   CategoryAttributed,
			AttrKey:    key,
			Statements: attributed[key],
		})
	}
	return groups
}

// attrKey normalizes an attribute set so statements group by exact content
// regardless of line order or surrounding whitespace.
func attrKey(attrs []string) string {
	trimmed := make([]string, len(attrs))
	for i, a := range attrs {
		trimmed[i] = strings.TrimSpace(a)
	}
	sort.Strings(trimmed)
	return strings.Join(trimmed, "\n")
}
