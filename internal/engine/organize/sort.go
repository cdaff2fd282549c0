package organize

import (
	"sort"
	"strings"

	"usetidy/internal/engine/parser"
)

// SortTree orders every brace group recursively: a self leaf first, a bare
// glob last, everything else by case-sensitive name comparison. Pure; the
// input tree is never mutated.
func SortTree(t parser.Tree) parser.Tree {
	if t.IsLeaf() {
		return t
	}
	kids := make([]parser.Tree, len(t.Children))
	for i, c := range t.Children {
		kids[i] = SortTree(c)
	}
	sort.SliceStable(kids, func(i, j int) bool {
		return childLess(kids[i], kids[j])
	})
	t.Children = kids
	return t
}

func childLess(a, b parser.Tree) bool {
	ca, cb := childClass(a), childClass(b)
	if ca != cb {
		return ca < cb
	}
	return a.Segment.Name < b.Segment.Name
}

// childClass buckets a brace-group entry: self leads, the bare * trails,
// named entries (including name::* forms) sort between by name.
func childClass(t parser.Tree) int {
	switch {
	case t.IsSelf():
		return 0
	case t.Segment.Name == "*":
		return 2
	default:
		return 1
	}
}

// SortStatements orders statements by the canonical path read off each
// sorted tree: the root name, then the first child's path, recursively.
// Visibility breaks ties so pub and plain variants of one path come out
// deterministically; remaining ties keep input order.
func SortStatements(stmts []parser.Statement) []parser.Statement {
	out := make([]parser.Statement, len(stmts))
	copy(out, stmts)
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := statementKey(out[i]), statementKey(out[j])
		if ki != kj {
			return ki < kj
		}
		return out[i].Visibility < out[j].Visibility
	})
	return out
}

// statementKey walks the first-child chain of an already-sorted tree.
func statementKey(s parser.Statement) string {
	var sb strings.Builder
	node := s.Tree
	for {
		sb.WriteString(node.Segment.Name)
		if node.Glob && node.Segment.Name != "*" {
			sb.WriteString("::*")
		}
		if node.IsLeaf() {
			return sb.String()
		}
		sb.WriteString("::")
		node = node.Children[0]
	}
}
