package organize

import (
	"strings"

	"usetidy/internal/engine/parser"
)

const indent = "    "

// FormatStatement serializes one statement: attribute lines first, then the
// visibility qualifier, the use keyword, the tree, and the terminating
// semicolon.
func FormatStatement(s parser.Statement) string {
	var sb strings.Builder
	for _, attr := range s.Attributes {
		sb.WriteString(attr)
		sb.WriteByte('\n')
	}
	if s.Visibility != "" {
		sb.WriteString(s.Visibility)
		sb.WriteByte(' ')
	}
	sb.WriteString("use ")
	writeTree(&sb, s.Tree, 0)
	sb.WriteByte(';')
	return sb.String()
}

// FormatTree serializes a tree alone, starting at nesting level zero.
func FormatTree(t parser.Tree) string {
	var sb strings.Builder
	writeTree(&sb, t, 0)
	return sb.String()
}

// writeTree renders a node at the given nesting level. A single non-special
// child stays inline as parent::child; anything else opens a brace block
// with one child per line, each entry trailed by a comma, the closing brace
// on the parent's indent level.
func writeTree(sb *strings.Builder, t parser.Tree, level int) {
	if t.Segment.Name == "*" {
		sb.WriteString("*")
		return
	}
	sb.WriteString(t.Segment.Name)
	if t.Glob {
		sb.WriteString("::*")
		return
	}
	if t.IsLeaf() {
		if t.Segment.Alias != "" {
			sb.WriteString(" as ")
			sb.WriteString(t.Segment.Alias)
		}
		return
	}
	if len(t.Children) == 1 && !isSpecial(t.Children[0]) {
		sb.WriteString("::")
		writeTree(sb, t.Children[0], level)
		return
	}
	sb.WriteString("::{\n")
	for _, c := range t.Children {
		sb.WriteString(strings.Repeat(indent, level+1))
		writeTree(sb, c, level+1)
		sb.WriteString(",\n")
	}
	sb.WriteString(strings.Repeat(indent, level))
	sb.WriteString("}")
}

// isSpecial reports whether a child cannot be inlined behind a path
// separator: the self leaf and the bare glob only exist inside braces.
func isSpecial(t parser.Tree) bool {
	return t.IsSelf() || t.Segment.Name == "*"
}
