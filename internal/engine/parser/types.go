package parser

// Position is a zero-based line/column pair in document coordinates.
type Position struct {
	Line int
	Col  int
}

// Before reports whether p lies strictly before q in the document.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// Range covers [Start, End): start inclusive, end exclusive. End may sit on
// the same line as Start or a later one.
type Range struct {
	Start Position
	End   Position
}

// IsZero reports whether the range is the zero value, used to mark synthetic
// statements that have no source location.
func (r Range) IsZero() bool {
	return r == Range{}
}

// Contains reports whether inner lies entirely within r.
func (r Range) Contains(inner Range) bool {
	return !inner.Start.Before(r.Start) && !r.End.Before(inner.End)
}

// Segment is one path element of a use declaration.
type Segment struct {
	Name  string
	Alias string // "" when not renamed; "_" imports without binding a name
	Span  Range  // range of the name token; zero for synthetic segments
}

// Tree is a node of a use declaration. A leaf carries no children. A node
// with Glob set never has children: either its name is "*" (the bare
// wildcard inside a brace group) or it stands for name::*. A node named
// "self" with no children refers to the parent path itself.
type Tree struct {
	Segment  Segment
	Children []Tree
	Glob     bool
}

// IsLeaf reports whether the node has no children.
func (t Tree) IsLeaf() bool {
	return len(t.Children) == 0
}

// IsSelf reports whether the node is a self leaf.
func (t Tree) IsSelf() bool {
	return t.Segment.Name == "self" && len(t.Children) == 0 && !t.Glob
}

// Statement is one use declaration with its surrounding metadata.
type Statement struct {
	Visibility string // "", "pub", "pub(crate)", "pub(in a::b)", ...
	Tree       Tree
	Attributes []string // raw attribute lines directly above the statement
	Range      Range    // statement text only, attributes excluded
	Block      int      // comment-delimited run the statement belongs to
}

// Root returns the name of the statement's first path segment.
func (s Statement) Root() string {
	return s.Tree.Segment.Name
}
