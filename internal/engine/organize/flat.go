package organize

import (
	"sort"
	"strings"

	"usetidy/internal/engine/parser"
)

// FlatImport is one import target unrolled from a use tree: the full segment
// path from the root plus alias and glob markers. Spans hold the source
// range of each path element when the import came from parsed text;
// synthetic imports carry none. FlatImports are the order-independent unit
// merge deduplicates on.
type FlatImport struct {
	Path  []string
	Alias string
	Glob  bool
	Spans []parser.Range
}

// Key identifies a flat import for deduplication: the joined path, with a
// glob marker so a::* and a never collapse. Aliases stay out of the key;
// colliding aliases resolve by priority instead. A path imported directly
// and one imported via {self} produce the same key on purpose.
func (f FlatImport) Key() string {
	k := strings.Join(f.Path, "::")
	if f.Glob {
		k += "::*"
	}
	return k
}

// Root returns the first path segment.
func (f FlatImport) Root() string {
	return f.Path[0]
}

// Flatten unrolls a tree depth first into its flat imports. A self leaf
// collapses onto the accumulated parent path, with the self token's span
// standing in for the final element so diagnostics aimed at the self token
// still match. A glob contributes the parent path with the glob flag; every
// other leaf contributes its full path and alias.
func Flatten(t parser.Tree) []FlatImport {
	var out []FlatImport
	flattenInto(t, nil, nil, &out)
	return out
}

func flattenInto(node parser.Tree, path []string, spans []parser.Range, out *[]FlatImport) {
	switch {
	case node.IsSelf() && len(path) > 0:
		fs := append(cloneSpans(spans[:len(spans)-1]), node.Segment.Span)
		*out = append(*out, FlatImport{
			Path:  clonePath(path),
			Alias: node.Segment.Alias,
			Spans: fs,
		})
	case node.Glob:
		p, sp := path, spans
		if node.Segment.Name != "*" {
			p = append(clonePath(path), node.Segment.Name)
			sp = append(cloneSpans(spans), node.Segment.Span)
		}
		*out = append(*out, FlatImport{
			Path:  clonePath(p),
			Glob:  true,
			Spans: cloneSpans(sp),
		})
	case node.IsLeaf():
		*out = append(*out, FlatImport{
			Path:  append(clonePath(path), node.Segment.Name),
			Alias: node.Segment.Alias,
			Spans: append(cloneSpans(spans), node.Segment.Span),
		})
	default:
		p := append(path, node.Segment.Name)
		sp := append(spans, node.Segment.Span)
		for _, c := range node.Children {
			flattenInto(c, p, sp, out)
		}
	}
}

func clonePath(p []string) []string {
	return append([]string(nil), p...)
}

func cloneSpans(s []parser.Range) []parser.Range {
	return append([]parser.Range(nil), s...)
}

// trieNode is one level of the rebuild trie. Children own their subtrees
// outright; there are no parent references.
type trieNode struct {
	children map[string]*trieNode
	terminal bool
	alias    string
	glob     bool
}

func (n *trieNode) child(name string) *trieNode {
	if n.children == nil {
		n.children = make(map[string]*trieNode)
	}
	c, ok := n.children[name]
	if !ok {
		c = &trieNode{}
		n.children[name] = c
	}
	return c
}

// BuildTree reassembles flat imports sharing one root segment into a single
// canonical tree: children alphabetical, a self child regained wherever a
// path is both an import target and a prefix, a lone glob in the inline
// name::* form and globs beside siblings as a trailing * child. It is the
// structural inverse of Flatten for deduplicated input. The list must be
// non-empty and share Path[0].
func BuildTree(flats []FlatImport) parser.Tree {
	root := &trieNode{}
	for _, f := range flats {
		node := root
		for _, seg := range f.Path[1:] {
			node = node.child(seg)
		}
		if f.Glob {
			node.glob = true
			continue
		}
		node.terminal = true
		if node.alias == "" {
			node.alias = f.Alias
		}
	}
	return assemble(flats[0].Root(), root)
}

func assemble(name string, n *trieNode) parser.Tree {
	if n.glob && len(n.children) == 0 && !n.terminal {
		return parser.Tree{Segment: parser.Segment{Name: name}, Glob: true}
	}

	names := make([]string, 0, len(n.children))
	for cn := range n.children {
		names = append(names, cn)
	}
	sort.Strings(names)

	var kids []parser.Tree
	if n.terminal && (len(n.children) > 0 || n.glob) {
		kids = append(kids, parser.Tree{Segment: parser.Segment{Name: "self", Alias: n.alias}})
	}
	for _, cn := range names {
		kids = append(kids, assemble(cn, n.children[cn]))
	}
	if n.glob && (len(n.children) > 0 || n.terminal) {
		kids = append(kids, parser.Tree{Segment: parser.Segment{Name: "*"}, Glob: true})
	}

	if len(kids) == 0 {
		return parser.Tree{Segment: parser.Segment{Name: name, Alias: n.alias}}
	}
	return parser.Tree{Segment: parser.Segment{Name: name}, Children: kids}
}
