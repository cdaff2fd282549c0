package organize_test

import (
	"testing"

	"usetidy/internal/engine/organize"
	"usetidy/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenLeavesAndGroups(t *testing.T) {
	stmt := parseStmt(t, "use a::{b, c::{d, e as x}};")
	flats := organize.Flatten(stmt.Tree)

	assert.Equal(t, map[string]string{
		"a::b":    "",
		"a::c::d": "",
		"a::c::e": "x",
	}, flatSet(flats))
}

func TestFlattenSelfCollapses(t *testing.T) {
	stmt := parseStmt(t, "use a::b::{self, c};")
	flats := organize.Flatten(stmt.Tree)

	set := flatSet(flats)
	require.Len(t, set, 2)
	assert.Contains(t, set, "a::b")
	assert.Contains(t, set, "a::b::c")
}

func TestFlattenSelfSpanPointsAtSelfToken(t *testing.T) {
	stmt := parseStmt(t, "use a::{self, b};")
	flats := organize.Flatten(stmt.Tree)

	var selfFlat organize.FlatImport
	for _, f := range flats {
		if f.Key() == "a" {
			selfFlat = f
		}
	}
	require.Len(t, selfFlat.Spans, 1)
	// "use a::{self, b};" puts the self token at columns 8..12.
	assert.Equal(t, parser.Position{Line: 0, Col: 8}, selfFlat.Spans[0].Start)
	assert.Equal(t, parser.Position{Line: 0, Col: 12}, selfFlat.Spans[0].End)
}

func TestFlattenGlobs(t *testing.T) {
	trailing := parseStmt(t, "use a::b::*;")
	braced := parseStmt(t, "use a::{*, c};")

	assert.Equal(t, map[string]string{"a::b::*": ""}, flatSet(organize.Flatten(trailing.Tree)))
	assert.Equal(t, map[string]string{"a::*": "", "a::c": ""}, flatSet(organize.Flatten(braced.Tree)))
}

func TestFlattenKeyDistinguishesGlobFromPlain(t *testing.T) {
	plain := organize.Flatten(parseStmt(t, "use a::b;").Tree)
	glob := organize.Flatten(parseStmt(t, "use a::b::*;").Tree)

	require.Len(t, plain, 1)
	require.Len(t, glob, 1)
	assert.NotEqual(t, plain[0].Key(), glob[0].Key())
}

func TestBuildTreeSelfInsertion(t *testing.T) {
	tree := organize.BuildTree([]organize.FlatImport{
		{Path: []string{"a"}},
		{Path: []string{"a", "b"}},
	})

	require.Len(t, tree.Children, 2)
	assert.True(t, tree.Children[0].IsSelf())
	assert.Equal(t, "b", tree.Children[1].Segment.Name)
}

func TestBuildTreeSelfOnlyNormalizesToLeaf(t *testing.T) {
	// a::{self} and a are the same import; rebuilding canonicalizes.
	stmt := parseStmt(t, "use a::{self};")
	tree := organize.BuildTree(organize.Flatten(stmt.Tree))

	assert.True(t, tree.IsLeaf())
	assert.Equal(t, "a", tree.Segment.Name)
}

func TestBuildTreeLoneGlobInlines(t *testing.T) {
	tree := organize.BuildTree([]organize.FlatImport{
		{Path: []string{"a", "b"}, Glob: true},
	})

	require.Len(t, tree.Children, 1)
	b := tree.Children[0]
	assert.Equal(t, "b", b.Segment.Name)
	assert.True(t, b.Glob)
	assert.Empty(t, b.Children)
}

func TestBuildTreeGlobBesideSiblingsTrails(t *testing.T) {
	tree := organize.BuildTree([]organize.FlatImport{
		{Path: []string{"a", "c"}},
		{Path: []string{"a"}, Glob: true},
		{Path: []string{"a", "b"}},
	})

	names := make([]string, len(tree.Children))
	for i, c := range tree.Children {
		names[i] = c.Segment.Name
	}
	assert.Equal(t, []string{"b", "c", "*"}, names)
}

func TestBuildTreeKeepsAliasOnSelf(t *testing.T) {
	tree := organize.BuildTree([]organize.FlatImport{
		{Path: []string{"a"}, Alias: "x"},
		{Path: []string{"a", "b"}},
	})

	require.Len(t, tree.Children, 2)
	self := tree.Children[0]
	assert.True(t, self.IsSelf())
	assert.Equal(t, "x", self.Segment.Alias)
}

// Flatten and BuildTree must be exact structural inverses for canonical
// input: flatten(buildTree(flatten(T))) == flatten(T) as a set.
func TestFlattenBuildTreeRoundTrip(t *testing.T) {
	cases := []string{
		"use a;",
		"use a::b;",
		"use a::{b, c};",
		"use a::{self, b::{c, d}, e};",
		"use a::b::*;",
		"use a::{*, b};",
		"use a::{self as x, b as y};",
		"use very::deeply::nested::{path::{one, two::{three}}, other};",
	}
	for _, text := range cases {
		first := organize.Flatten(parseStmt(t, text).Tree)
		rebuilt := organize.BuildTree(first)
		second := organize.Flatten(rebuilt)
		assert.Equal(t, flatSet(first), flatSet(second), "input %q", text)
	}
}
