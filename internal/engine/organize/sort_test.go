package organize_test

import (
	"testing"

	"usetidy/internal/engine/organize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortTreeAlphabetical(t *testing.T) {
	stmt := parseStmt(t, "use p::{zz, aa, mm};")
	sorted := organize.SortTree(stmt.Tree)

	names := make([]string, len(sorted.Children))
	for i, c := range sorted.Children {
		names[i] = c.Segment.Name
	}
	assert.Equal(t, []string{"aa", "mm", "zz"}, names)
}

func TestSortTreeSelfFirstGlobLast(t *testing.T) {
	stmt := parseStmt(t, "use p::{*, Bar, self, Aaa};")
	sorted := organize.SortTree(stmt.Tree)

	names := make([]string, len(sorted.Children))
	for i, c := range sorted.Children {
		names[i] = c.Segment.Name
	}
	assert.Equal(t, []string{"self", "Aaa", "Bar", "*"}, names)
}

func TestSortTreeRecursesAndDoesNotMutate(t *testing.T) {
	stmt := parseStmt(t, "use p::{b::{z, a}, c};")
	sorted := organize.SortTree(stmt.Tree)

	inner := sorted.Children[0]
	require.Equal(t, "b", inner.Segment.Name)
	assert.Equal(t, "a", inner.Children[0].Segment.Name)
	assert.Equal(t, "z", inner.Children[1].Segment.Name)

	// The original tree still has its parse order.
	assert.Equal(t, "z", stmt.Tree.Children[0].Children[0].Segment.Name)
}

func TestSortTreeCaseSensitive(t *testing.T) {
	stmt := parseStmt(t, "use p::{beta, Alpha, Zeta, alpha};")
	sorted := organize.SortTree(stmt.Tree)

	names := make([]string, len(sorted.Children))
	for i, c := range sorted.Children {
		names[i] = c.Segment.Name
	}
	// Byte order: uppercase before lowercase.
	assert.Equal(t, []string{"Alpha", "Zeta", "alpha", "beta"}, names)
}

func TestSortStatementsByCanonicalPath(t *testing.T) {
	stmts := parseAll(t,
		"use b::a;",
		"use a::{z, b};",
		"use a::b::c;",
	)
	for i := range stmts {
		stmts[i].Tree = organize.SortTree(stmts[i].Tree)
	}
	sorted := organize.SortStatements(stmts)

	roots := make([]string, len(sorted))
	for i, s := range sorted {
		roots[i] = organize.FormatStatement(s)
	}
	// a::{b, z} keys as a::b, before a::b::c; b::a last.
	assert.Equal(t, []string{
		"use a::{\n    b,\n    z,\n};",
		"use a::b::c;",
		"use b::a;",
	}, roots)
}

func TestSortStatementsVisibilityTiebreak(t *testing.T) {
	stmts := parseAll(t,
		"pub use a::b;",
		"use a::b;",
	)
	sorted := organize.SortStatements(stmts)
	assert.Equal(t, "", sorted[0].Visibility)
	assert.Equal(t, "pub", sorted[1].Visibility)
}
