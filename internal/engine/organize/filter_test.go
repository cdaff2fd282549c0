package organize_test

import (
	"testing"

	"usetidy/internal/engine/organize"
	"usetidy/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanOne parses src with document coordinates so segment spans line up
// with the positions a resolver would report.
func scanOne(t *testing.T, src string) []parser.Statement {
	t.Helper()
	res := parser.Scan(src)
	require.NotEmpty(t, res.Statements)
	return res.Statements
}

func span(line, from, to int) parser.Range {
	return parser.Range{
		Start: parser.Position{Line: line, Col: from},
		End:   parser.Position{Line: line, Col: to},
	}
}

func TestFilterUnusedDropsWholeStatement(t *testing.T) {
	stmts := scanOne(t, "use a::b;\nuse c::d;\n")
	// The whole first statement is unused.
	out := organize.FilterUnused(stmts, []parser.Range{span(0, 0, 9)})
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].Root())
}

func TestFilterUnusedShrinksBraceGroup(t *testing.T) {
	// Columns:          0123456789012345
	stmts := scanOne(t, "use a::{b, cc};\n")
	// The resolver flags the b entry at columns 8..9.
	out := organize.FilterUnused(stmts, []parser.Range{span(0, 8, 9)})
	require.Len(t, out, 1)
	assert.Equal(t, "use a::cc;", organize.FormatStatement(out[0]))
}

func TestFilterUnusedMatchesSelfToken(t *testing.T) {
	// Columns:          0123456789012345678
	stmts := scanOne(t, "use a::{self, b};\n")
	// The self import alone is unused; its token spans columns 8..12.
	out := organize.FilterUnused(stmts, []parser.Range{span(0, 8, 12)})
	require.Len(t, out, 1)
	assert.Equal(t, "use a::b;", organize.FormatStatement(out[0]))
}

func TestFilterUnusedPrefersPlaceholderVariant(t *testing.T) {
	stmts := scanOne(t, "use x::T;\nuse x::T as _;\n")
	// One occurrence is redundant; the range covers the plain one, but
	// the placeholder variant is the one that goes.
	out := organize.FilterUnused(stmts, []parser.Range{span(0, 7, 8)})
	require.Len(t, out, 1)
	assert.Equal(t, "use x::T;", organize.FormatStatement(out[0]))
}

func TestFilterUnusedRemovesAllFlaggedVariants(t *testing.T) {
	stmts := scanOne(t, "use x::T;\nuse x::T as _;\n")
	out := organize.FilterUnused(stmts, []parser.Range{
		span(0, 7, 8),
		span(1, 7, 8),
	})
	assert.Empty(t, out)
}

func TestFilterUnusedNoRangesNoChange(t *testing.T) {
	stmts := scanOne(t, "use a::b;\n")
	out := organize.FilterUnused(stmts, nil)
	assert.Equal(t, stmts, out)
}

func TestFilterUnusedIgnoresSyntheticStatements(t *testing.T) {
	synth := organize.Synthesize([]organize.Suggestion{{Path: "a::b"}})
	out := organize.FilterUnused(synth, []parser.Range{span(0, 0, 100)})
	assert.Len(t, out, 1)
}
