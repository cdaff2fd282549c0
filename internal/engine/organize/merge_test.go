package organize_test

import (
	"log/slog"
	"strings"
	"testing"

	"usetidy/internal/engine/organize"
	"usetidy/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSelfInsertion(t *testing.T) {
	stmts := parseAll(t, "use A;", "use A::B;")
	merged := organize.Merge(stmts, discard())
	require.Len(t, merged, 1)

	tree := merged[0].Tree
	require.Len(t, tree.Children, 2)
	assert.True(t, tree.Children[0].IsSelf())
	assert.Equal(t, "B", tree.Children[1].Segment.Name)
}

func TestMergeDeduplicates(t *testing.T) {
	stmts := parseAll(t, "use a::b;", "use a::{b, c};", "use a::b;")
	merged := organize.Merge(stmts, discard())
	require.Len(t, merged, 1)

	assert.Equal(t, map[string]string{
		"a::b": "",
		"a::c": "",
	}, flatSet(organize.Flatten(merged[0].Tree)))
}

func TestMergeAliasPriority(t *testing.T) {
	// No alias beats the placeholder.
	merged := organize.Merge(parseAll(t, "use A::T as _;", "use A::T;"), discard())
	require.Len(t, merged, 1)
	assert.Equal(t, "use A::T;", organize.FormatStatement(merged[0]))

	// An explicit rename beats the placeholder.
	merged = organize.Merge(parseAll(t, "use A::T as _;", "use A::T as R;"), discard())
	require.Len(t, merged, 1)
	assert.Equal(t, "use A::T as R;", organize.FormatStatement(merged[0]))
}

func TestMergeConflictingExplicitAliasesKeepsFirst(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	merged := organize.Merge(parseAll(t, "use A::T as First;", "use A::T as Second;"), logger)
	require.Len(t, merged, 1)
	assert.Equal(t, "use A::T as First;", organize.FormatStatement(merged[0]))
	assert.Contains(t, buf.String(), "conflicting import aliases")
}

func TestMergeRespectsVisibility(t *testing.T) {
	stmts := parseAll(t, "use a::x;", "pub use a::y;")
	merged := organize.Merge(stmts, discard())
	require.Len(t, merged, 2)
}

func TestMergeRespectsRoot(t *testing.T) {
	stmts := parseAll(t, "use a::x;", "use b::x;")
	merged := organize.Merge(stmts, discard())
	require.Len(t, merged, 2)
}

// Merging any permutation of the same statements yields the same flat set.
func TestMergeOrderIndependent(t *testing.T) {
	texts := []string{
		"use a::{b, c};",
		"use a;",
		"use a::c::d;",
		"use a::b as x;",
	}
	perms := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}

	var want map[string]string
	for _, perm := range perms {
		ordered := make([]string, len(perm))
		for i, idx := range perm {
			ordered[i] = texts[idx]
		}
		merged := organize.Merge(parseAll(t, ordered...), discard())
		require.Len(t, merged, 1)
		got := flatSet(organize.Flatten(merged[0].Tree))
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got)
	}
}

func TestMergeRangeUnion(t *testing.T) {
	first, err := parser.ParseStatement("use a::b;", nil, parser.Range{
		Start: parser.Position{Line: 2, Col: 0},
		End:   parser.Position{Line: 2, Col: 9},
	})
	require.NoError(t, err)
	second, err := parser.ParseStatement("use a::c;", nil, parser.Range{
		Start: parser.Position{Line: 5, Col: 4},
		End:   parser.Position{Line: 5, Col: 13},
	})
	require.NoError(t, err)

	merged := organize.Merge([]parser.Statement{first, second}, discard())
	require.Len(t, merged, 1)
	assert.Equal(t, parser.Position{Line: 2, Col: 0}, merged[0].Range.Start)
	assert.Equal(t, parser.Position{Line: 5, Col: 13}, merged[0].Range.End)
}

func TestMergeSyntheticRangesIgnoredInUnion(t *testing.T) {
	real, err := parser.ParseStatement("use a::b;", nil, parser.Range{
		Start: parser.Position{Line: 3, Col: 0},
		End:   parser.Position{Line: 3, Col: 9},
	})
	require.NoError(t, err)
	synth := organize.Synthesize([]organize.Suggestion{{Path: "a::c"}})

	merged := organize.Merge(append([]parser.Statement{real}, synth...), discard())
	require.Len(t, merged, 1)
	assert.Equal(t, real.Range, merged[0].Range)
}

func TestMergeAttributesSurviveOnlyAlone(t *testing.T) {
	single, err := parser.ParseStatement("use a::b;", []string{"#[cfg(test)]"}, parser.Range{})
	require.NoError(t, err)
	merged := organize.Merge([]parser.Statement{single}, discard())
	require.Len(t, merged, 1)
	assert.Equal(t, []string{"#[cfg(test)]"}, merged[0].Attributes)

	other := parseStmt(t, "use a::c;")
	merged = organize.Merge([]parser.Statement{single, other}, discard())
	require.Len(t, merged, 1)
	assert.Empty(t, merged[0].Attributes)
}

func TestMergeSingleStatementStillCanonicalized(t *testing.T) {
	merged := organize.Merge(parseAll(t, "use a::{b, b, c};"), discard())
	require.Len(t, merged, 1)
	assert.Equal(t, "use a::{\n    b,\n    c,\n};", organize.FormatStatement(merged[0]))
}
