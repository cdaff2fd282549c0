package organize_test

import (
	"io"
	"log/slog"
	"testing"

	"usetidy/internal/engine/organize"
	"usetidy/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseStmt(t *testing.T, text string) parser.Statement {
	t.Helper()
	stmt, err := parser.ParseStatement(text, nil, parser.Range{})
	require.NoError(t, err)
	return stmt
}

func parseAll(t *testing.T, texts ...string) []parser.Statement {
	t.Helper()
	stmts := make([]parser.Statement, len(texts))
	for i, text := range texts {
		stmts[i] = parseStmt(t, text)
	}
	return stmts
}

// flatSet reduces flat imports to a key→alias map for set comparisons.
func flatSet(flats []organize.FlatImport) map[string]string {
	set := make(map[string]string, len(flats))
	for _, f := range flats {
		set[f.Key()] = f.Alias
	}
	return set
}

type depSet map[string]struct{}

func (d depSet) Contains(name string) bool {
	_, ok := d[name]
	return ok
}

func deps(names ...string) depSet {
	d := make(depSet, len(names))
	for _, n := range names {
		d[n] = struct{}{}
	}
	return d
}

func TestOrganizeCategoriesInFixedOrder(t *testing.T) {
	stmts := parseAll(t,
		"use crate::m;",
		"use serde::X;",
		"use std::io;",
	)
	groups := organize.Organize(stmts, deps("serde", "tokio"), discard())
	require.Len(t, groups, 3)
	assert.Equal(t, organize.CategoryStd, groups[0].Category)
	assert.Equal(t, organize.CategoryExternal, groups[1].Category)
	assert.Equal(t, organize.CategoryInternal, groups[2].Category)
}

func TestOrganizeEmptyInput(t *testing.T) {
	groups := organize.Organize(nil, nil, discard())
	assert.Empty(t, groups)
	assert.Equal(t, "", organize.Render(groups))
}

func TestRenderGroupSeparation(t *testing.T) {
	stmts := parseAll(t,
		"use std::io;",
		"use serde::Serialize;",
		"use crate::util;",
	)
	groups := organize.Organize(stmts, deps("serde"), discard())
	got := organize.Render(groups)
	want := "use std::io;\n\nuse serde::Serialize;\n\nuse crate::util;\n"
	assert.Equal(t, want, got)
}

func TestRenderStatementsWithinGroupOnConsecutiveLines(t *testing.T) {
	stmts := parseAll(t,
		"use tokio::sync::Mutex;",
		"use serde::Serialize;",
	)
	got := organize.Render(organize.Organize(stmts, deps("serde", "tokio"), discard()))
	want := "use serde::Serialize;\nuse tokio::sync::Mutex;\n"
	assert.Equal(t, want, got)
}

// Organizing already-organized text must change nothing.
func TestOrganizePipelineIdempotent(t *testing.T) {
	src := "use b::{z, a};\nuse std::{io, fmt};\nuse a::c;\nuse a;\nuse crate::x::*;\n"
	d := deps("a", "b")

	pass := func(text string) string {
		scan := parser.Scan(text)
		return organize.Render(organize.Organize(scan.Statements, d, discard()))
	}

	once := pass(src)
	twice := pass(once)
	assert.Equal(t, once, twice)
}

func TestOrganizeMergesAcrossCategoriesCorrectly(t *testing.T) {
	stmts := parseAll(t,
		"use std::io::Read;",
		"use std::io::Write;",
		"use std::fmt;",
	)
	groups := organize.Organize(stmts, nil, discard())
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Statements, 1)

	got := organize.Render(groups)
	want := "use std::{\n    fmt,\n    io::{\n        Read,\n        Write,\n    },\n};\n"
	assert.Equal(t, want, got)
}

func TestSynthesizeTraitLike(t *testing.T) {
	stmts := organize.Synthesize([]organize.Suggestion{
		{Path: "std::io::Write", TraitLike: true},
		{Path: "serde::Serialize"},
		{Path: ""},
	})
	require.Len(t, stmts, 2)

	assert.Equal(t, "use std::io::Write as _;", organize.FormatStatement(stmts[0]))
	assert.Equal(t, "use serde::Serialize;", organize.FormatStatement(stmts[1]))
	assert.True(t, stmts[0].Range.IsZero())
}

func TestSynthesizedStatementsMergeWithParsed(t *testing.T) {
	parsed := parseAll(t, "use std::io::Read;")
	synth := organize.Synthesize([]organize.Suggestion{{Path: "std::io::Write", TraitLike: true}})

	groups := organize.Organize(append(parsed, synth...), nil, discard())
	got := organize.Render(groups)
	want := "use std::io::{\n    Read,\n    Write as _,\n};\n"
	assert.Equal(t, want, got)
}
