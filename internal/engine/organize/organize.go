// Package organize canonicalizes parsed use declarations: it merges
// statements sharing a root, deduplicates their targets, sorts trees and
// statements into a deterministic order, partitions them into display
// categories, and serializes the result. Every function is pure; the same
// input always produces the same output.
package organize

import (
	"log/slog"
	"strings"

	"usetidy/internal/engine/parser"
)

// Organize runs the canonicalization pipeline over scanned statements:
// merge, sort, categorize. The result is ready for Render.
func Organize(stmts []parser.Statement, deps Dependencies, logger *slog.Logger) []Group {
	merged := Merge(stmts, logger)
	for i := range merged {
		merged[i].Tree = SortTree(merged[i].Tree)
	}
	return GroupStatements(SortStatements(merged), deps)
}

// Render serializes groups to text. Trees and statement order are re-sorted
// first, which makes Render idempotent over its own output. Statements
// within a group sit on consecutive lines; groups are separated by exactly
// one blank line; non-empty output ends with exactly one line break.
func Render(groups []Group) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		stmts := make([]parser.Statement, len(g.Statements))
		for i, s := range g.Statements {
			s.Tree = SortTree(s.Tree)
			stmts[i] = s
		}
		stmts = SortStatements(stmts)

		lines := make([]string, len(stmts))
		for i, s := range stmts {
			lines[i] = FormatStatement(s)
		}
		if len(lines) > 0 {
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}
