package organize

import (
	"log/slog"
	"strings"

	"usetidy/internal/engine/parser"
	"usetidy/internal/shared/observability"
)

// aliasRank orders alias variants for collision resolution: an explicit
// rename beats no alias, which beats the _ discard placeholder.
func aliasRank(alias string) int {
	switch alias {
	case "_":
		return 0
	case "":
		return 1
	default:
		return 2
	}
}

// Merge canonicalizes a statement list. Statements sharing a root segment
// and visibility qualifier collapse into one: their trees are flattened,
// deduplicated by path key, and rebuilt, so a path imported directly and
// used as a prefix regains a self child. Colliding aliases resolve by
// aliasRank; two differing explicit renames keep the first and report the
// conflict through logger. Attributes survive only when a group holds a
// single statement. The merged range is the union of the contributing
// non-synthetic ranges.
func Merge(stmts []parser.Statement, logger *slog.Logger) []parser.Statement {
	if logger == nil {
		logger = slog.Default()
	}

	type group struct {
		visibility string
		stmts      []parser.Statement
	}
	var order []string
	groups := make(map[string]*group)
	for _, s := range stmts {
		key := s.Root() + "\x00" + s.Visibility
		g, ok := groups[key]
		if !ok {
			g = &group{visibility: s.Visibility}
			groups[key] = g
			order = append(order, key)
		}
		g.stmts = append(g.stmts, s)
	}

	out := make([]parser.Statement, 0, len(order))
	for _, key := range order {
		g := groups[key]

		var flats []FlatImport
		for _, s := range g.stmts {
			flats = append(flats, Flatten(s.Tree)...)
		}
		merged := parser.Statement{
			Visibility: g.visibility,
			Tree:       SortTree(BuildTree(dedupe(flats, logger))),
			Range:      unionRange(g.stmts),
			Block:      g.stmts[0].Block,
		}
		if len(g.stmts) == 1 {
			merged.Attributes = g.stmts[0].Attributes
		}
		out = append(out, merged)
	}
	return out
}

// dedupe collapses flat imports sharing a key, resolving aliases by rank.
func dedupe(flats []FlatImport, logger *slog.Logger) []FlatImport {
	index := make(map[string]int)
	out := make([]FlatImport, 0, len(flats))
	for _, f := range flats {
		key := f.Key()
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, f)
			continue
		}
		kept := out[at]
		switch {
		case aliasRank(f.Alias) > aliasRank(kept.Alias):
			kept.Alias = f.Alias
			out[at] = kept
		case aliasRank(f.Alias) == aliasRank(kept.Alias) && f.Alias != kept.Alias:
			observability.MergeConflictsTotal.Inc()
			logger.Warn("conflicting import aliases, keeping the first",
				"path", strings.Join(f.Path, "::"),
				"kept", kept.Alias,
				"dropped", f.Alias)
		}
	}
	return out
}

// unionRange spans from the earliest start to the latest end of the given
// statements, ignoring synthetic zero ranges.
func unionRange(stmts []parser.Statement) parser.Range {
	var u parser.Range
	seen := false
	for _, s := range stmts {
		if s.Range.IsZero() {
			continue
		}
		if !seen {
			u = s.Range
			seen = true
			continue
		}
		if s.Range.Start.Before(u.Start) {
			u.Start = s.Range.Start
		}
		if u.End.Before(s.Range.End) {
			u.End = s.Range.End
		}
	}
	return u
}
