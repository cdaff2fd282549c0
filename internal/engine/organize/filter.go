package organize

import (
	"sort"

	"usetidy/internal/engine/parser"
)

// FilterUnused drops import targets whose source spans fall inside the
// given ranges, as reported by an external resolver. Statements shrink to
// their surviving targets and disappear entirely when nothing survives.
// When several variants of one path exist (a plain import next to an
// "as _" placeholder), the placeholder variant is discarded first no matter
// which occurrence the range pointed at.
func FilterUnused(stmts []parser.Statement, unused []parser.Range) []parser.Statement {
	if len(unused) == 0 {
		return stmts
	}

	type ref struct {
		stmt int
		flat int
	}
	flats := make([][]FlatImport, len(stmts))
	byKey := make(map[string][]ref)
	for si, s := range stmts {
		flats[si] = Flatten(s.Tree)
		for fi, f := range flats[si] {
			key := f.Key()
			byKey[key] = append(byKey[key], ref{stmt: si, flat: fi})
		}
	}

	// Count hits per path key, then discard that many variants of the
	// key, lowest alias rank first. One hit on a plain/placeholder pair
	// therefore removes the placeholder, whichever occurrence the range
	// covered; hits on every variant remove them all.
	hits := make(map[string]int)
	for si := range flats {
		for _, f := range flats[si] {
			if hitByAny(f, unused) {
				hits[f.Key()]++
			}
		}
	}
	if len(hits) == 0 {
		return stmts
	}
	drop := make(map[ref]struct{})
	for key, n := range hits {
		variants := append([]ref(nil), byKey[key]...)
		sort.SliceStable(variants, func(i, j int) bool {
			fi := flats[variants[i].stmt][variants[i].flat]
			fj := flats[variants[j].stmt][variants[j].flat]
			return aliasRank(fi.Alias) < aliasRank(fj.Alias)
		})
		if n > len(variants) {
			n = len(variants)
		}
		for _, victim := range variants[:n] {
			drop[victim] = struct{}{}
		}
	}

	out := make([]parser.Statement, 0, len(stmts))
	for si, s := range stmts {
		kept := make([]FlatImport, 0, len(flats[si]))
		for fi, f := range flats[si] {
			if _, gone := drop[ref{stmt: si, flat: fi}]; !gone {
				kept = append(kept, f)
			}
		}
		switch {
		case len(kept) == 0:
			// whole statement removed
		case len(kept) == len(flats[si]):
			out = append(out, s)
		default:
			shrunk := s
			shrunk.Tree = SortTree(BuildTree(kept))
			out = append(out, shrunk)
		}
	}
	return out
}

// hitByAny reports whether any segment span of the flat import lies inside
// one of the ranges. Synthetic imports without spans never match.
func hitByAny(f FlatImport, unused []parser.Range) bool {
	for _, span := range f.Spans {
		if span.IsZero() {
			continue
		}
		for _, r := range unused {
			if r.Contains(span) {
				return true
			}
		}
	}
	return false
}
