package organize

import (
	"strings"

	"usetidy/internal/engine/parser"
)

// Suggestion is an externally proposed import: a :: separated path plus a
// marker for trait-like targets that should be imported without binding
// their name.
type Suggestion struct {
	Path      string
	TraitLike bool
}

// Synthesize builds ready-to-merge statements from suggestions. Trait-like
// paths get the _ placeholder alias so the name never enters scope as a
// usable identifier. Suggestions with empty paths are ignored. The
// statements carry zero ranges, which range unions skip.
func Synthesize(suggestions []Suggestion) []parser.Statement {
	out := make([]parser.Statement, 0, len(suggestions))
	for _, sug := range suggestions {
		segs := splitPath(sug.Path)
		if len(segs) == 0 {
			continue
		}
		flat := FlatImport{Path: segs}
		if sug.TraitLike {
			flat.Alias = "_"
		}
		out = append(out, parser.Statement{
			Tree: BuildTree([]FlatImport{flat}),
		})
	}
	return out
}

func splitPath(path string) []string {
	var segs []string
	for _, part := range strings.Split(path, "::") {
		part = strings.TrimSpace(part)
		if part != "" {
			segs = append(segs, part)
		}
	}
	return segs
}
