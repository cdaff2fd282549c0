// Package manifest reads Cargo-style TOML manifests and collects the
// declared dependency names for import categorization and reporting.
package manifest

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"usetidy/internal/engine/organize"
)

// Class records which dependency table a crate name came from.
type Class int

const (
	ClassRuntime Class = iota
	ClassBuild
	ClassDev
)

func (c Class) String() string {
	switch c {
	case ClassRuntime:
		return "runtime"
	case ClassBuild:
		return "build"
	case ClassDev:
		return "dev"
	default:
		return "unknown"
	}
}

// DependencySet holds the crate names a manifest declares, keyed by the
// identifier form that appears in source paths (hyphens folded to
// underscores). A nil set is valid and contains nothing.
type DependencySet struct {
	classes map[string]Class
}

var _ organize.Dependencies = (*DependencySet)(nil)

// Contains reports whether name is declared in any dependency table.
func (s *DependencySet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.classes[normalizeName(name)]
	return ok
}

// Provenance returns the strongest class name is declared under. A name
// listed both as a runtime and a dev dependency reports as runtime.
func (s *DependencySet) Provenance(name string) (Class, bool) {
	if s == nil {
		return 0, false
	}
	class, ok := s.classes[normalizeName(name)]
	return class, ok
}

// Names returns every declared name in sorted order.
func (s *DependencySet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.classes))
	for name := range s.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *DependencySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.classes)
}

func (s *DependencySet) add(name string, class Class) {
	key := normalizeName(name)
	if key == "" {
		return
	}
	if existing, ok := s.classes[key]; ok && existing <= class {
		return
	}
	s.classes[key] = class
}

func (s *DependencySet) addAll(table map[string]toml.Primitive, class Class) {
	for name := range table {
		s.add(name, class)
	}
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}

// Only table keys matter: a renamed dependency (`foo = { package = "bar" }`)
// is referenced in source by its key, never by the upstream package name.
type manifestFile struct {
	Dependencies      map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies   map[string]toml.Primitive `toml:"dev-dependencies"`
	BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
	Workspace         workspaceTable            `toml:"workspace"`
	Target            map[string]targetTables   `toml:"target"`
}

type workspaceTable struct {
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
}

type targetTables struct {
	Dependencies      map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies   map[string]toml.Primitive `toml:"dev-dependencies"`
	BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*DependencySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes manifest bytes. Dependency names are gathered from
// [dependencies], [dev-dependencies], [build-dependencies], the
// [workspace.dependencies] table (runtime class) and any
// [target.*.dependencies] variants.
func Parse(data []byte) (*DependencySet, error) {
	var raw manifestFile
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, err
	}

	set := &DependencySet{classes: make(map[string]Class)}
	set.addAll(raw.Dependencies, ClassRuntime)
	set.addAll(raw.Workspace.Dependencies, ClassRuntime)
	set.addAll(raw.BuildDependencies, ClassBuild)
	set.addAll(raw.DevDependencies, ClassDev)
	for _, target := range raw.Target {
		set.addAll(target.Dependencies, ClassRuntime)
		set.addAll(target.BuildDependencies, ClassBuild)
		set.addAll(target.DevDependencies, ClassDev)
	}
	return set, nil
}
