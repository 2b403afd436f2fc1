package provenance

import (
	"errors"
	"testing"

	"go.uber.org/multierr"

	"arxmerge/arxml"
	"arxmerge/merge"
)

func TestBuildSharedAndUnique(t *testing.T) {
	set, engine, tree := pipeline(t,
		"file:/one.arxml", packageFragment("P", "Shared", "OnlyInOne"),
		"file:/two.arxml", packageFragment("P", "Shared", "OnlyInTwo"),
	)

	m, err := Build(engine, set, merge.ShortNamePaths{}, testLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// package itself is shared as well, everything else is counted among its
	// elements
	if m.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", m.Len())
	}
	tests := []struct {
		path    string
		sources int
	}{
		{"/P", 2},
		{"/P/Shared", 2},
		{"/P/OnlyInOne", 1},
		{"/P/OnlyInTwo", 1},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			id := mustLookup(t, tree, tt.path)
			if got := len(m.Sources(id)); got != tt.sources {
				t.Errorf("sources = %d, want %d", got, tt.sources)
			}
			for _, src := range m.Sources(id) {
				if p, _ := src.Tree.Path(src.Node); p != tt.path {
					t.Errorf("source %s mapped to %s", p, tt.path)
				}
			}
		})
	}
	if got := len(m.MultiSource()); got != 2 {
		t.Errorf("MultiSource() = %d, want 2", got)
	}
	if m.Entries() != 6 {
		t.Errorf("Entries() = %d, want 6", m.Entries())
	}

	shared := mustLookup(t, tree, "/P/Shared")
	uris := m.URIs(shared)
	if len(uris) != 2 || uris[0] != "file:/one.arxml" || uris[1] != "file:/two.arxml" {
		t.Errorf("URIs() = %v", uris)
	}
}

func TestBuildCompleteness(t *testing.T) {
	set, engine, _ := pipeline(t,
		"file:/a.arxml", packageFragment("P", "A", "B"),
		"file:/b.arxml", packageFragment("P", "B", "C"),
		"file:/c.arxml", packageFragment("Q", "A"),
	)
	m, err := Build(engine, set, merge.ShortNamePaths{}, testLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	seen := make(map[arxml.Locator]int)
	for _, sources := range m.All() {
		for _, src := range sources {
			seen[src]++
		}
	}
	for _, f := range set.Fragments() {
		for id := range f.Tree.All() {
			src := f.Tree.Locate(id)
			if _, ok := (merge.ShortNamePaths{}).SplitableFor(src); !ok {
				if seen[src] != 0 {
					t.Errorf("element without key %s recorded", f.Tree.Node(id).Tag)
				}
				continue
			}
			if seen[src] != 1 {
				p, _ := f.Tree.Path(id)
				t.Errorf("%s of %s recorded %d times", p, f.URI, seen[src])
			}
		}
	}
}

func TestBuildKeepsFragmentOrder(t *testing.T) {
	set, engine, tree := pipeline(t,
		"file:/z.arxml", packageFragment("P", "X"),
		"file:/a.arxml", packageFragment("P", "X"),
	)
	m, _ := Build(engine, set, merge.ShortNamePaths{}, testLogger(t))

	keys := m.Keys()
	if len(keys) == 0 || keys[0] != mustLookup(t, tree, "/P") {
		t.Fatalf("first key must be package, got %v", keys)
	}
	sources := m.Sources(mustLookup(t, tree, "/P/X"))
	if len(sources) != 2 || sources[0].Tree.URI != "file:/z.arxml" {
		t.Errorf("sources must follow load order: %v", sources)
	}
}

// forgetful engine does not know some keys
type forgetful struct {
	merge.Engine
	forget map[arxml.Key]bool
}

func (f forgetful) Get(key arxml.Key) (arxml.NodeID, bool) {
	if f.forget[key] {
		return arxml.InvalidNode, false
	}
	return f.Engine.Get(key)
}

func TestBuildReportsNotMerged(t *testing.T) {
	set, engine, tree := pipeline(t,
		"file:/a.arxml", packageFragment("P", "A", "B"),
		"file:/b.arxml", packageFragment("P", "B"),
	)
	eng := forgetful{Engine: engine, forget: map[arxml.Key]bool{"/P/B": true}}

	m, err := Build(eng, set, merge.ShortNamePaths{}, testLogger(t))
	if !errors.Is(err, ErrNotMerged) {
		t.Fatalf("expected ErrNotMerged, got %v", err)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("problems = %d, want 2 (one per fragment)", n)
	}
	if m == nil || m.Len() != 2 {
		t.Fatalf("map must be returned with the rest of entries")
	}
	if len(m.Sources(mustLookup(t, tree, "/P/A"))) != 1 {
		t.Error("/P/A must still be mapped")
	}
}

func TestBuildWithoutMergedModel(t *testing.T) {
	set, _, _ := pipeline(t, "file:/a.arxml", packageFragment("P", "A"))
	if _, err := Build(merge.NewSplitable(testLogger(t)), set, merge.ShortNamePaths{}, testLogger(t)); err == nil {
		t.Fatal("expected error for engine without merged model")
	}
}

func TestBuildDisjointFragments(t *testing.T) {
	var pairs []string
	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot"} {
		pairs = append(pairs, "file:/"+name+".arxml", packageFragment(name, name+"Type"))
	}
	set, engine, tree := pipeline(t, pairs...)

	roots := 0
	for id := range tree.All() {
		if tree.Node(id).Tag == arxml.TagAutosar {
			roots++
		}
	}
	if roots != 1 {
		t.Errorf("merged model has %d AUTOSAR roots, want 1", roots)
	}
	m, err := Build(engine, set, merge.ShortNamePaths{}, testLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n := len(m.MultiSource()); n != 0 {
		t.Errorf("MultiSource() = %d, want 0", n)
	}
	if m.Len() != 12 {
		t.Errorf("Len() = %d, want 12", m.Len())
	}
}
