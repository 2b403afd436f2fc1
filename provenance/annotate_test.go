package provenance

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"arxmerge/arxml"
	"arxmerge/fragment"
	"arxmerge/merge"
)

func annotated(t *testing.T, dedupe bool, pairs ...string) (*arxml.Tree, *Map, *Annotator) {
	t.Helper()
	set, engine, tree := pipeline(t, pairs...)
	m, err := Build(engine, set, merge.ShortNamePaths{}, testLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree, m, &Annotator{GID: DefaultGID, Deduplicate: dedupe, Log: testLogger(t)}
}

func specialData(t *testing.T, tree *arxml.Tree, path string) []string {
	t.Helper()
	view, ok := tree.AsAnnotatable(mustLookup(t, tree, path))
	if !ok {
		t.Fatalf("%s is not annotatable", path)
	}
	return view.SpecialData(DefaultGID)
}

func TestAnnotateFidelity(t *testing.T) {
	tree, m, a := annotated(t, true,
		"file:/one.arxml", packageFragment("P", "Shared", "OnlyInOne"),
		"file:/two.arxml", packageFragment("P", "Shared", "OnlyInTwo"),
	)

	added, err := a.Annotate(tree, m)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if added != 6 {
		t.Errorf("added = %d, want 6", added)
	}

	tests := []struct {
		path string
		want []string
	}{
		{"/P", []string{"file:/one.arxml", "file:/two.arxml"}},
		{"/P/Shared", []string{"file:/one.arxml", "file:/two.arxml"}},
		{"/P/OnlyInOne", []string{"file:/one.arxml"}},
		{"/P/OnlyInTwo", []string{"file:/two.arxml"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := specialData(t, tree, tt.path); !slices.Equal(got, tt.want) {
				t.Errorf("SpecialData() = %v, want %v", got, tt.want)
			}
			id := mustLookup(t, tree, tt.path)
			admin, ok := tree.Child(id, arxml.TagAdminData)
			if !ok {
				t.Fatal("ADMIN-DATA missing")
			}
			sdgs, _ := tree.Child(admin, arxml.TagSDGS)
			if n := len(tree.ChildrenByTag(sdgs, arxml.TagSDG)); n != 1 {
				t.Errorf("SDG count = %d, want 1", n)
			}
		})
	}
	if m.Entries() != 6 {
		t.Error("annotation must not change provenance map")
	}
}

func TestAnnotateTwice(t *testing.T) {
	pairs := []string{
		"file:/one.arxml", packageFragment("P", "Shared"),
		"file:/two.arxml", packageFragment("P", "Shared"),
	}

	t.Run("deduplicate", func(t *testing.T) {
		tree, m, a := annotated(t, true, pairs...)
		first, _ := a.Annotate(tree, m)
		second, err := a.Annotate(tree, m)
		if err != nil {
			t.Fatalf("Annotate: %v", err)
		}
		if first != 4 || second != 0 {
			t.Errorf("added %d then %d, want 4 then 0", first, second)
		}
		if got := specialData(t, tree, "/P/Shared"); len(got) != 2 {
			t.Errorf("entries after two runs = %v, want 2", got)
		}
	})

	t.Run("append always", func(t *testing.T) {
		tree, m, a := annotated(t, false, pairs...)
		first, _ := a.Annotate(tree, m)
		second, _ := a.Annotate(tree, m)
		if first != 4 || second != 4 {
			t.Errorf("added %d then %d, want 4 then 4", first, second)
		}
		// every run appends one entry per source element into the same group
		want := []string{"file:/one.arxml", "file:/two.arxml", "file:/one.arxml", "file:/two.arxml"}
		if got := specialData(t, tree, "/P/Shared"); !slices.Equal(got, want) {
			t.Errorf("entries after two runs = %v, want %v", got, want)
		}
	})
}

func TestAnnotateSkipsUnsupported(t *testing.T) {
	xml := `<AUTOSAR><AR-PACKAGES><AR-PACKAGE><SHORT-NAME>P</SHORT-NAME><ELEMENTS>
		<SW-BASE-TYPE><SHORT-NAME>T</SHORT-NAME>
			<SYMBOL-PROPS><SHORT-NAME>Sym</SHORT-NAME></SYMBOL-PROPS>
		</SW-BASE-TYPE>
	</ELEMENTS></AR-PACKAGE></AR-PACKAGES></AUTOSAR>`
	tree, m, a := annotated(t, true, "file:/a.arxml", xml, "file:/b.arxml", xml)

	sym := mustLookup(t, tree, "/P/T/Sym")
	if len(m.Sources(sym)) != 2 {
		t.Fatalf("symbol props must have provenance")
	}
	added, err := a.Annotate(tree, m)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if added != 4 {
		t.Errorf("added = %d, want 4", added)
	}
	if _, ok := tree.Child(sym, arxml.TagAdminData); ok {
		t.Error("SYMBOL-PROPS must not be annotated")
	}
}

func TestAnnotateErrors(t *testing.T) {
	tree, m, a := annotated(t, true, "file:/a.arxml", packageFragment("P", "A"))
	if _, err := a.Annotate(nil, m); err == nil {
		t.Error("expected error for nil tree")
	}
	if _, err := a.Annotate(tree, nil); err == nil {
		t.Error("expected error for nil map")
	}
	if _, err := a.Annotate(arxml.NewTree("other"), m); err == nil {
		t.Error("expected error for foreign map")
	}
}

func TestAnnotationsPersist(t *testing.T) {
	tree, m, a := annotated(t, true,
		"file:/one.arxml", packageFragment("P", "Shared"),
		"file:/two.arxml", packageFragment("P", "Shared"),
	)
	if _, err := a.Annotate(tree, m); err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	out := filepath.Join(t.TempDir(), "merged.arxml")
	if err := arxml.Save(tree, out, 2); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `<SDG GID="splitinfo">`) {
		t.Errorf("output has no provenance group:\n%s", data)
	}

	f, err := fragment.Parse(strings.NewReader(string(data)), fragment.FileURI(out), fragment.DefaultLoadOptions(), testLogger(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"file:/one.arxml", "file:/two.arxml"}
	if got := specialData(t, f.Tree, "/P/Shared"); !slices.Equal(got, want) {
		t.Errorf("reloaded SpecialData() = %v, want %v", got, want)
	}
}
