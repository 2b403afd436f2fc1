package provenance

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"arxmerge/arxml"
	"arxmerge/fragment"
	"arxmerge/merge"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

// packageFragment produces fragment with single package holding listed
// SW-BASE-TYPEs.
func packageFragment(pkg string, elements ...string) string {
	var b strings.Builder
	b.WriteString(`<AUTOSAR xmlns="http://autosar.org/schema/r4.0"><AR-PACKAGES><AR-PACKAGE>`)
	fmt.Fprintf(&b, "<SHORT-NAME>%s</SHORT-NAME><ELEMENTS>", pkg)
	for _, e := range elements {
		fmt.Fprintf(&b, "<SW-BASE-TYPE><SHORT-NAME>%s</SHORT-NAME><CATEGORY>FIXED_LENGTH</CATEGORY></SW-BASE-TYPE>", e)
	}
	b.WriteString(`</ELEMENTS></AR-PACKAGE></AR-PACKAGES></AUTOSAR>`)
	return b.String()
}

// pipeline loads pairs of (uri, xml), resolves and merges them.
func pipeline(t *testing.T, pairs ...string) (*fragment.Set, *merge.Splitable, *arxml.Tree) {
	t.Helper()
	set := fragment.NewSet()
	for i := 0; i < len(pairs); i += 2 {
		f, err := fragment.Parse(strings.NewReader(pairs[i+1]), pairs[i], fragment.DefaultLoadOptions(), testLogger(t))
		if err != nil {
			t.Fatalf("Parse(%s): %v", pairs[i], err)
		}
		set.Add(f)
	}
	if err := set.ResolveAll(testLogger(t)); err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	engine := merge.NewSplitable(testLogger(t))
	tree, err := merge.TopLevel(set, engine, testLogger(t))
	if err != nil {
		t.Fatalf("TopLevel: %v", err)
	}
	return set, engine, tree
}

func mustLookup(t *testing.T, tree *arxml.Tree, path string) arxml.NodeID {
	t.Helper()
	id, ok := tree.Lookup(path)
	if !ok {
		t.Fatalf("%s not found in %s", path, tree.URI)
	}
	return id
}
