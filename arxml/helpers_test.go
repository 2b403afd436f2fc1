package arxml

import (
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func parseTestTree(t *testing.T, uri, xml string) *Tree {
	t.Helper()

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("read xml: %v", err)
	}
	tree, err := FromDocument(doc, uri, zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	return tree
}
