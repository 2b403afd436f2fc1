package arxml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// FromDocument walks etree DOM of AUTOSAR XML file and builds node arena.
// Reference elements with absolute paths become symbolic references, nothing
// is resolved here.
func FromDocument(doc *etree.Document, uri string, log *zap.Logger) (*Tree, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if root.Tag != TagAutosar {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	t := NewTree(uri)
	t.SetRoot(t.fromElement(root, log))

	for _, path := range t.Reindex() {
		log.Warn("Duplicate short-name path, only first definition is addressable",
			zap.String("uri", uri), zap.String("path", path))
	}
	return t, nil
}

func (t *Tree) fromElement(el *etree.Element, log *zap.Logger) NodeID {
	id := t.NewNode(el.Tag)
	n := &t.nodes[id]
	n.Space = el.Space
	n.Attrs = append([]etree.Attr(nil), el.Attr...)
	n.Text = significant(el.Text())
	n.Tail = significant(el.Tail())

	children := el.ChildElements()
	if len(children) == 0 && IsReferenceTag(el.Tag) {
		path := strings.TrimSpace(el.Text())
		if IsAbsolutePath(path) {
			n.Text = path
			n.Ref = &Reference{Dest: el.SelectAttrValue(AttrDest, ""), Path: path}
		} else {
			// relative references need reference bases, keep them as plain text
			log.Debug("Reference is not absolute, keeping as text",
				zap.String("uri", t.URI), zap.String("tag", el.Tag), zap.String("value", path))
		}
	}

	for _, c := range children {
		t.Append(id, t.fromElement(c, log))
	}
	return id
}

// significant drops whitespace only character data which is formatting.
func significant(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
