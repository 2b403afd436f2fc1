package arxml

import (
	"fmt"

	"github.com/beevik/etree"
)

// SaveError is returned when merged model could not be persisted.
type SaveError struct {
	Destination string
	Err         error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("unable to save model to %q: %v", e.Destination, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Document renders tree into etree DOM. Resolved references are written with
// their paths, so output is independent of in-memory bindings.
func (t *Tree) Document(indent int) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	if t.has(t.root) {
		doc.AddChild(t.toElement(t.root))
	}
	if indent > 0 {
		doc.Indent(indent)
	}
	return doc
}

func (t *Tree) toElement(id NodeID) *etree.Element {
	n := &t.nodes[id]
	el := etree.NewElement(n.Tag)
	el.Space = n.Space
	el.Attr = append([]etree.Attr(nil), n.Attrs...)
	if n.Ref != nil {
		el.SetText(n.Ref.Path)
	} else if n.Text != "" {
		el.SetText(n.Text)
	}
	for _, c := range n.Children {
		el.AddChild(t.toElement(c))
	}
	if n.Tail != "" {
		el.SetTail(n.Tail)
	}
	return el
}

// Save writes tree to file. indent <= 0 keeps output compact.
func Save(t *Tree, destination string, indent int) error {
	if t == nil || !t.has(t.root) {
		return &SaveError{Destination: destination, Err: fmt.Errorf("empty model")}
	}
	if err := t.Document(indent).WriteToFile(destination); err != nil {
		return &SaveError{Destination: destination, Err: err}
	}
	return nil
}
