package arxml

import (
	"strings"

	"arxmerge/utils/debug"
)

// String returns readable dump of the tree. It exists solely for manual
// inspection during debugging.
func (t *Tree) String() string {
	if t == nil {
		return "<nil Tree>"
	}
	tw := debug.NewTreeWriter()
	tw.Line(0, "Tree %q: %d nodes, %d paths", t.URI, len(t.nodes), len(t.paths))
	if !t.has(t.root) {
		return tw.String()
	}
	t.dump(tw, t.root, 1)
	return tw.String()
}

func (t *Tree) dump(tw *debug.TreeWriter, id NodeID, depth int) {
	n := &t.nodes[id]
	var b strings.Builder
	b.WriteString(n.Tag)
	if n.ShortName != "" {
		b.WriteString(" name=")
		b.WriteString(n.ShortName)
	}
	for _, a := range n.Attrs {
		b.WriteString(" @")
		b.WriteString(a.FullKey())
		b.WriteString("=")
		b.WriteString(a.Value)
	}
	if n.Ref != nil {
		b.WriteString(" -> ")
		b.WriteString(n.Ref.Path)
		if n.Ref.Symbolic() {
			b.WriteString(" (symbolic)")
		} else if n.Ref.Target.Tree != t {
			b.WriteString(" (in ")
			b.WriteString(n.Ref.Target.Tree.URI)
			b.WriteString(")")
		}
	}
	tw.Line(depth, "[%d] %s", id, b.String())
	if n.Text != "" && n.Ref == nil && n.Tag != TagShortName {
		tw.TextBlock(depth+1, "text", n.Text)
	}
	for _, c := range n.Children {
		if t.nodes[c].Tag == TagShortName {
			continue
		}
		t.dump(tw, c, depth+1)
	}
}
