package arxml

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Tree is an arena of nodes with single AUTOSAR root. Tree exclusively owns
// its nodes, other trees may only point to them with Locator.
type Tree struct {
	URI   string
	nodes []Node
	root  NodeID
	paths map[string]NodeID
}

// NewTree creates empty tree. URI identifies origin of the tree - file for
// fragments, destination for merged model.
func NewTree(uri string) *Tree {
	return &Tree{
		URI:   uri,
		root:  InvalidNode,
		paths: make(map[string]NodeID),
	}
}

func (t *Tree) has(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Len returns number of nodes in arena, including detached ones.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns node by id. Returned pointer is valid until next NewNode call.
func (t *Tree) Node(id NodeID) *Node {
	if !t.has(id) {
		panic(fmt.Sprintf("node %d does not exist in tree %q", id, t.URI))
	}
	return &t.nodes[id]
}

// Locate returns locator for node of this tree.
func (t *Tree) Locate(id NodeID) Locator {
	return Locator{Tree: t, Node: id}
}

// Root returns root node or InvalidNode for empty tree.
func (t *Tree) Root() NodeID {
	return t.root
}

// SetRoot makes detached node a root of the tree.
func (t *Tree) SetRoot(id NodeID) {
	t.root = id
}

// NewNode allocates detached node in the arena.
func (t *Tree) NewNode(tag string) NodeID {
	t.nodes = append(t.nodes, Node{Tag: tag, Parent: InvalidNode})
	return NodeID(len(t.nodes) - 1)
}

// NewText allocates detached leaf node with text content.
func (t *Tree) NewText(tag, text string) NodeID {
	id := t.NewNode(tag)
	t.nodes[id].Text = text
	return id
}

// Append attaches detached child as the last child of parent.
func (t *Tree) Append(parent, child NodeID) {
	t.Insert(parent, child, len(t.nodes[parent].Children))
}

// Insert attaches detached child to parent at position pos.
func (t *Tree) Insert(parent, child NodeID, pos int) {
	if t.nodes[child].Parent != InvalidNode {
		panic(fmt.Sprintf("node %d is already attached to %d", child, t.nodes[child].Parent))
	}
	p := &t.nodes[parent]
	pos = max(0, min(pos, len(p.Children)))
	p.Children = slices.Insert(p.Children, pos, child)
	t.nodes[child].Parent = parent
	if t.nodes[child].Tag == TagShortName {
		p.ShortName = strings.TrimSpace(t.nodes[child].Text)
	}
}

// Child returns first child of the node with requested tag.
func (t *Tree) Child(id NodeID, tag string) (NodeID, bool) {
	for _, c := range t.nodes[id].Children {
		if t.nodes[c].Tag == tag {
			return c, true
		}
	}
	return InvalidNode, false
}

// ChildrenByTag returns all children of the node with requested tag in
// document order.
func (t *Tree) ChildrenByTag(id NodeID, tag string) []NodeID {
	var res []NodeID
	for _, c := range t.nodes[id].Children {
		if t.nodes[c].Tag == tag {
			res = append(res, c)
		}
	}
	return res
}

// EnsureChild returns first child with requested tag, creating it at
// position pos if absent.
func (t *Tree) EnsureChild(id NodeID, tag string, pos int) NodeID {
	if c, ok := t.Child(id, tag); ok {
		return c
	}
	c := t.NewNode(tag)
	t.Insert(id, c, pos)
	return c
}

// All iterates over nodes reachable from root, depth first in document order.
func (t *Tree) All() iter.Seq[NodeID] {
	return t.Descendants(t.root)
}

// Descendants iterates over node and all its descendants, depth first in
// document order.
func (t *Tree) Descendants(from NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !t.has(from) {
			return
		}
		stack := []NodeID{from}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(id) {
				return
			}
			children := t.nodes[id].Children
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}

// Attached reports whether node is reachable from the root.
func (t *Tree) Attached(id NodeID) bool {
	for t.has(id) {
		if id == t.root {
			return true
		}
		id = t.nodes[id].Parent
	}
	return false
}

// Path returns absolute short-name path of referrable node. Non-referrable
// nodes have no path.
func (t *Tree) Path(id NodeID) (string, bool) {
	if !t.has(id) || !t.nodes[id].Referrable() {
		return "", false
	}
	var names []string
	for cur := id; t.has(cur); cur = t.nodes[cur].Parent {
		if n := &t.nodes[cur]; n.Referrable() {
			names = append(names, n.ShortName)
		}
	}
	slices.Reverse(names)
	return PathSeparator + strings.Join(names, PathSeparator), true
}

// Lookup finds referrable node by its absolute short-name path. Index must be
// up to date, see Reindex.
func (t *Tree) Lookup(path string) (NodeID, bool) {
	id, ok := t.paths[path]
	return id, ok
}

// Paths returns number of indexed referrable nodes.
func (t *Tree) Paths() int {
	return len(t.paths)
}

// Reindex rebuilds path index of referrable nodes reachable from root. When
// the same path is defined more than once the first node in document order
// is indexed and duplicates are returned.
func (t *Tree) Reindex() (duplicates []string) {
	clear(t.paths)
	for id := range t.All() {
		path, ok := t.Path(id)
		if !ok {
			continue
		}
		if _, exists := t.paths[path]; exists {
			duplicates = append(duplicates, path)
			continue
		}
		t.paths[path] = id
	}
	return duplicates
}

// References iterates over reference nodes reachable from root.
func (t *Tree) References() iter.Seq2[NodeID, *Reference] {
	return func(yield func(NodeID, *Reference) bool) {
		for id := range t.All() {
			if ref := t.nodes[id].Ref; ref != nil {
				if !yield(id, ref) {
					return
				}
			}
		}
	}
}
