// Package arxml keeps AUTOSAR XML models as arenas of nodes addressed by
// stable indices. Cross references between nodes, fragments and merged models
// are expressed as locators rather than pointers between nodes.
package arxml

import (
	"strings"

	"github.com/beevik/etree"
)

// NodeID is a stable index of a node inside its tree arena.
type NodeID int32

// InvalidNode is returned when node does not exist.
const InvalidNode NodeID = -1

// Key is canonical identity of a logical model entity. For AUTOSAR this is
// absolute short-name path of the element.
type Key string

// Locator addresses a node in a particular tree.
type Locator struct {
	Tree *Tree
	Node NodeID
}

// Valid reports whether locator points to existing node.
func (l Locator) Valid() bool {
	return l.Tree != nil && l.Tree.has(l.Node)
}

// Element returns node locator points to or nil.
func (l Locator) Element() *Node {
	if !l.Valid() {
		return nil
	}
	return l.Tree.Node(l.Node)
}

// Reference is a typed edge to another referrable element. Until resolved it
// is symbolic and only carries the target path.
type Reference struct {
	Dest   string
	Path   string
	Target Locator
}

// Symbolic reports whether reference has not been bound to a node yet.
func (r *Reference) Symbolic() bool {
	return r.Target.Tree == nil
}

// Bind binds reference to the target node.
func (r *Reference) Bind(target Locator) {
	r.Target = target
}

// Unbind turns reference back into symbolic one.
func (r *Reference) Unbind() {
	r.Target = Locator{}
}

// Node is a single element of AUTOSAR XML tree. SHORT-NAME of referrable
// elements is kept both as regular child node (so it is written back in
// place) and cached in ShortName.
type Node struct {
	Space     string
	Tag       string
	Attrs     []etree.Attr
	Text      string
	Tail      string
	ShortName string
	Parent    NodeID
	Children  []NodeID
	Ref       *Reference
}

// Attr returns value of the attribute or empty string.
func (n *Node) Attr(key string) string {
	for _, a := range n.Attrs {
		if a.Key == key && a.Space == "" {
			return a.Value
		}
	}
	return ""
}

// SetAttr sets or replaces attribute value.
func (n *Node) SetAttr(key, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key && n.Attrs[i].Space == "" {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, etree.Attr{Key: key, Value: value})
}

// Referrable reports whether node could be target of a reference.
func (n *Node) Referrable() bool {
	return n.ShortName != ""
}

// Identifiable reports whether node is referrable element which is allowed
// to carry ADMIN-DATA.
func (n *Node) Identifiable() bool {
	return n.Referrable() && !referrableOnly[n.Tag]
}

// AUTOSAR element tags used by the package.
const (
	TagAutosar    = "AUTOSAR"
	TagPackages   = "AR-PACKAGES"
	TagPackage    = "AR-PACKAGE"
	TagElements   = "ELEMENTS"
	TagShortName  = "SHORT-NAME"
	TagAdminData  = "ADMIN-DATA"
	TagSDGS       = "SDGS"
	TagSDG        = "SDG"
	TagSD         = "SD"
	AttrGID       = "GID"
	AttrDest      = "DEST"
	AttrUUID      = "UUID"
	PathSeparator = "/"
)

// Referrable but not Identifiable meta-classes, these have SHORT-NAME but no
// ADMIN-DATA.
var referrableOnly = map[string]bool{
	"SYMBOL-PROPS":        true,
	"SECTION-NAME-PREFIX": true,
}

// children preceding ADMIN-DATA in every Identifiable according to schema.
var beforeAdminData = map[string]bool{
	TagShortName:           true,
	"SHORT-NAME-FRAGMENTS": true,
	"LONG-NAME":            true,
	"DESC":                 true,
	"CATEGORY":             true,
}

// IsReferenceTag reports whether tag names a reference element.
func IsReferenceTag(tag string) bool {
	return strings.HasSuffix(tag, "-REF") || strings.HasSuffix(tag, "-TREF")
}

// IsAbsolutePath reports whether reference text is absolute short-name path.
func IsAbsolutePath(path string) bool {
	return strings.HasPrefix(path, PathSeparator) && len(path) > 1
}
