package arxml

import "strings"

// Annotatable is a view of a model element able to carry special data in its
// ADMIN-DATA. Only Identifiable elements provide it.
type Annotatable interface {
	// SpecialData returns values of SD entries of the SDG marked with gid.
	SpecialData(gid string) []string
	// AddSpecialData appends SD entry marked with gid to the single SDG marked
	// with the same gid, creating ADMIN-DATA, SDGS and SDG as necessary.
	AddSpecialData(gid, value string)
}

// AsAnnotatable returns annotatable view of the node if node supports it.
func (t *Tree) AsAnnotatable(id NodeID) (Annotatable, bool) {
	if !t.has(id) || !t.nodes[id].Identifiable() {
		return nil, false
	}
	return adminView{tree: t, id: id}, true
}

type adminView struct {
	tree *Tree
	id   NodeID
}

func (v adminView) SpecialData(gid string) []string {
	sdg, ok := v.group(gid, false)
	if !ok {
		return nil
	}
	var values []string
	for _, sd := range v.tree.ChildrenByTag(sdg, TagSD) {
		if n := v.tree.Node(sd); n.Attr(AttrGID) == gid {
			values = append(values, strings.TrimSpace(n.Text))
		}
	}
	return values
}

func (v adminView) AddSpecialData(gid, value string) {
	sdg, _ := v.group(gid, true)
	sd := v.tree.NewText(TagSD, value)
	v.tree.Node(sd).SetAttr(AttrGID, gid)
	v.tree.Append(sdg, sd)
}

// group finds SDG with requested gid, reusing the first one found.
func (v adminView) group(gid string, create bool) (NodeID, bool) {
	t := v.tree
	admin, ok := t.Child(v.id, TagAdminData)
	if ok {
		if sdgs, ok := t.Child(admin, TagSDGS); ok {
			for _, sdg := range t.ChildrenByTag(sdgs, TagSDG) {
				if t.Node(sdg).Attr(AttrGID) == gid {
					return sdg, true
				}
			}
		}
	}
	if !create {
		return InvalidNode, false
	}

	if !ok {
		admin = t.NewNode(TagAdminData)
		t.Insert(v.id, admin, t.adminDataPosition(v.id))
	}
	sdgs := t.EnsureChild(admin, TagSDGS, len(t.Node(admin).Children))
	sdg := t.NewNode(TagSDG)
	t.Node(sdg).SetAttr(AttrGID, gid)
	t.Append(sdgs, sdg)
	return sdg, true
}

// adminDataPosition returns index where ADMIN-DATA belongs per schema order.
func (t *Tree) adminDataPosition(id NodeID) int {
	pos := 0
	for i, c := range t.nodes[id].Children {
		if beforeAdminData[t.nodes[c].Tag] {
			pos = i + 1
		}
	}
	return pos
}
