package merge

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"arxmerge/arxml"
)

// Engine merges top level containers into a new model and provides lookup
// from canonical identity key to the merged element embodying it.
type Engine interface {
	CreateMergedCopy(containers []arxml.Locator) (*arxml.Tree, error)
	Get(key arxml.Key) (arxml.NodeID, bool)
	Tree() *arxml.Tree
}

// Splitable is an Engine treating every referrable element as splitable:
// contributions with equal keys are combined, containers aggregating
// referrable elements are combined by tag and position, list wrappers
// accumulate items of all contributors, any other content is taken from the
// first contributor and must be identical in all others.
type Splitable struct {
	identity      IdentityProvider
	assignUUIDs   bool
	allowDangling bool
	log           *zap.Logger

	merged   *arxml.Tree
	index    map[arxml.Key]arxml.NodeID
	names    map[arxml.NodeID]map[string]arxml.NodeID
	origin   map[arxml.NodeID]string
	problems error
}

// Option configures Splitable engine.
type Option func(*Splitable)

// WithIdentity replaces default ShortNamePaths identity provider.
func WithIdentity(idp IdentityProvider) Option {
	return func(s *Splitable) {
		s.identity = idp
	}
}

// WithAssignedUUIDs makes engine generate UUIDs for merged identifiables
// which do not have valid one.
func WithAssignedUUIDs(assign bool) Option {
	return func(s *Splitable) {
		s.assignUUIDs = assign
	}
}

// WithDanglingReferences keeps references to targets missing from the merged
// model symbolic instead of failing the merge. Used when unresolved
// references were accepted on input.
func WithDanglingReferences(allow bool) Option {
	return func(s *Splitable) {
		s.allowDangling = allow
	}
}

func NewSplitable(log *zap.Logger, opts ...Option) *Splitable {
	s := &Splitable{
		identity: ShortNamePaths{},
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tree returns result of the last successful merge.
func (s *Splitable) Tree() *arxml.Tree {
	return s.merged
}

// Get returns merged element for canonical identity key.
func (s *Splitable) Get(key arxml.Key) (arxml.NodeID, bool) {
	id, ok := s.index[key]
	return id, ok
}

// CreateMergedCopy merges AR-PACKAGEs into a new model with single AUTOSAR
// root. Input trees are never modified. All problems are collected and
// reported together, nothing is returned when there are any.
func (s *Splitable) CreateMergedCopy(packages []arxml.Locator) (*arxml.Tree, error) {
	s.merged = nil
	s.index = make(map[arxml.Key]arxml.NodeID)
	s.names = make(map[arxml.NodeID]map[string]arxml.NodeID)
	s.origin = make(map[arxml.NodeID]string)
	s.problems = nil

	t := arxml.NewTree("")
	root := t.NewNode(arxml.TagAutosar)
	t.SetRoot(root)
	pkgs := t.NewNode(arxml.TagPackages)
	t.Append(root, pkgs)

	for i, loc := range packages {
		if !loc.Valid() {
			s.problem(fmt.Errorf("container %d is not valid", i))
			continue
		}
		n := loc.Element()
		if n.Tag != arxml.TagPackage {
			s.problem(fmt.Errorf("container %d in %s is %s, not %s", i, loc.Tree.URI, n.Tag, arxml.TagPackage))
			continue
		}
		if i == 0 || len(t.Node(root).Attrs) == 0 {
			// namespace and schema location come from the first fragment
			t.Node(root).Attrs = append(t.Node(root).Attrs[:0], loc.Tree.Node(loc.Tree.Root()).Attrs...)
			t.Node(root).Space = loc.Tree.Node(loc.Tree.Root()).Space
		}
		s.mergeReferrable(t, pkgs, loc, -1)
	}

	for _, path := range t.Reindex() {
		s.problem(fmt.Errorf("duplicate path %s in merged model", path))
	}
	for id := range t.All() {
		if key, ok := s.identity.SplitableFor(t.Locate(id)); ok {
			s.index[key] = id
		}
	}
	s.bindReferences(t)
	if s.assignUUIDs {
		s.assignMissingUUIDs(t)
	}

	if s.problems != nil {
		return nil, &Error{Problems: s.problems}
	}
	s.merged = t
	s.log.Debug("Merged model created",
		zap.Int("containers", len(packages)),
		zap.Int("nodes", t.Len()),
		zap.Int("keys", len(s.index)))
	return t, nil
}

func (s *Splitable) problem(err error) {
	s.problems = multierr.Append(s.problems, err)
}

// mergeReferrable merges referrable src into parent of merged tree and
// returns merged node. Position pos is used when new node has to be created,
// negative means append.
func (s *Splitable) mergeReferrable(t *arxml.Tree, parent arxml.NodeID, src arxml.Locator, pos int) arxml.NodeID {
	sn := src.Element()
	byName := s.names[parent]
	if byName == nil {
		byName = make(map[string]arxml.NodeID)
		s.names[parent] = byName
	}

	dst, exists := byName[sn.ShortName]
	if !exists {
		dst = s.shallowCopy(t, src)
		insert(t, parent, dst, pos)
		byName[sn.ShortName] = dst
		s.origin[dst] = src.Tree.URI
	} else if dn := t.Node(dst); dn.Tag != sn.Tag {
		path, _ := src.Tree.Path(src.Node)
		s.problem(&ConflictError{Path: path, Tag: "kind", First: dn.Tag + " in " + s.origin[dst], Second: sn.Tag + " in " + src.Tree.URI})
		return dst
	} else {
		s.combineAttrs(t, dst, src)
	}
	s.mergeChildren(t, dst, src)
	return dst
}

// mergeChildren merges children of src into merged node dst preserving
// relative order of the contributions. Non-referrable children are paired
// with merged ones by position among siblings of the same tag, so repeated
// wrappers of one contributor never collapse into each other.
func (s *Splitable) mergeChildren(t *arxml.Tree, dst arxml.NodeID, src arxml.Locator) {
	prev := arxml.InvalidNode
	seen := make(map[string]int)
	for _, c := range src.Element().Children {
		child := src.Tree.Locate(c)
		cn := child.Element()
		pos := position(t, dst, prev)

		if cn.Referrable() {
			prev = s.mergeReferrable(t, dst, child, pos)
			continue
		}

		nth := seen[cn.Tag]
		seen[cn.Tag]++
		existing, ok := nthPlain(t, dst, cn.Tag, nth)
		if !ok {
			deep := !aggregates(src.Tree, c)
			var id arxml.NodeID
			if deep {
				id = copySubtree(t, child)
			} else {
				id = s.shallowCopy(t, child)
			}
			insert(t, dst, id, pos)
			s.origin[id] = src.Tree.URI
			if !deep {
				s.mergeChildren(t, id, child)
			}
			prev = id
			continue
		}
		s.mergePlain(t, dst, existing, child)
		prev = existing
	}
}

// mergePlain combines non-referrable src with merged node existing of the
// same tag and position.
func (s *Splitable) mergePlain(t *arxml.Tree, dst, existing arxml.NodeID, src arxml.Locator) {
	sn := src.Element()
	switch {
	case empty(sn):
	case empty(t.Node(existing)):
		en := t.Node(existing)
		en.Attrs = append(en.Attrs, sn.Attrs...)
		en.Text = sn.Text
		s.mergeChildren(t, existing, src)
	case aggregates(t, existing) || aggregates(src.Tree, src.Node):
		s.mergeChildren(t, existing, src)
	case isList(t, existing) || isList(src.Tree, src.Node):
		s.mergeList(t, existing, src)
	default:
		s.mergeLeaf(t, dst, existing, src)
	}
}

// mergeLeaf takes non-splitable content from the first contributor and checks
// that others define the same.
func (s *Splitable) mergeLeaf(t *arxml.Tree, dst, existing arxml.NodeID, src arxml.Locator) {
	if fingerprint(t.Locate(existing)) == fingerprint(src) {
		return
	}
	sn := src.Element()
	path := s.ownerPath(t, dst)
	if sn.Tag == arxml.TagAdminData {
		s.log.Debug("Different ADMIN-DATA contributions, keeping first",
			zap.String("path", path), zap.String("first", s.origin[existing]), zap.String("ignored", src.Tree.URI))
		return
	}
	s.problem(&ConflictError{Path: path, Tag: sn.Tag, First: s.origin[existing], Second: src.Tree.URI})
}

// mergeList appends items of src list wrapper to merged one. Items equal to
// ones already there are skipped, each merged item absorbs at most one
// contribution per fragment.
func (s *Splitable) mergeList(t *arxml.Tree, dst arxml.NodeID, src arxml.Locator) {
	pool := make(map[uint64]int)
	for _, c := range t.Node(dst).Children {
		pool[fingerprint(t.Locate(c))]++
	}
	for _, c := range src.Element().Children {
		item := src.Tree.Locate(c)
		fp := fingerprint(item)
		if pool[fp] > 0 {
			pool[fp]--
			continue
		}
		id := copySubtree(t, item)
		t.Append(dst, id)
		s.origin[id] = src.Tree.URI
	}
}

func (s *Splitable) combineAttrs(t *arxml.Tree, dst arxml.NodeID, src arxml.Locator) {
	sn := src.Element()
	for _, a := range sn.Attrs {
		dn := t.Node(dst)
		if a.Space != "" {
			continue
		}
		cur := dn.Attr(a.Key)
		switch {
		case cur == "":
			dn.SetAttr(a.Key, a.Value)
		case cur != a.Value:
			s.log.Debug("Different attribute values of splitable element, keeping first",
				zap.String("path", s.ownerPath(t, dst)), zap.String("attr", a.Key),
				zap.String("first", cur), zap.String("ignored", a.Value), zap.String("from", src.Tree.URI))
		}
	}
}

// nthPlain returns n-th non-referrable child of parent with given tag.
func nthPlain(t *arxml.Tree, parent arxml.NodeID, tag string, n int) (arxml.NodeID, bool) {
	for _, c := range t.Node(parent).Children {
		if cn := t.Node(c); cn.Tag == tag && !cn.Referrable() {
			if n == 0 {
				return c, true
			}
			n--
		}
	}
	return arxml.InvalidNode, false
}

func (s *Splitable) shallowCopy(t *arxml.Tree, src arxml.Locator) arxml.NodeID {
	sn := src.Element()
	id := t.NewNode(sn.Tag)
	n := t.Node(id)
	n.Space = sn.Space
	n.Attrs = append(n.Attrs, sn.Attrs...)
	n.Text = sn.Text
	return id
}

// bindReferences binds every reference of the merged model inside the merged
// model, so the result never points into fragments.
func (s *Splitable) bindReferences(t *arxml.Tree) {
	for id, ref := range t.References() {
		target, ok := t.Lookup(ref.Path)
		if !ok {
			ref.Unbind()
			if s.allowDangling {
				s.log.Warn("Reference target is not part of merged model",
					zap.String("source", s.ownerPath(t, id)), zap.String("tag", t.Node(id).Tag), zap.String("target", ref.Path))
				continue
			}
			s.problem(&DanglingReferenceError{Source: s.ownerPath(t, id), Tag: t.Node(id).Tag, Target: ref.Path})
			continue
		}
		ref.Bind(t.Locate(target))
	}
}

func (s *Splitable) assignMissingUUIDs(t *arxml.Tree) {
	for id := range t.All() {
		n := t.Node(id)
		if !n.Identifiable() {
			continue
		}
		if _, err := uuid.Parse(n.Attr(arxml.AttrUUID)); err == nil {
			continue
		}
		u, err := uuid.NewV7()
		if err != nil {
			s.problem(fmt.Errorf("unable to generate UUID: %w", err))
			return
		}
		n.SetAttr(arxml.AttrUUID, u.String())
	}
}

func (s *Splitable) ownerPath(t *arxml.Tree, id arxml.NodeID) string {
	for cur := id; cur != arxml.InvalidNode; cur = t.Node(cur).Parent {
		if p, ok := t.Path(cur); ok {
			return p
		}
	}
	return "/"
}

// aggregates reports whether non-referrable node contains referrable
// elements without another referrable in between.
func aggregates(t *arxml.Tree, id arxml.NodeID) bool {
	for _, c := range t.Node(id).Children {
		if n := t.Node(c); n.Referrable() || aggregates(t, c) {
			return true
		}
	}
	return false
}

// isList reports whether node is a plural wrapper of non-referrable
// structured items, such as PARAMETER-VALUES or FIBEX-ELEMENTS. Items of
// lists are accumulated from all contributors.
func isList(t *arxml.Tree, id arxml.NodeID) bool {
	n := t.Node(id)
	if n.Referrable() || n.Text != "" || len(n.Children) == 0 || aggregates(t, id) {
		return false
	}
	if !strings.HasSuffix(n.Tag, "S") || strings.HasSuffix(n.Tag, "SS") || strings.HasSuffix(n.Tag, "-PROPS") {
		return false
	}
	for _, c := range n.Children {
		if len(t.Node(c).Children) == 0 {
			return false
		}
	}
	return true
}

// empty reports whether node is element without any content, such
// elements are treated as containers of the content of other contributors.
func empty(n *arxml.Node) bool {
	return len(n.Children) == 0 && n.Text == "" && len(n.Attrs) == 0
}

// copySubtree deep copies src into t as detached node. References are
// copied symbolic.
func copySubtree(t *arxml.Tree, src arxml.Locator) arxml.NodeID {
	sn := src.Element()
	id := t.NewNode(sn.Tag)
	n := t.Node(id)
	n.Space = sn.Space
	n.Attrs = append(n.Attrs, sn.Attrs...)
	n.Text = sn.Text
	n.Tail = sn.Tail
	if sn.Ref != nil {
		n.Ref = &arxml.Reference{Dest: sn.Ref.Dest, Path: sn.Ref.Path}
	}
	for _, c := range sn.Children {
		t.Append(id, copySubtree(t, src.Tree.Locate(c)))
	}
	return id
}

func insert(t *arxml.Tree, parent, child arxml.NodeID, pos int) {
	if pos < 0 {
		t.Append(parent, child)
		return
	}
	t.Insert(parent, child, pos)
}

// position returns index right after prev among children of parent, so that
// content new to the merged element keeps its place relative to content
// already there. Without prev new content goes first.
func position(t *arxml.Tree, parent, prev arxml.NodeID) int {
	if prev == arxml.InvalidNode {
		return 0
	}
	for i, c := range t.Node(parent).Children {
		if c == prev {
			return i + 1
		}
	}
	return -1
}
